package main

// Exit codes
const (
	ExitSuccess     = 0   // Success
	ExitError       = 1   // General error (invalid arguments, runtime failure)
	ExitConfigError = 2   // Configuration error (invalid config file, bad option values)
	ExitDataError   = 3   // Data error (missing data directory, no records, missing node tables)
	ExitInterrupted = 130 // Interrupted by SIGINT/SIGTERM
)
