// Package main provides the cocite CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	verbose     bool
	configPath  string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "cocite",
	Short: "Build author and institution co-citation networks",
	Long: `cocite builds co-citation networks from a folder of bibliographic
metadata records (one JSON file per paper, each listing the OpenAlex IDs of
the works it references).

Every referenced work is resolved once through the OpenAlex API to its first
author and first institution. Those become the nodes; two nodes are linked
with weight w when w records cite works by both.

Pipeline:
  cocite nodes    resolve referenced works, write node tables
  cocite edges    count co-citations against the node tables
  cocite run      both passes, sharing one lookup cache
  cocite topics   dominant citing-paper topic per node
  cocite viz      interactive HTML view of a network

All commands output JSON by default. Use --human for readable output.
Logs go to stderr.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Load .env file if present (for COCITE_* settings)
	_ = godotenv.Load()

	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug details (each failed lookup) to stderr")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ./cocite.yml if present)")
	rootCmd.Version = Version
}
