package main

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/cocite/internal/config"
	"github.com/matsen/cocite/internal/logging"
	"github.com/matsen/cocite/internal/metrics"
	"github.com/matsen/cocite/internal/openalex"
	"github.com/matsen/cocite/internal/pipeline"
	"github.com/matsen/cocite/internal/record"
	"github.com/matsen/cocite/internal/resolve"
	"github.com/matsen/cocite/internal/storage"
)

// app bundles what a command needs for one invocation.
type app struct {
	cfg     *config.Config
	logger  *logging.Logger
	metrics *metrics.Recorder
	db      *storage.DB // nil unless cache_path is set
}

// addSourceFlags registers flags that locate the records and the API.
func addSourceFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("data-dir", "", "Directory of JSON metadata records")
	f.String("field", "", "Record field listing referenced works (default referenced_works)")
	f.String("cache", "", "SQLite file caching resolved works across runs")
	f.String("mailto", "", "Contact email sent to OpenAlex (polite pool)")
	f.String("api-base", "", "OpenAlex works endpoint")
	f.Duration("delay", 0, "Minimum spacing between OpenAlex requests (default 300ms)")
	f.Duration("timeout", 0, "Per-request timeout (default 15s)")
	f.Int("workers", 0, "Concurrent lookups (default 1)")
	f.String("metrics-file", "", "Write Prometheus metrics to this file on exit")
}

// addOutputFlags registers flags that locate output tables.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().String("out-dir", "", "Directory for node and edge tables")
}

// addMinWeightFlag registers the edge weight threshold.
func addMinWeightFlag(cmd *cobra.Command) {
	cmd.Flags().Int("min-weight", 0, "Drop edges lighter than this (default 1)")
}

// applyFlags copies explicitly set flags over the loaded configuration.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	str := func(name string, dst *string) {
		if f.Lookup(name) != nil && f.Changed(name) {
			*dst, _ = f.GetString(name)
		}
	}
	str("data-dir", &cfg.DataDir)
	str("field", &cfg.FocusField)
	str("cache", &cfg.CachePath)
	str("mailto", &cfg.Mailto)
	str("api-base", &cfg.APIBase)
	str("out-dir", &cfg.OutDir)
	str("metrics-file", &cfg.MetricsFile)

	if f.Lookup("delay") != nil && f.Changed("delay") {
		cfg.RequestDelay, _ = f.GetDuration("delay")
	}
	if f.Lookup("timeout") != nil && f.Changed("timeout") {
		cfg.RequestTimeout, _ = f.GetDuration("timeout")
	}
	if f.Lookup("workers") != nil && f.Changed("workers") {
		cfg.Workers, _ = f.GetInt("workers")
	}
	if f.Lookup("min-weight") != nil && f.Changed("min-weight") {
		cfg.MinWeight, _ = f.GetInt("min-weight")
	}
}

// mustLoadConfig loads configuration, applies flags, exits on error.
func mustLoadConfig(cmd *cobra.Command) *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	return cfg
}

// mustNewApp loads configuration and sets up logging and metrics.
// The caller is responsible for calling close() on the returned app.
func mustNewApp(cmd *cobra.Command) *app {
	cfg := mustLoadConfig(cmd)

	logger, err := logging.New(cfg.LogMode, verbose)
	if err != nil {
		exitWithError(ExitConfigError, "setting up logging: %v", err)
	}

	a := &app{cfg: cfg, logger: logger, metrics: metrics.New()}

	if cfg.CachePath != "" {
		db, err := storage.OpenDB(cfg.CachePath)
		if err != nil {
			exitWithError(ExitError, "opening cache: %v", err)
		}
		a.db = db
		if n, err := db.CountWorks(); err == nil {
			logger.Info("works cache opened", "path", cfg.CachePath, "works", n)
		}
	}
	return a
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
	if err := a.metrics.WriteFile(a.cfg.MetricsFile); err != nil {
		a.logger.Warn("writing metrics failed", "path", a.cfg.MetricsFile, "error", err)
	}
	a.logger.Sync()
}

// newPipeline wires the OpenAlex client, the cache and the resolver.
func (a *app) newPipeline() *pipeline.Pipeline {
	cfg := a.cfg
	client := openalex.NewClient(
		openalex.WithBaseURL(cfg.APIBase),
		openalex.WithTimeout(cfg.RequestTimeout),
		openalex.WithDelay(cfg.RequestDelay),
		openalex.WithUserAgent(cfg.UserAgent),
		openalex.WithMailto(cfg.Mailto),
	)

	opts := []resolve.Option{
		resolve.WithLogger(a.logger),
		resolve.WithMetrics(a.metrics),
	}
	if a.db != nil {
		opts = append(opts, resolve.WithCache(resolve.NewPersistentCache(a.db, a.logger)))
	}

	a.logger.Debug("openalex client",
		"api_base", cfg.APIBase,
		"delay", cfg.RequestDelay.String(),
		"timeout", cfg.RequestTimeout.String(),
		"mailto", cfg.Mailto,
		"workers", cfg.Workers,
		"cache", cfg.CachePath)

	return pipeline.New(resolve.New(client, opts...),
		pipeline.WithLogger(a.logger),
		pipeline.WithMetrics(a.metrics),
		pipeline.WithWorkers(cfg.Workers),
	)
}

// mustLoadRecords reads the record corpus, exits on setup errors.
func (a *app) mustLoadRecords() ([]record.Record, []record.Skipped) {
	records, skipped, err := record.LoadDir(a.cfg.DataDir, a.cfg.FocusField)
	if err != nil {
		a.close()
		exitWithError(ExitDataError, "%v", err)
	}
	for range records {
		a.metrics.RecordRead()
	}
	for _, s := range skipped {
		a.metrics.RecordSkipped(s.Reason)
		a.logger.Warn("skipping record", "path", s.Path, "reason", s.Reason, "error", s.Err)
	}
	a.logger.Info("records loaded", "dir", a.cfg.DataDir, "records", len(records), "skipped", len(skipped))
	return records, skipped
}

// mustEnsureOutDir creates the output directory.
func (a *app) mustEnsureOutDir() {
	if err := os.MkdirAll(a.cfg.OutDir, 0755); err != nil {
		a.close()
		exitWithError(ExitError, "creating output directory: %v", err)
	}
}

// failPass maps a pass error to an exit code and exits.
func (a *app) failPass(err error) {
	a.close()
	switch {
	case errors.Is(err, context.Canceled):
		exitWithError(ExitInterrupted, "interrupted: %v", err)
	case errors.Is(err, pipeline.ErrNoWorks):
		exitWithError(ExitDataError, "%v in %s (check data_dir and focus_field)", err, a.cfg.DataDir)
	default:
		exitWithError(ExitError, "%v", err)
	}
}
