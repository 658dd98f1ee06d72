package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/cocite/internal/config"
	"github.com/matsen/cocite/internal/storage"
)

func init() {
	cacheCmd.PersistentFlags().String("cache", "", "SQLite file caching resolved works across runs")
	cacheCmd.AddCommand(cacheInfoCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheExportCmd)
	cacheCmd.AddCommand(cacheImportCmd)
	rootCmd.AddCommand(cacheCmd)
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the resolved-works cache",
	Long: `The works cache stores the representative author and institution of every
work fetched successfully, so that later runs skip the remote lookup.
Failed lookups are never stored and are retried on the next run.

The cache is enabled by cache_path in cocite.yml, COCITE_CACHE_PATH or --cache.`,
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show cache statistics",
	Args:  cobra.NoArgs,
	RunE:  runCacheInfo,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached work",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

var cacheExportCmd = &cobra.Command{
	Use:   "export <file.jsonl>",
	Short: "Write every cached work to a JSONL file",
	Args:  cobra.ExactArgs(1),
	RunE:  runCacheExport,
}

var cacheImportCmd = &cobra.Command{
	Use:   "import <file.jsonl>",
	Short: "Load works from a JSONL file into the cache",
	Long: `Load works exported by 'cocite cache export' into the cache, replacing
entries with the same work ID. This lets collaborators share one set of
OpenAlex lookups.`,
	Args: cobra.ExactArgs(1),
	RunE: runCacheImport,
}

// mustOpenCache opens the configured cache database or exits.
func mustOpenCache(cmd *cobra.Command) (string, *storage.DB) {
	cfg := mustLoadConfig(cmd)
	if cfg.CachePath == "" {
		exitWithError(ExitConfigError, "no cache configured\n\nSet cache_path in %s or pass --cache.", config.DefaultFile)
	}
	db, err := storage.OpenDB(cfg.CachePath)
	if err != nil {
		exitWithError(ExitError, "opening cache: %v", err)
	}
	return cfg.CachePath, db
}

func runCacheInfo(cmd *cobra.Command, args []string) error {
	path, db := mustOpenCache(cmd)
	defer db.Close()

	stats, err := db.Stats()
	if err != nil {
		db.Close()
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		outputHuman("Cache: %s\n", path)
		outputHuman("  Works:            %d\n", stats.Works)
		outputHuman("  With author:      %d\n", stats.WithAuthor)
		outputHuman("  With institution: %d\n", stats.WithInstitution)
		if stats.Works > 0 {
			outputHuman("  Fetched:          %s .. %s\n",
				stats.OldestFetchedAt.Format("2006-01-02 15:04"),
				stats.NewestFetchedAt.Format("2006-01-02 15:04"))
		}
		return nil
	}
	return outputJSON(CacheInfoResponse{Path: path, Stats: stats})
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	path, db := mustOpenCache(cmd)
	defer db.Close()

	n, err := db.Clear()
	if err != nil {
		db.Close()
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		outputHuman("Removed %d cached works from %s\n", n, path)
		return nil
	}
	return outputJSON(CacheClearResponse{Path: path, Removed: n})
}

func runCacheExport(cmd *cobra.Command, args []string) error {
	path, db := mustOpenCache(cmd)
	defer db.Close()

	n, err := db.Export(args[0])
	if err != nil {
		db.Close()
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		outputHuman("Exported %d cached works from %s to %s\n", n, path, args[0])
		return nil
	}
	return outputJSON(CacheTransferResponse{Path: path, File: args[0], Works: n})
}

func runCacheImport(cmd *cobra.Command, args []string) error {
	path, db := mustOpenCache(cmd)
	defer db.Close()

	n, err := db.Import(args[0])
	if err != nil {
		db.Close()
		exitWithError(ExitDataError, "%v", err)
	}

	if humanOutput {
		outputHuman("Imported %d works from %s into %s\n", n, args[0], path)
		return nil
	}
	return outputJSON(CacheTransferResponse{Path: path, File: args[0], Works: n})
}
