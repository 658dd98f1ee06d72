package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/matsen/cocite/internal/record"
	"github.com/matsen/cocite/internal/resolve"
	"github.com/matsen/cocite/internal/storage"
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...any) {
	fmt.Printf(format, args...)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// TableOutput describes one written table.
type TableOutput struct {
	Kind string `json:"kind"`
	Path string `json:"path"`
	Rows int    `json:"rows"`
}

// PassResponse is the response of nodes, edges and run.
type PassResponse struct {
	Records     int              `json:"records"`
	Skipped     []record.Skipped `json:"skipped,omitempty"`
	UniqueWorks int              `json:"unique_works"`
	MinWeight   int              `json:"min_weight,omitempty"`
	Tables      []TableOutput    `json:"tables"`
	Resolver    resolve.Stats    `json:"resolver"`
}

// TopicsResponse is the response of the topics command.
type TopicsResponse struct {
	Records      int            `json:"records"`
	Assignments  int            `json:"assignments"`
	Tables       []TableOutput  `json:"tables"`
	Authors      map[string]int `json:"author_topics"`
	Institutions map[string]int `json:"institution_topics"`
}

// CacheInfoResponse is the response of cache info.
type CacheInfoResponse struct {
	Path string `json:"path"`
	storage.Stats
}

// CacheClearResponse is the response of cache clear.
type CacheClearResponse struct {
	Path    string `json:"path"`
	Removed int    `json:"removed"`
}

// CacheTransferResponse is the response of cache export and cache import.
type CacheTransferResponse struct {
	Path  string `json:"path"`
	File  string `json:"file"`
	Works int    `json:"works"`
}

// VizResponse is the response of viz when writing to a file.
type VizResponse struct {
	Output string `json:"output"`
	Kind   string `json:"kind"`
	Nodes  int    `json:"nodes"`
	Edges  int    `json:"edges"`
}

// printPass renders a PassResponse for --human.
func printPass(title string, r PassResponse) {
	outputHuman("%s\n", title)
	outputHuman("  Records:       %d (%d skipped)\n", r.Records, len(r.Skipped))
	outputHuman("  Unique works:  %d\n", r.UniqueWorks)
	outputHuman("  Lookups:       %d fetched, %d failed, %d cache hits\n",
		r.Resolver.Fetched, r.Resolver.Failed, r.Resolver.CacheHits)
	if r.MinWeight > 0 {
		outputHuman("  Min weight:    %d\n", r.MinWeight)
	}
	for _, t := range r.Tables {
		outputHuman("  %-18s %6d rows -> %s\n", t.Kind+":", t.Rows, t.Path)
	}
	for _, s := range r.Skipped {
		outputHuman("  skipped %s (%s)\n", s.Path, s.Reason)
	}
}
