package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/cocite/internal/edge"
	"github.com/matsen/cocite/internal/node"
	"github.com/matsen/cocite/internal/pipeline"
	"github.com/matsen/cocite/internal/record"
)

func init() {
	addSourceFlags(edgesCmd)
	addOutputFlags(edgesCmd)
	addMinWeightFlag(edgesCmd)
	rootCmd.AddCommand(edgesCmd)
}

var edgesCmd = &cobra.Command{
	Use:   "edges",
	Short: "Count co-citations against existing node tables",
	Long: `Load the node tables written by 'cocite nodes', resolve each record's
references to node IDs and count, for every pair of nodes, the records
citing both. A record counts at most once per pair however many of its
references resolve to the same nodes.

Works whose author or institution is not in the node tables contribute
nothing for that kind; the edge pass never creates nodes.

Edges are written sorted by weight (descending), then source and target.

Examples:
  cocite edges --data-dir records
  cocite edges --data-dir records --min-weight 2`,
	Args: cobra.NoArgs,
	RunE: runEdges,
}

func runEdges(cmd *cobra.Command, args []string) error {
	a := mustNewApp(cmd)
	defer a.close()

	authorPath, instPath := a.cfg.AuthorNodesPath(), a.cfg.InstitutionNodesPath()
	for _, path := range []string{authorPath, instPath} {
		if _, err := os.Stat(path); err != nil {
			a.close()
			exitWithError(ExitDataError, "node table %s not found\n\nRun 'cocite nodes' first.", path)
		}
	}
	reg, err := node.LoadRegistry(authorPath, instPath)
	if err != nil {
		a.close()
		exitWithError(ExitDataError, "loading node tables: %v", err)
	}
	a.logger.Info("node tables loaded", "authors", reg.NumAuthors(), "institutions", reg.NumInstitutions())

	records, skipped := a.mustLoadRecords()
	a.mustEnsureOutDir()
	p := a.newPipeline()

	res, err := p.BuildEdges(cmd.Context(), records, reg, a.cfg.MinWeight)
	if err != nil {
		a.failPass(err)
	}

	tables, err := writeEdgeTables(a, res)
	if err != nil {
		a.failPass(err)
	}

	resp := PassResponse{
		Records:     len(records),
		Skipped:     skipped,
		UniqueWorks: len(record.UniqueWorkIDs(records)),
		MinWeight:   a.cfg.MinWeight,
		Tables:      tables,
		Resolver:    p.Resolver().Stats(),
	}

	if humanOutput {
		printPass("Edge tables written", resp)
		return nil
	}
	return outputJSON(resp)
}

// writeEdgeTables writes both edge tables and describes them.
func writeEdgeTables(a *app, res *pipeline.EdgeResult) ([]TableOutput, error) {
	authorPath, instPath := a.cfg.AuthorEdgesPath(), a.cfg.InstitutionEdgesPath()
	if err := edge.WriteFile(authorPath, res.AuthorEdges); err != nil {
		return nil, err
	}
	if err := edge.WriteFile(instPath, res.InstitutionEdges); err != nil {
		return nil, err
	}
	a.logger.Info("edge tables written",
		"author_edges", len(res.AuthorEdges),
		"institution_edges", len(res.InstitutionEdges))
	return []TableOutput{
		{Kind: "author_edges", Path: authorPath, Rows: len(res.AuthorEdges)},
		{Kind: "institution_edges", Path: instPath, Rows: len(res.InstitutionEdges)},
	}, nil
}
