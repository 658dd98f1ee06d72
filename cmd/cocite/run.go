package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/cocite/internal/node"
)

func init() {
	addSourceFlags(runCmd)
	addOutputFlags(runCmd)
	addMinWeightFlag(runCmd)
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Build node and edge tables in one pass",
	Long: `Run the node pass and the edge pass in one process. Each referenced
work is fetched at most once: the edge pass reuses every lookup of the node
pass, including failures.

Writes the same four tables as 'cocite nodes' followed by 'cocite edges'.

Examples:
  cocite run --data-dir records
  cocite run --data-dir records --workers 4 --mailto me@example.org`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	a := mustNewApp(cmd)
	defer a.close()

	records, skipped := a.mustLoadRecords()
	a.mustEnsureOutDir()
	p := a.newPipeline()

	res, err := p.Run(cmd.Context(), records, a.cfg.MinWeight)
	if err != nil {
		a.failPass(err)
	}

	authorPath, instPath := a.cfg.AuthorNodesPath(), a.cfg.InstitutionNodesPath()
	if err := node.WriteAuthorsFile(authorPath, res.Nodes.Authors); err != nil {
		a.failPass(err)
	}
	if err := node.WriteInstitutionsFile(instPath, res.Nodes.Institutions); err != nil {
		a.failPass(err)
	}
	edgeTables, err := writeEdgeTables(a, res.Edges)
	if err != nil {
		a.failPass(err)
	}

	resp := PassResponse{
		Records:     len(records),
		Skipped:     skipped,
		UniqueWorks: res.Nodes.Works,
		MinWeight:   a.cfg.MinWeight,
		Tables: append([]TableOutput{
			{Kind: "author_nodes", Path: authorPath, Rows: len(res.Nodes.Authors)},
			{Kind: "institution_nodes", Path: instPath, Rows: len(res.Nodes.Institutions)},
		}, edgeTables...),
		Resolver: p.Resolver().Stats(),
	}

	if humanOutput {
		printPass("Co-citation network written", resp)
		return nil
	}
	return outputJSON(resp)
}
