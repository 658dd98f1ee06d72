package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/cocite/internal/node"
)

func init() {
	addSourceFlags(nodesCmd)
	addOutputFlags(nodesCmd)
	rootCmd.AddCommand(nodesCmd)
}

var nodesCmd = &cobra.Command{
	Use:   "nodes",
	Short: "Resolve referenced works and write node tables",
	Long: `Collect every work referenced by the records, resolve each one once
through OpenAlex, and write the author and institution node tables.

The representative author of a work is its "first" authorship, or the first
listed one. The representative institution is the first affiliation found
scanning from that author outward. IDs are assigned 1..N in order of first
appearance over the sorted work IDs.

Examples:
  cocite nodes --data-dir records
  cocite nodes --data-dir records --out-dir network --cache works.db`,
	Args: cobra.NoArgs,
	RunE: runNodes,
}

func runNodes(cmd *cobra.Command, args []string) error {
	a := mustNewApp(cmd)
	defer a.close()

	records, skipped := a.mustLoadRecords()
	a.mustEnsureOutDir()
	p := a.newPipeline()

	res, err := p.BuildNodes(cmd.Context(), records)
	if err != nil {
		a.failPass(err)
	}

	authorPath, instPath := a.cfg.AuthorNodesPath(), a.cfg.InstitutionNodesPath()
	if err := node.WriteAuthorsFile(authorPath, res.Authors); err != nil {
		a.failPass(err)
	}
	if err := node.WriteInstitutionsFile(instPath, res.Institutions); err != nil {
		a.failPass(err)
	}

	resp := PassResponse{
		Records:     len(records),
		Skipped:     skipped,
		UniqueWorks: res.Works,
		Tables: []TableOutput{
			{Kind: "author_nodes", Path: authorPath, Rows: len(res.Authors)},
			{Kind: "institution_nodes", Path: instPath, Rows: len(res.Institutions)},
		},
		Resolver: p.Resolver().Stats(),
	}
	a.logger.Info("node pass done", "authors", len(res.Authors), "institutions", len(res.Institutions))

	if humanOutput {
		printPass("Node tables written", resp)
		return nil
	}
	return outputJSON(resp)
}
