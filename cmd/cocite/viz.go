package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/cocite/internal/edge"
	"github.com/matsen/cocite/internal/node"
	"github.com/matsen/cocite/internal/viz"
)

var (
	vizOutput       string
	vizLayout       string
	vizKind         string
	vizKeepIsolated bool
)

func init() {
	addOutputFlags(vizCmd)
	addMinWeightFlag(vizCmd)
	vizCmd.Flags().StringVarP(&vizOutput, "output", "o", "", "Output file path (default: stdout)")
	vizCmd.Flags().StringVar(&vizLayout, "layout", viz.DefaultOptions().Layout, "Layout algorithm: "+strings.Join(viz.ValidLayouts, ", "))
	vizCmd.Flags().StringVar(&vizKind, "kind", "author", "Network to draw: author or institution")
	vizCmd.Flags().BoolVar(&vizKeepIsolated, "keep-isolated", false, "Also draw nodes without edges")
	rootCmd.AddCommand(vizCmd)
}

var vizCmd = &cobra.Command{
	Use:   "viz",
	Short: "Generate co-citation network visualization",
	Long: `Generate an interactive HTML visualization of a co-citation network
from the node and edge tables.

Authors are drawn as blue circles, institutions as orange diamonds. Node size
follows the total weight of a node's edges; edge width follows its weight.

Examples:
  # Author network to stdout
  cocite viz > authors.html

  # Institution network, strong ties only
  cocite viz --kind institution --min-weight 3 --output institutions.html`,
	Args: cobra.NoArgs,
	RunE: runViz,
}

func runViz(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig(cmd)

	var graph *viz.GraphData
	opts := viz.GraphOptions{MinWeight: cfg.MinWeight, KeepIsolated: vizKeepIsolated}

	switch edge.Kind(vizKind) {
	case edge.KindAuthor:
		authors, err := node.ReadAuthorsFile(cfg.AuthorNodesPath())
		if err != nil {
			exitWithError(ExitDataError, "%v", err)
		}
		edges, err := edge.ReadFile(cfg.AuthorEdgesPath())
		if err != nil {
			exitWithError(ExitDataError, "%v", err)
		}
		graph, err = viz.BuildAuthorGraph(authors, edges, opts)
		if err != nil {
			exitWithError(ExitDataError, "building graph data: %v", err)
		}
	case edge.KindInstitution:
		institutions, err := node.ReadInstitutionsFile(cfg.InstitutionNodesPath())
		if err != nil {
			exitWithError(ExitDataError, "%v", err)
		}
		edges, err := edge.ReadFile(cfg.InstitutionEdgesPath())
		if err != nil {
			exitWithError(ExitDataError, "%v", err)
		}
		graph, err = viz.BuildInstitutionGraph(institutions, edges, opts)
		if err != nil {
			exitWithError(ExitDataError, "building graph data: %v", err)
		}
	default:
		exitWithError(ExitError, "invalid kind %q: must be author or institution", vizKind)
	}

	htmlOpts := viz.HTMLOptions{Layout: vizLayout, Title: vizKind + " co-citation network"}
	if vizOutput == "" {
		// Generate HTML (validates options internally)
		html, err := viz.GenerateHTML(graph, htmlOpts)
		if err != nil {
			return fmt.Errorf("generating HTML: %w", err)
		}
		fmt.Print(html)
		return nil
	}
	if err := viz.WriteHTMLFile(vizOutput, graph, htmlOpts); err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if humanOutput {
		outputHuman("Visualization written to %s (%d nodes, %d edges)\n", vizOutput, len(graph.Nodes), len(graph.Edges))
		return nil
	}
	return outputJSON(VizResponse{Output: vizOutput, Kind: vizKind, Nodes: len(graph.Nodes), Edges: len(graph.Edges)})
}
