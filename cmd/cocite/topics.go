package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/cocite/internal/node"
	"github.com/matsen/cocite/internal/topic"
)

var (
	topicsFile           string
	topicsAuthorOut      string
	topicsInstitutionOut string
	topicsAuthorCounts   string
	topicsInstCounts     string
)

func init() {
	addSourceFlags(topicsCmd)
	addOutputFlags(topicsCmd)
	topicsCmd.Flags().StringVar(&topicsFile, "topics", "", "CSV with id and topic_name columns (required)")
	topicsCmd.Flags().StringVar(&topicsAuthorOut, "author-out", "author_topics.csv", "Author topic table, relative to --out-dir")
	topicsCmd.Flags().StringVar(&topicsInstitutionOut, "institution-out", "institution_topics.csv", "Institution topic table, relative to --out-dir")
	topicsCmd.Flags().StringVar(&topicsAuthorCounts, "author-counts-out", "author_topic_counts.csv", "Per-topic author counts, relative to --out-dir")
	topicsCmd.Flags().StringVar(&topicsInstCounts, "institution-counts-out", "institution_topic_counts.csv", "Per-topic institution counts, relative to --out-dir")
	_ = topicsCmd.MarkFlagRequired("topics")
	rootCmd.AddCommand(topicsCmd)
}

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Attribute citing-paper topics to nodes",
	Long: `Given a topic for each citing record (from any external topic model),
count for every author and institution node how many records of each topic
cite it. Writes each node's dominant topic, plus one ID,Topic,Count row
per node and citing topic.

Records without an assigned topic count as "Unknown", as do nodes that no
record cites. Nodes are matched through the same identity keys as the edge
pass, so spelling variants of one author share their counts.

Examples:
  cocite topics --data-dir records --topics paper_topics.csv`,
	Args: cobra.NoArgs,
	RunE: runTopics,
}

func runTopics(cmd *cobra.Command, args []string) error {
	a := mustNewApp(cmd)
	defer a.close()

	assign, err := topic.ReadAssignmentsFile(topicsFile)
	if err != nil {
		a.close()
		exitWithError(ExitDataError, "loading topics: %v", err)
	}

	authors, err := node.ReadAuthorsFile(a.cfg.AuthorNodesPath())
	if err != nil {
		a.close()
		exitWithError(ExitDataError, "%v\n\nRun 'cocite nodes' first.", err)
	}
	institutions, err := node.ReadInstitutionsFile(a.cfg.InstitutionNodesPath())
	if err != nil {
		a.close()
		exitWithError(ExitDataError, "%v\n\nRun 'cocite nodes' first.", err)
	}
	reg, err := node.NewRegistry(authors, institutions)
	if err != nil {
		a.close()
		exitWithError(ExitDataError, "indexing node tables: %v", err)
	}

	records, _ := a.mustLoadRecords()
	a.mustEnsureOutDir()

	res, err := a.newPipeline().AttributeTopics(cmd.Context(), records, reg, assign)
	if err != nil {
		a.failPass(err)
	}

	authorRows := make([]topic.NodeTopic, 0, len(authors))
	authorDist := make(map[string]int)
	for _, au := range authors {
		t, n := res.Authors.Dominant(au.ID)
		authorRows = append(authorRows, topic.NodeTopic{ID: au.ID, Name: au.Name, Topic: t, Count: n})
		authorDist[t]++
	}
	instRows := make([]topic.NodeTopic, 0, len(institutions))
	instDist := make(map[string]int)
	for _, inst := range institutions {
		t, n := res.Institutions.Dominant(inst.ID)
		instRows = append(instRows, topic.NodeTopic{ID: inst.ID, Name: inst.Name, Topic: t, Count: n})
		instDist[t]++
	}

	authorPath := a.cfg.OutPath(topicsAuthorOut)
	instPath := a.cfg.OutPath(topicsInstitutionOut)
	if err := topic.WriteNodeTopicsFile(authorPath, authorRows); err != nil {
		a.failPass(err)
	}
	if err := topic.WriteNodeTopicsFile(instPath, instRows); err != nil {
		a.failPass(err)
	}

	authorCounts := res.Authors.Rows()
	instCounts := res.Institutions.Rows()
	authorCountsPath := a.cfg.OutPath(topicsAuthorCounts)
	instCountsPath := a.cfg.OutPath(topicsInstCounts)
	if err := topic.WriteRowsFile(authorCountsPath, authorCounts); err != nil {
		a.failPass(err)
	}
	if err := topic.WriteRowsFile(instCountsPath, instCounts); err != nil {
		a.failPass(err)
	}

	resp := TopicsResponse{
		Records:     len(records),
		Assignments: len(assign),
		Tables: []TableOutput{
			{Kind: "author_topics", Path: authorPath, Rows: len(authorRows)},
			{Kind: "institution_topics", Path: instPath, Rows: len(instRows)},
			{Kind: "author_topic_counts", Path: authorCountsPath, Rows: len(authorCounts)},
			{Kind: "institution_topic_counts", Path: instCountsPath, Rows: len(instCounts)},
		},
		Authors:      authorDist,
		Institutions: instDist,
	}

	if humanOutput {
		outputHuman("Topic tables written\n")
		for _, t := range resp.Tables {
			outputHuman("  %-26s %6d rows -> %s\n", t.Kind+":", t.Rows, t.Path)
		}
		outputHuman("  Authors by topic:      %v\n", authorDist)
		outputHuman("  Institutions by topic: %v\n", instDist)
		return nil
	}
	return outputJSON(resp)
}
