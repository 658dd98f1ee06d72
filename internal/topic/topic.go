// Package topic attributes citing-paper topics to the nodes those papers cite.
// Topics come from an external model as a paper→topic table.
package topic

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/matsen/cocite/internal/identity"
)

// Unknown is the topic of papers missing from the assignment table and of
// nodes that no assigned paper cites.
const Unknown = "Unknown"

// ErrMissingColumn is returned when the assignment table lacks id or topic_name.
var ErrMissingColumn = errors.New("missing column in topic table")

// Assignments maps a paper's work ID to its topic name.
type Assignments map[string]string

// Topic returns the topic of a paper, or Unknown.
func (a Assignments) Topic(paperID string) string {
	if t, ok := a[identity.WorkID(paperID)]; ok && t != "" {
		return t
	}
	return Unknown
}

// ReadAssignments parses a CSV with "id" and "topic_name" columns. IDs may be
// URLs or bare work IDs. Later rows override earlier ones.
func ReadAssignments(r io.Reader) (Assignments, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return Assignments{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	idCol, topicCol := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) {
		case "id":
			idCol = i
		case "topic_name":
			topicCol = i
		}
	}
	if idCol < 0 {
		return nil, fmt.Errorf("%w: id", ErrMissingColumn)
	}
	if topicCol < 0 {
		return nil, fmt.Errorf("%w: topic_name", ErrMissingColumn)
	}

	out := make(Assignments)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", line, err)
		}
		if idCol >= len(rec) || topicCol >= len(rec) {
			continue
		}
		id := identity.WorkID(rec[idCol])
		if id == "" {
			continue
		}
		out[id] = strings.TrimSpace(rec[topicCol])
	}
	return out, nil
}

// ReadAssignmentsFile reads an assignment table from disk.
func ReadAssignmentsFile(path string) (Assignments, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening topic table: %w", err)
	}
	defer f.Close()
	return ReadAssignments(f)
}

// Tally counts, per node, the citing records of each topic.
type Tally struct {
	counts map[int]map[string]int
}

// NewTally returns an empty Tally.
func NewTally() *Tally {
	return &Tally{counts: make(map[int]map[string]int)}
}

// Add counts one citing record of the given topic for each distinct node ID.
// IDs <= 0 are ignored.
func (t *Tally) Add(topic string, ids []int) {
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		m := t.counts[id]
		if m == nil {
			m = make(map[string]int)
			t.counts[id] = m
		}
		m[topic]++
	}
}

// Dominant returns the topic citing node id most often and its count.
// Ties go to the alphabetically first topic. Uncited nodes give (Unknown, 0).
func (t *Tally) Dominant(id int) (string, int) {
	best, bestN := Unknown, 0
	for topic, n := range t.counts[id] {
		if n > bestN || (n == bestN && topic < best) {
			best, bestN = topic, n
		}
	}
	return best, bestN
}

// Row is one node/topic count.
type Row struct {
	ID    int    `json:"id"`
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

// Rows returns every (node, topic, count) sorted by ID then count
// descending then topic.
func (t *Tally) Rows() []Row {
	var rows []Row
	for id, m := range t.counts {
		for topic, n := range m {
			rows = append(rows, Row{ID: id, Topic: topic, Count: n})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Topic < b.Topic
	})
	return rows
}

// NodeTopic is the dominant topic of one node.
type NodeTopic struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

// NodeTopicColumns is the header written by WriteNodeTopics.
var NodeTopicColumns = []string{"ID", "Name", "Topic", "Count"}

// WriteNodeTopics writes one row per node.
func WriteNodeTopics(w io.Writer, rows []NodeTopic) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(NodeTopicColumns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write([]string{strconv.Itoa(r.ID), r.Name, r.Topic, strconv.Itoa(r.Count)}); err != nil {
			return fmt.Errorf("writing node %d: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteNodeTopicsFile writes node topics to path.
func WriteNodeTopicsFile(path string, rows []NodeTopic) error {
	return writeFile(path, func(w io.Writer) error { return WriteNodeTopics(w, rows) })
}

// RowColumns is the header written by WriteRows.
var RowColumns = []string{"ID", "Topic", "Count"}

// WriteRows writes one row per node and citing topic.
func WriteRows(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(RowColumns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write([]string{strconv.Itoa(r.ID), r.Topic, strconv.Itoa(r.Count)}); err != nil {
			return fmt.Errorf("writing node %d: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRowsFile writes topic counts to path.
func WriteRowsFile(path string, rows []Row) error {
	return writeFile(path, func(w io.Writer) error { return WriteRows(w, rows) })
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating topic table: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
