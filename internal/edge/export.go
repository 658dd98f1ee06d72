package edge

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strconv"
)

// Columns is the header of an edge table.
var Columns = []string{"Source", "Target", "Weight"}

// DefaultMinWeight keeps every edge.
const DefaultMinWeight = 1

// Export filters out edges lighter than minWeight and sorts the rest by
// weight descending, then source ascending, then target ascending.
// A minWeight below 1 is treated as 1.
func Export(c *Counter, minWeight int) []Edge {
	if minWeight < DefaultMinWeight {
		minWeight = DefaultMinWeight
	}

	edges := slices.DeleteFunc(c.Edges(), func(e Edge) bool {
		return e.Weight < minWeight
	})
	SortEdges(edges)
	return edges
}

// SortEdges sorts edges in export order. Pairs are unique, so the order is total.
func SortEdges(edges []Edge) {
	sort.Slice(edges, func(i, j int) bool {
		a, b := edges[i], edges[j]
		if a.Weight != b.Weight {
			return a.Weight > b.Weight
		}
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		return a.Target < b.Target
	})
}

// WriteCSV writes edges with a Source,Target,Weight header.
func WriteCSV(w io.Writer, edges []Edge) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, e := range edges {
		row := []string{strconv.Itoa(e.Source), strconv.Itoa(e.Target), strconv.Itoa(e.Weight)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing edge %d-%d: %w", e.Source, e.Target, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes an edge table to path, replacing existing content.
func WriteFile(path string, edges []Edge) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating edge table: %w", err)
	}
	if err := WriteCSV(f, edges); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadCSV parses an edge table written by WriteCSV. Every row is validated and
// a pair may appear only once, in either orientation.
func ReadCSV(r io.Reader) ([]Edge, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Columns)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	for i, col := range Columns {
		if header[i] != col {
			return nil, fmt.Errorf("unexpected column %q, want %q", header[i], col)
		}
	}

	var edges []Edge
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", line, err)
		}

		var vals [3]int
		for i, raw := range rec {
			v, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid %s %q", line, Columns[i], raw)
			}
			vals[i] = v
		}

		e := Edge{Source: vals[0], Target: vals[1], Weight: vals[2]}
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		edges = append(edges, e)
	}

	if dups := FindDuplicateEdges(edges); len(dups) > 0 {
		pairs := make([]Pair, 0, len(dups))
		for p := range dups {
			pairs = append(pairs, p)
		}
		sort.Slice(pairs, func(i, j int) bool {
			if pairs[i].Source != pairs[j].Source {
				return pairs[i].Source < pairs[j].Source
			}
			return pairs[i].Target < pairs[j].Target
		})
		p := pairs[0]
		return nil, fmt.Errorf("%w: %d-%d appears %d times", ErrDuplicateEdge, p.Source, p.Target, dups[p])
	}
	return edges, nil
}

// ReadFile reads an edge table from disk.
func ReadFile(path string) ([]Edge, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening edge table: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}
