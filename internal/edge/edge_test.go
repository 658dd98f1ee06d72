package edge

import (
	"bytes"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestEdge_Validate(t *testing.T) {
	tests := []struct {
		name    string
		edge    Edge
		wantErr error
	}{
		{"valid edge", Edge{Source: 1, Target: 2, Weight: 3}, nil},
		{"zero source", Edge{Source: 0, Target: 2, Weight: 1}, ErrInvalidNodeID},
		{"negative target", Edge{Source: 1, Target: -2, Weight: 1}, ErrInvalidNodeID},
		{"self edge", Edge{Source: 4, Target: 4, Weight: 1}, ErrSelfEdge},
		{"reversed", Edge{Source: 5, Target: 3, Weight: 1}, ErrNotCanonical},
		{"zero weight", Edge{Source: 1, Target: 2, Weight: 0}, ErrNonPositiveWeight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.edge.Validate()
			if err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewPair_Canonical(t *testing.T) {
	if got := NewPair(9, 2); got != (Pair{Source: 2, Target: 9}) {
		t.Errorf("NewPair(9, 2) = %+v", got)
	}
	if NewPair(2, 9) != NewPair(9, 2) {
		t.Error("NewPair should not depend on argument order")
	}
}

func TestCounter_AddRecord_PairCount(t *testing.T) {
	tests := []struct {
		name string
		ids  []int
		want int
	}{
		{"empty", nil, 0},
		{"single", []int{3}, 0},
		{"two", []int{3, 5}, 1},
		{"four", []int{4, 1, 3, 2}, 6},
		{"duplicates collapse", []int{3, 5, 3, 5, 5}, 1},
		{"absent ignored", []int{0, 3, 0, 5}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCounter()
			if got := c.AddRecord(tt.ids); got != tt.want {
				t.Errorf("AddRecord(%v) = %d, want %d", tt.ids, got, tt.want)
			}
			for _, e := range c.Edges() {
				if e.Source >= e.Target {
					t.Errorf("edge %+v not canonical", e)
				}
				if e.Weight != 1 {
					t.Errorf("edge %+v weight = %d, want 1 after one record", e, e.Weight)
				}
			}
		})
	}
}

func TestCounter_WeightCountsRecords(t *testing.T) {
	c := NewCounter()
	c.AddRecord([]int{1, 2, 2, 2})
	c.AddRecord([]int{2, 1})
	c.AddRecord([]int{1, 3})

	weights := make(map[Pair]int)
	for _, e := range c.Edges() {
		weights[NewPair(e.Source, e.Target)] = e.Weight
	}
	want := map[Pair]int{
		{Source: 1, Target: 2}: 2,
		{Source: 1, Target: 3}: 1,
	}
	if len(weights) != len(want) || c.Len() != len(want) {
		t.Fatalf("edges = %v, want %v", weights, want)
	}
	for p, w := range want {
		if weights[p] != w {
			t.Errorf("weight of %v = %d, want %d", p, weights[p], w)
		}
	}
}

func TestExport_SortAndFilter(t *testing.T) {
	c := NewCounter()
	c.AddRecord([]int{1, 2, 3})
	c.AddRecord([]int{2, 3})
	c.AddRecord([]int{2, 3, 4})
	c.AddRecord([]int{1, 4})

	got := Export(c, DefaultMinWeight)
	want := []Edge{
		{Source: 2, Target: 3, Weight: 3},
		{Source: 1, Target: 2, Weight: 1},
		{Source: 1, Target: 3, Weight: 1},
		{Source: 1, Target: 4, Weight: 1},
		{Source: 2, Target: 4, Weight: 1},
		{Source: 3, Target: 4, Weight: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Export() =\n%v\nwant\n%v", got, want)
	}

	if got := Export(c, 2); len(got) != 1 || got[0] != want[0] {
		t.Errorf("Export(min 2) = %v, want only %v", got, want[0])
	}
	if got := Export(c, 0); len(got) != len(want) {
		t.Errorf("Export(min 0) returned %d edges, want %d", len(got), len(want))
	}
}

// Two records cite W (author 3); a third cites works by authors 3 and 5.
func TestExport_SingleCoCitation(t *testing.T) {
	c := NewCounter()
	c.AddRecord([]int{3})
	c.AddRecord([]int{3})
	c.AddRecord([]int{3, 5})

	got := Export(c, 1)
	if len(got) != 1 || got[0] != (Edge{Source: 3, Target: 5, Weight: 1}) {
		t.Errorf("Export() = %v, want [(3,5,1)]", got)
	}
	if got := Export(c, 2); len(got) != 0 {
		t.Errorf("Export(min 2) = %v, want empty", got)
	}

	inst := NewCounter()
	inst.AddRecord([]int{7})
	inst.AddRecord([]int{7})
	if got := Export(inst, 1); len(got) != 0 {
		t.Errorf("lone institution produced edges: %v", got)
	}
}

func TestCSV_RoundTrip(t *testing.T) {
	edges := []Edge{
		{Source: 2, Target: 3, Weight: 3},
		{Source: 1, Target: 2, Weight: 1},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, edges); err != nil {
		t.Fatalf("WriteCSV() error: %v", err)
	}
	if want := "Source,Target,Weight\n2,3,3\n1,2,1\n"; buf.String() != want {
		t.Errorf("WriteCSV() = %q, want %q", buf.String(), want)
	}

	got, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("ReadCSV() error: %v", err)
	}
	if !reflect.DeepEqual(got, edges) {
		t.Errorf("ReadCSV() = %v, want %v", got, edges)
	}
}

func TestReadCSV_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"reversed pair", "Source,Target,Weight\n5,3,1\n", ErrNotCanonical},
		{"self edge", "Source,Target,Weight\n3,3,1\n", ErrSelfEdge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ReadCSV() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, err := ReadCSV(strings.NewReader("Source,Target,Weight\n1,x,1\n")); err == nil {
		t.Error("expected error for non-numeric target")
	}
	if _, err := ReadCSV(strings.NewReader("A,B,C\n")); err == nil {
		t.Error("expected error for wrong header")
	}
}

func TestWriteFile_ReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "author_edges.csv")
	if err := WriteFile(path, nil); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ReadFile() = %v, want empty", got)
	}
}

func TestFindDuplicateEdges(t *testing.T) {
	edges := []Edge{
		{Source: 1, Target: 2, Weight: 1},
		{Source: 2, Target: 1, Weight: 4},
		{Source: 1, Target: 3, Weight: 1},
	}
	dups := FindDuplicateEdges(edges)
	if len(dups) != 1 || dups[Pair{Source: 1, Target: 2}] != 2 {
		t.Errorf("FindDuplicateEdges() = %v", dups)
	}
}

func TestReadCSV_RejectsDuplicatePairs(t *testing.T) {
	input := "Source,Target,Weight\n1,2,3\n1,3,1\n1,2,1\n"
	_, err := ReadCSV(strings.NewReader(input))
	if !errors.Is(err, ErrDuplicateEdge) {
		t.Fatalf("ReadCSV() error = %v, want ErrDuplicateEdge", err)
	}
	if !strings.Contains(err.Error(), "1-2 appears 2 times") {
		t.Errorf("ReadCSV() error = %v, want the repeated pair named", err)
	}
}
