package node

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Column headers of the node tables.
var (
	AuthorColumns      = []string{"ID", "Author", "ORCID", "OpenAlexAuthorID", "NormName"}
	InstitutionColumns = []string{"ID", "Institution", "OpenAlexInstitutionID", "Country", "Type", "NormName"}
)

// ErrMissingColumn is returned when a node table lacks a required column.
var ErrMissingColumn = errors.New("missing column")

// WriteAuthors writes the author table as CSV with a header row.
func WriteAuthors(w io.Writer, authors []Author) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(AuthorColumns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, a := range authors {
		row := []string{strconv.Itoa(a.ID), a.Name, a.ORCID, a.OpenAlexAuthorID, a.NormName}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing author %d: %w", a.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteInstitutions writes the institution table as CSV with a header row.
func WriteInstitutions(w io.Writer, institutions []Institution) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(InstitutionColumns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, inst := range institutions {
		row := []string{strconv.Itoa(inst.ID), inst.Name, inst.OpenAlexInstitutionID, inst.Country, inst.Type, inst.NormName}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing institution %d: %w", inst.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteAuthorsFile writes the author table to path, replacing existing content.
func WriteAuthorsFile(path string, authors []Author) error {
	return writeFile(path, func(w io.Writer) error { return WriteAuthors(w, authors) })
}

// WriteInstitutionsFile writes the institution table to path, replacing existing content.
func WriteInstitutionsFile(path string, institutions []Institution) error {
	return writeFile(path, func(w io.Writer) error { return WriteInstitutions(w, institutions) })
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// ReadAuthors parses an author table. Columns are matched by header name.
func ReadAuthors(r io.Reader) ([]Author, error) {
	rows, err := readTable(r, "ID")
	if err != nil {
		return nil, err
	}

	authors := make([]Author, 0, len(rows.records))
	for i, rec := range rows.records {
		id, err := rows.id(rec, i)
		if err != nil {
			return nil, err
		}
		authors = append(authors, Author{
			ID:               id,
			Name:             rows.get(rec, "Author"),
			ORCID:            rows.get(rec, "ORCID"),
			OpenAlexAuthorID: rows.get(rec, "OpenAlexAuthorID"),
			NormName:         rows.get(rec, "NormName"),
		})
	}
	return authors, nil
}

// ReadInstitutions parses an institution table. Columns are matched by header name.
func ReadInstitutions(r io.Reader) ([]Institution, error) {
	rows, err := readTable(r, "ID")
	if err != nil {
		return nil, err
	}

	institutions := make([]Institution, 0, len(rows.records))
	for i, rec := range rows.records {
		id, err := rows.id(rec, i)
		if err != nil {
			return nil, err
		}
		institutions = append(institutions, Institution{
			ID:                    id,
			Name:                  rows.get(rec, "Institution"),
			OpenAlexInstitutionID: rows.get(rec, "OpenAlexInstitutionID"),
			Country:               rows.get(rec, "Country"),
			Type:                  rows.get(rec, "Type"),
			NormName:              rows.get(rec, "NormName"),
		})
	}
	return institutions, nil
}

// ReadAuthorsFile reads an author table from disk.
func ReadAuthorsFile(path string) ([]Author, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening author table: %w", err)
	}
	defer f.Close()

	authors, err := ReadAuthors(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return authors, nil
}

// ReadInstitutionsFile reads an institution table from disk.
func ReadInstitutionsFile(path string) ([]Institution, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening institution table: %w", err)
	}
	defer f.Close()

	institutions, err := ReadInstitutions(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return institutions, nil
}

// LoadRegistry reads both node tables and indexes them.
func LoadRegistry(authorPath, institutionPath string) (*Registry, error) {
	authors, err := ReadAuthorsFile(authorPath)
	if err != nil {
		return nil, err
	}
	institutions, err := ReadInstitutionsFile(institutionPath)
	if err != nil {
		return nil, err
	}
	return NewRegistry(authors, institutions)
}

// table is a parsed CSV with a header index.
type table struct {
	cols    map[string]int
	records [][]string
}

func readTable(r io.Reader, required ...string) (*table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty table", ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	t := &table{cols: make(map[string]int, len(header))}
	for i, h := range header {
		t.cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, col := range required {
		if _, ok := t.cols[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	t.records, err = cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}
	return t, nil
}

// get returns the trimmed value of a column, or "" if absent.
func (t *table) get(rec []string, col string) string {
	i, ok := t.cols[col]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func (t *table) id(rec []string, row int) (int, error) {
	raw := t.get(rec, "ID")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("row %d: %w: %q", row+2, ErrInvalidID, raw)
	}
	return id, nil
}
