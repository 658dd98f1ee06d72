// Package record loads the local corpus of bibliographic metadata records.
package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/matsen/cocite/internal/identity"
)

// DefaultField is the record field listing referenced works.
const DefaultField = "referenced_works"

// Setup errors. Both abort a run before any record is processed.
var (
	ErrDataDir   = errors.New("data directory not found")
	ErrNoRecords = errors.New("no JSON records in data directory")
)

// Skip reasons.
const (
	SkipUnreadable   = "unreadable"
	SkipInvalidJSON  = "invalid_json"
	SkipMissingField = "missing_field"
	SkipInvalidField = "invalid_field"
)

// Record is one metadata document and the works it references.
type Record struct {
	ID         string   `json:"id"`
	Path       string   `json:"path"`
	References []string `json:"references"` // bare work IDs, in document order
}

// Skipped describes a file that was not loaded.
type Skipped struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
	Err    string `json:"error,omitempty"`
}

// Files returns the *.json files in dir in sorted filename order.
func Files(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDataDir, dir)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrDataDir, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading data directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)

	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoRecords, dir)
	}
	return files, nil
}

// LoadDir reads every record in dir in sorted filename order.
// Files that cannot be read or parsed, or lack field, are returned in skipped
// and do not stop the load.
func LoadDir(dir, field string) (records []Record, skipped []Skipped, err error) {
	if field == "" {
		field = DefaultField
	}

	files, err := Files(dir)
	if err != nil {
		return nil, nil, err
	}

	for _, path := range files {
		rec, skip := LoadFile(path, field)
		if skip != nil {
			skipped = append(skipped, *skip)
			continue
		}
		records = append(records, rec)
	}
	return records, skipped, nil
}

// LoadFile parses one record. A non-nil Skipped means the record is unusable.
func LoadFile(path, field string) (Record, *Skipped) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, &Skipped{Path: path, Reason: SkipUnreadable, Err: err.Error()}
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return Record{}, &Skipped{Path: path, Reason: SkipInvalidJSON, Err: err.Error()}
	}

	raw, ok := doc[field]
	if !ok {
		return Record{}, &Skipped{Path: path, Reason: SkipMissingField, Err: "no " + field}
	}

	refs, err := parseReferences(raw)
	if err != nil {
		return Record{}, &Skipped{Path: path, Reason: SkipInvalidField, Err: err.Error()}
	}

	rec := Record{Path: path, References: refs}
	if rawID, ok := doc["id"]; ok {
		var id any
		if err := json.Unmarshal(rawID, &id); err == nil {
			// Non-string ids fall back to the file name below.
			if s, ok := id.(string); ok {
				rec.ID = s
			}
		}
	}
	if rec.ID == "" {
		rec.ID = strings.TrimSuffix(filepath.Base(path), ".json")
	}
	return rec, nil
}

// parseReferences decodes a list of URL-or-bare work identifiers.
// null decodes as an empty list; non-string and empty entries are dropped.
func parseReferences(raw json.RawMessage) ([]string, error) {
	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("field is not a list: %w", err)
	}

	refs := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		if id := identity.WorkID(s); id != "" {
			refs = append(refs, id)
		}
	}
	return refs, nil
}

// UniqueWorkIDs returns the sorted set of work IDs referenced by any record.
func UniqueWorkIDs(records []Record) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, r := range records {
		for _, id := range r.References {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	sort.Strings(ids)
	return ids
}
