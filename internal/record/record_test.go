package record

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.json", `{"id": "https://openalex.org/W20", "referenced_works": ["https://openalex.org/W2", "W1", 42, ""]}`)
	writeFile(t, dir, "a.json", `{"id": "https://openalex.org/W10", "referenced_works": ["https://openalex.org/W1"]}`)
	writeFile(t, dir, "c.json", `{"id": "W30", "referenced_works": null}`)
	writeFile(t, dir, "broken.json", `{"id": `)
	writeFile(t, dir, "nofield.json", `{"id": "W40"}`)
	writeFile(t, dir, "notlist.json", `{"id": "W50", "referenced_works": "W1"}`)
	writeFile(t, dir, "notes.txt", `ignored`)
	if err := os.Mkdir(filepath.Join(dir, "sub.json"), 0755); err != nil {
		t.Fatal(err)
	}

	records, skipped, err := LoadDir(dir, "")
	if err != nil {
		t.Fatalf("LoadDir() error: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want 3", len(records))
	}
	if records[0].ID != "https://openalex.org/W10" || records[1].ID != "https://openalex.org/W20" {
		t.Errorf("records not in filename order: %q, %q", records[0].ID, records[1].ID)
	}
	if !reflect.DeepEqual(records[1].References, []string{"W2", "W1"}) {
		t.Errorf("references = %v, want [W2 W1]", records[1].References)
	}
	if len(records[2].References) != 0 {
		t.Errorf("null field should give no references, got %v", records[2].References)
	}

	reasons := map[string]string{}
	for _, s := range skipped {
		reasons[filepath.Base(s.Path)] = s.Reason
	}
	want := map[string]string{
		"broken.json":  SkipInvalidJSON,
		"nofield.json": SkipMissingField,
		"notlist.json": SkipInvalidField,
	}
	if !reflect.DeepEqual(reasons, want) {
		t.Errorf("skipped = %v, want %v", reasons, want)
	}
}

func TestLoadDir_CustomField(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", `{"related_works": ["W9"]}`)

	records, skipped, err := LoadDir(dir, "related_works")
	if err != nil {
		t.Fatalf("LoadDir() error: %v", err)
	}
	if len(skipped) != 0 || len(records) != 1 {
		t.Fatalf("records=%d skipped=%d", len(records), len(skipped))
	}
	if records[0].ID != "a" {
		t.Errorf("ID = %q, want file stem", records[0].ID)
	}
}

func TestLoadDir_NonStringID(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "num.json", `{"id": 123, "referenced_works": ["W1"]}`)
	writeFile(t, dir, "obj.json", `{"id": {"openalex": "W2"}, "referenced_works": ["W1"]}`)
	writeFile(t, dir, "str.json", `{"id": "W3", "referenced_works": ["W1"]}`)

	records, skipped, err := LoadDir(dir, "")
	if err != nil {
		t.Fatalf("LoadDir() error: %v", err)
	}
	if len(skipped) != 0 {
		t.Fatalf("skipped = %v, want none", skipped)
	}
	var ids []string
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	if want := []string{"num", "obj", "W3"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("ids = %v, want %v", ids, want)
	}
}

func TestLoadDir_SetupErrors(t *testing.T) {
	if _, _, err := LoadDir(filepath.Join(t.TempDir(), "missing"), ""); !errors.Is(err, ErrDataDir) {
		t.Errorf("missing dir error = %v, want ErrDataDir", err)
	}

	empty := t.TempDir()
	writeFile(t, empty, "readme.md", "#")
	if _, _, err := LoadDir(empty, ""); !errors.Is(err, ErrNoRecords) {
		t.Errorf("empty dir error = %v, want ErrNoRecords", err)
	}

	file := filepath.Join(t.TempDir(), "x.json")
	if err := os.WriteFile(file, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := LoadDir(file, ""); !errors.Is(err, ErrDataDir) {
		t.Errorf("file as dir error = %v, want ErrDataDir", err)
	}
}

func TestUniqueWorkIDs(t *testing.T) {
	records := []Record{
		{References: []string{"W3", "W1", "W3"}},
		{References: []string{"W2", "W1"}},
		{},
	}
	got := UniqueWorkIDs(records)
	if want := []string{"W1", "W2", "W3"}; !reflect.DeepEqual(got, want) {
		t.Errorf("UniqueWorkIDs() = %v, want %v", got, want)
	}
}
