package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// ReadWorksJSONL reads cached works from JSONL, one work per line.
func ReadWorksJSONL(r io.Reader) ([]CachedWork, error) {
	var works []CachedWork
	scanner := bufio.NewScanner(r)

	// Increase buffer size for long lines
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue // Skip empty lines
		}

		var w CachedWork
		if err := json.Unmarshal(line, &w); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		if w.WorkID == "" {
			return nil, fmt.Errorf("line %d: missing work_id", lineNum)
		}
		works = append(works, w)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading works: %w", err)
	}
	return works, nil
}

// WriteWorksJSONL writes cached works as JSONL.
func WriteWorksJSONL(w io.Writer, works []CachedWork) error {
	bw := bufio.NewWriter(w)
	for i, work := range works {
		data, err := json.Marshal(work)
		if err != nil {
			return fmt.Errorf("encoding work %d: %w", i, err)
		}
		if _, err := bw.Write(data); err != nil {
			return fmt.Errorf("writing work %d: %w", i, err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing newline: %w", err)
		}
	}
	return bw.Flush()
}

// Export writes every cached work to a JSONL file, replacing existing content.
// Returns the number of works written.
func (d *DB) Export(path string) (int, error) {
	works, err := d.AllWorks()
	if err != nil {
		return 0, err
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("creating export file: %w", err)
	}
	if err := WriteWorksJSONL(f, works); err != nil {
		f.Close()
		return 0, err
	}
	return len(works), f.Close()
}

// Import stores every work of a JSONL file, replacing cached entries with the
// same work ID. Returns the number of works imported.
func (d *DB) Import(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening import file: %w", err)
	}
	defer f.Close()

	works, err := ReadWorksJSONL(f)
	if err != nil {
		return 0, err
	}
	if err := d.PutWorks(works); err != nil {
		return 0, err
	}
	return len(works), nil
}
