// Package integration provides integration tests for cocite commands.
package integration

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

var (
	cociteBinary     string
	cociteBinaryOnce sync.Once
	cociteBinaryErr  error
)

// getCociteBinary builds the cocite binary once and returns its path.
func getCociteBinary(t *testing.T) string {
	t.Helper()
	cociteBinaryOnce.Do(func() {
		// Get module root directory
		_, filename, _, ok := runtime.Caller(0)
		if !ok {
			cociteBinaryErr = os.ErrInvalid
			return
		}
		moduleRoot := filepath.Dir(filepath.Dir(filepath.Dir(filename)))

		tmpDir, err := os.MkdirTemp("", "cocite-test-*")
		if err != nil {
			cociteBinaryErr = err
			return
		}
		cociteBinary = filepath.Join(tmpDir, "cocite")

		cmd := exec.Command("go", "build", "-o", cociteBinary, "./cmd/cocite")
		cmd.Dir = moduleRoot
		if output, err := cmd.CombinedOutput(); err != nil {
			cociteBinaryErr = &buildError{output: string(output), err: err}
			return
		}
	})
	if cociteBinaryErr != nil {
		t.Fatalf("failed to build cocite: %v", cociteBinaryErr)
	}
	return cociteBinary
}

type buildError struct {
	output string
	err    error
}

func (e *buildError) Error() string {
	return e.err.Error() + ": " + e.output
}

// fakeOpenAlex serves canned works and counts requests per work.
type fakeOpenAlex struct {
	*httptest.Server
	works map[string]string
	hits  sync.Map // work id -> *atomic.Int64
	total atomic.Int64
}

func (f *fakeOpenAlex) handle(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/works/")
	f.total.Add(1)
	n, _ := f.hits.LoadOrStore(id, new(atomic.Int64))
	n.(*atomic.Int64).Add(1)

	body, ok := f.works[id]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

// Hits returns how often a work was requested.
func (f *fakeOpenAlex) Hits(id string) int64 {
	n, ok := f.hits.Load(id)
	if !ok {
		return 0
	}
	return n.(*atomic.Int64).Load()
}

// newFakeOpenAlex serves three resolvable works; anything else is 404.
//
//	WA  Alice (ORCID), MIT
//	WB  Bob, no institution
//	WC  Carol, ETH Zurich
func newFakeOpenAlex(t *testing.T) *fakeOpenAlex {
	t.Helper()
	f := &fakeOpenAlex{works: map[string]string{
		"WA": `{"id":"https://openalex.org/WA","authorships":[
			{"author_position":"first","author":{"id":"https://openalex.org/A1","display_name":"Alice Smith","orcid":"https://orcid.org/0000-0001-0000-0001"},
			 "institutions":[{"id":"https://openalex.org/I1","display_name":"MIT","country_code":"US","type":"education"}]}]}`,
		"WB": `{"id":"https://openalex.org/WB","authorships":[
			{"author_position":"first","author":{"id":"https://openalex.org/A2","display_name":"Bob Jones","orcid":null},"institutions":[]}]}`,
		"WC": `{"id":"https://openalex.org/WC","authorships":[
			{"author_position":"first","author":{"id":"https://openalex.org/A3","display_name":"Carol White"},
			 "institutions":[{"id":"https://openalex.org/I2","display_name":"ETH Zurich","country_code":"CH","type":"education"}]}]}`,
	}}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Close)
	return f
}

// setupWorkspace writes the record corpus and returns the working directory.
//
//	W100 cites WA, WB
//	W200 cites WA, WB, WC and the unresolvable W999
//	W300 cites WB twice
//	broken.json is not JSON
func setupWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "records")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		t.Fatal(err)
	}

	files := map[string]string{
		"r1.json":     `{"id":"W100","referenced_works":["https://openalex.org/WA","https://openalex.org/WB"]}`,
		"r2.json":     `{"id":"W200","referenced_works":["https://openalex.org/WA","WB","https://openalex.org/WC","https://openalex.org/W999"]}`,
		"r3.json":     `{"id":"W300","referenced_works":["https://openalex.org/WB","https://openalex.org/WB"]}`,
		"broken.json": `{"id":`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dataDir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	configContent := "data_dir: records\nout_dir: out\n"
	if err := os.WriteFile(filepath.Join(dir, "cocite.yml"), []byte(configContent), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

// runCocite executes cocite in dir against the fake API. Stdout is returned;
// logs on stderr are only reported on failure.
func runCocite(t *testing.T, dir string, api *fakeOpenAlex, args ...string) (string, int) {
	t.Helper()
	cmd := exec.Command(getCociteBinary(t), args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"XDG_CONFIG_HOME="+filepath.Join(dir, "config"),
		"COCITE_API_BASE="+api.URL+"/works",
		"COCITE_REQUEST_DELAY=0s",
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	code := 0
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	} else if err != nil {
		t.Fatalf("running cocite: %v", err)
	}
	if code != 0 {
		t.Logf("cocite %v exited %d\nstderr: %s", args, code, stderr.String())
	}
	return stdout.String(), code
}

// decode unmarshals command output, failing the test on error.
func decode(t *testing.T, output string, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(output), v); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, output)
	}
}

// readLines reads a table and returns its lines without the trailing newline.
func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}
