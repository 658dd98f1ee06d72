package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// isolate points the global config and working directory at empty temp dirs
// and clears COCITE_* variables that tests set.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, k := range []string{"COCITE_DATA_DIR", "COCITE_WORKERS", "COCITE_REQUEST_DELAY", "COCITE_MAILTO"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func writeYAML(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.FocusField != DefaultFocusField {
		t.Errorf("FocusField = %q", cfg.FocusField)
	}
	if cfg.RequestDelay != 300*time.Millisecond {
		t.Errorf("RequestDelay = %v", cfg.RequestDelay)
	}
	if cfg.RequestTimeout != 15*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout)
	}
	if cfg.MinWeight != 1 || cfg.Workers != 1 {
		t.Errorf("MinWeight = %d, Workers = %d", cfg.MinWeight, cfg.Workers)
	}
	if cfg.CachePath != "" {
		t.Errorf("CachePath = %q, want empty (no persistence)", cfg.CachePath)
	}
}

func TestLoad_Layering(t *testing.T) {
	dir := isolate(t)

	writeYAML(t, GlobalConfigPath(), "mailto: me@example.org\nworkers: 2\ncache_path: /tmp/global.db\n")
	writeYAML(t, filepath.Join(dir, DefaultFile), "data_dir: records\nworkers: 3\nrequest_delay: 1s\n")
	t.Setenv("COCITE_WORKERS", "4")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"mailto from global", cfg.Mailto, "me@example.org"},
		{"cache_path from global", cfg.CachePath, "/tmp/global.db"},
		{"data_dir from project", cfg.DataDir, "records"},
		{"request_delay from project", cfg.RequestDelay, time.Second},
		{"workers from env", cfg.Workers, 4},
		{"untouched default", cfg.AuthorEdges, DefaultAuthorEdges},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestLoad_ExplicitPath(t *testing.T) {
	dir := isolate(t)

	path := filepath.Join(dir, "custom.yml")
	writeYAML(t, path, "min_weight: 2\nout_dir: out\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MinWeight != 2 {
		t.Errorf("MinWeight = %d, want 2", cfg.MinWeight)
	}
	if got := cfg.AuthorNodesPath(); got != filepath.Join("out", DefaultAuthorNodes) {
		t.Errorf("AuthorNodesPath() = %q", got)
	}

	if _, err := Load(filepath.Join(dir, "missing.yml")); err == nil {
		t.Error("Load() with missing explicit path should fail")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := isolate(t)
	writeYAML(t, filepath.Join(dir, DefaultFile), "workers: [1, 2\n")

	if _, err := Load(""); err == nil {
		t.Error("Load() should fail on malformed YAML")
	}
}

func TestLoad_InvalidEnv(t *testing.T) {
	isolate(t)
	t.Setenv("COCITE_REQUEST_DELAY", "soon")

	if _, err := Load(""); err == nil {
		t.Error("Load() should fail on an unparsable duration")
	}
}

func TestLoad_EnvRequiresPrefix(t *testing.T) {
	isolate(t)
	t.Setenv("WORKERS", "7")
	t.Setenv("USER_AGENT", "curl/8.0")
	t.Setenv("DATA_DIR", "/somewhere/else")
	t.Setenv("LOG_MODE", "prod")
	t.Setenv("COCITE_API_BASE", "http://localhost:9999/works")
	t.Setenv("COCITE_MIN_WEIGHT", "3")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Workers != DefaultWorkers || cfg.UserAgent != DefaultUserAgent || cfg.DataDir != "." || cfg.LogMode != DefaultLogMode {
		t.Errorf("unprefixed variables leaked into config: workers=%d user_agent=%q data_dir=%q log_mode=%q",
			cfg.Workers, cfg.UserAgent, cfg.DataDir, cfg.LogMode)
	}
	if cfg.APIBase != "http://localhost:9999/works" {
		t.Errorf("APIBase = %q, want COCITE_API_BASE value", cfg.APIBase)
	}
	if cfg.MinWeight != 3 {
		t.Errorf("MinWeight = %d, want 3", cfg.MinWeight)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"empty focus field", func(c *Config) { c.FocusField = " " }},
		{"empty api base", func(c *Config) { c.APIBase = "" }},
		{"negative delay", func(c *Config) { c.RequestDelay = -time.Second }},
		{"negative timeout", func(c *Config) { c.RequestTimeout = -time.Second }},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }},
		{"zero workers", func(c *Config) { c.Workers = 0 }},
		{"zero min weight", func(c *Config) { c.MinWeight = 0 }},
		{"empty output name", func(c *Config) { c.InstitutionEdges = "" }},
	}

	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestOutPath(t *testing.T) {
	cfg := Default()
	cfg.OutDir = "results"

	if got := cfg.OutPath("edges.csv"); got != filepath.Join("results", "edges.csv") {
		t.Errorf("OutPath(relative) = %q", got)
	}
	if got := cfg.OutPath("/abs/edges.csv"); got != "/abs/edges.csv" {
		t.Errorf("OutPath(absolute) = %q", got)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/abs/path", "/abs/path"},
		{"rel/path", "rel/path"},
		{"~/cache.db", filepath.Join(home, "cache.db")},
	}
	for _, tt := range tests {
		if got := ExpandPath(tt.in); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGlobalConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	if got, want := GlobalConfigPath(), "/custom/config/cocite/config.yml"; got != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", got, want)
	}
}
