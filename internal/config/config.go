// Package config loads run configuration from defaults, YAML files and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds every run option. Durations accept Go syntax ("300ms", "15s")
// in YAML and in the environment.
type Config struct {
	DataDir    string `yaml:"data_dir,omitempty" split_words:"true" json:"data_dir"`
	FocusField string `yaml:"focus_field,omitempty" split_words:"true" json:"focus_field"`

	APIBase        string        `yaml:"api_base,omitempty" split_words:"true" json:"api_base"`
	Mailto         string        `yaml:"mailto,omitempty" split_words:"true" json:"-"`
	UserAgent      string        `yaml:"user_agent,omitempty" split_words:"true" json:"user_agent"`
	RequestDelay   time.Duration `yaml:"request_delay,omitempty" split_words:"true" json:"request_delay"`
	RequestTimeout time.Duration `yaml:"request_timeout,omitempty" split_words:"true" json:"request_timeout"`
	Workers        int           `yaml:"workers,omitempty" split_words:"true" json:"workers"`
	CachePath      string        `yaml:"cache_path,omitempty" split_words:"true" json:"cache_path,omitempty"`

	MinWeight int `yaml:"min_weight,omitempty" split_words:"true" json:"min_weight"`

	OutDir           string `yaml:"out_dir,omitempty" split_words:"true" json:"out_dir"`
	AuthorNodes      string `yaml:"author_nodes,omitempty" split_words:"true" json:"author_nodes"`
	InstitutionNodes string `yaml:"institution_nodes,omitempty" split_words:"true" json:"institution_nodes"`
	AuthorEdges      string `yaml:"author_edges,omitempty" split_words:"true" json:"author_edges"`
	InstitutionEdges string `yaml:"institution_edges,omitempty" split_words:"true" json:"institution_edges"`

	MetricsFile string `yaml:"metrics_file,omitempty" split_words:"true" json:"metrics_file,omitempty"`
	LogMode     string `yaml:"log_mode,omitempty" split_words:"true" json:"log_mode"`
}

const (
	// DefaultFile is the project config file looked up in the working directory.
	DefaultFile = "cocite.yml"
	// EnvPrefix prefixes every environment override (COCITE_DATA_DIR, ...).
	EnvPrefix = "cocite"
)

// Default values.
const (
	DefaultFocusField       = "referenced_works"
	DefaultAPIBase          = "https://api.openalex.org/works"
	DefaultUserAgent        = "cocite/1.0"
	DefaultRequestDelay     = 300 * time.Millisecond
	DefaultRequestTimeout   = 15 * time.Second
	DefaultMinWeight        = 1
	DefaultWorkers          = 1
	DefaultAuthorNodes      = "author_nodes.csv"
	DefaultInstitutionNodes = "institution_nodes.csv"
	DefaultAuthorEdges      = "author_edges.csv"
	DefaultInstitutionEdges = "institution_edges.csv"
	DefaultLogMode          = "dev"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid configuration")

// Default returns a Config with every default applied.
func Default() *Config {
	return &Config{
		DataDir:          ".",
		FocusField:       DefaultFocusField,
		APIBase:          DefaultAPIBase,
		UserAgent:        DefaultUserAgent,
		RequestDelay:     DefaultRequestDelay,
		RequestTimeout:   DefaultRequestTimeout,
		Workers:          DefaultWorkers,
		MinWeight:        DefaultMinWeight,
		OutDir:           ".",
		AuthorNodes:      DefaultAuthorNodes,
		InstitutionNodes: DefaultInstitutionNodes,
		AuthorEdges:      DefaultAuthorEdges,
		InstitutionEdges: DefaultInstitutionEdges,
		LogMode:          DefaultLogMode,
	}
}

// Load layers defaults, the global config, the project file and the
// environment, in that order, then validates the result.
//
// An empty path means DefaultFile if it exists. An explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.mergeFile(GlobalConfigPath(), false); err != nil {
		return nil, err
	}

	if path == "" {
		if err := cfg.mergeFile(DefaultFile, false); err != nil {
			return nil, err
		}
	} else if err := cfg.mergeFile(path, true); err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	cfg.expandPaths()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFile overlays the YAML file at path. Keys absent from the file keep
// their current value.
func (c *Config) mergeFile(path string, required bool) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return nil
		}
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from COCITE_* environment variables.
func (c *Config) ApplyEnv() error {
	if err := envconfig.Process(EnvPrefix, c); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}
	return nil
}

func (c *Config) expandPaths() {
	c.DataDir = ExpandPath(c.DataDir)
	c.OutDir = ExpandPath(c.OutDir)
	c.CachePath = ExpandPath(c.CachePath)
	c.MetricsFile = ExpandPath(c.MetricsFile)
}

// Validate rejects values no run can use.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.FocusField) == "":
		return fmt.Errorf("%w: focus_field is empty", ErrInvalid)
	case c.APIBase == "":
		return fmt.Errorf("%w: api_base is empty", ErrInvalid)
	case c.RequestDelay < 0:
		return fmt.Errorf("%w: request_delay %s is negative", ErrInvalid, c.RequestDelay)
	case c.RequestTimeout <= 0:
		return fmt.Errorf("%w: request_timeout must be positive, got %s", ErrInvalid, c.RequestTimeout)
	case c.Workers < 1:
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalid, c.Workers)
	case c.MinWeight < 1:
		return fmt.Errorf("%w: min_weight must be at least 1, got %d", ErrInvalid, c.MinWeight)
	}
	for name, file := range map[string]string{
		"author_nodes":      c.AuthorNodes,
		"institution_nodes": c.InstitutionNodes,
		"author_edges":      c.AuthorEdges,
		"institution_edges": c.InstitutionEdges,
	} {
		if file == "" {
			return fmt.Errorf("%w: %s is empty", ErrInvalid, name)
		}
	}
	return nil
}

// OutPath resolves an output file name against OutDir. Absolute names are
// returned unchanged.
func (c *Config) OutPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.OutDir, name)
}

// AuthorNodesPath returns the author node table path.
func (c *Config) AuthorNodesPath() string { return c.OutPath(c.AuthorNodes) }

// InstitutionNodesPath returns the institution node table path.
func (c *Config) InstitutionNodesPath() string { return c.OutPath(c.InstitutionNodes) }

// AuthorEdgesPath returns the author edge table path.
func (c *Config) AuthorEdgesPath() string { return c.OutPath(c.AuthorEdges) }

// InstitutionEdgesPath returns the institution edge table path.
func (c *Config) InstitutionEdgesPath() string { return c.OutPath(c.InstitutionEdges) }

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
