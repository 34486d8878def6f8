package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration for an analysis run. Everything is supplied
// explicitly by the caller; no stage reads ambient global state.
type Config struct {
	// Languages is the set of source-language tags to process.
	Languages []string `koanf:"languages"`

	// Workers bounds extraction and resolution concurrency. 0 means
	// 2x NumCPU.
	Workers int `koanf:"workers"`

	Exclude    ExcludeConfig   `koanf:"exclude"`
	Calls      CallConfig      `koanf:"calls"`
	DeadCode   DeadCodeConfig  `koanf:"deadcode"`
	Duplicates DuplicateConfig `koanf:"duplicates"`
}

// ExcludeConfig defines file exclusion for the scanner.
type ExcludeConfig struct {
	Patterns  []string `koanf:"patterns"`
	Dirs      []string `koanf:"dirs"`
	Gitignore bool     `koanf:"gitignore"`
}

// AmbiguousAll creates one call edge per tied candidate; AmbiguousFirst
// picks the first candidate in (file path, start line) order instead.
const (
	AmbiguousAll   = "all"
	AmbiguousFirst = "first"
)

// CallConfig controls call resolution behavior.
type CallConfig struct {
	AmbiguousEdges string `koanf:"ambiguous_edges"`
}

// DeadCodeConfig controls entry-point designation for dead-code detection.
type DeadCodeConfig struct {
	// EntryPoints are language-conventional entry names never reported dead.
	EntryPoints []string `koanf:"entry_points"`

	// TestPatterns are glob patterns matching test-function names.
	TestPatterns []string `koanf:"test_patterns"`

	// ExportedIsEntry treats exported/public symbols as entry points.
	// On by default: an exported symbol may have callers the graph
	// cannot see, and a wrong "dead" report costs more than a missed one.
	ExportedIsEntry bool `koanf:"exported_is_entry"`
}

// DuplicateConfig controls duplicate function detection. The defaults are
// heuristic, not protocol constants.
type DuplicateConfig struct {
	SimilarityThreshold float64 `koanf:"similarity_threshold"`
	MinTokens           int     `koanf:"min_tokens"`
	NgramSize           int     `koanf:"ngram_size"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Languages: []string{
			"go", "python", "javascript", "typescript",
			"java", "c", "cpp", "rust", "ruby",
		},
		Workers: 0,
		Exclude: ExcludeConfig{
			Patterns: []string{"*.min.js"},
			Dirs: []string{
				".git", "node_modules", "__pycache__", "vendor",
				"dist", "build", "venv", ".venv", "target",
			},
			Gitignore: true,
		},
		Calls: CallConfig{
			AmbiguousEdges: AmbiguousAll,
		},
		DeadCode: DeadCodeConfig{
			EntryPoints: []string{
				"main", "__main__", "init", "__init__",
				"run", "start", "setup", "loop", "setUp", "tearDown",
			},
			TestPatterns:    []string{"test_*", "Test*", "*_test"},
			ExportedIsEntry: true,
		},
		Duplicates: DuplicateConfig{
			SimilarityThreshold: 0.8,
			MinTokens:           10,
			NgramSize:           3,
		},
	}
}

// Load reads a config file over the defaults. The parser is chosen by
// extension (TOML, YAML, or JSON).
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := Default()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault searches standard locations for a config file, falling back
// to the defaults when none exists or a candidate fails to parse.
func LoadOrDefault() *Config {
	names := []string{
		"auspex.toml", "auspex.yaml", "auspex.yml", "auspex.json",
		".auspex.toml", ".auspex.yaml", ".auspex.yml", ".auspex.json",
	}
	for _, name := range names {
		if _, err := os.Stat(name); err == nil {
			if cfg, err := Load(name); err == nil {
				return cfg
			}
		}
	}
	return Default()
}

// Validate rejects invalid configuration before analysis starts.
func (c *Config) Validate() error {
	if t := c.Duplicates.SimilarityThreshold; t < 0 || t > 1 {
		return fmt.Errorf("duplicates.similarity_threshold %v outside [0,1]", t)
	}
	if c.Duplicates.MinTokens < 0 {
		return fmt.Errorf("duplicates.min_tokens must be non-negative, got %d", c.Duplicates.MinTokens)
	}
	if c.Duplicates.NgramSize < 1 {
		return fmt.Errorf("duplicates.ngram_size must be positive, got %d", c.Duplicates.NgramSize)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Workers)
	}
	switch c.Calls.AmbiguousEdges {
	case AmbiguousAll, AmbiguousFirst:
	default:
		return fmt.Errorf("calls.ambiguous_edges must be %q or %q, got %q",
			AmbiguousAll, AmbiguousFirst, c.Calls.AmbiguousEdges)
	}
	if len(c.Languages) == 0 {
		return fmt.Errorf("languages must name at least one language tag")
	}
	return nil
}

// HasLanguage reports whether a language tag is in the configured set.
func (c *Config) HasLanguage(tag string) bool {
	for _, l := range c.Languages {
		if l == tag {
			return true
		}
	}
	return false
}
