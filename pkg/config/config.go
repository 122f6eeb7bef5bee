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

// Pattern kind names accepted in Matcher.Patterns.
const (
	PatternCall     = "call"
	PatternBareCall = "bare_call"
	PatternSymbol   = "symbol"
	PatternBareWord = "bare_word"
)

// Config holds all configuration options for deadmethods.
type Config struct {
	// Where definitions and usages are looked up
	Scan ScanConfig `koanf:"scan" toml:"scan" yaml:"scan"`

	// Usage detection heuristics
	Matcher MatcherConfig `koanf:"matcher" toml:"matcher" yaml:"matcher"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude" yaml:"exclude"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output" yaml:"output"`

	// Worker and cache sizing
	Performance PerformanceConfig `koanf:"performance" toml:"performance" yaml:"performance"`
}

// ScanConfig describes the definition directories and the usage corpus.
type ScanConfig struct {
	Root              string   `koanf:"root" toml:"root" yaml:"root"`
	DefinitionDirs    []string `koanf:"definition_dirs" toml:"definition_dirs" yaml:"definition_dirs"`
	PrimaryExtension  string   `koanf:"primary_extension" toml:"primary_extension" yaml:"primary_extension"`
	SourceDir         string   `koanf:"source_dir" toml:"source_dir" yaml:"source_dir"`
	SourceExtensions  []string `koanf:"source_extensions" toml:"source_extensions" yaml:"source_extensions"`
	LibraryDir        string   `koanf:"library_dir" toml:"library_dir" yaml:"library_dir"`
	LibraryExtensions []string `koanf:"library_extensions" toml:"library_extensions" yaml:"library_extensions"`
}

// MatcherConfig controls which heuristics decide that a method is used.
type MatcherConfig struct {
	StripStrings      bool     `koanf:"strip_strings" toml:"strip_strings" yaml:"strip_strings"`
	DedupeDefinitions bool     `koanf:"dedupe_definitions" toml:"dedupe_definitions" yaml:"dedupe_definitions"`
	Patterns          []string `koanf:"patterns" toml:"patterns" yaml:"patterns"`
	CallbackHooks     []string `koanf:"callback_hooks" toml:"callback_hooks" yaml:"callback_hooks"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns  []string `koanf:"patterns" toml:"patterns" yaml:"patterns"`
	Dirs      []string `koanf:"dirs" toml:"dirs" yaml:"dirs"`
	Gitignore bool     `koanf:"gitignore" toml:"gitignore" yaml:"gitignore"`
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format   string `koanf:"format" toml:"format" yaml:"format"` // text, table, markdown, json, toon
	Color    bool   `koanf:"color" toml:"color" yaml:"color"`
	Verbose  bool   `koanf:"verbose" toml:"verbose" yaml:"verbose"`
	Progress bool   `koanf:"progress" toml:"progress" yaml:"progress"`
}

// PerformanceConfig sizes the worker pool and the compiled pattern cache.
type PerformanceConfig struct {
	Workers          int `koanf:"workers" toml:"workers" yaml:"workers"` // 0 = 2x NumCPU
	PatternCacheSize int `koanf:"pattern_cache_size" toml:"pattern_cache_size" yaml:"pattern_cache_size"`
}

// DefaultCallbackHooks is the lifecycle-hook vocabulary recognised as declarative usage.
func DefaultCallbackHooks() []string {
	return []string{
		"before_action", "after_action", "around_action",
		"skip_before_action", "skip_after_action", "skip_around_action",
		"prepend_before_action", "append_before_action",
		"before_filter", "after_filter", "around_filter",
		"before_validation", "after_validation", "validate", "validates_with",
		"before_save", "after_save", "around_save",
		"before_create", "after_create", "around_create",
		"before_update", "after_update", "around_update",
		"before_destroy", "after_destroy", "around_destroy",
		"after_commit", "after_rollback",
		"after_create_commit", "after_update_commit", "after_destroy_commit", "after_save_commit",
		"after_initialize", "after_find", "after_touch",
		"helper_method",
	}
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			Root:             ".",
			DefinitionDirs:   []string{"app/models", "app/controllers", "app/helpers"},
			PrimaryExtension: ".rb",
			SourceDir:        "app",
			SourceExtensions: []string{
				".rb", ".html", ".erb", ".haml", ".slim",
				".js", ".jsx", ".ts", ".tsx",
			},
			LibraryDir:        "lib",
			LibraryExtensions: []string{".rb"},
		},
		Matcher: MatcherConfig{
			StripStrings:      true,
			DedupeDefinitions: false,
			Patterns:          []string{PatternCall, PatternBareCall, PatternSymbol, PatternBareWord},
			CallbackHooks:     DefaultCallbackHooks(),
		},
		Exclude: ExcludeConfig{
			Patterns:  []string{},
			Dirs:      []string{},
			Gitignore: false,
		},
		Output: OutputConfig{
			Format:   "text",
			Color:    true,
			Verbose:  false,
			Progress: true,
		},
		Performance: PerformanceConfig{
			Workers:          0,
			PatternCacheSize: 1024,
		},
	}
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	// Determine parser based on extension
	var parser koanf.Parser
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".toml":
		parser = toml.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// LoadResult carries a loaded config and the file it came from.
// Source is empty when defaults were used.
type LoadResult struct {
	Config *Config
	Source string
}

// configNames are the file names searched by Find, in priority order.
var configNames = []string{
	"deadmethods.toml",
	"deadmethods.yaml",
	"deadmethods.yml",
	"deadmethods.json",
	".deadmethods.toml",
	".deadmethods.yaml",
	".deadmethods.yml",
	".deadmethods.json",
}

// Find returns the first config file found in the standard locations, or "".
func Find() string {
	searchDirs := []string{".", ".deadmethods"}

	for _, dir := range searchDirs {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// Resolve loads the given path, or the first config found in the standard
// locations when path is empty. Defaults are returned when nothing is found.
func Resolve(path string) (*LoadResult, error) {
	if path == "" {
		path = Find()
	}
	if path == "" {
		return &LoadResult{Config: DefaultConfig()}, nil
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &LoadResult{Config: cfg, Source: path}, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if len(c.Scan.DefinitionDirs) == 0 {
		return fmt.Errorf("scan.definition_dirs must not be empty")
	}
	if !strings.HasPrefix(c.Scan.PrimaryExtension, ".") {
		return fmt.Errorf("scan.primary_extension must start with a dot (got %q)", c.Scan.PrimaryExtension)
	}
	for _, ext := range append(append([]string{}, c.Scan.SourceExtensions...), c.Scan.LibraryExtensions...) {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("extension %q must start with a dot", ext)
		}
	}
	for _, p := range c.Matcher.Patterns {
		switch p {
		case PatternCall, PatternBareCall, PatternSymbol, PatternBareWord:
		default:
			return fmt.Errorf("unknown matcher pattern %q", p)
		}
	}
	if c.Performance.Workers < 0 {
		return fmt.Errorf("performance.workers must be >= 0 (got %d)", c.Performance.Workers)
	}
	if c.Performance.PatternCacheSize < 0 {
		return fmt.Errorf("performance.pattern_cache_size must be >= 0 (got %d)", c.Performance.PatternCacheSize)
	}
	return nil
}

// ShouldExclude checks if a path should be excluded from analysis.
func (c *Config) ShouldExclude(path string) bool {
	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(path, string(filepath.Separator)+dir+string(filepath.Separator)) ||
			strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}

	base := filepath.Base(path)
	for _, pattern := range c.Exclude.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}

	return false
}
