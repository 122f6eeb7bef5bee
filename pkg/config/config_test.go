package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig() returned nil")
	}

	// Check scan defaults
	wantDirs := []string{"app/models", "app/controllers", "app/helpers"}
	if strings.Join(cfg.Scan.DefinitionDirs, ",") != strings.Join(wantDirs, ",") {
		t.Errorf("Scan.DefinitionDirs = %v, want %v", cfg.Scan.DefinitionDirs, wantDirs)
	}
	if cfg.Scan.PrimaryExtension != ".rb" {
		t.Errorf("Scan.PrimaryExtension = %q, want .rb", cfg.Scan.PrimaryExtension)
	}
	if cfg.Scan.SourceDir != "app" {
		t.Errorf("Scan.SourceDir = %q, want app", cfg.Scan.SourceDir)
	}
	if len(cfg.Scan.SourceExtensions) != 9 {
		t.Errorf("Scan.SourceExtensions has %d entries, want 9", len(cfg.Scan.SourceExtensions))
	}
	if cfg.Scan.LibraryDir != "lib" {
		t.Errorf("Scan.LibraryDir = %q, want lib", cfg.Scan.LibraryDir)
	}

	// Check matcher defaults
	if !cfg.Matcher.StripStrings {
		t.Error("Matcher.StripStrings should be true by default")
	}
	if cfg.Matcher.DedupeDefinitions {
		t.Error("Matcher.DedupeDefinitions should be false by default")
	}
	if len(cfg.Matcher.Patterns) != 4 {
		t.Errorf("Matcher.Patterns = %v, want all four kinds", cfg.Matcher.Patterns)
	}
	if len(cfg.Matcher.CallbackHooks) == 0 {
		t.Error("Matcher.CallbackHooks should have default values")
	}

	// Exclusion is opt-in
	if cfg.Exclude.Gitignore {
		t.Error("Exclude.Gitignore should be false by default")
	}
	if len(cfg.Exclude.Dirs) != 0 || len(cfg.Exclude.Patterns) != 0 {
		t.Errorf("Exclude = %+v, want no default exclusions", cfg.Exclude)
	}

	// Check output defaults
	if cfg.Output.Format != "text" {
		t.Errorf("Output.Format = %s, want text", cfg.Output.Format)
	}
	if !cfg.Output.Color {
		t.Error("Output.Color should be true by default")
	}
	if !cfg.Output.Progress {
		t.Error("Output.Progress should be true by default")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error: %v", err)
	}
}

func TestDefaultCallbackHooks(t *testing.T) {
	hooks := DefaultCallbackHooks()
	for _, want := range []string{"before_action", "before_save", "after_commit", "validate", "helper_method"} {
		found := false
		for _, h := range hooks {
			if h == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("DefaultCallbackHooks() missing %q", want)
		}
	}
}

func TestLoadTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "deadmethods.toml")

	content := `
[scan]
definition_dirs = ["app/models", "app/services"]

[matcher]
strip_strings = false
patterns = ["call", "symbol"]

[exclude]
dirs = ["vendor", "custom_exclude"]

[output]
format = "json"

[performance]
workers = 4
`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if len(cfg.Scan.DefinitionDirs) != 2 || cfg.Scan.DefinitionDirs[1] != "app/services" {
		t.Errorf("Scan.DefinitionDirs = %v", cfg.Scan.DefinitionDirs)
	}
	if cfg.Matcher.StripStrings {
		t.Error("Matcher.StripStrings should be false")
	}
	if len(cfg.Matcher.Patterns) != 2 {
		t.Errorf("Matcher.Patterns = %v, want [call symbol]", cfg.Matcher.Patterns)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("Output.Format = %s, want json", cfg.Output.Format)
	}
	if cfg.Performance.Workers != 4 {
		t.Errorf("Performance.Workers = %d, want 4", cfg.Performance.Workers)
	}

	// Unset keys keep their defaults
	if cfg.Scan.PrimaryExtension != ".rb" {
		t.Errorf("Scan.PrimaryExtension = %q, want default .rb", cfg.Scan.PrimaryExtension)
	}
}

func TestLoadYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "deadmethods.yaml")

	content := `
scan:
  library_dir: ""
matcher:
  dedupe_definitions: true
  callback_hooks:
    - before_action
output:
  format: table
`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Scan.LibraryDir != "" {
		t.Errorf("Scan.LibraryDir = %q, want empty", cfg.Scan.LibraryDir)
	}
	if !cfg.Matcher.DedupeDefinitions {
		t.Error("Matcher.DedupeDefinitions should be true")
	}
	if len(cfg.Matcher.CallbackHooks) != 1 || cfg.Matcher.CallbackHooks[0] != "before_action" {
		t.Errorf("Matcher.CallbackHooks = %v, want [before_action]", cfg.Matcher.CallbackHooks)
	}
	if cfg.Output.Format != "table" {
		t.Errorf("Output.Format = %s, want table", cfg.Output.Format)
	}
}

func TestLoadJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "deadmethods.json")

	content := `{
  "scan": {"root": "/srv/app"},
  "performance": {"pattern_cache_size": 64}
}`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Scan.Root != "/srv/app" {
		t.Errorf("Scan.Root = %q, want /srv/app", cfg.Scan.Root)
	}
	if cfg.Performance.PatternCacheSize != 64 {
		t.Errorf("Performance.PatternCacheSize = %d, want 64", cfg.Performance.PatternCacheSize)
	}
}

func TestLoadNonexistent(t *testing.T) {
	_, err := Load("/nonexistent/path/deadmethods.toml")
	if err == nil {
		t.Error("Load() should error for nonexistent file")
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", "[scan\ndefinition_dirs = "},
		{"unknown_pattern", "[matcher]\npatterns = [\"telepathy\"]\n"},
		{"negative_workers", "[performance]\nworkers = -2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "deadmethods.toml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
				t.Fatalf("Failed to write config file: %v", err)
			}
			if _, err := Load(configPath); err == nil {
				t.Error("Load() should error")
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"no_definition_dirs", func(c *Config) { c.Scan.DefinitionDirs = nil }, true},
		{"primary_extension_without_dot", func(c *Config) { c.Scan.PrimaryExtension = "rb" }, true},
		{"source_extension_without_dot", func(c *Config) { c.Scan.SourceExtensions = []string{"erb"} }, true},
		{"unknown_pattern", func(c *Config) { c.Matcher.Patterns = []string{"call", "guess"} }, true},
		{"no_patterns", func(c *Config) { c.Matcher.Patterns = nil }, false},
		{"negative_workers", func(c *Config) { c.Performance.Workers = -1 }, true},
		{"negative_cache", func(c *Config) { c.Performance.PatternCacheSize = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	t.Run("explicit_path", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "custom.toml")
		if err := os.WriteFile(configPath, []byte("[output]\nformat = \"markdown\"\n"), 0644); err != nil {
			t.Fatalf("Failed to write config file: %v", err)
		}

		result, err := Resolve(configPath)
		if err != nil {
			t.Fatalf("Resolve() error: %v", err)
		}
		if result.Source != configPath {
			t.Errorf("Source = %q, want %q", result.Source, configPath)
		}
		if result.Config.Output.Format != "markdown" {
			t.Errorf("Output.Format = %s, want markdown", result.Config.Output.Format)
		}
	})

	t.Run("missing_explicit_path", func(t *testing.T) {
		if _, err := Resolve(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("Resolve() should error for a missing explicit path")
		}
	})
}

func TestResolveNoConfig(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	defer os.Chdir(oldWd)

	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Failed to change directory: %v", err)
	}

	result, err := Resolve("")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if result.Source != "" {
		t.Errorf("Source = %q, want empty for defaults", result.Source)
	}
	if result.Config.Output.Format != "text" {
		t.Errorf("Resolve() should return defaults, got Format=%s", result.Config.Output.Format)
	}
}

func TestResolveFindsConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	defer os.Chdir(oldWd)

	// Create config file in the .deadmethods directory
	if err := os.MkdirAll(filepath.Join(tmpDir, ".deadmethods"), 0755); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}
	content := `
[performance]
workers = 7
`
	if err := os.WriteFile(filepath.Join(tmpDir, ".deadmethods", "deadmethods.toml"), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Failed to change directory: %v", err)
	}

	want := filepath.Join(".deadmethods", "deadmethods.toml")
	if got := Find(); got != want {
		t.Errorf("Find() = %q, want %q", got, want)
	}
	result, err := Resolve("")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if result.Source != want {
		t.Errorf("Source = %q, want %q", result.Source, want)
	}
	if result.Config.Performance.Workers != 7 {
		t.Errorf("Resolve() should load from file, got Workers=%d", result.Config.Performance.Workers)
	}
}

func TestShouldExcludeNothingByDefault(t *testing.T) {
	cfg := DefaultConfig()
	for _, path := range []string{
		filepath.Join("app", "models", "log", "entry.rb"),
		filepath.Join("app", "models", "log") + string(filepath.Separator),
		filepath.Join("app", "assets", "app.min.js"),
		filepath.Join("vendor", "bundle", "gem.rb"),
	} {
		if cfg.ShouldExclude(path) {
			t.Errorf("ShouldExclude(%q) = true, want false with default config", path)
		}
	}
}

func TestShouldExclude(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Exclude.Dirs = []string{"vendor", "node_modules", "tmp", "log"}
	cfg.Exclude.Patterns = []string{"*.min.js"}

	tests := []struct {
		path string
		want bool
	}{
		// Excluded directories
		{filepath.Join("vendor", "bundle", "gem.rb"), true},
		{filepath.Join("app", "javascript", "node_modules", "pkg", "index.js"), true},
		{filepath.Join("tmp", "cache", "x.rb"), true},
		{filepath.Join("app", "models", "log") + string(filepath.Separator), true},

		// Excluded patterns
		{filepath.Join("app", "assets", "app.min.js"), true},

		// Not excluded
		{filepath.Join("app", "models", "user.rb"), false},
		{filepath.Join("app", "models", "vendor_account.rb"), false}, // "vendor" in name, not directory
		{filepath.Join("lib", "tasks", "logger.rb"), false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := cfg.ShouldExclude(tt.path)
			if got != tt.want {
				t.Errorf("ShouldExclude(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestShouldExcludeCustomPatterns(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Exclude.Patterns = append(cfg.Exclude.Patterns, "*_generated.rb", "schema.rb")
	cfg.Exclude.Dirs = append(cfg.Exclude.Dirs, "custom_exclude")

	tests := []struct {
		path string
		want bool
	}{
		{"model_generated.rb", true},
		{filepath.Join("db", "schema.rb"), true},
		{filepath.Join("custom_exclude", "file.rb"), true},
		{"main.rb", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := cfg.ShouldExclude(tt.path)
			if got != tt.want {
				t.Errorf("ShouldExclude(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}
