package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ziadkadry99/ziprun/internal/archive"
	"github.com/ziadkadry99/ziprun/internal/settings"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.DataDir != ".ziprun" {
		t.Errorf("expected default data_dir %q, got %q", ".ziprun", cfg.DataDir)
	}
	if cfg.Port != 5173 {
		t.Errorf("expected default port 5173, got %d", cfg.Port)
	}
	if cfg.Runtime.BaseURL != settings.DefaultBaseURL {
		t.Errorf("expected default baseurl %q, got %q", settings.DefaultBaseURL, cfg.Runtime.BaseURL)
	}
	if len(cfg.Archive.Exclude) != len(archive.DefaultExcludes) {
		t.Errorf("expected default excludes %v, got %v", archive.DefaultExcludes, cfg.Archive.Exclude)
	}
	if cfg.DatabasePath() != filepath.Join(".ziprun", "ziprun.db") {
		t.Errorf("DatabasePath() = %q", cfg.DatabasePath())
	}
}

func TestDefaultExcludesNotShared(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Archive.Exclude[0] = "changed"
	if archive.DefaultExcludes[0] == "changed" {
		t.Error("DefaultConfig must copy archive.DefaultExcludes")
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.ziprun.yml")

	original := DefaultConfig()
	original.DataDir = "/var/lib/ziprun"
	original.Port = 9000
	original.AllowAllOrigins = true
	original.Runtime = RuntimeConfig{BaseURL: "https://proxy.example", Key: "k-123"}
	original.Archive.Exclude = []string{"**/*.map"}

	// Save.
	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Load back.
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Verify round-trip.
	if loaded.DataDir != original.DataDir {
		t.Errorf("data_dir: got %q, want %q", loaded.DataDir, original.DataDir)
	}
	if loaded.Port != original.Port {
		t.Errorf("port: got %d, want %d", loaded.Port, original.Port)
	}
	if !loaded.AllowAllOrigins {
		t.Error("allow_all_origins: got false, want true")
	}
	if loaded.Runtime != original.Runtime {
		t.Errorf("runtime: got %+v, want %+v", loaded.Runtime, original.Runtime)
	}
	if len(loaded.Archive.Exclude) != 1 || loaded.Archive.Exclude[0] != "**/*.map" {
		t.Errorf("archive.exclude: got %v", loaded.Archive.Exclude)
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent.yml")

	// Loading a missing file should return defaults, not an error.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.Port != 5173 {
		t.Errorf("expected default port, got %d", cfg.Port)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yml")

	cfg := DefaultConfig()
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Setenv("ZIPRUN_DATA_DIR", "/tmp/elsewhere")
	t.Setenv("ZIPRUN_PORT", "7000")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.DataDir != "/tmp/elsewhere" {
		t.Errorf("env override failed: got %q, want %q", loaded.DataDir, "/tmp/elsewhere")
	}
	if loaded.Port != 7000 {
		t.Errorf("env override failed: got %d, want 7000", loaded.Port)
	}
}

func TestLoadGeminiEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yml")

	t.Setenv("GEMINI_BASEURL", "https://gemini.proxy")
	t.Setenv("GEMINI_API_KEY", "from-env")
	t.Setenv("GEMINI_UNRELATED", "ignored")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Runtime.BaseURL != "https://gemini.proxy" || loaded.Runtime.Key != "from-env" {
		t.Errorf("runtime = %+v", loaded.Runtime)
	}
	rt := loaded.RuntimeDefault()
	if rt.BaseURL != "https://gemini.proxy" || rt.Key != "from-env" {
		t.Errorf("RuntimeDefault() = %+v", rt)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	if err := os.WriteFile(path, []byte("port: [unterminated"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"empty data dir", func(c *Config) { c.DataDir = "" }, true},
		{"negative port", func(c *Config) { c.Port = -1 }, true},
		{"huge port", func(c *Config) { c.Port = 70000 }, true},
		{"zero upload", func(c *Config) { c.MaxUploadMB = 0 }, true},
		{"relative baseurl", func(c *Config) { c.Runtime.BaseURL = "proxy/v1" }, true},
		{"empty baseurl", func(c *Config) { c.Runtime.BaseURL = "" }, false},
		{"bad glob", func(c *Config) { c.Archive.Exclude = []string{"[unclosed"} }, true},
		{"no excludes", func(c *Config) { c.Archive.Exclude = nil }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b , c ", []string{"a", "b", "c"}},
		{"**/*.map", []string{"**/*.map"}},
		{"", nil},
		{"  ,  , ", nil},
	}
	for _, tt := range tests {
		got := splitAndTrim(tt.input)
		if len(got) != len(tt.want) {
			t.Errorf("splitAndTrim(%q) len = %d, want %d", tt.input, len(got), len(tt.want))
			continue
		}
		for i, v := range got {
			if v != tt.want[i] {
				t.Errorf("splitAndTrim(%q)[%d] = %q, want %q", tt.input, i, v, tt.want[i])
			}
		}
	}
}
