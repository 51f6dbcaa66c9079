package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// geminiEnv maps the environment variables a desktop launcher sets to
// runtime config keys.
var geminiEnv = map[string]string{
	"GEMINI_BASEURL": "runtime.baseurl",
	"GEMINI_API_KEY": "runtime.key",
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (ZIPRUN_*, then GEMINI_BASEURL and
// GEMINI_API_KEY).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: ZIPRUN_DATA_DIR -> data_dir, etc.
	if err := k.Load(env.Provider("ZIPRUN_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "ZIPRUN_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Load(env.Provider("GEMINI_", ".", func(s string) string {
		return geminiEnv[s]
	}), nil); err != nil {
		return nil, fmt.Errorf("loading runtime env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}

	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("max_upload_mb must be positive")
	}

	if c.Runtime.BaseURL != "" {
		u, err := url.Parse(c.Runtime.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid runtime.baseurl %q: must be an absolute URL", c.Runtime.BaseURL)
		}
	}

	for _, pattern := range c.Archive.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid archive.exclude pattern %q", pattern)
		}
	}

	return nil
}
