package config

import (
	"path/filepath"

	"github.com/ziadkadry99/ziprun/internal/archive"
	"github.com/ziadkadry99/ziprun/internal/compose"
	"github.com/ziadkadry99/ziprun/internal/settings"
)

// DefaultPath is the config file looked up when --config is not given.
const DefaultPath = ".ziprun.yml"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DataDir:     ".ziprun",
		Port:        5173,
		MaxUploadMB: 64,
		Runtime: RuntimeConfig{
			BaseURL: settings.DefaultBaseURL,
		},
		Archive: ArchiveConfig{
			Exclude: append([]string(nil), archive.DefaultExcludes...),
		},
	}
}

// DatabasePath returns the SQLite file inside the data directory.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "ziprun.db")
}

// RuntimeDefault converts the runtime section into the value the settings
// store falls back to.
func (c *Config) RuntimeDefault() compose.Config {
	return compose.Config{BaseURL: c.Runtime.BaseURL, Key: c.Runtime.Key}
}

// MaxUploadBytes returns the upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}
