// Package settings persists the runtime configuration injected into every
// composed document.
package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ziadkadry99/ziprun/internal/compose"
	"github.com/ziadkadry99/ziprun/internal/db"
)

// DefaultBaseURL is the API base URL used until one is configured.
const DefaultBaseURL = "https://generativelanguage.googleapis.com"

// runtimeKey is the settings row holding the runtime configuration.
const runtimeKey = "runtime"

// Default returns the built-in runtime configuration.
func Default() compose.Config {
	return compose.Config{BaseURL: DefaultBaseURL}
}

// Store reads and writes the runtime configuration.
type Store struct {
	db       *db.DB
	fallback compose.Config
}

// NewStore creates a Store backed by the given database. fallback is
// returned by Get until Set has been called.
func NewStore(database *db.DB, fallback compose.Config) *Store {
	return &Store{db: database, fallback: fallback}
}

// Get returns the persisted configuration, or the fallback when nothing
// has been stored.
func (s *Store) Get(ctx context.Context) (compose.Config, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", runtimeKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return s.fallback, nil
	}
	if err != nil {
		return compose.Config{}, fmt.Errorf("reading settings: %w", err)
	}

	var cfg compose.Config
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return compose.Config{}, fmt.Errorf("decoding settings: %w", err)
	}
	return cfg, nil
}

// Set persists cfg.
func (s *Store) Set(ctx context.Context, cfg compose.Config) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, datetime('now'))
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		runtimeKey, string(raw),
	)
	if err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	return nil
}

// Reset removes the persisted configuration so Get returns the fallback.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM settings WHERE key = ?", runtimeKey); err != nil {
		return fmt.Errorf("resetting settings: %w", err)
	}
	return nil
}
