package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/ziadkadry99/ziprun/internal/archive"
	"github.com/ziadkadry99/ziprun/internal/config"
	"github.com/ziadkadry99/ziprun/internal/db"
	"github.com/ziadkadry99/ziprun/internal/history"
	"github.com/ziadkadry99/ziprun/internal/pipeline"
	"github.com/ziadkadry99/ziprun/internal/settings"
)

// fetchTimeout bounds archive downloads for `ziprun run <url>`.
const fetchTimeout = 60 * time.Second

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `ziprun init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// openDB opens the history/settings database inside the data directory.
func openDB(cfg *config.Config) (*db.DB, error) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	database, err := db.Open(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return database, nil
}

// stores bundles the persistence layers a command needs.
type stores struct {
	db       *db.DB
	history  *history.Store
	settings *settings.Store
}

func openStores(cfg *config.Config) (*stores, error) {
	database, err := openDB(cfg)
	if err != nil {
		return nil, err
	}
	return &stores{
		db:       database,
		history:  history.NewStore(database),
		settings: settings.NewStore(database, cfg.RuntimeDefault()),
	}, nil
}

func (s *stores) Close() error { return s.db.Close() }

// newRunner builds a pipeline runner honouring the configured excludes.
func newRunner(cfg *config.Config) *pipeline.Runner {
	return pipeline.New(archive.NewLoader(cfg.Archive.Exclude), nil)
}

// source is an archive read from disk or fetched over HTTP.
type source struct {
	Name         string
	LastModified time.Time
	Data         []byte
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// readSource reads an archive from a local path or an http(s) URL.
func readSource(ctx context.Context, src string) (*source, error) {
	if isURL(src) {
		return fetchSource(ctx, src)
	}

	info, err := os.Stat(src)
	if err != nil {
		return nil, fmt.Errorf("reading archive: %w", err)
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("reading archive: %w", err)
	}
	return &source{Name: filepath.Base(src), LastModified: info.ModTime(), Data: data}, nil
}

func fetchSource(ctx context.Context, rawURL string) (*source, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %s", rawURL, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", rawURL, err)
	}

	src := &source{Name: path.Base(req.URL.Path), Data: data}
	if src.Name == "/" || src.Name == "." {
		src.Name = ""
	}
	if lm, err := http.ParseTime(resp.Header.Get("Last-Modified")); err == nil {
		src.LastModified = lm
	}
	return src, nil
}

// writeOutput writes html to path, or to w when path is empty or "-".
func writeOutput(w io.Writer, path, html string) error {
	if path == "" || path == "-" {
		_, err := io.WriteString(w, html)
		return err
	}
	if err := os.WriteFile(path, []byte(html), 0644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
