// Package runs connects the pipeline to the HTTP shell: it executes runs
// against the stored settings and turns their output into previews.
package runs

import (
	"context"
	"errors"
	"fmt"
	"time"

	rerrors "github.com/ziadkadry99/ziprun/internal/errors"
	"github.com/ziadkadry99/ziprun/internal/history"
	"github.com/ziadkadry99/ziprun/internal/logging"
	"github.com/ziadkadry99/ziprun/internal/pipeline"
	"github.com/ziadkadry99/ziprun/internal/preview"
	"github.com/ziadkadry99/ziprun/internal/settings"
)

// Service executes runs and registers their output.
type Service struct {
	runner    *pipeline.Runner
	settings  *settings.Store
	history   *history.Store
	previews  *preview.Registry
	maxUpload int64
}

// NewService returns a Service. maxUpload caps the archive size accepted by
// the HTTP handlers, in bytes.
func NewService(runner *pipeline.Runner, st *settings.Store, hist *history.Store, previews *preview.Registry, maxUpload int64) *Service {
	return &Service{
		runner:    runner,
		settings:  st,
		history:   hist,
		previews:  previews,
		maxUpload: maxUpload,
	}
}

// Result is returned to clients after a successful run.
type Result struct {
	Preview preview.Handle `json:"preview"`
	Archive *history.Meta  `json:"archive,omitempty"`
}

// Execute runs data with the current settings and registers the composed
// document under name. observe may be nil.
func (s *Service) Execute(ctx context.Context, data []byte, name string, observe pipeline.Observer) (preview.Handle, error) {
	cfg, err := s.settings.Get(ctx)
	if err != nil {
		return preview.Handle{}, fmt.Errorf("reading settings: %w", err)
	}

	out, err := s.runner.Run(data, cfg, observe)
	if err != nil {
		return preview.Handle{}, err
	}

	h := s.previews.Create(out.HTML, name)
	logging.Info("run complete", "name", name, "preview", h.ID, "modules", len(out.Build.Modules), "took", out.Took.Round(time.Millisecond))
	return h, nil
}

// Save stores an uploaded archive in history.
func (s *Service) Save(ctx context.Context, up history.Upload) (*history.Meta, error) {
	meta, err := s.history.Save(ctx, up)
	if err != nil {
		return nil, fmt.Errorf("saving archive: %w", err)
	}
	return meta, nil
}

// isStageError reports whether err ended a run at one of the pipeline stages,
// as opposed to an infrastructure failure.
func isStageError(err error) bool {
	var se *rerrors.StageError
	return errors.As(err, &se)
}
