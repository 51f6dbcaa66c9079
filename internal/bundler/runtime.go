// Package bundler drives esbuild over an archive's module graph.
package bundler

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/ziadkadry99/ziprun/internal/logging"
)

// Runtime is the process-wide bundler handle. Initialization runs once, on
// first use; every caller of Ready blocks until it has finished and sees the
// same outcome. No build starts before Ready succeeds.
type Runtime struct {
	ready func() error

	// initTook is written inside the once function and only read after
	// Ready has returned.
	initTook time.Duration
}

var (
	sharedOnce sync.Once
	shared     *Runtime
)

// Shared returns the process-scoped Runtime.
func Shared() *Runtime {
	sharedOnce.Do(func() {
		shared = NewRuntime(warmUp)
	})
	return shared
}

// NewRuntime returns a Runtime whose one-time initialization is init.
// Most callers want Shared.
func NewRuntime(init func() error) *Runtime {
	r := &Runtime{}
	r.ready = sync.OnceValue(func() error {
		start := time.Now()
		if err := init(); err != nil {
			return fmt.Errorf("initializing bundler: %w", err)
		}
		r.initTook = time.Since(start)
		logging.Debug("bundler ready", "took", r.initTook)
		return nil
	})
	return r
}

// Ready initializes the runtime if needed. Safe for concurrent use.
func (r *Runtime) Ready() error {
	return r.ready()
}

// InitDuration reports how long initialization took. Zero before Ready.
func (r *Runtime) InitDuration() time.Duration {
	if err := r.Ready(); err != nil {
		return 0
	}
	return r.initTook
}

// warmUp pushes a trivial module through esbuild so that the first real
// build does not pay for its lazy setup.
func warmUp() error {
	res := api.Transform("export {}", api.TransformOptions{
		Loader: api.LoaderTS,
		Format: api.FormatESModule,
	})
	if len(res.Errors) > 0 {
		return errors.New(formatMessages(res.Errors, api.ErrorMessage))
	}
	return nil
}

func formatMessages(msgs []api.Message, kind api.MessageKind) string {
	formatted := api.FormatMessages(msgs, api.FormatMessagesOptions{Kind: kind})
	return strings.TrimSpace(strings.Join(formatted, "\n"))
}
