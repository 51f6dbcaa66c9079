// Package pipeline runs an archive through loading, entry resolution,
// bundling and composition.
package pipeline

import (
	"fmt"
	"time"

	"github.com/ziadkadry99/ziprun/internal/archive"
	"github.com/ziadkadry99/ziprun/internal/bundler"
	"github.com/ziadkadry99/ziprun/internal/compose"
	"github.com/ziadkadry99/ziprun/internal/entry"
	"github.com/ziadkadry99/ziprun/internal/logging"
)

// State is a run's position in the pipeline.
type State string

const (
	StateIdle          State = "idle"
	StateLoaded        State = "loaded"
	StateEntryResolved State = "entry_resolved"
	StateBundled       State = "bundled"
	StateComposed      State = "composed"
	StateFailed        State = "failed"
)

// Stages lists the successful states in order.
var Stages = []State{StateLoaded, StateEntryResolved, StateBundled, StateComposed}

// Observer is notified of every state a run enters. err is non-nil only for
// StateFailed.
type Observer func(state State, err error)

// Output is the result of a successful run.
type Output struct {
	HTML  string
	Entry *entry.Entry
	Build *bundler.Result
	Took  time.Duration
}

// Runner executes runs. A Runner holds no per-run state and may be shared.
type Runner struct {
	loader  *archive.Loader
	runtime *bundler.Runtime
}

// New returns a Runner. A nil loader uses archive.DefaultExcludes and a nil
// runtime uses bundler.Shared.
func New(loader *archive.Loader, runtime *bundler.Runtime) *Runner {
	if loader == nil {
		loader = archive.NewLoader(archive.DefaultExcludes)
	}
	if runtime == nil {
		runtime = bundler.Shared()
	}
	return &Runner{loader: loader, runtime: runtime}
}

// run tracks the state machine of a single invocation.
type run struct {
	state   State
	observe Observer
}

func (r *run) enter(s State) {
	r.state = s
	if r.observe != nil {
		r.observe(s, nil)
	}
}

func (r *run) fail(err error) error {
	logging.Debug("run failed", "after", r.state, "err", err)
	r.state = StateFailed
	if r.observe != nil {
		r.observe(StateFailed, err)
	}
	return err
}

// Run turns archive bytes into a single HTML document with cfg injected.
// observe may be nil. Any stage failure ends the run; no partial output is
// returned.
func (rn *Runner) Run(data []byte, cfg compose.Config, observe Observer) (*Output, error) {
	start := time.Now()
	r := &run{state: StateIdle, observe: observe}

	files, err := rn.loader.Load(data)
	if err != nil {
		return nil, r.fail(err)
	}
	r.enter(StateLoaded)

	e, err := entry.Resolve(files)
	if err != nil {
		return nil, r.fail(err)
	}
	logging.Debug("entry resolved", "document", e.DocumentPath, "module", e.ModulePath)
	r.enter(StateEntryResolved)

	build, err := rn.runtime.Bundle(files, e.ModulePath)
	if err != nil {
		return nil, r.fail(err)
	}
	logging.Debug("bundled", "modules", len(build.Modules), "externals", build.Externals, "bytes", len(build.Code))
	r.enter(StateBundled)

	html, err := compose.Compose(e.Document, e.ModulePath, build.Code, cfg)
	if err != nil {
		return nil, r.fail(err)
	}
	r.enter(StateComposed)

	return &Output{
		HTML:  html,
		Entry: e,
		Build: build,
		Took:  time.Since(start),
	}, nil
}

// Run executes a run with a default Runner.
func Run(data []byte, cfg compose.Config) (string, error) {
	out, err := New(nil, nil).Run(data, cfg, nil)
	if err != nil {
		return "", fmt.Errorf("running archive: %w", err)
	}
	return out.HTML, nil
}
