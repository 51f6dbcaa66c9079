package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/ziadkadry99/ziprun/internal/pipeline"
)

// Reporter provides progress feedback while an archive runs.
type Reporter interface {
	Start(total int)
	Update(current int, message string)
	Fail(message string)
	Finish()
}

// NewReporter returns a TerminalReporter if running in an interactive terminal,
// or a CIReporter if the CI environment variable is set.
func NewReporter() Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &CIReporter{out: os.Stderr}
	}
	return &TerminalReporter{}
}

// Observe adapts r to a pipeline observer. It calls Start before the first
// stage and Finish once the run composes or fails.
func Observe(r Reporter) pipeline.Observer {
	started := false
	return func(state pipeline.State, err error) {
		if !started {
			r.Start(len(pipeline.Stages))
			started = true
		}
		if state == pipeline.StateFailed {
			r.Fail(err.Error())
			return
		}
		for i, s := range pipeline.Stages {
			if s == state {
				r.Update(i+1, string(state))
			}
		}
		if state == pipeline.StateComposed {
			r.Finish()
		}
	}
}

// TerminalReporter displays a progress bar in the terminal.
type TerminalReporter struct {
	bar *progressbar.ProgressBar
}

func (r *TerminalReporter) Start(total int) {
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Running archive"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *TerminalReporter) Update(current int, message string) {
	if r.bar != nil {
		r.bar.Describe(message)
		_ = r.bar.Set(current)
	}
}

func (r *TerminalReporter) Fail(message string) {
	if r.bar != nil {
		_ = r.bar.Exit()
	}
}

func (r *TerminalReporter) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

// CIReporter prints line-by-line progress suitable for CI logs.
type CIReporter struct {
	out   io.Writer
	total int
}

// NewCIReporter returns a CIReporter writing to out.
func NewCIReporter(out io.Writer) *CIReporter {
	return &CIReporter{out: out}
}

func (r *CIReporter) Start(total int) {
	r.total = total
	fmt.Fprintf(r.out, "Running archive (%d stages)\n", total)
}

func (r *CIReporter) Update(current int, message string) {
	fmt.Fprintf(r.out, "[%d/%d] %s\n", current, r.total, message)
}

func (r *CIReporter) Fail(message string) {
	fmt.Fprintf(r.out, "Run failed: %s\n", message)
}

func (r *CIReporter) Finish() {
	fmt.Fprintln(r.out, "Run complete")
}
