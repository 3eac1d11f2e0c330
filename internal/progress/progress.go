// Package progress reports how far a batch of scenario replays has got.
package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// Reporter is the interface for reporting batch progress.
type Reporter interface {
	Start(total int, description string)
	Step(description string)
	Finish()
}

// New returns a progress bar on w when w is a terminal, otherwise a reporter
// that does nothing. Rendered trees go to stdout, so bars belong on stderr.
func New(w io.Writer) Reporter {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return NewCLIProgress(w)
	}
	return NewNoOpProgress()
}

// CLIProgress implements progress reporting with a terminal progress bar.
type CLIProgress struct {
	out io.Writer
	bar *progressbar.ProgressBar
}

// NewCLIProgress creates a new CLI progress reporter.
func NewCLIProgress(w io.Writer) *CLIProgress {
	return &CLIProgress{out: w}
}

// Start initializes the progress bar with the number of steps and a description.
func (p *CLIProgress) Start(total int, description string) {
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(p.out, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// Step advances the bar by one and updates its description.
func (p *CLIProgress) Step(description string) {
	if p.bar == nil {
		return
	}
	if description != "" {
		p.bar.Describe(description)
	}
	_ = p.bar.Add(1)
}

// Finish completes the progress bar.
func (p *CLIProgress) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

// NoOpProgress is a progress reporter that does nothing (non-terminal output).
type NoOpProgress struct{}

// NewNoOpProgress creates a new no-op progress reporter.
func NewNoOpProgress() *NoOpProgress {
	return &NoOpProgress{}
}

// Start does nothing.
func (p *NoOpProgress) Start(total int, description string) {}

// Step does nothing.
func (p *NoOpProgress) Step(description string) {}

// Finish does nothing.
func (p *NoOpProgress) Finish() {}
