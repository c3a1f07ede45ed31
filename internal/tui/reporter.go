package tui

import (
	"fmt"
	"io"
	"sync"

	"github.com/jakoblorz/create-devhub/internal/pipeline"
)

// PlainReporter prints one line per finished step. Used when output is not a
// terminal.
type PlainReporter struct {
	mu  sync.Mutex
	out io.Writer
}

func NewPlainReporter(out io.Writer) *PlainReporter {
	return &PlainReporter{out: out}
}

func (r *PlainReporter) StepStarted(step pipeline.Step) {
	r.println(SubtleStyle.Render(step.Title + "..."))
}

func (r *PlainReporter) StepSucceeded(step pipeline.Step) {
	r.println(SuccessStyle.Render(GlyphSuccess) + " " + step.Done)
}

func (r *PlainReporter) StepSkipped(step pipeline.Step) {
	r.println(SubtleStyle.Render(GlyphSkipped + " " + step.Title + " (skipped)"))
}

func (r *PlainReporter) StepFailed(step pipeline.Step, err error) {
	r.println(ErrorStyle.Render(GlyphFailure+" "+step.Title+" failed") + ": " + err.Error())
}

// Close is a no-op; it matches SpinnerReporter.
func (r *PlainReporter) Close() error {
	return nil
}

func (r *PlainReporter) println(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, line)
}
