package tui

import (
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jakoblorz/create-devhub/internal/pipeline"
)

type stepStartedMsg struct{ title string }

type stepFinishedMsg struct{ line string }

// progressModel shows finished steps above a spinner for the running one.
type progressModel struct {
	spinner spinner.Model
	lines   []string
	active  string
}

func newProgressModel() progressModel {
	return progressModel{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(SpinnerStyle),
		),
	}
}

func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stepStartedMsg:
		m.active = msg.title
		return m, nil
	case stepFinishedMsg:
		m.active = ""
		m.lines = append(m.lines, msg.line)
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m progressModel) View() string {
	var b strings.Builder
	for _, line := range m.lines {
		b.WriteString(line)
		b.WriteString("\n")
	}
	if m.active != "" {
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(m.active)
		b.WriteString("...\n")
	}
	return b.String()
}

// SpinnerReporter renders step progress with a bubbletea program. It never
// reads input and leaves signal handling to the caller. Close must be called
// once the pipeline returns.
type SpinnerReporter struct {
	program *tea.Program
	done    chan struct{}
	err     error
}

func NewSpinnerReporter(out io.Writer) *SpinnerReporter {
	r := &SpinnerReporter{
		program: tea.NewProgram(newProgressModel(),
			tea.WithOutput(out),
			tea.WithInput(nil),
			tea.WithoutSignalHandler(),
		),
		done: make(chan struct{}),
	}

	go func() {
		defer close(r.done)
		_, r.err = r.program.Run()
	}()

	return r
}

func (r *SpinnerReporter) StepStarted(step pipeline.Step) {
	r.program.Send(stepStartedMsg{title: step.Title})
}

func (r *SpinnerReporter) StepSucceeded(step pipeline.Step) {
	r.program.Send(stepFinishedMsg{line: SuccessStyle.Render(GlyphSuccess) + " " + step.Done})
}

func (r *SpinnerReporter) StepSkipped(step pipeline.Step) {
	r.program.Send(stepFinishedMsg{line: SubtleStyle.Render(GlyphSkipped + " " + step.Title + " (skipped)")})
}

func (r *SpinnerReporter) StepFailed(step pipeline.Step, err error) {
	r.program.Send(stepFinishedMsg{line: ErrorStyle.Render(GlyphFailure + " " + step.Title + " failed")})
}

// Close stops the program after its final render and waits for it.
func (r *SpinnerReporter) Close() error {
	r.program.Quit()
	<-r.done
	return r.err
}
