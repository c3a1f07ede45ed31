package tui

import "github.com/charmbracelet/lipgloss"

const (
	colorAccent  = lipgloss.Color("#7D56F4")
	colorSuccess = lipgloss.Color("#04B575")
	colorError   = lipgloss.Color("#FF0000")
	colorMuted   = lipgloss.Color("#888888")
	colorSubtle  = lipgloss.Color("#666666")
)

var (
	// Title styling
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent)

	// Section headers in the summary
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(colorAccent).
			Padding(0, 1)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	// Help text styling
	HelpStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	// Error styling
	ErrorStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	// Success styling
	SuccessStyle = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Bold(true)

	// Subtle text styling
	SubtleStyle = lipgloss.NewStyle().
			Foreground(colorSubtle)

	// Spinner glyph while a step runs
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(colorAccent)

	// Commands the user is asked to run
	CommandStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	// Description styling
	DescStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true)
)

// Status glyphs used by the reporters.
const (
	GlyphSuccess = "✓"
	GlyphFailure = "✗"
	GlyphSkipped = "-"
)
