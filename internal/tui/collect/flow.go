// Package collect asks for the scaffolding options that were not given on
// the command line.
package collect

import (
	"context"
	"errors"
	"fmt"
	"io"

	huh "github.com/charmbracelet/huh"

	"github.com/jakoblorz/create-devhub/internal/models"
	"github.com/jakoblorz/create-devhub/internal/runner"
	"github.com/jakoblorz/create-devhub/internal/tui"
)

// ErrAborted is returned when the user cancels a prompt.
var ErrAborted = errors.New("aborted by user")

// Field names match the CLI flags that answer them.
const (
	FieldName           = "name"
	FieldFrontend       = "frontend"
	FieldDocs           = "docs"
	FieldHTTP           = "http"
	FieldWS             = "ws"
	FieldTailwind       = "tailwind"
	FieldPackageManager = "package-manager"
)

// Fixed marks fields whose value is already decided and must not be asked.
type Fixed map[string]bool

// Flow collects options with huh forms.
type Flow struct {
	theme      *huh.Theme
	detected   []runner.Detection
	accessible bool
	input      io.Reader
	output     io.Writer
}

// Option configures a Flow.
type Option func(*Flow)

// WithAccessible renders plain line prompts instead of the interactive form.
func WithAccessible(enabled bool) Option {
	return func(f *Flow) {
		f.accessible = enabled
	}
}

// WithIO sets where prompts read from and write to.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(f *Flow) {
		f.input = in
		f.output = out
	}
}

// NewFlow constructs a Flow offering the detected package managers.
func NewFlow(detected []runner.Detection, options ...Option) *Flow {
	f := &Flow{
		theme:    tui.NewHuhTheme(),
		detected: detected,
	}
	for _, option := range options {
		option(f)
	}
	return f
}

// Collect prompts for every field not in fixed, starting from opts.
func (f *Flow) Collect(ctx context.Context, opts models.Options, fixed Fixed) (models.Options, error) {
	groups := f.groups(&opts, fixed)
	if len(groups) == 0 {
		return opts, nil
	}

	keyMap := huh.NewDefaultKeyMap()
	keyMap.Select.Filter.SetEnabled(false)
	keyMap.Select.Submit.SetKeys("enter")
	keyMap.Select.Submit.SetHelp("enter", "continue")

	form := huh.NewForm(groups...).
		WithTheme(f.theme).
		WithShowHelp(true).
		WithKeyMap(keyMap).
		WithAccessible(f.accessible)
	if f.input != nil {
		form = form.WithInput(f.input)
	}
	if f.output != nil {
		form = form.WithOutput(f.output)
	}

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return opts, ErrAborted
		}
		return opts, fmt.Errorf("failed to collect options: %w", err)
	}

	return opts, opts.Validate()
}

func (f *Flow) groups(opts *models.Options, fixed Fixed) []*huh.Group {
	var groups []*huh.Group

	if !fixed[FieldName] {
		groups = append(groups, huh.NewGroup(
			huh.NewInput().
				Value(&opts.ProjectName).
				Placeholder(models.DefaultProjectName).
				Validate(models.ValidateProjectName),
		).
			Title("Project Name").
			Description("The directory the workspace is created in."))
	}

	if !fixed[FieldFrontend] {
		groups = append(groups, huh.NewGroup(
			huh.NewSelect[models.Frontend]().
				Options(
					huh.NewOption(models.FrontendNext.Label(), models.FrontendNext),
					huh.NewOption(models.FrontendVite.Label(), models.FrontendVite),
				).
				Value(&opts.Frontend),
		).
			Title("Frontend").
			Description("Framework for apps/web."))
	}

	if !fixed[FieldDocs] {
		groups = append(groups, confirmGroup("Documentation", "Add a Next.js docs site in apps/docs?", &opts.IncludeDocs))
	}

	if !fixed[FieldHTTP] {
		groups = append(groups, huh.NewGroup(
			huh.NewSelect[models.HTTPServer]().
				Options(
					huh.NewOption(models.HTTPServerNone.Label(), models.HTTPServerNone),
					huh.NewOption(models.HTTPServerExpress.Label(), models.HTTPServerExpress),
					huh.NewOption(models.HTTPServerFastify.Label(), models.HTTPServerFastify),
				).
				Value(&opts.HTTPServer),
		).
			Title("HTTP Server").
			Description("Optional API server in apps/http-server."))
	}

	if !fixed[FieldWS] {
		groups = append(groups, confirmGroup("WebSocket Server", "Add a WebSocket server in apps/ws-server?", &opts.IncludeWS))
	}

	if !fixed[FieldTailwind] {
		groups = append(groups, confirmGroup("Styling", "Set up Tailwind CSS with a shared UI package?", &opts.IncludeTailwind))
	}

	if !fixed[FieldPackageManager] {
		groups = append(groups, huh.NewGroup(
			huh.NewSelect[models.PackageManager]().
				Options(PackageManagerOptions(f.detected)...).
				Value(&opts.PackageManager),
		).
			Title("Package Manager").
			Description("Used to bootstrap and install the workspace."))
	}

	return groups
}

func confirmGroup(title, description string, value *bool) *huh.Group {
	return huh.NewGroup(
		huh.NewConfirm().
			Affirmative("Yes").
			Negative("No").
			Value(value),
	).
		Title(title).
		Description(description)
}

// PackageManagerOptions lists detected managers with their versions. npm is
// always offered.
func PackageManagerOptions(detected []runner.Detection) []huh.Option[models.PackageManager] {
	var opts []huh.Option[models.PackageManager]
	hasNPM := false
	for _, d := range detected {
		if d.Manager == models.PackageManagerNPM {
			hasNPM = true
		}
		opts = append(opts, huh.NewOption(d.Label(), d.Manager))
	}
	if !hasNPM {
		opts = append([]huh.Option[models.PackageManager]{huh.NewOption("npm", models.PackageManagerNPM)}, opts...)
	}
	return opts
}
