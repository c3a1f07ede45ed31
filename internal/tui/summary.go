package tui

import (
	"bytes"
	"fmt"
	"sort"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"

	"github.com/jakoblorz/create-devhub/internal/models"
)

// Summary is what the report shows after a successful run.
type Summary struct {
	Options  models.Options
	Projects []*models.Project
	Duration time.Duration
}

type summaryView struct {
	Options  models.Options
	Apps     []string
	Packages []string
	Ports    []models.PortAssignment
	Count    int
	Duration time.Duration
}

const summaryTemplate = `{{ success "✓ Setup complete!" }} Created {{ .Options.ProjectName }} with {{ .Count }} {{ ternary "workspace" "workspaces" (eq .Count 1) }} in {{ .Duration }}.

{{ header "Stack" }}
  Frontend         {{ .Options.Frontend.Label }}
  Documentation    {{ ternary "yes" "no" .Options.IncludeDocs }}
  HTTP server      {{ .Options.HTTPServer.Label }}
  WebSocket        {{ ternary "yes" "no" .Options.IncludeWS }}
  Tailwind CSS     {{ ternary "yes" "no" .Options.IncludeTailwind }}
  Package manager  {{ .Options.PackageManager }}

{{ header "Apps" }}
{{- range .Apps }}
  - {{ . }}
{{- end }}

{{ header "Packages" }}
{{- range .Packages }}
  - {{ . }}
{{- end }}

{{ header "Ports" }}
{{- range .Ports }}
  {{ .App.Label | printf "%-12s" }} {{ .URL }}
{{- end }}
{{- if eq (toString .Options.PackageManager) "pnpm" }}

{{ header "Remote caching (optional)" }}
  {{ command "pnpm dlx turbo login" }}
  {{ subtle "https://turborepo.com/remote-cache" }}
{{- end }}

{{ header "Next steps" }}
  {{ command (printf "cd %s" .Options.ProjectName) }}
  {{ command (.Options.PackageManager.RunCommand "dev") }}
`

var summaryTmpl = template.Must(template.New("summary").
	Funcs(sprig.TxtFuncMap()).
	Funcs(template.FuncMap{
		"header":  func(s string) string { return HeaderStyle.Render(s) },
		"success": func(s string) string { return SuccessStyle.Render(s) },
		"command": func(s string) string { return CommandStyle.Render(s) },
		"subtle":  func(s string) string { return SubtleStyle.Render(s) },
	}).
	Parse(summaryTemplate))

// RenderSummary renders the post-run report. Apps and packages come from the
// discovered projects and fall back to what the options imply.
func RenderSummary(s Summary) (string, error) {
	view := summaryView{
		Options:  s.Options,
		Ports:    s.Options.Ports(),
		Duration: s.Duration.Round(100 * time.Millisecond),
	}

	for _, p := range s.Projects {
		if p.Type == models.ProjectTypeApp {
			view.Apps = append(view.Apps, p.RelPath)
		} else {
			view.Packages = append(view.Packages, p.RelPath)
		}
	}
	if len(s.Projects) == 0 {
		for _, app := range s.Options.Apps() {
			view.Apps = append(view.Apps, app.Dir())
		}
		for _, pkg := range s.Options.Packages() {
			view.Packages = append(view.Packages, "packages/"+pkg)
		}
		view.Count = s.Options.WorkspaceCount()
	} else {
		view.Count = 1 + len(s.Projects)
	}
	sort.Strings(view.Apps)
	sort.Strings(view.Packages)

	var buf bytes.Buffer
	if err := summaryTmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("failed to render summary: %w", err)
	}
	return buf.String(), nil
}

// RenderError formats a fatal error for stderr.
func RenderError(err error) string {
	return ErrorStyle.Render(GlyphFailure+" Error:") + " " + err.Error()
}
