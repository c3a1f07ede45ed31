package models

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultProjectName is offered by the collector when no name was given.
const DefaultProjectName = "my-turbo-app"

// Frontend selects the framework of apps/web.
type Frontend string

const (
	FrontendNext Frontend = "web-next"
	FrontendVite Frontend = "web-vite"
)

// IsValid checks if the frontend is known
func (f Frontend) IsValid() bool {
	switch f {
	case FrontendNext, FrontendVite:
		return true
	default:
		return false
	}
}

func (f Frontend) String() string {
	return string(f)
}

// Label is the human name shown in prompts and the summary.
func (f Frontend) Label() string {
	if f == FrontendVite {
		return "Vite + React"
	}
	return "Next.js"
}

// ParseFrontend parses a string into a Frontend
func ParseFrontend(s string) (Frontend, error) {
	f := Frontend(strings.TrimSpace(s))
	if !f.IsValid() {
		return "", fmt.Errorf("invalid frontend: %s (must be web-next or web-vite)", s)
	}
	return f, nil
}

// HTTPServer selects the optional apps/http-server template.
type HTTPServer string

const (
	HTTPServerExpress HTTPServer = "http-express"
	HTTPServerFastify HTTPServer = "http-fastify"
	HTTPServerNone    HTTPServer = "none"
)

// IsValid checks if the server kind is known
func (h HTTPServer) IsValid() bool {
	switch h {
	case HTTPServerExpress, HTTPServerFastify, HTTPServerNone:
		return true
	default:
		return false
	}
}

// Enabled reports whether an HTTP server app is requested.
func (h HTTPServer) Enabled() bool {
	return h == HTTPServerExpress || h == HTTPServerFastify
}

func (h HTTPServer) String() string {
	return string(h)
}

func (h HTTPServer) Label() string {
	switch h {
	case HTTPServerExpress:
		return "Express"
	case HTTPServerFastify:
		return "Fastify"
	default:
		return "None"
	}
}

// ParseHTTPServer parses a string into an HTTPServer. The empty string means none.
func ParseHTTPServer(s string) (HTTPServer, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return HTTPServerNone, nil
	}
	h := HTTPServer(s)
	if !h.IsValid() {
		return "", fmt.Errorf("invalid http server: %s (must be http-express, http-fastify, or none)", s)
	}
	return h, nil
}

// Options is the immutable set of choices made by the user.
type Options struct {
	ProjectName     string         `mapstructure:"name"`
	Frontend        Frontend       `mapstructure:"frontend"`
	IncludeDocs     bool           `mapstructure:"docs"`
	IncludeWS       bool           `mapstructure:"ws"`
	HTTPServer      HTTPServer     `mapstructure:"http"`
	PackageManager  PackageManager `mapstructure:"package-manager"`
	IncludeTailwind bool           `mapstructure:"tailwind"`
}

// DefaultOptions mirrors the defaults offered by the interactive prompts.
func DefaultOptions() Options {
	return Options{
		ProjectName:     DefaultProjectName,
		Frontend:        FrontendNext,
		IncludeDocs:     true,
		IncludeWS:       false,
		HTTPServer:      HTTPServerNone,
		PackageManager:  PackageManagerNPM,
		IncludeTailwind: true,
	}
}

// Validate rejects names that would escape the current directory and
// unknown enum values.
func (o Options) Validate() error {
	if err := ValidateProjectName(o.ProjectName); err != nil {
		return err
	}
	if !o.Frontend.IsValid() {
		return fmt.Errorf("invalid frontend: %q", o.Frontend)
	}
	if !o.HTTPServer.IsValid() {
		return fmt.Errorf("invalid http server: %q", o.HTTPServer)
	}
	if !o.PackageManager.IsValid() {
		return fmt.Errorf("invalid package manager: %q", o.PackageManager)
	}
	return nil
}

// ValidateProjectName checks that name is a single directory component.
func ValidateProjectName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("project name cannot be empty")
	case name == "." || name == "..":
		return fmt.Errorf("invalid project name: %q", name)
	case strings.ContainsAny(name, `/\`) || filepath.Base(name) != name:
		return fmt.Errorf("project name must not contain path separators: %q", name)
	case strings.TrimSpace(name) != name:
		return fmt.Errorf("project name must not start or end with whitespace: %q", name)
	}
	return nil
}

// HasServer reports whether any server app is added.
func (o Options) HasServer() bool {
	return o.HTTPServer.Enabled() || o.IncludeWS
}

// Apps lists the app directories the generated workspace will contain.
func (o Options) Apps() []App {
	apps := []App{AppWeb}
	if o.IncludeDocs {
		apps = append(apps, AppDocs)
	}
	if o.HTTPServer.Enabled() {
		apps = append(apps, AppHTTPServer)
	}
	if o.IncludeWS {
		apps = append(apps, AppWSServer)
	}
	return apps
}

// Packages lists the shared packages the generated workspace will contain.
func (o Options) Packages() []string {
	var pkgs []string
	if o.IncludeTailwind {
		pkgs = append(pkgs, "ui", "tailwind-config")
	}
	return append(pkgs, "eslint-config", "typescript-config")
}

// WorkspaceCount counts the root plus every app and package.
func (o Options) WorkspaceCount() int {
	return 1 + len(o.Apps()) + len(o.Packages())
}
