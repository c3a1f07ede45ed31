package models

import "strconv"

// App is a directory under apps/.
type App string

const (
	AppWeb        App = "web"
	AppDocs       App = "docs"
	AppHTTPServer App = "http-server"
	AppWSServer   App = "ws-server"
)

// Dir returns the app path relative to the workspace root.
func (a App) Dir() string {
	return "apps/" + string(a)
}

// Label is the name shown in the summary.
func (a App) Label() string {
	switch a {
	case AppWeb:
		return "Web App"
	case AppDocs:
		return "Docs Site"
	case AppHTTPServer:
		return "API Server"
	case AppWSServer:
		return "WebSocket"
	}
	return string(a)
}

// Fixed port table. Not user configurable.
const (
	PortWebNext    = 3000
	PortWebVite    = 5173
	PortDocs       = 3002
	PortHTTPServer = 8000
	PortWSServer   = 8080
)

// PortAssignment binds an app to its development port.
type PortAssignment struct {
	App    App
	Port   int
	Scheme string
}

// URL is the local address the app listens on.
func (p PortAssignment) URL() string {
	return p.Scheme + "://localhost:" + strconv.Itoa(p.Port)
}

// Ports returns the assignment for every app in o, in Apps order.
func (o Options) Ports() []PortAssignment {
	var out []PortAssignment
	for _, app := range o.Apps() {
		out = append(out, PortAssignment{App: app, Port: o.PortFor(app), Scheme: schemeFor(app)})
	}
	return out
}

// PortFor returns the fixed port of app under o.
func (o Options) PortFor(app App) int {
	switch app {
	case AppWeb:
		if o.Frontend == FrontendVite {
			return PortWebVite
		}
		return PortWebNext
	case AppDocs:
		return PortDocs
	case AppHTTPServer:
		return PortHTTPServer
	case AppWSServer:
		return PortWSServer
	}
	return 0
}

func schemeFor(app App) string {
	if app == AppWSServer {
		return "ws"
	}
	return "http"
}
