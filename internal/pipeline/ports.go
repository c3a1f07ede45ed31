package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jakoblorz/create-devhub/internal/manifest"
	"github.com/jakoblorz/create-devhub/internal/models"
	"github.com/jakoblorz/create-devhub/internal/templates"
)

var portFlag = regexp.MustCompile(`(--port|-p)[= ]\d+`)

// WithPort sets the --port flag of a package.json script, rewriting an
// existing flag in place.
func WithPort(script string, port int) string {
	flag := "--port " + strconv.Itoa(port)
	if loc := portFlag.FindStringIndex(script); loc != nil {
		return script[:loc[0]] + flag + script[loc[1]:]
	}
	if script == "" {
		return flag
	}
	return script + " " + flag
}

func configurePorts(ctx context.Context, env *Env) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, app := range env.Options.Apps() {
		port := env.Options.PortFor(app)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := configureAppPort(env, app, port); err != nil {
				return fmt.Errorf("failed to configure port of %s: %w", app, err)
			}
			return nil
		})
	}

	return g.Wait()
}

func configureAppPort(env *Env, app models.App, port int) error {
	switch app {
	case models.AppHTTPServer:
		return setServerPort(env, httpTemplate(env.Options.HTTPServer), app, port)
	case models.AppWSServer:
		return setServerPort(env, templates.WSServer, app, port)
	case models.AppWeb:
		if env.Options.Frontend == models.FrontendVite {
			return setScriptPorts(env, app, port, "dev")
		}
		return setScriptPorts(env, app, port, "dev", "start")
	case models.AppDocs:
		return setScriptPorts(env, app, port, "dev", "start")
	}
	return nil
}

func setServerPort(env *Env, id templates.ID, app models.App, port int) error {
	desc, err := env.Templates.Descriptor(id)
	if err != nil {
		return err
	}
	entry := env.AppPath(app, desc.Entry)

	changed, err := templates.SetPort(env.FS, entry, port)
	if err != nil {
		return err
	}
	if changed {
		env.Logger.Debug("set server port", zap.String("path", env.rel(entry)), zap.Int("port", port))
	}
	return nil
}

func setScriptPorts(env *Env, app models.App, port int, scripts ...string) error {
	return env.updateManifest(env.AppPath(app, "package.json"), func(doc *manifest.Document) error {
		for _, name := range scripts {
			key := manifest.Path("scripts", name)
			current := doc.Get(key)
			if !current.Exists() {
				continue
			}
			if err := doc.Set(key, WithPort(current.String(), port)); err != nil {
				return err
			}
		}
		return nil
	})
}
