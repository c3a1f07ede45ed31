package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/jakoblorz/create-devhub/internal/models"
	"github.com/jakoblorz/create-devhub/internal/templates"
)

const baseStylesheet = `body {
  margin: 0;
  font-family: system-ui, sans-serif;
}
`

func createLandingPages(ctx context.Context, env *Env) error {
	var theme []byte
	if env.Options.IncludeTailwind {
		var err error
		if theme, err = env.Templates.ReadFile(templates.TailwindApp, "theme.css"); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, fa := range frontendApps(env) {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			var err error
			if fa.vite {
				err = viteLanding(env, fa.app, theme)
			} else {
				err = nextLanding(env, fa.app, theme)
			}
			if err != nil {
				return fmt.Errorf("failed to create landing page for %s: %w", fa.app, err)
			}

			return env.copyTemplate(templates.Dashboard, env.AppPath(fa.app, "public", "dashboard"))
		})
	}
	return g.Wait()
}

func nextLanding(env *Env, app models.App, theme []byte) error {
	if isPagesRouter(env, app) {
		return env.copyTemplateFile(templates.LandingPages, "nextjs-page.tsx", env.AppPath(app, "pages", "index.tsx"))
	}

	if err := env.copyTemplateFile(templates.LandingPages, "nextjs-page.tsx", env.AppPath(app, "app", "page.tsx")); err != nil {
		return err
	}

	// An app router directory may hold only the stylesheet written by the
	// styling step. Next refuses to start without a root layout.
	if !env.FS.Exists(env.AppPath(app, "app", "layout.tsx")) {
		if err := env.copyTemplateFile(templates.LandingPages, "nextjs-layout.tsx", env.AppPath(app, "app", "layout.tsx")); err != nil {
			return err
		}
	}
	if !env.FS.Exists(env.AppPath(app, "app", "globals.css")) {
		css := theme
		if css == nil {
			css = []byte(baseStylesheet)
		}
		return env.writeFile(env.AppPath(app, "app", "globals.css"), css)
	}
	return nil
}

func viteLanding(env *Env, app models.App, theme []byte) error {
	files := []struct{ name, target string }{
		{"vite-app.tsx", "src/App.tsx"},
		{"vite-index.css", "src/index.css"},
		{"vite-main.tsx", "src/main.tsx"},
	}
	for _, f := range files {
		if err := env.copyTemplateFile(templates.LandingPages, f.name, env.AppPath(app, f.target)); err != nil {
			return err
		}
	}

	if theme == nil {
		return nil
	}
	return prependTheme(env, env.AppPath(app, "src", "index.css"), theme)
}
