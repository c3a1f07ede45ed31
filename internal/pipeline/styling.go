package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jakoblorz/create-devhub/internal/manifest"
	"github.com/jakoblorz/create-devhub/internal/models"
	"github.com/jakoblorz/create-devhub/internal/templates"
)

// TailwindMarker identifies a stylesheet that already carries the theme.
const TailwindMarker = "@tailwind"

// StylingDevDependencies are added to the root manifest, in this order.
var StylingDevDependencies = manifest.Object{
	{Key: "tailwindcss", Value: "^3.4.0"},
	{Key: "postcss", Value: "^8.4.0"},
	{Key: "autoprefixer", Value: "^10.4.0"},
	{Key: "prettier-plugin-tailwindcss", Value: "^0.5.0"},
	{Key: "clsx", Value: "^2.0.0"},
	{Key: "tailwind-merge", Value: "^2.0.0"},
}

// nextStylesheets are probed in order. When none exists app/globals.css is
// created, or styles/globals.css for apps on the pages router.
var nextStylesheets = []string{"styles/globals.css", "src/app/globals.css", "app/globals.css"}

// frontendApp is a web or docs app present in the workspace.
type frontendApp struct {
	app  models.App
	vite bool
}

func frontendApps(env *Env) []frontendApp {
	var out []frontendApp
	if env.FS.Exists(env.AppPath(models.AppWeb)) {
		out = append(out, frontendApp{app: models.AppWeb, vite: env.Options.Frontend == models.FrontendVite})
	}
	if env.Options.IncludeDocs && env.FS.Exists(env.AppPath(models.AppDocs)) {
		out = append(out, frontendApp{app: models.AppDocs})
	}
	return out
}

func setupStyling(ctx context.Context, env *Env) error {
	if err := env.copyTemplate(templates.TailwindConfig, env.Path("packages", "tailwind-config")); err != nil {
		return fmt.Errorf("failed to add tailwind config package: %w", err)
	}

	theme, err := env.Templates.ReadFile(templates.TailwindApp, "theme.css")
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, fa := range frontendApps(env) {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := styleApp(env, fa, theme); err != nil {
				return fmt.Errorf("failed to style %s: %w", fa.app, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	err = env.updateManifest(env.Path("package.json"), func(doc *manifest.Document) error {
		for _, dep := range StylingDevDependencies {
			if err := doc.Set(manifest.Path("devDependencies", dep.Key), dep.Value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := env.copyTemplate(templates.UIPackage, env.Path("packages", "ui")); err != nil {
		return fmt.Errorf("failed to add ui package: %w", err)
	}
	return nil
}

func styleApp(env *Env, fa frontendApp, theme []byte) error {
	esm, err := isModule(env, fa.app)
	if err != nil {
		return err
	}

	dir, ext := "cjs", ".js"
	if esm {
		dir, ext = "esm", ".mjs"
	}
	for _, name := range []string{"tailwind.config", "postcss.config"} {
		src := dir + "/" + name + ext
		if err := env.copyTemplateFile(templates.TailwindApp, src, env.AppPath(fa.app, name+ext)); err != nil {
			return err
		}
	}

	if fa.vite {
		return prependTheme(env, env.AppPath(fa.app, "src", "index.css"), theme)
	}

	for _, rel := range nextStylesheets {
		path := env.AppPath(fa.app, rel)
		if env.FS.Exists(path) {
			return prependTheme(env, path, theme)
		}
	}
	if isPagesRouter(env, fa.app) {
		return env.writeFile(env.AppPath(fa.app, "styles", "globals.css"), theme)
	}
	return env.writeFile(env.AppPath(fa.app, "app", "globals.css"), theme)
}

func isPagesRouter(env *Env, app models.App) bool {
	return !env.FS.Exists(env.AppPath(app, "app")) && env.FS.Exists(env.AppPath(app, "pages"))
}

func prependTheme(env *Env, path string, theme []byte) error {
	changed, err := templates.PrependOnce(env.FS, path, TailwindMarker, theme)
	if err != nil {
		return err
	}
	if changed {
		env.Logger.Debug("added tailwind header", zap.String("path", env.rel(path)))
	}
	return nil
}

func isModule(env *Env, app models.App) (bool, error) {
	path := env.AppPath(app, "package.json")
	if !env.FS.Exists(path) {
		return false, nil
	}
	doc, err := manifest.Load(env.FS, path)
	if err != nil {
		return false, err
	}
	return doc.Get("type").String() == "module", nil
}
