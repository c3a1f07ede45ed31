package pipeline

import (
	"context"
	"fmt"

	"github.com/jakoblorz/create-devhub/internal/manifest"
	"github.com/jakoblorz/create-devhub/internal/models"
	"github.com/jakoblorz/create-devhub/internal/templates"
)

const typescriptConfigPackage = "@repo/typescript-config"

func customizeApps(ctx context.Context, env *Env) error {
	if env.Options.Frontend == models.FrontendVite {
		if err := env.removeAll(env.AppPath(models.AppWeb)); err != nil {
			return fmt.Errorf("failed to remove Next.js web app: %w", err)
		}
		if err := env.Runner.Run(ctx, env.Root, "npx",
			"create-vite@latest", models.AppWeb.Dir(),
			"--template", "react-ts",
		); err != nil {
			return err
		}
	}

	if !env.Options.IncludeDocs {
		if err := env.removeAll(env.AppPath(models.AppDocs)); err != nil {
			return fmt.Errorf("failed to remove docs app: %w", err)
		}
	}

	return nil
}

func addServerApps(_ context.Context, env *Env) error {
	if env.Options.HTTPServer.Enabled() {
		if err := addServerApp(env, httpTemplate(env.Options.HTTPServer), models.AppHTTPServer); err != nil {
			return err
		}
	}

	if env.Options.IncludeWS {
		if err := addServerApp(env, templates.WSServer, models.AppWSServer); err != nil {
			return err
		}
	}

	return nil
}

func addServerApp(env *Env, id templates.ID, app models.App) error {
	if err := env.copyTemplate(id, env.AppPath(app)); err != nil {
		return fmt.Errorf("failed to add %s: %w", app, err)
	}

	version := env.Options.PackageManager.WorkspaceDependencyVersion()
	return env.updateManifest(env.AppPath(app, "package.json"), func(doc *manifest.Document) error {
		key := manifest.Path("devDependencies", typescriptConfigPackage)
		if !doc.Has(key) {
			return nil
		}
		return doc.Set(key, version)
	})
}

func httpTemplate(server models.HTTPServer) templates.ID {
	if server == models.HTTPServerFastify {
		return templates.HTTPFastify
	}
	return templates.HTTPExpress
}
