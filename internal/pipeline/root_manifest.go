package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakoblorz/create-devhub/internal/manifest"
	"github.com/jakoblorz/create-devhub/internal/models"
	"github.com/jakoblorz/create-devhub/internal/workspace"
)

// WorkspaceGlobs are the package globs every generated workspace declares.
var WorkspaceGlobs = []string{"apps/*", "packages/*"}

func updateRootManifest(_ context.Context, env *Env) error {
	err := env.updateManifest(env.Path("package.json"), func(doc *manifest.Document) error {
		if err := doc.Delete("type"); err != nil {
			return err
		}

		workspaces := doc.Get("workspaces")
		switch {
		case !workspaces.Exists():
			return doc.Set("workspaces", WorkspaceGlobs)
		case workspaces.IsObject():
			// yarn classic's {"packages": [...], "nohoist": [...]} form.
			_, err := doc.AppendUnique(manifest.Path("workspaces", "packages"), WorkspaceGlobs...)
			return err
		default:
			_, err := doc.AppendUnique("workspaces", WorkspaceGlobs...)
			return err
		}
	})
	if err != nil {
		return err
	}

	if env.Options.PackageManager != models.PackageManagerPNPM {
		return nil
	}

	path := env.Path(workspace.PnpmWorkspaceFile)
	changed, err := workspace.EnsurePnpmWorkspace(env.FS, path, WorkspaceGlobs...)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", workspace.PnpmWorkspaceFile, err)
	}
	if changed {
		env.Logger.Debug("updated pnpm workspace", zap.String("path", env.rel(path)))
	}
	return nil
}
