package pipeline

import (
	"context"

	"github.com/jakoblorz/create-devhub/internal/manifest"
)

// BuildOutputs are the cache outputs of the build task across every app kind.
var BuildOutputs = []string{".next/**", "!.next/cache/**", "dist/**", "build/**"}

func updateTurboConfig(_ context.Context, env *Env) error {
	return env.updateManifest(env.Path("turbo.json"), func(doc *manifest.Document) error {
		// turbo 1.x names the task map "pipeline".
		tasks := "tasks"
		if !doc.Has(tasks) && doc.Has("pipeline") {
			tasks = "pipeline"
		}

		if err := doc.Set(manifest.Path(tasks, "build", "outputs"), BuildOutputs); err != nil {
			return err
		}
		dependsOn := manifest.Path(tasks, "build", "dependsOn")
		if !doc.Has(dependsOn) {
			if err := doc.Set(dependsOn, []string{"^build"}); err != nil {
				return err
			}
		}

		dev := manifest.Path(tasks, "dev")
		if env.Options.HasServer() && doc.Has(dev) {
			return doc.Set(manifest.Path(tasks, "dev", "cache"), false)
		}
		return nil
	})
}
