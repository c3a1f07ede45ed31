package pipeline

import (
	"context"

	"github.com/jakoblorz/create-devhub/internal/manifest"
)

var typescriptConfigFiles = []string{"base.json", "nextjs.json", "react-library.json"}

func fixTypeScriptConfig(_ context.Context, env *Env) error {
	path := env.Path("packages", "typescript-config", "package.json")
	return env.updateManifest(path, func(doc *manifest.Document) error {
		exports := make(manifest.Object, 0, len(typescriptConfigFiles))
		for _, file := range typescriptConfigFiles {
			exports = append(exports, manifest.Field{Key: "./" + file, Value: "./" + file})
		}
		if err := doc.Set("exports", exports); err != nil {
			return err
		}
		return doc.Set("files", typescriptConfigFiles)
	})
}
