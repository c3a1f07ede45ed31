package pipeline

import (
	"context"
	"fmt"
)

func bootstrap(ctx context.Context, env *Env) error {
	if err := env.FS.MkdirAll(env.Root, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", env.Root, err)
	}

	return env.Runner.Run(ctx, env.Root, "npx",
		"create-turbo@latest", ".",
		"--package-manager", env.Options.PackageManager.String(),
		"--skip-install",
	)
}
