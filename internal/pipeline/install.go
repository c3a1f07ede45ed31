package pipeline

import (
	"context"
	"fmt"

	"github.com/jakoblorz/create-devhub/internal/models"
)

func installDependencies(ctx context.Context, env *Env) error {
	stale := append([]string{"node_modules"}, models.Lockfiles...)
	for _, name := range stale {
		if err := env.removeAll(env.Path(name)); err != nil {
			return fmt.Errorf("failed to remove %s: %w", name, err)
		}
	}

	pm := env.Options.PackageManager
	return env.Runner.Run(ctx, env.Root, pm.String(), pm.InstallArgs()...)
}
