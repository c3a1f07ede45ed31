package pipeline

import (
	"fmt"

	"github.com/jakoblorz/create-devhub/internal/models"
)

// Step names in execution order.
const (
	StepBootstrap          = "bootstrap"
	StepCustomizeApps      = "customize-apps"
	StepAddServerApps      = "add-server-apps"
	StepConfigurePorts     = "configure-ports"
	StepUpdateTurboConfig  = "update-turbo-config"
	StepUpdateRootManifest = "update-root-manifest"
	StepFixTypeScript      = "fix-typescript-config"
	StepSetupStyling       = "setup-styling"
	StepLandingPages       = "create-landing-pages"
	StepInstall            = "install-dependencies"
)

// Steps returns the scaffolding steps for opts in their fixed order.
func Steps(opts models.Options) []Step {
	return []Step{
		{
			Name:  StepBootstrap,
			Title: "Creating Turborepo starter",
			Done:  "Turborepo starter created",
			Run:   bootstrap,
		},
		{
			Name:  StepCustomizeApps,
			Title: "Customizing frontend apps",
			Done:  "Frontend apps ready",
			Run:   customizeApps,
		},
		{
			Name:    StepAddServerApps,
			Title:   "Adding server apps",
			Done:    "Server apps added",
			Enabled: models.Options.HasServer,
			Run:     addServerApps,
		},
		{
			Name:  StepConfigurePorts,
			Title: "Configuring ports",
			Done:  "Ports configured",
			Run:   configurePorts,
		},
		{
			Name:  StepUpdateTurboConfig,
			Title: "Updating turbo.json",
			Done:  "turbo.json updated",
			Run:   updateTurboConfig,
		},
		{
			Name:  StepUpdateRootManifest,
			Title: "Updating root package.json",
			Done:  "Root package.json updated",
			Run:   updateRootManifest,
		},
		{
			Name:  StepFixTypeScript,
			Title: "Fixing TypeScript config exports",
			Done:  "TypeScript config exports fixed",
			Run:   fixTypeScriptConfig,
		},
		{
			Name:  StepSetupStyling,
			Title: "Setting up Tailwind CSS",
			Done:  "Tailwind CSS configured",
			Enabled: func(o models.Options) bool {
				return o.IncludeTailwind
			},
			Run: setupStyling,
		},
		{
			Name:  StepLandingPages,
			Title: "Creating landing pages",
			Done:  "Landing pages created",
			Run:   createLandingPages,
		},
		{
			Name:  StepInstall,
			Title: fmt.Sprintf("Installing dependencies with %s (%d workspaces)", opts.PackageManager, opts.WorkspaceCount()),
			Done:  "Dependencies installed",
			Run:   installDependencies,
		},
	}
}
