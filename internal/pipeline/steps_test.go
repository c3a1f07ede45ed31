package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jakoblorz/create-devhub/internal/filesystem"
	"github.com/jakoblorz/create-devhub/internal/manifest"
	"github.com/jakoblorz/create-devhub/internal/models"
	"github.com/jakoblorz/create-devhub/internal/runner"
	"github.com/jakoblorz/create-devhub/internal/templates"
	"github.com/jakoblorz/create-devhub/internal/workspace"
)

const testRoot = "/work/hub"

type harness struct {
	fs     *filesystem.MockFileSystem
	runner *runner.MockRunner
	env    *Env
}

// newHarness wires a MockRunner whose generator commands lay out the
// starter trees on the mock filesystem. configure may customize the starter.
func newHarness(t *testing.T, opts models.Options, configure ...func(*workspace.StarterBuilder)) *harness {
	t.Helper()

	fs := filesystem.NewMockFileSystem()
	fs.AddDir(filepath.Dir(testRoot))

	r := runner.NewMockRunner()
	r.On("npx create-turbo@latest", func(c runner.Call) error {
		b := workspace.NewStarterBuilderOn(fs, c.Dir).PackageManager(opts.PackageManager)
		for _, fn := range configure {
			fn(b)
		}
		b.Build()
		return nil
	})
	r.On("npx create-vite@latest", func(c runner.Call) error {
		workspace.AddViteApp(fs, filepath.Join(c.Dir, filepath.FromSlash(c.Args[1])))
		return nil
	})

	return &harness{
		fs:     fs,
		runner: r,
		env: &Env{
			Options:   opts,
			Root:      testRoot,
			FS:        fs,
			Runner:    r,
			Templates: templates.New(),
			Logger:    zaptest.NewLogger(t),
		},
	}
}

func (h *harness) run(t *testing.T) *Result {
	t.Helper()
	res, err := New(Steps(h.env.Options)).Run(context.Background(), h.env)
	require.NoError(t, err)
	return res
}

func (h *harness) read(t *testing.T, rel string) string {
	t.Helper()
	data, err := h.fs.ReadFile(h.env.Path(rel))
	require.NoError(t, err)
	return string(data)
}

func (h *harness) doc(t *testing.T, rel string) *manifest.Document {
	t.Helper()
	doc, err := manifest.Load(h.fs, h.env.Path(rel))
	require.NoError(t, err)
	return doc
}

func (h *harness) exists(rel string) bool {
	return h.fs.Exists(h.env.Path(rel))
}

func (h *harness) contents(t *testing.T) map[string]string {
	t.Helper()
	out := map[string]string{}
	for _, rel := range h.fs.Tree(testRoot) {
		if strings.HasSuffix(rel, "/") {
			out[rel] = ""
			continue
		}
		out[rel] = h.read(t, rel)
	}
	return out
}

func stringsAt(doc *manifest.Document, path string) []string {
	var out []string
	for _, v := range doc.Get(path).Array() {
		out = append(out, v.String())
	}
	return out
}

func template(t *testing.T, id templates.ID, name string) string {
	t.Helper()
	data, err := templates.New().ReadFile(id, name)
	require.NoError(t, err)
	return string(data)
}

func fullOptions() models.Options {
	return models.Options{
		ProjectName:     "hub",
		Frontend:        models.FrontendNext,
		IncludeDocs:     true,
		IncludeWS:       true,
		HTTPServer:      models.HTTPServerFastify,
		PackageManager:  models.PackageManagerPNPM,
		IncludeTailwind: true,
	}
}

func minimalOptions() models.Options {
	return models.Options{
		ProjectName:    "hub",
		Frontend:       models.FrontendVite,
		HTTPServer:     models.HTTPServerNone,
		PackageManager: models.PackageManagerNPM,
	}
}

func TestScaffold_FullStack(t *testing.T) {
	h := newHarness(t, fullOptions())
	res := h.run(t)

	require.Len(t, res.Completed, 10)
	require.Empty(t, res.Skipped)
	require.Equal(t, []string{
		"npx create-turbo@latest . --package-manager pnpm --skip-install",
		"pnpm install --recursive",
	}, h.runner.CommandLines())
	for _, call := range h.runner.Calls() {
		require.Equal(t, testRoot, call.Dir)
	}

	for _, app := range []string{"apps/web", "apps/docs", "apps/http-server", "apps/ws-server"} {
		require.True(t, h.exists(app), app)
	}
	for _, pkg := range []string{"packages/tailwind-config/package.json", "packages/ui/package.json", "packages/ui/src/button.tsx"} {
		require.True(t, h.exists(pkg), pkg)
	}
	require.False(t, h.exists("packages/ui/"+templates.DescriptorFile))

	require.Contains(t, h.read(t, "apps/http-server/src/index.ts"), templates.PortStatement(8000))
	require.Contains(t, h.read(t, "apps/http-server/src/index.ts"), "fastify")
	require.Contains(t, h.read(t, "apps/ws-server/src/index.ts"), templates.PortStatement(8080))
	require.Equal(t, "workspace:*", h.doc(t, "apps/http-server/package.json").Get(manifest.Path("devDependencies", "@repo/typescript-config")).String())
	require.Equal(t, "workspace:*", h.doc(t, "apps/ws-server/package.json").Get(manifest.Path("devDependencies", "@repo/typescript-config")).String())

	web := h.doc(t, "apps/web/package.json")
	require.Equal(t, "next dev --turbopack --port 3000", web.Get("scripts.dev").String())
	require.Equal(t, "next start --port 3000", web.Get("scripts.start").String())
	docs := h.doc(t, "apps/docs/package.json")
	require.Equal(t, "next dev --turbopack --port 3002", docs.Get("scripts.dev").String())
	require.Equal(t, "next start --port 3002", docs.Get("scripts.start").String())

	turbo := h.doc(t, "turbo.json")
	require.Equal(t, BuildOutputs, stringsAt(turbo, "tasks.build.outputs"))
	require.Equal(t, []string{"^build"}, stringsAt(turbo, "tasks.build.dependsOn"))
	require.False(t, turbo.Get("tasks.dev.cache").Bool())
	require.True(t, turbo.Has("tasks.dev.cache"))
	require.True(t, turbo.Get("tasks.dev.persistent").Bool())

	root := h.doc(t, "package.json")
	require.False(t, root.Has("type"))
	require.Equal(t, WorkspaceGlobs, stringsAt(root, "workspaces"))
	require.Equal(t, "^3.4.0", root.Get("devDependencies.tailwindcss").String())
	require.Equal(t, "^2.0.0", root.Get("devDependencies.tailwind-merge").String())
	require.Equal(t, "^3.6.2", root.Get("devDependencies.prettier").String())

	globs, err := workspace.ReadPnpmWorkspace(h.fs, h.env.Path(workspace.PnpmWorkspaceFile))
	require.NoError(t, err)
	require.Equal(t, WorkspaceGlobs, globs)

	tsconfig := h.doc(t, "packages/typescript-config/package.json")
	require.Equal(t, []string{"base.json", "nextjs.json", "react-library.json"}, stringsAt(tsconfig, "files"))
	require.Equal(t, "./nextjs.json", tsconfig.Get(manifest.Path("exports", "./nextjs.json")).String())

	for _, app := range []string{"apps/web", "apps/docs"} {
		require.True(t, h.exists(app+"/tailwind.config.mjs"), app)
		require.True(t, h.exists(app+"/postcss.config.mjs"), app)
		require.False(t, h.exists(app+"/tailwind.config.js"), app)

		css := h.read(t, app+"/app/globals.css")
		require.True(t, strings.HasPrefix(css, "@tailwind base;"), app)
		require.Contains(t, css, "margin: 0;")
		require.Equal(t, 1, strings.Count(css, "@tailwind base;"))

		require.Equal(t, template(t, templates.LandingPages, "nextjs-page.tsx"), h.read(t, app+"/app/page.tsx"))
		require.True(t, h.exists(app+"/public/dashboard/index.html"), app)
		require.True(t, h.exists(app+"/public/dashboard/app.js"), app)
	}

	snaps.MatchSnapshot(t, h.fs.Tree(testRoot))
}

func TestScaffold_Minimal(t *testing.T) {
	h := newHarness(t, minimalOptions())
	res := h.run(t)

	require.Equal(t, []string{StepAddServerApps, StepSetupStyling}, res.Skipped)
	require.Equal(t, []string{
		"npx create-turbo@latest . --package-manager npm --skip-install",
		"npx create-vite@latest apps/web --template react-ts",
		"npm install",
	}, h.runner.CommandLines())

	require.True(t, h.exists("apps/web"))
	for _, gone := range []string{
		"apps/docs",
		"apps/http-server",
		"apps/ws-server",
		"packages/tailwind-config",
		"packages/ui",
		"apps/web/app",
		"apps/web/next.config.js",
		"pnpm-workspace.yaml",
	} {
		require.False(t, h.exists(gone), gone)
	}

	web := h.doc(t, "apps/web/package.json")
	require.Equal(t, "vite --port 5173", web.Get("scripts.dev").String())
	require.Equal(t, "vite preview", web.Get("scripts.preview").String())

	require.Equal(t, template(t, templates.LandingPages, "vite-app.tsx"), h.read(t, "apps/web/src/App.tsx"))
	require.Equal(t, template(t, templates.LandingPages, "vite-index.css"), h.read(t, "apps/web/src/index.css"))
	require.Equal(t, template(t, templates.LandingPages, "vite-main.tsx"), h.read(t, "apps/web/src/main.tsx"))
	require.True(t, h.exists("apps/web/public/dashboard/index.html"))
	require.False(t, h.exists("apps/web/tailwind.config.mjs"))

	root := h.doc(t, "package.json")
	require.Equal(t, WorkspaceGlobs, stringsAt(root, "workspaces"))
	require.False(t, root.Has("devDependencies.tailwindcss"))
	require.False(t, root.Has("devDependencies.clsx"))

	turbo := h.doc(t, "turbo.json")
	require.False(t, turbo.Has("tasks.dev.cache"))
}

func TestScaffold_ViteWithTailwind(t *testing.T) {
	opts := minimalOptions()
	opts.IncludeTailwind = true
	opts.HTTPServer = models.HTTPServerExpress
	opts.PackageManager = models.PackageManagerYarn

	h := newHarness(t, opts)
	h.run(t)

	css := h.read(t, "apps/web/src/index.css")
	require.True(t, strings.HasPrefix(css, "@tailwind base;"))
	require.Equal(t, 1, strings.Count(css, "@tailwind base;"))
	require.Contains(t, css, template(t, templates.LandingPages, "vite-index.css"))
	require.True(t, h.exists("apps/web/tailwind.config.mjs"))

	require.Contains(t, h.read(t, "apps/http-server/src/index.ts"), "express")
	require.Contains(t, h.read(t, "apps/http-server/src/index.ts"), templates.PortStatement(8000))
	require.Equal(t, "workspace:*", h.doc(t, "apps/http-server/package.json").Get(manifest.Path("devDependencies", "@repo/typescript-config")).String())
	require.False(t, h.exists("apps/ws-server"))
	require.Equal(t, []string{"yarn", "install"}, strings.Fields(h.runner.CommandLines()[2]))
}

func TestScaffold_NPMUsesWildcardDependency(t *testing.T) {
	opts := fullOptions()
	opts.PackageManager = models.PackageManagerNPM

	h := newHarness(t, opts)
	h.run(t)

	require.Equal(t, "*", h.doc(t, "apps/ws-server/package.json").Get(manifest.Path("devDependencies", "@repo/typescript-config")).String())
	require.False(t, h.exists(workspace.PnpmWorkspaceFile))
}

func TestScaffold_CommonJSAppsAndCustomScripts(t *testing.T) {
	h := newHarness(t, fullOptions(), func(b *workspace.StarterBuilder) {
		b.AddFile("apps/docs/package.json", `{
  "name": "docs",
  "private": true,
  "scripts": {
    "dev": "next dev -p 4000"
  }
}
`)
	})
	h.run(t)

	require.True(t, h.exists("apps/docs/tailwind.config.js"))
	require.True(t, h.exists("apps/docs/postcss.config.js"))
	require.False(t, h.exists("apps/docs/tailwind.config.mjs"))
	require.Contains(t, h.read(t, "apps/docs/tailwind.config.js"), `require("@repo/tailwind-config/tailwind.config")`)

	docs := h.doc(t, "apps/docs/package.json")
	require.Equal(t, "next dev --port 3002", docs.Get("scripts.dev").String())
	require.False(t, docs.Has("scripts.start"))
}

func TestScaffold_NextRoutingVariants(t *testing.T) {
	t.Run("pages router", func(t *testing.T) {
		opts := fullOptions()
		h := newHarness(t, opts, func(b *workspace.StarterBuilder) {
			b.Remove("apps/docs/app")
			b.AddFile("apps/docs/pages/_app.tsx", "export default function App() { return null }\n")
		})
		h.run(t)

		require.Equal(t, template(t, templates.LandingPages, "nextjs-page.tsx"), h.read(t, "apps/docs/pages/index.tsx"))
		require.False(t, h.exists("apps/docs/app"))
		require.True(t, strings.HasPrefix(h.read(t, "apps/docs/styles/globals.css"), "@tailwind base;"))
	})

	t.Run("no routing directory", func(t *testing.T) {
		opts := fullOptions()
		opts.IncludeTailwind = false
		h := newHarness(t, opts, func(b *workspace.StarterBuilder) {
			b.Remove("apps/docs/app")
		})
		h.run(t)

		require.Equal(t, template(t, templates.LandingPages, "nextjs-page.tsx"), h.read(t, "apps/docs/app/page.tsx"))
		require.Equal(t, template(t, templates.LandingPages, "nextjs-layout.tsx"), h.read(t, "apps/docs/app/layout.tsx"))
		require.Equal(t, baseStylesheet, h.read(t, "apps/docs/app/globals.css"))
	})

	t.Run("stylesheet under styles", func(t *testing.T) {
		h := newHarness(t, fullOptions(), func(b *workspace.StarterBuilder) {
			b.AddFile("apps/web/styles/globals.css", "h1 { color: red; }\n")
		})
		h.run(t)

		require.True(t, strings.HasPrefix(h.read(t, "apps/web/styles/globals.css"), "@tailwind base;"))
		require.Equal(t, "body {\n  margin: 0;\n}\n", h.read(t, "apps/web/app/globals.css"))
	})
}

func TestScaffold_ExistingTailwindStylesheetUntouched(t *testing.T) {
	const css = "@tailwind base;\n@tailwind utilities;\n"
	h := newHarness(t, fullOptions(), func(b *workspace.StarterBuilder) {
		b.AddFile("apps/web/app/globals.css", css)
	})
	h.run(t)

	require.Equal(t, css, h.read(t, "apps/web/app/globals.css"))
}

func TestScaffold_BootstrapFailure(t *testing.T) {
	h := newHarness(t, fullOptions())
	h.runner.Fail("npx create-turbo@latest", errors.New("exit status 1"))

	rep := &recordingReporter{}
	res, err := New(Steps(h.env.Options), WithReporter(rep)).Run(context.Background(), h.env)
	require.Error(t, err)

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	require.Equal(t, StepBootstrap, stepErr.Step)

	var cmdErr *runner.CommandError
	require.ErrorAs(t, err, &cmdErr)
	require.Equal(t, "npx", cmdErr.Name)

	require.Empty(t, res.Completed)
	require.Len(t, h.runner.Calls(), 1)
	require.Equal(t, []string{"start bootstrap", "fail bootstrap: " + cmdErr.Error()}, rep.events)
	require.Empty(t, h.fs.Tree(testRoot))
}

func TestScaffold_InstallFailure(t *testing.T) {
	h := newHarness(t, minimalOptions())
	h.runner.Fail("npm install", errors.New("exit status 1"))

	res, err := New(Steps(h.env.Options)).Run(context.Background(), h.env)
	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	require.Equal(t, StepInstall, stepErr.Step)
	require.Len(t, res.Completed, 7)

	// Earlier steps are not rolled back.
	require.True(t, h.exists("apps/web/public/dashboard/index.html"))
}

func TestScaffold_RemovesStaleInstallState(t *testing.T) {
	h := newHarness(t, minimalOptions(), func(b *workspace.StarterBuilder) {
		b.AddFile("node_modules/turbo/package.json", `{"name":"turbo"}`)
		b.AddFile("package-lock.json", "{}")
		b.AddFile("yarn.lock", "")
	})
	h.run(t)

	require.False(t, h.exists("node_modules"))
	require.False(t, h.exists("package-lock.json"))
	require.False(t, h.exists("yarn.lock"))
}

func TestScaffold_MutationStepsAreIdempotent(t *testing.T) {
	h := newHarness(t, fullOptions())
	h.run(t)
	before := h.contents(t)

	var again []Step
	for _, s := range Steps(h.env.Options) {
		switch s.Name {
		case StepBootstrap, StepCustomizeApps, StepAddServerApps, StepInstall:
			continue
		}
		again = append(again, s)
	}
	_, err := New(again).Run(context.Background(), h.env)
	require.NoError(t, err)

	require.Equal(t, before, h.contents(t))
}

func TestUpdateRootManifest_Variants(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		path     string
		want     []string
	}{
		{
			name:     "absent",
			manifest: `{"name":"hub","type":"module"}`,
			path:     "workspaces",
			want:     []string{"apps/*", "packages/*"},
		},
		{
			name:     "partial",
			manifest: `{"name":"hub","workspaces":["apps/*","tools/*"]}`,
			path:     "workspaces",
			want:     []string{"apps/*", "tools/*", "packages/*"},
		},
		{
			name:     "complete",
			manifest: `{"name":"hub","workspaces":["packages/*","apps/*"]}`,
			path:     "workspaces",
			want:     []string{"packages/*", "apps/*"},
		},
		{
			name:     "object form",
			manifest: `{"name":"hub","workspaces":{"packages":["apps/*"],"nohoist":["**/react-native"]}}`,
			path:     "workspaces.packages",
			want:     []string{"apps/*", "packages/*"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := bareEnv(t)
			env.Options.PackageManager = models.PackageManagerNPM
			env.FS.(*filesystem.MockFileSystem).AddFile(env.Path("package.json"), []byte(tt.manifest))

			require.NoError(t, updateRootManifest(context.Background(), env))

			doc, err := manifest.Load(env.FS, env.Path("package.json"))
			require.NoError(t, err)
			require.False(t, doc.Has("type"))
			require.Equal(t, "hub", doc.Get("name").String())
			require.Equal(t, tt.want, stringsAt(doc, tt.path))
		})
	}
}

func TestUpdateTurboConfig_Variants(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		env := bareEnv(t)
		require.NoError(t, updateTurboConfig(context.Background(), env))
		require.False(t, env.FS.Exists(env.Path("turbo.json")))
	})

	t.Run("no tasks", func(t *testing.T) {
		env := bareEnv(t)
		env.FS.(*filesystem.MockFileSystem).AddFile(env.Path("turbo.json"), []byte(`{"$schema":"https://turborepo.com/schema.json"}`))
		require.NoError(t, updateTurboConfig(context.Background(), env))

		doc, err := manifest.Load(env.FS, env.Path("turbo.json"))
		require.NoError(t, err)
		require.Equal(t, BuildOutputs, stringsAt(doc, "tasks.build.outputs"))
		require.Equal(t, []string{"^build"}, stringsAt(doc, "tasks.build.dependsOn"))
	})

	t.Run("legacy pipeline key", func(t *testing.T) {
		env := bareEnv(t)
		env.Options.IncludeWS = true
		env.FS.(*filesystem.MockFileSystem).AddFile(env.Path("turbo.json"), []byte(`{"pipeline":{"build":{"dependsOn":["^build","codegen"]},"dev":{"persistent":true}}}`))
		require.NoError(t, updateTurboConfig(context.Background(), env))

		doc, err := manifest.Load(env.FS, env.Path("turbo.json"))
		require.NoError(t, err)
		require.False(t, doc.Has("tasks"))
		require.Equal(t, []string{"^build", "codegen"}, stringsAt(doc, "pipeline.build.dependsOn"))
		require.Equal(t, BuildOutputs, stringsAt(doc, "pipeline.build.outputs"))
		require.True(t, doc.Has("pipeline.dev.cache"))
	})
}

func TestWithPort(t *testing.T) {
	tests := []struct {
		script string
		port   int
		want   string
	}{
		{"next dev", 3000, "next dev --port 3000"},
		{"next dev --turbopack --port 3001", 3002, "next dev --turbopack --port 3002"},
		{"next dev --port=3001 --turbopack", 3002, "next dev --port 3002 --turbopack"},
		{"next dev -p 4000", 3002, "next dev --port 3002"},
		{"vite", 5173, "vite --port 5173"},
		{"vite --port 5173", 5173, "vite --port 5173"},
		{"", 8000, "--port 8000"},
	}

	for _, tt := range tests {
		t.Run(tt.script, func(t *testing.T) {
			require.Equal(t, tt.want, WithPort(tt.script, tt.port))
		})
	}
}
