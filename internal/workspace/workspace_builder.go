package workspace

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jakoblorz/create-devhub/internal/filesystem"
	"github.com/jakoblorz/create-devhub/internal/models"
)

// StarterBuilder lays out the tree the Turborepo starter generator produces,
// for tests that run the pipeline against a mock filesystem.
type StarterBuilder struct {
	fs      *filesystem.MockFileSystem
	root    string
	name    string
	pm      models.PackageManager
	noDocs  bool
	noType  bool
	files   map[string]string
	removed []string
}

// NewStarterBuilder creates a builder on a fresh MockFileSystem.
func NewStarterBuilder(root string) *StarterBuilder {
	fs := filesystem.NewMockFileSystem()
	fs.AddDir(root)
	fs.SetCurrentDir(filepath.Dir(root))
	return NewStarterBuilderOn(fs, root)
}

// NewStarterBuilderOn writes into an existing MockFileSystem.
func NewStarterBuilderOn(fs *filesystem.MockFileSystem, root string) *StarterBuilder {
	return &StarterBuilder{
		fs:    fs,
		root:  root,
		name:  filepath.Base(root),
		pm:    models.PackageManagerNPM,
		files: map[string]string{},
	}
}

// PackageManager selects the manager the starter was created for.
func (sb *StarterBuilder) PackageManager(pm models.PackageManager) *StarterBuilder {
	sb.pm = pm
	return sb
}

// WithoutDocs omits apps/docs.
func (sb *StarterBuilder) WithoutDocs() *StarterBuilder {
	sb.noDocs = true
	return sb
}

// WithoutModuleType omits "type": "module" from the root manifest.
func (sb *StarterBuilder) WithoutModuleType() *StarterBuilder {
	sb.noType = true
	return sb
}

// AddFile adds or replaces a file relative to the root.
func (sb *StarterBuilder) AddFile(rel, content string) *StarterBuilder {
	sb.files[rel] = content
	return sb
}

// Remove deletes a path relative to the root after the starter is written.
func (sb *StarterBuilder) Remove(rel string) *StarterBuilder {
	sb.removed = append(sb.removed, rel)
	return sb
}

// Build writes the starter and returns the filesystem.
func (sb *StarterBuilder) Build() *filesystem.MockFileSystem {
	sb.write("package.json", sb.rootManifest())
	sb.write("turbo.json", starterTurbo)
	sb.write(".gitignore", starterGitignore)
	sb.write("README.md", "# Turborepo starter\n")
	if sb.pm == models.PackageManagerPNPM {
		sb.write(PnpmWorkspaceFile, "packages:\n  - \"apps/*\"\n  - \"packages/*\"\n")
	}

	sb.addNextApp("web", 3000)
	if !sb.noDocs {
		sb.addNextApp("docs", 3001)
	}

	sb.write("packages/typescript-config/package.json", starterTSConfigManifest)
	sb.write("packages/typescript-config/base.json", `{"compilerOptions":{"strict":true}}`+"\n")
	sb.write("packages/typescript-config/nextjs.json", `{"extends":"./base.json"}`+"\n")
	sb.write("packages/typescript-config/react-library.json", `{"extends":"./base.json"}`+"\n")

	sb.write("packages/eslint-config/package.json", starterESLintManifest)
	sb.write("packages/eslint-config/base.js", "export const config = [];\n")
	sb.write("packages/eslint-config/next.js", "export const nextJsConfig = [];\n")

	for rel, content := range sb.files {
		sb.write(rel, content)
	}
	for _, rel := range sb.removed {
		_ = sb.fs.RemoveAll(filepath.Join(sb.root, filepath.FromSlash(rel)))
	}
	return sb.fs
}

// FileSystem returns the mock filesystem
func (sb *StarterBuilder) FileSystem() *filesystem.MockFileSystem {
	return sb.fs
}

func (sb *StarterBuilder) write(rel, content string) {
	sb.fs.AddFile(filepath.Join(sb.root, filepath.FromSlash(rel)), []byte(content))
}

func (sb *StarterBuilder) rootManifest() string {
	var b strings.Builder
	b.WriteString("{\n")
	fmt.Fprintf(&b, "  \"name\": %q,\n", sb.name)
	b.WriteString("  \"private\": true,\n")
	if !sb.noType {
		b.WriteString("  \"type\": \"module\",\n")
	}
	b.WriteString(`  "scripts": {
    "build": "turbo run build",
    "dev": "turbo run dev",
    "lint": "turbo run lint",
    "check-types": "turbo run check-types"
  },
  "devDependencies": {
    "prettier": "^3.6.2",
    "turbo": "^2.5.8",
    "typescript": "5.9.2"
  },
`)
	if sb.pm != models.PackageManagerPNPM {
		b.WriteString("  \"workspaces\": [\n    \"apps/*\"\n  ],\n")
	}
	fmt.Fprintf(&b, "  \"packageManager\": \"%s@%s\"\n", sb.pm, starterManagerVersions[sb.pm])
	b.WriteString("}\n")
	return b.String()
}

func (sb *StarterBuilder) addNextApp(name string, port int) {
	dir := "apps/" + name
	sb.write(dir+"/package.json", fmt.Sprintf(`{
  "name": %q,
  "version": "0.1.0",
  "type": "module",
  "private": true,
  "scripts": {
    "dev": "next dev --turbopack --port %d",
    "build": "next build",
    "start": "next start",
    "lint": "next lint --max-warnings 0",
    "check-types": "tsc --noEmit"
  },
  "dependencies": {
    "next": "^15.5.0",
    "react": "^19.1.0",
    "react-dom": "^19.1.0"
  },
  "devDependencies": {
    "@repo/eslint-config": "*",
    "@repo/typescript-config": "*",
    "typescript": "5.9.2"
  }
}
`, name, port))
	sb.write(dir+"/app/page.tsx", "export default function Page() {\n  return <main>"+name+"</main>;\n}\n")
	sb.write(dir+"/app/layout.tsx", "import \"./globals.css\";\n\nexport default function RootLayout({ children }: { children: React.ReactNode }) {\n  return <html lang=\"en\"><body>{children}</body></html>;\n}\n")
	sb.write(dir+"/app/globals.css", "body {\n  margin: 0;\n}\n")
	sb.write(dir+"/next.config.js", "/** @type {import('next').NextConfig} */\nconst nextConfig = {};\n\nexport default nextConfig;\n")
	sb.write(dir+"/tsconfig.json", `{"extends":"@repo/typescript-config/nextjs.json"}`+"\n")
	sb.fs.AddDir(filepath.Join(sb.root, dir, "public"))
}

// AddViteApp writes what the Vite react-ts generator produces into dir.
func AddViteApp(fs *filesystem.MockFileSystem, dir string) {
	write := func(rel, content string) {
		fs.AddFile(filepath.Join(dir, filepath.FromSlash(rel)), []byte(content))
	}
	write("package.json", `{
  "name": "web",
  "private": true,
  "version": "0.0.0",
  "type": "module",
  "scripts": {
    "dev": "vite",
    "build": "tsc -b && vite build",
    "lint": "eslint .",
    "preview": "vite preview"
  },
  "dependencies": {
    "react": "^19.1.1",
    "react-dom": "^19.1.1"
  },
  "devDependencies": {
    "@vitejs/plugin-react": "^5.0.4",
    "typescript": "~5.9.3",
    "vite": "^7.1.7"
  }
}
`)
	write("index.html", "<!doctype html>\n<html lang=\"en\">\n  <body>\n    <div id=\"root\"></div>\n    <script type=\"module\" src=\"/src/main.tsx\"></script>\n  </body>\n</html>\n")
	write("vite.config.ts", "import { defineConfig } from 'vite'\nimport react from '@vitejs/plugin-react'\n\nexport default defineConfig({\n  plugins: [react()],\n})\n")
	write("src/App.tsx", "function App() {\n  return <h1>Vite + React</h1>\n}\n\nexport default App\n")
	write("src/App.css", "#root {\n  max-width: 1280px;\n}\n")
	write("src/index.css", ":root {\n  font-family: system-ui;\n}\n")
	write("src/main.tsx", "import { StrictMode } from 'react'\nimport { createRoot } from 'react-dom/client'\nimport './index.css'\nimport App from './App.tsx'\n\ncreateRoot(document.getElementById('root')!).render(\n  <StrictMode>\n    <App />\n  </StrictMode>,\n)\n")
	write("tsconfig.json", `{"files":[],"references":[{"path":"./tsconfig.app.json"}]}`+"\n")
	fs.AddDir(filepath.Join(dir, "public"))
}

var starterManagerVersions = map[models.PackageManager]string{
	models.PackageManagerNPM:  "10.9.2",
	models.PackageManagerYarn: "1.22.22",
	models.PackageManagerPNPM: "9.0.0",
	models.PackageManagerBun:  "1.2.0",
}

const starterTurbo = `{
  "$schema": "https://turborepo.com/schema.json",
  "ui": "tui",
  "tasks": {
    "build": {
      "inputs": ["$TURBO_DEFAULT$", ".env*"],
      "outputs": [".next/**", "!.next/cache/**"]
    },
    "lint": {
      "dependsOn": ["^lint"]
    },
    "check-types": {
      "dependsOn": ["^check-types"]
    },
    "dev": {
      "persistent": true
    }
  }
}
`

const starterGitignore = `# dependencies
node_modules
.pnp
.pnp.js

# turbo
.turbo

# build outputs
.next/
out/
build
dist

# misc
.DS_Store
*.pem
.env*.local
`

const starterTSConfigManifest = `{
  "name": "@repo/typescript-config",
  "version": "0.0.0",
  "private": true,
  "license": "MIT",
  "publishConfig": {
    "access": "public"
  }
}
`

const starterESLintManifest = `{
  "name": "@repo/eslint-config",
  "version": "0.0.0",
  "type": "module",
  "private": true,
  "exports": {
    "./base": "./base.js",
    "./next-js": "./next.js"
  }
}
`
