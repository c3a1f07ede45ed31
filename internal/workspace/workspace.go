package workspace

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	gitignore "github.com/denormal/go-gitignore"
	"github.com/tidwall/gjson"

	"github.com/jakoblorz/create-devhub/internal/filesystem"
	"github.com/jakoblorz/create-devhub/internal/manifest"
	"github.com/jakoblorz/create-devhub/internal/models"
)

// ErrTargetNotEmpty is returned when the project directory already has content.
var ErrTargetNotEmpty = errors.New("target directory is not empty")

// EnsureEmptyTarget fails with ErrTargetNotEmpty when path exists and holds
// any entry (or is not a directory). A missing path is fine.
func EnsureEmptyTarget(fsys filesystem.FileSystem, path string) error {
	info, err := fsys.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s exists and is not a directory: %w", path, ErrTargetNotEmpty)
	}

	entries, err := fsys.ReadDir(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(entries) > 0 {
		return fmt.Errorf("%s: %w", path, ErrTargetNotEmpty)
	}
	return nil
}

// Workspace is a generated Node monorepo rooted at RootPath.
type Workspace struct {
	fs           filesystem.FileSystem
	RootPath     string
	Projects     []*models.Project
	strictGlobs  bool
	alwaysIgnore []string
}

// Option configures workspace behavior.
type Option func(*Workspace)

// WithStrictWorkspaces limits discovery to the root "workspaces" globs.
func WithStrictWorkspaces(enabled bool) Option {
	return func(w *Workspace) {
		w.strictGlobs = enabled
	}
}

// New creates a Workspace for the monorepo at root.
func New(fs filesystem.FileSystem, root string, options ...Option) *Workspace {
	ws := &Workspace{
		fs:           fs,
		RootPath:     filepath.Clean(root),
		Projects:     []*models.Project{},
		alwaysIgnore: []string{"node_modules", ".turbo", ".git"},
	}

	for _, option := range options {
		option(ws)
	}

	return ws
}

// Detect loads every package of the workspace.
func (w *Workspace) Detect() error {
	rootPackagePath := filepath.Join(w.RootPath, "package.json")
	if !w.fs.Exists(rootPackagePath) {
		return fmt.Errorf("workspace not found: no package.json in %s", w.RootPath)
	}

	projects, err := w.loadManifestProjects(rootPackagePath)
	if err != nil {
		return fmt.Errorf("failed to load projects: %w", err)
	}

	if !w.strictGlobs {
		walked, err := w.walkProjects(rootPackagePath)
		if err != nil {
			return fmt.Errorf("failed to load projects: %w", err)
		}
		projects = mergeProjects(projects, walked)
	}

	sort.SliceStable(projects, func(i, j int) bool {
		return projects[i].RelPath < projects[j].RelPath
	})
	w.Projects = dedupeProjectNames(projects)
	return nil
}

// Count is the number of workspace projects including the root.
func (w *Workspace) Count() int {
	return 1 + len(w.Projects)
}

// ProjectsOfType filters Projects by kind.
func (w *Workspace) ProjectsOfType(t models.ProjectType) []*models.Project {
	var out []*models.Project
	for _, p := range w.Projects {
		if p.Type == t {
			out = append(out, p)
		}
	}
	return out
}

// GetProject returns a project by name.
func (w *Workspace) GetProject(name string) (*models.Project, error) {
	for _, p := range w.Projects {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("project %s not found in workspace", name)
}

// GetProjectNames returns a list of all project names.
func (w *Workspace) GetProjectNames() []string {
	names := make([]string, len(w.Projects))
	for i, p := range w.Projects {
		names[i] = p.Name
	}
	return names
}

// Globs returns the root workspace patterns. pnpm keeps them in
// pnpm-workspace.yaml; npm, yarn and bun in package.json.
func (w *Workspace) Globs() ([]string, error) {
	doc, err := manifest.Load(w.fs, filepath.Join(w.RootPath, "package.json"))
	if err != nil {
		return nil, err
	}
	globs := extractWorkspaces(doc)

	pnpmPath := filepath.Join(w.RootPath, PnpmWorkspaceFile)
	if w.fs.Exists(pnpmPath) {
		pnpmGlobs, err := ReadPnpmWorkspace(w.fs, pnpmPath)
		if err != nil {
			return nil, err
		}
		globs = appendMissing(globs, pnpmGlobs...)
	}
	return globs, nil
}

func (w *Workspace) loadManifestProjects(rootPackagePath string) ([]*models.Project, error) {
	globs, err := w.Globs()
	if err != nil {
		return nil, fmt.Errorf("failed to read root package.json: %w", err)
	}

	var projects []*models.Project
	for _, pattern := range globs {
		globPattern := filepath.Join(w.RootPath, filepath.FromSlash(pattern))
		matches, err := w.fs.Glob(globPattern)
		if err != nil {
			return nil, fmt.Errorf("failed to glob workspace pattern %s: %w", pattern, err)
		}

		for _, match := range matches {
			pkgPath := match
			info, err := w.fs.Stat(match)
			if err == nil {
				if info.IsDir() {
					pkgPath = filepath.Join(match, "package.json")
				} else if filepath.Base(match) != "package.json" {
					continue
				}
			}

			if pkgPath == rootPackagePath || !w.fs.Exists(pkgPath) {
				continue
			}

			project, err := w.projectFromManifest(pkgPath)
			if err != nil {
				return nil, err
			}
			if project != nil {
				projects = append(projects, project)
			}
		}
	}

	return projects, nil
}

// walkProjects finds package.json files the globs missed, honouring the root
// .gitignore.
func (w *Workspace) walkProjects(rootPackagePath string) ([]*models.Project, error) {
	ignore, err := w.loadRootGitIgnore()
	if err != nil {
		return nil, err
	}

	var projects []*models.Project
	err = w.fs.WalkDir(w.RootPath, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == w.RootPath {
			return nil
		}

		rel, relErr := filepath.Rel(w.RootPath, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if entry.IsDir() {
			for _, name := range w.alwaysIgnore {
				if entry.Name() == name {
					return filepath.SkipDir
				}
			}
		}

		if ignore != nil {
			if match := ignore.Relative(rel, entry.IsDir()); match != nil && match.Ignore() {
				if entry.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		if entry.IsDir() || entry.Name() != "package.json" || path == rootPackagePath {
			return nil
		}

		project, err := w.projectFromManifest(path)
		if err != nil {
			return err
		}
		if project != nil {
			projects = append(projects, project)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return projects, nil
}

func (w *Workspace) projectFromManifest(pkgPath string) (*models.Project, error) {
	doc, err := manifest.Load(w.fs, pkgPath)
	if err != nil {
		return nil, err
	}

	root := filepath.Dir(pkgPath)
	rel, err := filepath.Rel(w.RootPath, root)
	if err != nil {
		return nil, err
	}
	rel = filepath.ToSlash(rel)

	name := strings.TrimSpace(doc.Get("name").String())
	if name == "" {
		name = filepath.Base(root)
	}

	projectType := models.ProjectTypePackage
	if strings.HasPrefix(rel, "apps/") {
		projectType = models.ProjectTypeApp
	}

	project := models.NewProject(name, root, rel, pkgPath, projectType)
	project.Private = doc.Get("private").Bool()
	return project, nil
}

func (w *Workspace) loadRootGitIgnore() (gitignore.GitIgnore, error) {
	ignorePath := filepath.Join(w.RootPath, ".gitignore")
	if !w.fs.Exists(ignorePath) {
		return nil, nil
	}

	data, err := w.fs.ReadFile(ignorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read .gitignore: %w", err)
	}

	return gitignore.New(bytes.NewReader(data), w.RootPath, nil), nil
}

func mergeProjects(normal, additional []*models.Project) []*models.Project {
	projects := append([]*models.Project{}, normal...)
	if len(additional) == 0 {
		return projects
	}

	byManifest := make(map[string]struct{}, len(normal))
	for _, project := range normal {
		byManifest[project.ManifestPath] = struct{}{}
	}

	for _, project := range additional {
		if _, exists := byManifest[project.ManifestPath]; exists {
			continue
		}
		byManifest[project.ManifestPath] = struct{}{}
		projects = append(projects, project)
	}

	return projects
}

func dedupeProjectNames(projects []*models.Project) []*models.Project {
	counts := make(map[string]int)
	for _, p := range projects {
		counts[p.Name]++
	}

	used := make(map[string]int)
	for _, p := range projects {
		name := p.Name
		if counts[p.Name] > 1 {
			name = fmt.Sprintf("%s-%s", p.Name, string(p.Type))
		}

		if used[name] > 0 {
			name = fmt.Sprintf("%s-%d", name, used[name]+1)
		}

		used[name]++
		p.Name = name
	}

	return projects
}

// extractWorkspaces reads "workspaces" in either the array form or the
// {"packages": [...]} form.
// See https://docs.npmjs.com/cli/v10/using-npm/workspaces.
func extractWorkspaces(doc *manifest.Document) []string {
	ws := doc.Get("workspaces")
	if ws.IsObject() {
		ws = ws.Get("packages")
	}
	if !ws.IsArray() {
		return nil
	}

	var result []string
	ws.ForEach(func(_, item gjson.Result) bool {
		if item.Type == gjson.String && strings.TrimSpace(item.String()) != "" {
			result = append(result, item.String())
		}
		return true
	})
	return result
}

func appendMissing(list []string, values ...string) []string {
	seen := make(map[string]struct{}, len(list))
	for _, v := range list {
		seen[v] = struct{}{}
	}
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		list = append(list, v)
	}
	return list
}
