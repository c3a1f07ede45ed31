package models

// ProjectType represents the kind of workspace project.
type ProjectType string

const (
	ProjectTypeApp     ProjectType = "app"
	ProjectTypePackage ProjectType = "package"
)

// Project is a Node package discovered in the generated workspace.
type Project struct {
	// Name is the "name" field from package.json, or the directory name.
	Name string

	// RootPath is the absolute path to the project root
	RootPath string

	// RelPath is RootPath relative to the workspace root, slash separated.
	RelPath string

	// ManifestPath is the path to package.json.
	ManifestPath string

	// Private mirrors the manifest's "private" flag.
	Private bool

	// Type is derived from the top-level directory (apps/ or packages/).
	Type ProjectType
}

// NewProject creates a new Project instance
func NewProject(name, rootPath, relPath, manifestPath string, projectType ProjectType) *Project {
	return &Project{
		Name:         name,
		RootPath:     rootPath,
		RelPath:      relPath,
		ManifestPath: manifestPath,
		Type:         projectType,
	}
}
