// Package templates holds the file trees copied into generated workspaces.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"

	"github.com/adrg/frontmatter"

	"github.com/jakoblorz/create-devhub/internal/filesystem"
)

//go:embed all:files
var embedded embed.FS

// DescriptorFile describes a template and is never copied.
const DescriptorFile = "TEMPLATE.md"

// ID names a template directory.
type ID string

const (
	HTTPExpress    ID = "http-express"
	HTTPFastify    ID = "http-fastify"
	WSServer       ID = "ws-server"
	UIPackage      ID = "ui-package"
	TailwindConfig ID = "tailwind-config"
	TailwindApp    ID = "tailwind-app"
	LandingPages   ID = "landing-pages"
	Dashboard      ID = "dashboard"
)

// Descriptor is the frontmatter of TEMPLATE.md.
type Descriptor struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Entry       string `yaml:"entry"`
	Port        int    `yaml:"port"`

	// Notes is the markdown body below the frontmatter.
	Notes string `yaml:"-"`
}

// Library reads templates from an fs.FS rooted at the template directories.
type Library struct {
	fsys fs.FS
}

// New returns the library backed by the embedded templates.
func New() *Library {
	sub, err := fs.Sub(embedded, "files")
	if err != nil {
		panic(fmt.Sprintf("embedded templates: %v", err))
	}
	return &Library{fsys: sub}
}

// NewFromFS returns a library over an arbitrary tree, one directory per ID.
func NewFromFS(fsys fs.FS) *Library {
	return &Library{fsys: fsys}
}

// IDs lists every template directory, sorted.
func (l *Library) IDs() ([]ID, error) {
	entries, err := fs.ReadDir(l.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	var ids []ID
	for _, e := range entries {
		if e.IsDir() {
			ids = append(ids, ID(e.Name()))
		}
	}
	return ids, nil
}

// Descriptor parses TEMPLATE.md of id.
func (l *Library) Descriptor(id ID) (*Descriptor, error) {
	data, err := fs.ReadFile(l.fsys, path.Join(string(id), DescriptorFile))
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", id, err)
	}

	var d Descriptor
	rest, err := frontmatter.Parse(bytes.NewReader(data), &d)
	if err != nil {
		return nil, fmt.Errorf("template %s: failed to parse frontmatter: %w", id, err)
	}
	if d.Name != string(id) {
		return nil, fmt.Errorf("template %s: descriptor names %q", id, d.Name)
	}
	d.Notes = string(bytes.TrimSpace(rest))
	return &d, nil
}

// ReadFile reads one file of a template. name is slash separated.
func (l *Library) ReadFile(id ID, name string) ([]byte, error) {
	data, err := fs.ReadFile(l.fsys, path.Join(string(id), name))
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", id, err)
	}
	return data, nil
}

// Files lists the files Copy would write, relative and slash separated.
func (l *Library) Files(id ID) ([]string, error) {
	root := string(id)
	var files []string
	err := fs.WalkDir(l.fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel := p[len(root)+1:]
		if rel == DescriptorFile {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", id, err)
	}
	sort.Strings(files)
	return files, nil
}

// Copy writes every file of id below dest, byte for byte, and returns the
// written paths.
func (l *Library) Copy(dst filesystem.FileSystem, id ID, dest string) ([]string, error) {
	files, err := l.Files(id)
	if err != nil {
		return nil, err
	}

	written := make([]string, 0, len(files))
	for _, rel := range files {
		target := filepath.Join(dest, filepath.FromSlash(rel))
		if err := l.CopyFile(dst, id, rel, target); err != nil {
			return written, err
		}
		written = append(written, target)
	}
	return written, nil
}

// CopyFile writes a single template file to target, creating parents.
func (l *Library) CopyFile(dst filesystem.FileSystem, id ID, name, target string) error {
	data, err := l.ReadFile(id, name)
	if err != nil {
		return err
	}
	if err := dst.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(target), err)
	}
	if err := dst.WriteFile(target, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	return nil
}
