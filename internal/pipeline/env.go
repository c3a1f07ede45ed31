package pipeline

import (
	"path/filepath"

	"go.uber.org/zap"

	"github.com/jakoblorz/create-devhub/internal/filesystem"
	"github.com/jakoblorz/create-devhub/internal/manifest"
	"github.com/jakoblorz/create-devhub/internal/models"
	"github.com/jakoblorz/create-devhub/internal/runner"
	"github.com/jakoblorz/create-devhub/internal/templates"
)

// Env is what every step operates on. Root is threaded explicitly; steps
// never change the process working directory.
type Env struct {
	Options   models.Options
	Root      string
	FS        filesystem.FileSystem
	Runner    runner.Runner
	Templates *templates.Library
	Logger    *zap.Logger
}

// Path joins slash-separated elements onto Root.
func (e *Env) Path(elem ...string) string {
	parts := make([]string, 0, len(elem)+1)
	parts = append(parts, e.Root)
	for _, el := range elem {
		parts = append(parts, filepath.FromSlash(el))
	}
	return filepath.Join(parts...)
}

// AppPath returns the directory of app, optionally joined with elem.
func (e *Env) AppPath(app models.App, elem ...string) string {
	return e.Path(append([]string{app.Dir()}, elem...)...)
}

func (e *Env) withLogger(l *zap.Logger) *Env {
	c := *e
	c.Logger = l
	return &c
}

func (e *Env) rel(path string) string {
	if rel, err := filepath.Rel(e.Root, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return path
}

func (e *Env) writeFile(path string, data []byte) error {
	if err := e.FS.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := e.FS.WriteFile(path, data, 0644); err != nil {
		return err
	}
	e.Logger.Debug("wrote file", zap.String("path", e.rel(path)), zap.Int("bytes", len(data)))
	return nil
}

func (e *Env) removeAll(path string) error {
	if !e.FS.Exists(path) {
		return nil
	}
	if err := e.FS.RemoveAll(path); err != nil {
		return err
	}
	e.Logger.Debug("removed", zap.String("path", e.rel(path)))
	return nil
}

func (e *Env) copyTemplate(id templates.ID, dest string) error {
	written, err := e.Templates.Copy(e.FS, id, dest)
	if err != nil {
		return err
	}
	e.Logger.Debug("copied template",
		zap.String("template", string(id)),
		zap.String("dest", e.rel(dest)),
		zap.Int("files", len(written)))
	return nil
}

func (e *Env) copyTemplateFile(id templates.ID, name, target string) error {
	data, err := e.Templates.ReadFile(id, name)
	if err != nil {
		return err
	}
	return e.writeFile(target, data)
}

// updateManifest edits a JSON manifest when it exists.
func (e *Env) updateManifest(path string, fn func(*manifest.Document) error) error {
	found, err := manifest.Update(e.FS, path, fn)
	if err != nil {
		return err
	}
	if found {
		e.Logger.Debug("updated manifest", zap.String("path", e.rel(path)))
	} else {
		e.Logger.Debug("manifest absent, skipped", zap.String("path", e.rel(path)))
	}
	return nil
}
