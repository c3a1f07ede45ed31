package workspace

import (
	"path/filepath"

	"github.com/jakoblorz/create-devhub/internal/filesystem"
)

// FindFileUp looks for filename in startDir and each parent directory.
func FindFileUp(fs filesystem.FileSystem, startDir, filename string) (string, bool, error) {
	dir := filepath.Clean(startDir)

	for {
		candidate := filepath.Join(dir, filename)
		if fs.Exists(candidate) {
			return candidate, true, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}
