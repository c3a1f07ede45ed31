package templates

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/jakoblorz/create-devhub/internal/filesystem"
)

var portStatement = regexp.MustCompile(`const PORT = process\.env\.PORT \? parseInt\(process\.env\.PORT\) : \d+;`)

// PortStatement renders the default-port line every server entry carries.
func PortStatement(port int) string {
	return fmt.Sprintf("const PORT = process.env.PORT ? parseInt(process.env.PORT) : %d;", port)
}

// ReplacePort rewrites the first port statement in src. It reports false
// when src has none.
func ReplacePort(src []byte, port int) ([]byte, bool) {
	loc := portStatement.FindIndex(src)
	if loc == nil {
		return src, false
	}
	out := make([]byte, 0, len(src))
	out = append(out, src[:loc[0]]...)
	out = append(out, PortStatement(port)...)
	out = append(out, src[loc[1]:]...)
	return out, true
}

// SetPort applies ReplacePort to the file at path. A missing file or a file
// without the statement is left untouched.
func SetPort(fsys filesystem.FileSystem, path string, port int) (bool, error) {
	if !fsys.Exists(path) {
		return false, nil
	}
	src, err := fsys.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	out, ok := ReplacePort(src, port)
	if !ok || bytes.Equal(out, src) {
		return false, nil
	}
	if err := fsys.WriteFile(path, out, 0644); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}

// PrependOnce puts text in front of the file at path unless it already
// contains marker. Missing files are skipped.
func PrependOnce(fsys filesystem.FileSystem, path, marker string, text []byte) (bool, error) {
	if !fsys.Exists(path) {
		return false, nil
	}
	src, err := fsys.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if bytes.Contains(src, []byte(marker)) {
		return false, nil
	}

	out := make([]byte, 0, len(text)+1+len(src))
	out = append(out, text...)
	if len(src) > 0 {
		if !bytes.HasSuffix(text, []byte("\n")) {
			out = append(out, '\n')
		}
		out = append(out, '\n')
		out = append(out, src...)
	}
	if err := fsys.WriteFile(path, out, 0644); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}
