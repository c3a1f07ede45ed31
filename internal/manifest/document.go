// Package manifest edits JSON manifests (package.json, turbo.json) in place.
// Edits are path based so keys the generator does not own survive with their
// original order.
package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/jakoblorz/create-devhub/internal/filesystem"
)

// Document is a parsed JSON manifest.
type Document struct {
	raw []byte
}

var prettyOptions = &pretty.Options{Width: 0, Prefix: "", Indent: "  ", SortKeys: false}

// Path joins keys into an escaped gjson/sjson path. Keys may contain dots,
// slashes or '@' (scoped package names, export subpaths).
func Path(keys ...string) string {
	escaped := make([]string, len(keys))
	for i, k := range keys {
		escaped[i] = gjson.Escape(k)
	}
	return strings.Join(escaped, ".")
}

// Parse validates data and wraps it in a Document.
func Parse(data []byte) (*Document, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON")
	}
	if !gjson.ParseBytes(data).IsObject() {
		return nil, fmt.Errorf("manifest root must be an object")
	}
	raw := make([]byte, len(data))
	copy(raw, data)
	return &Document{raw: raw}, nil
}

// Load reads and parses the manifest at path.
func Load(fsys filesystem.FileSystem, path string) (*Document, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return doc, nil
}

// Update loads path, applies fn and writes the result back. A missing file is
// not an error: Update reports found=false and leaves the tree untouched.
func Update(fsys filesystem.FileSystem, path string, fn func(*Document) error) (bool, error) {
	if !fsys.Exists(path) {
		return false, nil
	}
	doc, err := Load(fsys, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return true, err
	}
	if err := fn(doc); err != nil {
		return true, fmt.Errorf("failed to update %s: %w", path, err)
	}
	return true, doc.Save(fsys, path)
}

// Get returns the value at path.
func (d *Document) Get(path string) gjson.Result {
	return gjson.GetBytes(d.raw, path)
}

// Has reports whether a value exists at path.
func (d *Document) Has(path string) bool {
	return d.Get(path).Exists()
}

// Set stores value at path, creating intermediate objects. Existing keys
// keep their position; new keys are appended to their parent.
func (d *Document) Set(path string, value any) error {
	raw, err := marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return d.SetRaw(path, raw)
}

// SetRaw stores pre-encoded JSON at path.
func (d *Document) SetRaw(path string, raw []byte) error {
	out, err := sjson.SetRawBytes(d.raw, path, raw)
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", path, err)
	}
	d.raw = out
	return nil
}

// Delete removes path. Deleting a missing path is a no-op.
func (d *Document) Delete(path string) error {
	if !d.Has(path) {
		return nil
	}
	out, err := sjson.DeleteBytes(d.raw, path)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	d.raw = out
	return nil
}

// AppendUnique appends each value missing from the string array at path.
// An absent path becomes a new array. A non-array value is left alone and
// reported as unchanged.
func (d *Document) AppendUnique(path string, values ...string) (bool, error) {
	current := d.Get(path)
	if !current.Exists() {
		return true, d.Set(path, values)
	}
	if !current.IsArray() {
		return false, nil
	}

	present := map[string]bool{}
	for _, item := range current.Array() {
		present[item.String()] = true
	}

	changed := false
	for _, v := range values {
		if present[v] {
			continue
		}
		if err := d.Set(path+".-1", v); err != nil {
			return changed, err
		}
		present[v] = true
		changed = true
	}
	return changed, nil
}

// Bytes returns the document indented with two spaces and a trailing newline.
func (d *Document) Bytes() []byte {
	return pretty.PrettyOptions(d.raw, prettyOptions)
}

// Save writes the formatted document to path.
func (d *Document) Save(fsys filesystem.FileSystem, path string) error {
	if err := fsys.WriteFile(path, d.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func marshal(value any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
