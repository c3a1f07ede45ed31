package workspace

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/jakoblorz/create-devhub/internal/filesystem"
)

// PnpmWorkspaceFile lists workspace globs for pnpm, which ignores the
// "workspaces" field of package.json.
const PnpmWorkspaceFile = "pnpm-workspace.yaml"

// ReadPnpmWorkspace returns the "packages" globs of a pnpm-workspace.yaml.
func ReadPnpmWorkspace(fsys filesystem.FileSystem, path string) ([]string, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var cfg struct {
		Packages []string `yaml:"packages"`
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg.Packages, nil
}

// EnsurePnpmWorkspace makes sure every glob is listed under "packages",
// creating the file when needed. Other keys and comments are kept.
func EnsurePnpmWorkspace(fsys filesystem.FileSystem, path string, globs ...string) (bool, error) {
	var doc yaml.Node
	if fsys.Exists(path) {
		data, err := fsys.ReadFile(path)
		if err != nil {
			return false, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return false, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if doc.Kind == 0 {
		doc = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return false, fmt.Errorf("%s: top level must be a mapping", path)
	}

	packages := mappingValue(root, "packages")
	if packages == nil {
		packages = &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "packages"},
			packages,
		)
	}
	if packages.Kind != yaml.SequenceNode {
		return false, fmt.Errorf("%s: packages must be a list", path)
	}

	present := map[string]bool{}
	for _, item := range packages.Content {
		present[item.Value] = true
	}

	changed := false
	for _, g := range globs {
		if present[g] {
			continue
		}
		packages.Content = append(packages.Content, &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!str",
			Value: g,
			Style: yaml.DoubleQuotedStyle,
		})
		present[g] = true
		changed = true
	}
	if !changed {
		return false, nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return false, fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return false, fmt.Errorf("failed to encode %s: %w", path, err)
	}

	if err := fsys.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}
