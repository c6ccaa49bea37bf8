// Package manifest reads a package's manifest: package.json, or the
// package.yaml that pnpm accepts in its place.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v2"

	"github.com/ikmich/package-deps-admin/internal/api"
)

const (
	JSONFile = "package.json"
	YAMLFile = "package.yaml"
)

// Manifest holds the fields of a manifest this tool reads.
type Manifest struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version" yaml:"version"`

	// PackageManager is the corepack field, e.g. "pnpm@8.6.0".
	PackageManager string `json:"packageManager" yaml:"packageManager"`

	DependencyMap    map[string]string `json:"dependencies" yaml:"dependencies"`
	DevDependencyMap map[string]string `json:"devDependencies" yaml:"devDependencies"`

	// Path is the file the manifest was read from.
	Path string `json:"-" yaml:"-"`
}

// Locate returns the manifest file in root. package.json wins over
// package.yaml.
func Locate(root string) (string, bool) {
	for _, name := range []string{JSONFile, YAMLFile} {
		path := filepath.Join(root, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// Read loads the manifest in root. If there is none, the error wraps
// api.ErrManifestNotFound.
func Read(root string) (*Manifest, error) {
	path, ok := Locate(root)
	if !ok {
		return nil, fmt.Errorf("%w: %s", api.ErrManifestNotFound, filepath.Join(root, JSONFile))
	}
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	m := &Manifest{Path: path}
	if filepath.Base(path) == YAMLFile {
		err = yaml.Unmarshal(contents, m)
	} else {
		err = json.Unmarshal(contents, m)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// RuntimeDependencies returns the dependencies map as a list sorted by
// name.
func (m *Manifest) RuntimeDependencies() []api.Dependency {
	return sortedDependencies(m.DependencyMap)
}

// DevDependencies returns the devDependencies map as a list sorted by
// name.
func (m *Manifest) DevDependencies() []api.Dependency {
	return sortedDependencies(m.DevDependencyMap)
}

func sortedDependencies(specs map[string]string) []api.Dependency {
	names := make([]string, 0, len(specs))
	for name := range specs {
		names = append(names, name)
	}
	sort.Strings(names)

	ds := make([]api.Dependency, 0, len(names))
	for _, name := range names {
		ds = append(ds, api.Pinned(name, specs[name]))
	}
	return ds
}
