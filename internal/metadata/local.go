// local.go resolves path dependencies without cargo by reading their
// manifests with go-toml.
package metadata

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pelletier/go-toml/v2"

	"github.com/mmr-tortoise/cargo-feature/internal/model"
)

// LocalProvider resolves capabilities of path dependencies by reading their
// Cargo.toml directly. It needs no cargo installation and no network, but
// only works for crates declared with `path = "..."`.
type LocalProvider struct {
	// ManifestPath is the manifest declaring the dependency.
	ManifestPath string
}

// cargoManifest is the subset of a Cargo.toml read by LocalProvider.
type cargoManifest struct {
	Package           map[string]interface{}   `toml:"package"`
	Features          map[string][]string      `toml:"features"`
	Dependencies      map[string]interface{}   `toml:"dependencies"`
	DevDependencies   map[string]interface{}   `toml:"dev-dependencies"`
	BuildDependencies map[string]interface{}   `toml:"build-dependencies"`
	Target            map[string]targetSection `toml:"target"`
	Workspace         struct {
		Dependencies map[string]interface{} `toml:"dependencies"`
	} `toml:"workspace"`
}

type targetSection struct {
	Dependencies      map[string]interface{} `toml:"dependencies"`
	DevDependencies   map[string]interface{} `toml:"dev-dependencies"`
	BuildDependencies map[string]interface{} `toml:"build-dependencies"`
}

// Capabilities finds crate among the manifest's dependencies and reads the
// manifest at its path.
func (p *LocalProvider) Capabilities(_ context.Context, crate string) (*model.PackageCapabilities, error) {
	root, err := readCargoManifest(p.ManifestPath)
	if err != nil {
		return nil, err
	}

	dir, err := root.dependencyPath(crate)
	if err != nil {
		return nil, err
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(filepath.Dir(p.ManifestPath), dir)
	}

	dep, err := readCargoManifest(filepath.Join(dir, "Cargo.toml"))
	if err != nil {
		return nil, err
	}
	return dep.capabilities(), nil
}

func readCargoManifest(path string) (*cargoManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, model.WrapCLIError(
			model.ExitMetadataFailed,
			fmt.Sprintf("failed to read manifest: %s", path),
			err,
		)
	}

	var m cargoManifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, model.WrapCLIError(
			model.ExitMetadataFailed,
			fmt.Sprintf("failed to parse manifest: %s", path),
			err,
		)
	}
	return &m, nil
}

// dependencyTables returns every dependency table: top-level ones first,
// then those of each target in sorted order.
func (m *cargoManifest) dependencyTables() []map[string]interface{} {
	tables := []map[string]interface{}{m.Dependencies, m.BuildDependencies, m.DevDependencies}

	conds := make([]string, 0, len(m.Target))
	for cond := range m.Target {
		conds = append(conds, cond)
	}
	sort.Strings(conds)
	for _, cond := range conds {
		t := m.Target[cond]
		tables = append(tables, t.Dependencies, t.BuildDependencies, t.DevDependencies)
	}
	return tables
}

// dependencyPath returns the `path` of the first declaration matching
// crate by key or by `package` rename.
func (m *cargoManifest) dependencyPath(crate string) (string, error) {
	want := model.NormalizePackageName(crate)
	declared := false

	for _, table := range m.dependencyTables() {
		for _, key := range sortedKeys(table) {
			decl, _ := table[key].(map[string]interface{})
			pkg, _ := decl["package"].(string)
			if model.NormalizePackageName(key) != want && model.NormalizePackageName(pkg) != want {
				continue
			}
			declared = true

			if inherited, _ := decl["workspace"].(bool); inherited {
				decl, _ = m.Workspace.Dependencies[key].(map[string]interface{})
			}
			if path, ok := decl["path"].(string); ok {
				return path, nil
			}
		}
	}

	if !declared {
		return "", fmt.Errorf("%w: %s", ErrPackageNotFound, crate)
	}
	return "", model.NewCLIError(
		model.ExitMetadataFailed,
		fmt.Sprintf("crate `%s` is not a path dependency; local metadata needs a `path`", crate),
	)
}

func (m *cargoManifest) capabilities() *model.PackageCapabilities {
	caps := &model.PackageCapabilities{Features: make(map[string][]string, len(m.Features))}
	caps.Name, _ = m.Package["name"].(string)
	caps.Version, _ = m.Package["version"].(string)

	for name, implied := range m.Features {
		if implied == nil {
			implied = []string{}
		}
		caps.Features[name] = implied
	}

	seen := make(map[string]bool)
	for _, table := range m.dependencyTables() {
		for _, key := range sortedKeys(table) {
			decl, _ := table[key].(map[string]interface{})
			if optional, _ := decl["optional"].(bool); optional && !seen[key] {
				seen[key] = true
				caps.OptionalDependencies = append(caps.OptionalDependencies, key)
			}
		}
	}
	return caps
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
