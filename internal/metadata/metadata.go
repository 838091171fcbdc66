package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/jsonc"

	"github.com/mmr-tortoise/cargo-feature/internal/model"
)

// ErrPackageNotFound is returned when no package in the metadata matches the
// requested crate name.
var ErrPackageNotFound = errors.New("package not found in metadata")

// Provider looks up the capabilities of one crate.
type Provider interface {
	Capabilities(ctx context.Context, crate string) (*model.PackageCapabilities, error)
}

// Metadata is the subset of `cargo metadata --format-version 1` output
// needed to resolve crate capabilities.
type Metadata struct {
	// Packages lists every package in the dependency graph.
	Packages []Package `json:"packages"`

	// WorkspaceMembers holds the package IDs of the workspace members.
	WorkspaceMembers []string `json:"workspace_members"`
}

// Package is one entry of Metadata.Packages.
type Package struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Version      string              `json:"version"`
	ManifestPath string              `json:"manifest_path"`
	Features     map[string][]string `json:"features"`
	Dependencies []Dependency        `json:"dependencies"`
}

// Dependency is one declared dependency of a Package.
type Dependency struct {
	// Name is the package name of the dependency.
	Name string `json:"name"`

	// Rename is the key the dependency is declared under when it differs
	// from Name (`foo = { package = "bar" }`).
	Rename string `json:"rename"`

	// Req is the version requirement, e.g. "^1.0".
	Req string `json:"req"`

	// Kind is "dev", "build" or empty for normal dependencies.
	Kind string `json:"kind"`

	// Optional reports whether the dependency is only enabled by a feature.
	Optional bool `json:"optional"`
}

// Key returns the name the dependency is declared under, which is also the
// name of the implicit feature of an optional dependency.
func (d Dependency) Key() string {
	if d.Rename != "" {
		return d.Rename
	}
	return d.Name
}

// Decode parses `cargo metadata` output. Comments and trailing commas are
// accepted so hand-edited fixtures can be used as well.
func Decode(data []byte) (*Metadata, error) {
	var m Metadata
	if err := json.Unmarshal(jsonc.ToJSON(data), &m); err != nil {
		return nil, fmt.Errorf("failed to parse cargo metadata: %w", err)
	}
	return &m, nil
}

// Capabilities converts the package into the engine's capability lookup.
func (p *Package) Capabilities() *model.PackageCapabilities {
	caps := &model.PackageCapabilities{
		Name:     p.Name,
		Version:  p.Version,
		Features: make(map[string][]string, len(p.Features)),
	}
	for name, implied := range p.Features {
		if implied == nil {
			implied = []string{}
		}
		caps.Features[name] = implied
	}

	// The same optional dependency can be listed once per target.
	seen := make(map[string]bool)
	for _, dep := range p.Dependencies {
		if !dep.Optional || seen[dep.Key()] {
			continue
		}
		seen[dep.Key()] = true
		caps.OptionalDependencies = append(caps.OptionalDependencies, dep.Key())
	}
	return caps
}

// Capabilities selects crate with Select and converts it.
func (m *Metadata) Capabilities(crate string) (*model.PackageCapabilities, error) {
	pkg, err := m.Select(crate)
	if err != nil {
		return nil, err
	}
	return pkg.Capabilities(), nil
}
