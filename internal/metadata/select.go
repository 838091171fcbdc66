package metadata

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/mmr-tortoise/cargo-feature/internal/model"
)

// Select returns the package named crate, comparing names with hyphens and
// underscores folded together.
//
// When several versions of the crate are in the graph, the highest version
// matching a requirement declared by a workspace member is chosen. Without
// a usable requirement the highest version wins.
func (m *Metadata) Select(crate string) (*Package, error) {
	want := model.NormalizePackageName(crate)

	var candidates []*Package
	for i := range m.Packages {
		if model.NormalizePackageName(m.Packages[i].Name) == want {
			candidates = append(candidates, &m.Packages[i])
		}
	}

	switch len(candidates) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrPackageNotFound, crate)
	case 1:
		return candidates[0], nil
	}

	constraints := m.requirements(want)
	if best := highest(candidates, constraints); best != nil {
		return best, nil
	}
	if best := highest(candidates, nil); best != nil {
		return best, nil
	}
	return candidates[0], nil
}

// requirements collects the version requirements workspace members declare
// for the normalized crate name.
func (m *Metadata) requirements(want string) []*semver.Constraints {
	members := make(map[string]bool, len(m.WorkspaceMembers))
	for _, id := range m.WorkspaceMembers {
		members[id] = true
	}

	var out []*semver.Constraints
	for _, pkg := range m.Packages {
		if !members[pkg.ID] {
			continue
		}
		for _, dep := range pkg.Dependencies {
			if model.NormalizePackageName(dep.Name) != want && model.NormalizePackageName(dep.Rename) != want {
				continue
			}
			c, err := semver.NewConstraint(cargoRequirement(dep.Req))
			if err != nil {
				continue
			}
			out = append(out, c)
		}
	}
	return out
}

// highest returns the candidate with the highest version that satisfies at
// least one of constraints. A nil constraint list accepts every version.
// Candidates whose version does not parse are ignored.
func highest(candidates []*Package, constraints []*semver.Constraints) *Package {
	var (
		best        *Package
		bestVersion *semver.Version
	)
	for _, pkg := range candidates {
		v, err := semver.NewVersion(pkg.Version)
		if err != nil {
			continue
		}
		if constraints != nil && !satisfiesAny(v, constraints) {
			continue
		}
		if bestVersion == nil || v.GreaterThan(bestVersion) {
			best, bestVersion = pkg, v
		}
	}
	return best
}

func satisfiesAny(v *semver.Version, constraints []*semver.Constraints) bool {
	for _, c := range constraints {
		if c.Check(v) {
			return true
		}
	}
	return false
}

// cargoRequirement rewrites a Cargo version requirement into constraint
// syntax. Cargo reads a bare version such as "1.2" as "^1.2".
func cargoRequirement(req string) string {
	parts := strings.Split(req, ",")
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" && part[0] >= '0' && part[0] <= '9' {
			part = "^" + part
		}
		parts[i] = part
	}
	return strings.Join(parts, ", ")
}
