// locate.go finds the dependency tables of a manifest.
package manifest

import (
	"fmt"

	"github.com/mmr-tortoise/cargo-feature/internal/model"
	"github.com/mmr-tortoise/cargo-feature/internal/tomledit"
)

// targetKey is the root key holding platform-conditional sections.
const targetKey = "target"

// tableKinds is the lookup order of dependency tables, both at the document
// root and inside each target section.
var tableKinds = []model.DependencyKind{model.KindNormal, model.KindBuild, model.KindDev}

// Location identifies one dependency table in the manifest.
type Location struct {
	// Kind is the dependency kind of the table.
	Kind model.DependencyKind

	// Target is the condition of the enclosing [target.<cond>] section,
	// empty for top-level tables.
	Target string
}

// String returns the table's dotted path, e.g. "dev-dependencies" or
// "target.cfg(unix).dependencies".
func (l Location) String() string {
	if l.Target == "" {
		return l.Kind.TableKey()
	}
	return targetKey + "." + l.Target + "." + l.Kind.TableKey()
}

// ShapeError reports a manifest node whose type cannot hold what the engine
// expects there, e.g. `dependencies = "oops"` or `serde = ["1.0"]`.
type ShapeError struct {
	// Path is the dotted path of the offending node.
	Path string

	// Expected describes the acceptable shape.
	Expected string

	// Found describes the actual shape.
	Found string
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	return fmt.Sprintf("`%s` must be %s, found %s", e.Path, e.Expected, e.Found)
}

// TableVisitor is called once per located dependency table. Returning an
// error stops the walk.
type TableVisitor func(loc Location, table tomledit.TableLike) error

// LocateTables calls visit for every dependency table in root, in document
// lookup order: dependencies, build-dependencies, dev-dependencies, then the
// same three for each target section in the order the sections appear.
//
// Missing tables are skipped. A target section without dependency tables is
// not an error. A table key holding something other than a table, or a
// target entry that is not a table, is reported as a *ShapeError.
func LocateTables(root tomledit.TableLike, visit TableVisitor) error {
	if err := visitKinds(root, "", visit); err != nil {
		return err
	}

	targets, err := lookupTable(root, targetKey, targetKey)
	if err != nil || targets == nil {
		return err
	}

	for _, cond := range targets.Keys() {
		node, _ := targets.Get(cond)
		section, ok := node.(tomledit.TableLike)
		if !ok {
			return &ShapeError{Path: targetKey + "." + cond, Expected: "a table", Found: describe(node)}
		}
		if err := visitKinds(section, cond, visit); err != nil {
			return err
		}
	}
	return nil
}

func visitKinds(parent tomledit.TableLike, target string, visit TableVisitor) error {
	for _, kind := range tableKinds {
		loc := Location{Kind: kind, Target: target}
		table, err := lookupTable(parent, kind.TableKey(), loc.String())
		if err != nil {
			return err
		}
		if table == nil {
			continue
		}
		if err := visit(loc, table); err != nil {
			return err
		}
	}
	return nil
}

// lookupTable returns the table stored under key, or nil when key is absent.
func lookupTable(parent tomledit.TableLike, key, path string) (tomledit.TableLike, error) {
	node, ok := parent.Get(key)
	if !ok {
		return nil, nil
	}
	table, ok := node.(tomledit.TableLike)
	if !ok {
		return nil, &ShapeError{Path: path, Expected: "a table", Found: describe(node)}
	}
	return table, nil
}

// describe names the shape of a node for error messages.
func describe(node tomledit.Node) string {
	switch node.(type) {
	case *tomledit.String:
		return "a string"
	case *tomledit.Bool:
		return "a boolean"
	case *tomledit.Array:
		return "an array"
	case *tomledit.InlineTable:
		return "an inline table"
	case *tomledit.Table:
		return "a table"
	case *tomledit.ArrayOfTables:
		return "an array of tables"
	default:
		return "a number or date"
	}
}
