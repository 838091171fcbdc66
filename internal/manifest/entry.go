// entry.go converts a dependency declaration between its on-disk shapes:
// the shorthand `name = "1.0"`, an inline table, a [dependencies.name]
// block table or dotted keys.
package manifest

import (
	"errors"
	"fmt"

	"github.com/mmr-tortoise/cargo-feature/internal/tomledit"
)

const (
	versionKey  = "version"
	featuresKey = "features"
)

// Entry is the editable view of one dependency declaration.
type Entry struct {
	// Name is the dependency key, exactly as looked up.
	Name string

	// Location is the dependency table holding the declaration.
	Location Location

	// Table is the declaration as a table. It is nil once the entry has
	// collapsed back to a version string.
	Table tomledit.TableLike

	parent    tomledit.TableLike
	shorthand *tomledit.String
}

// Normalized reports whether the declaration was a version string that
// NormalizeEntry turned into a table.
func (e *Entry) Normalized() bool {
	return e.shorthand != nil
}

// Collapsed reports whether CollapseEntry turned the table back into a
// version string.
func (e *Entry) Collapsed() bool {
	return e.Table == nil
}

func (e *Entry) path() string {
	return e.Location.String() + "." + e.Name
}

// NormalizeEntry resolves the declaration of name in the dependency table
// deps. It returns nil when the table does not declare name.
//
// A shorthand `name = "1.0"` is rewritten in place to `name = { version =
// "1.0" }`, keeping the version string byte for byte. Inline, block and
// dotted-key tables are used as they are. Any other value is a *ShapeError.
func NormalizeEntry(loc Location, deps tomledit.TableLike, name string) (*Entry, error) {
	node, ok := deps.Get(name)
	if !ok {
		return nil, nil
	}

	entry := &Entry{Name: name, Location: loc, parent: deps}
	switch v := node.(type) {
	case *tomledit.String:
		table := tomledit.NewInlineTable()
		if err := table.Set(versionKey, v); err != nil {
			return nil, err
		}
		if err := deps.Set(name, table); err != nil {
			return nil, fmt.Errorf("normalize %s: %w", entry.path(), err)
		}
		entry.Table = table
		entry.shorthand = v
	case tomledit.TableLike:
		entry.Table = v
	default:
		return nil, &ShapeError{
			Path:     entry.path(),
			Expected: "a version string or a table",
			Found:    describe(node),
		}
	}
	return entry, nil
}

// CollapseEntry reduces an edited entry to its smallest equivalent form.
//
// An empty feature list is removed. When only a string `version` remains,
// the declaration becomes `name = "<version>"` again; a block table whose
// parent has no lines of its own (only [dependencies.name] is written)
// stays a table. Inline tables that survive are re-spaced to
// `{ k = v, ... }`.
func CollapseEntry(e *Entry) error {
	if e.Table == nil {
		return nil
	}

	if node, ok := e.Table.Get(featuresKey); ok {
		if features, ok := node.(*tomledit.Array); ok && features.Len() == 0 {
			e.Table.Remove(featuresKey)
		}
	}

	if e.Table.Len() == 1 {
		if node, ok := e.Table.Get(versionKey); ok {
			if version, ok := node.(*tomledit.String); ok {
				err := e.parent.Set(e.Name, version)
				switch {
				case err == nil:
					e.Table = nil
					return nil
				case !errors.Is(err, tomledit.ErrNoBody):
					return fmt.Errorf("collapse %s: %w", e.path(), err)
				}
			}
		}
	}

	if inline, ok := e.Table.(*tomledit.InlineTable); ok {
		inline.Fmt()
	}
	return nil
}
