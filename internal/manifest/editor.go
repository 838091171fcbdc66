// editor.go drives one mutation pass over a whole document.
package manifest

import (
	"github.com/mmr-tortoise/cargo-feature/internal/model"
	"github.com/mmr-tortoise/cargo-feature/internal/tomledit"
)

// Editor runs one mutation pass for a single crate.
type Editor struct {
	// Crate is the dependency key to edit, matched literally.
	Crate string

	// Target restricts the pass to tables under [target.<Target>]. Empty
	// means every table.
	Target string

	// Changes are the requested edits.
	Changes Changes

	// Capabilities validates requested names.
	Capabilities *model.PackageCapabilities

	// Reporter receives progress events. Nil discards them.
	Reporter Reporter
}

// Result summarizes a pass.
type Result struct {
	// Declared lists the tables that declare the crate and were visited.
	Declared []Location

	// Modified lists the tables whose declaration was changed.
	Modified []Location
}

// Apply edits doc in place. Only tables of the active kind (and of the
// selected target, if any) are touched, so a declaration that no change
// applies to keeps its exact bytes.
//
// On error the document may be partially edited and must be discarded.
func (ed *Editor) Apply(doc *tomledit.Document) (*Result, error) {
	res := &Result{}

	err := LocateTables(doc.Root(), func(loc Location, deps tomledit.TableLike) error {
		if loc.Kind != ed.Changes.Kind {
			return nil
		}
		if ed.Target != "" && loc.Target != ed.Target {
			return nil
		}

		entry, err := NormalizeEntry(loc, deps, ed.Crate)
		if err != nil || entry == nil {
			return err
		}
		res.Declared = append(res.Declared, loc)

		modified, err := EditFeatures(entry, loc.Kind, ed.Changes, ed.Capabilities, ed.Reporter)
		if err != nil {
			return err
		}
		if modified {
			res.Modified = append(res.Modified, loc)
		}
		if modified || entry.Normalized() {
			return CollapseEntry(entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
