// features.go applies feature requests and the default-features toggle to
// one normalized dependency entry.
//
// Requests naming something the crate does not expose are skipped and
// reported, never treated as errors. Requests that are already satisfied
// change nothing and report nothing, which makes a pass idempotent.
package manifest

import (
	"fmt"

	"github.com/mmr-tortoise/cargo-feature/internal/model"
	"github.com/mmr-tortoise/cargo-feature/internal/tomledit"
)

// defaultFeaturesKeys are the spellings Cargo accepts for the marker. The
// first one is used when a marker has to be written.
var defaultFeaturesKeys = []string{"default-features", "default_features"}

// Action is the kind of progress event reported while editing.
type Action int

const (
	// ActionAdd reports a feature appended to a feature list.
	ActionAdd Action = iota

	// ActionRemove reports a feature removed from a feature list.
	ActionRemove

	// ActionSkip reports a request for a name the crate does not expose.
	ActionSkip

	// ActionDisableDefaults reports default-features = false being written.
	ActionDisableDefaults

	// ActionEnableDefaults reports a default-features marker being removed.
	ActionEnableDefaults
)

// Event is one progress or warning line.
type Event struct {
	Action   Action
	Crate    string
	Feature  string
	Location Location
}

// Reporter receives progress events. Implementations must not modify the
// document.
type Reporter interface {
	Report(ev Event)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(ev Event)

// Report calls f(ev).
func (f ReporterFunc) Report(ev Event) { f(ev) }

type nopReporter struct{}

func (nopReporter) Report(Event) {}

// Changes is everything one invocation asks for.
type Changes struct {
	// Kind is the active dependency kind. The default-features toggle only
	// applies to tables of this kind.
	Kind model.DependencyKind

	// Requests are applied in order, each only to tables of its own kind.
	Requests []model.FeatureEditRequest

	// DefaultFeatures is the default-features toggle.
	DefaultFeatures model.DefaultFeatures
}

// EditFeatures applies changes to a normalized entry found in a table of the
// given kind, and reports whether anything was modified.
//
// Names that are neither a feature nor an optional dependency of the crate
// are reported with ActionSkip and otherwise ignored. Adding a listed name or
// removing an unlisted one does nothing and reports nothing. An error is only
// returned when the entry's shape does not allow the edit.
func EditFeatures(e *Entry, kind model.DependencyKind, changes Changes, caps *model.PackageCapabilities, r Reporter) (bool, error) {
	if r == nil {
		r = nopReporter{}
	}

	modified := false
	if kind == changes.Kind {
		toggled, err := applyDefaultFeatures(e, changes.DefaultFeatures, r)
		if err != nil {
			return false, err
		}
		modified = toggled
	}

	features, err := featureList(e)
	if err != nil {
		return modified, err
	}

	for _, req := range changes.Requests {
		if req.Kind != kind {
			continue
		}
		ev := Event{Crate: e.Name, Feature: req.Name, Location: e.Location}

		if !caps.IsValidTarget(req.Name) {
			ev.Action = ActionSkip
			r.Report(ev)
			continue
		}

		switch req.Op {
		case model.OpAdd:
			if features == nil {
				features = tomledit.NewArray()
				if err := e.Table.Set(featuresKey, features); err != nil {
					return modified, fmt.Errorf("add feature %q to %s: %w", req.Name, e.path(), err)
				}
			}
			if features.IndexString(req.Name) >= 0 {
				continue
			}
			features.Push(tomledit.NewString(req.Name))
			features.Fmt()
			ev.Action = ActionAdd
		case model.OpRemove:
			if features == nil {
				continue
			}
			i := features.IndexString(req.Name)
			if i < 0 {
				continue
			}
			features.Remove(i)
			features.Fmt()
			ev.Action = ActionRemove
		}
		modified = true
		r.Report(ev)
	}
	return modified, nil
}

// featureList returns the entry's feature array, or nil when it has none.
func featureList(e *Entry) (*tomledit.Array, error) {
	node, ok := e.Table.Get(featuresKey)
	if !ok {
		return nil, nil
	}
	features, ok := node.(*tomledit.Array)
	if !ok {
		return nil, &ShapeError{Path: e.path() + "." + featuresKey, Expected: "an array", Found: describe(node)}
	}
	return features, nil
}

func applyDefaultFeatures(e *Entry, toggle model.DefaultFeatures, r Reporter) (bool, error) {
	ev := Event{Crate: e.Name, Feature: model.DefaultFeatureName, Location: e.Location}

	switch toggle {
	case model.DefaultFeaturesDisable:
		// Every spelling already present is set, so none contradicts another.
		var keys []string
		for _, k := range defaultFeaturesKeys {
			if _, ok := e.Table.Get(k); ok {
				keys = append(keys, k)
			}
		}
		if len(keys) == 0 {
			keys = defaultFeaturesKeys[:1]
		}

		changed := false
		for _, k := range keys {
			node, _ := e.Table.Get(k)
			if b, ok := node.(*tomledit.Bool); ok && !b.Value() {
				continue
			}
			if err := e.Table.Set(k, tomledit.NewBool(false)); err != nil {
				return false, fmt.Errorf("disable default features of %s: %w", e.path(), err)
			}
			changed = true
		}
		if !changed {
			return false, nil
		}
		ev.Action = ActionDisableDefaults
		r.Report(ev)
		return true, nil

	case model.DefaultFeaturesEnable:
		removed := false
		for _, k := range defaultFeaturesKeys {
			if e.Table.Remove(k) {
				removed = true
			}
		}
		if removed {
			ev.Action = ActionEnableDefaults
			r.Report(ev)
		}
		return removed, nil
	}
	return false, nil
}
