package manifest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/cargo-feature/internal/model"
	"github.com/mmr-tortoise/cargo-feature/internal/tomledit"
)

// testWorkspace is the manifest of the end-to-end fixture workspace.
const testWorkspace = `[package]
name = "test-ws"
version = "0.1.0"
authors = ["Riey <creeper844@gmail.com>"]
edition = "2018"

# See more keys and their definitions at https://doc.rust-lang.org/cargo/reference/manifest.html

[dependencies]
test-lib = { path = "../test-lib", features = ["bar"] }

[target.'cfg(target_arch = "wasm32")'.dependencies]
# issue #9, #11
test-lib-dep = { path = "../test-lib-dep" }
`

const wasmTarget = `cfg(target_arch = "wasm32")`

func testLibCaps() *model.PackageCapabilities {
	return &model.PackageCapabilities{
		Name:    "test-lib",
		Version: "0.1.0",
		Features: map[string][]string{
			"default": {"foo", "bar"},
			"foo":     {},
			"bar":     {},
		},
	}
}

func testLibDepCaps() *model.PackageCapabilities {
	return &model.PackageCapabilities{
		Name:                 "test-lib-dep",
		Version:              "0.1.0",
		Features:             map[string][]string{},
		OptionalDependencies: []string{"test-lib"},
	}
}

func serdeCaps() *model.PackageCapabilities {
	return &model.PackageCapabilities{
		Name: "serde",
		Features: map[string][]string{
			"default": {"std"},
			"std":     {},
			"derive":  {"serde_derive"},
			"rc":      {},
		},
		OptionalDependencies: []string{"serde_derive"},
	}
}

func add(kind model.DependencyKind, names ...string) []model.FeatureEditRequest {
	reqs := make([]model.FeatureEditRequest, len(names))
	for i, n := range names {
		reqs[i] = model.FeatureEditRequest{Kind: kind, Name: n, Op: model.OpAdd}
	}
	return reqs
}

func remove(kind model.DependencyKind, names ...string) []model.FeatureEditRequest {
	reqs := make([]model.FeatureEditRequest, len(names))
	for i, n := range names {
		reqs[i] = model.FeatureEditRequest{Kind: kind, Name: n, Op: model.OpRemove}
	}
	return reqs
}

// applyEditor parses src, runs ed over it and returns the rendered result
// together with the collected events.
func applyEditor(t *testing.T, src string, ed Editor) (string, *Result, []Event) {
	t.Helper()

	doc, err := tomledit.Parse([]byte(src))
	require.NoError(t, err)

	var events []Event
	ed.Reporter = ReporterFunc(func(ev Event) { events = append(events, ev) })

	res, err := ed.Apply(doc)
	require.NoError(t, err)
	require.NoError(t, doc.Validate(), "edited document must stay valid TOML")
	return doc.String(), res, events
}

// TestEditor_Golden mirrors the end-to-end cases of the fixture workspace.
func TestEditor_Golden(t *testing.T) {
	tests := []struct {
		name       string
		editor     Editor
		wantLine   string
		wantAction Action
	}{
		{
			name: "add feature",
			editor: Editor{
				Crate:        "test-lib",
				Changes:      Changes{Kind: model.KindNormal, Requests: add(model.KindNormal, "foo")},
				Capabilities: testLibCaps(),
			},
			wantLine:   `test-lib = { path = "../test-lib", features = ["bar", "foo"] }`,
			wantAction: ActionAdd,
		},
		{
			name: "remove last feature drops the list",
			editor: Editor{
				Crate:        "test-lib",
				Changes:      Changes{Kind: model.KindNormal, Requests: remove(model.KindNormal, "bar")},
				Capabilities: testLibCaps(),
			},
			wantLine:   `test-lib = { path = "../test-lib" }`,
			wantAction: ActionRemove,
		},
		{
			name: "disable default features",
			editor: Editor{
				Crate: "test-lib",
				Changes: Changes{
					Kind:            model.KindNormal,
					DefaultFeatures: model.DefaultFeaturesDisable,
				},
				Capabilities: testLibCaps(),
			},
			wantLine:   `test-lib = { path = "../test-lib", features = ["bar"], default-features = false }`,
			wantAction: ActionDisableDefaults,
		},
		{
			name: "optional dependency in target section",
			editor: Editor{
				Crate:        "test-lib-dep",
				Target:       wasmTarget,
				Changes:      Changes{Kind: model.KindNormal, Requests: add(model.KindNormal, "test-lib")},
				Capabilities: testLibDepCaps(),
			},
			wantLine:   `test-lib-dep = { path = "../test-lib-dep", features = ["test-lib"] }`,
			wantAction: ActionAdd,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			got, res, events := applyEditor(t, testWorkspace, tt.editor)

			// Assert: exactly one line changed, everything else is untouched.
			gotLines := strings.Split(got, "\n")
			wantLines := strings.Split(testWorkspace, "\n")
			require.Len(t, gotLines, len(wantLines))
			changed := 0
			for i := range wantLines {
				if gotLines[i] != wantLines[i] {
					changed++
					assert.Equal(t, tt.wantLine, gotLines[i])
				}
			}
			assert.Equal(t, 1, changed)

			require.Len(t, events, 1)
			assert.Equal(t, tt.wantAction, events[0].Action)
			assert.Equal(t, tt.editor.Crate, events[0].Crate)
			assert.Len(t, res.Modified, 1)
		})
	}
}

// TestEditor_UnknownFeatureIsSkipped verifies that an unknown feature is reported and
// leaves the document unchanged.
func TestEditor_UnknownFeatureIsSkipped(t *testing.T) {
	// Arrange: test-lib has no feature named baz.
	ed := Editor{
		Crate:        "test-lib",
		Changes:      Changes{Kind: model.KindNormal, Requests: add(model.KindNormal, "baz")},
		Capabilities: testLibCaps(),
	}

	// Act
	got, res, events := applyEditor(t, testWorkspace, ed)

	// Assert: the document is untouched and the skip is reported.
	assert.Equal(t, testWorkspace, got)
	assert.Empty(t, res.Modified)
	require.Len(t, events, 1)
	assert.Equal(t, Event{
		Action:   ActionSkip,
		Crate:    "test-lib",
		Feature:  "baz",
		Location: Location{Kind: model.KindNormal},
	}, events[0])
}

// TestEditor_Idempotence verifies that applying the same changes twice is a no-op
// the second time.
func TestEditor_Idempotence(t *testing.T) {
	ed := Editor{
		Crate:        "test-lib",
		Changes:      Changes{Kind: model.KindNormal, Requests: add(model.KindNormal, "foo")},
		Capabilities: testLibCaps(),
	}

	// Act
	once, _, _ := applyEditor(t, testWorkspace, ed)
	twice, res, events := applyEditor(t, once, ed)

	// Assert: the second pass changes and reports nothing.
	assert.Equal(t, once, twice)
	assert.Empty(t, res.Modified)
	assert.Empty(t, events, "already-satisfied requests are not reported")

	// The same request twice in one pass behaves the same.
	ed.Changes.Requests = add(model.KindNormal, "foo", "foo")
	inOnePass, _, events := applyEditor(t, testWorkspace, ed)
	assert.Equal(t, once, inOnePass)
	assert.Len(t, events, 1)
}

// TestEditor_ShorthandRoundTrip verifies that adding and then removing a feature
// restores the shorthand declaration byte for byte.
func TestEditor_ShorthandRoundTrip(t *testing.T) {
	src := "[dependencies]\nserde = \"1.0\"   # serialization\nlog = \"0.4\"\n"

	added, _, _ := applyEditor(t, src, Editor{
		Crate:        "serde",
		Changes:      Changes{Kind: model.KindNormal, Requests: add(model.KindNormal, "derive")},
		Capabilities: serdeCaps(),
	})
	assert.Equal(t, "[dependencies]\nserde = { version = \"1.0\", features = [\"derive\"] }   # serialization\nlog = \"0.4\"\n", added)

	removed, _, _ := applyEditor(t, added, Editor{
		Crate:        "serde",
		Changes:      Changes{Kind: model.KindNormal, Requests: remove(model.KindNormal, "derive")},
		Capabilities: serdeCaps(),
	})
	assert.Equal(t, src, removed)

	// Add followed by remove in the same pass restores the shorthand too.
	reqs := append(add(model.KindNormal, "derive"), remove(model.KindNormal, "derive")...)
	both, _, _ := applyEditor(t, src, Editor{
		Crate:        "serde",
		Changes:      Changes{Kind: model.KindNormal, Requests: reqs},
		Capabilities: serdeCaps(),
	})
	assert.Equal(t, src, both)
}

// TestEditor_ShorthandKeepsQuoting verifies that a literal string version keeps its
// quotes.
func TestEditor_ShorthandKeepsQuoting(t *testing.T) {
	src := "[dependencies]\nserde = '1.0'\n"

	got, _, _ := applyEditor(t, src, Editor{
		Crate:        "serde",
		Changes:      Changes{Kind: model.KindNormal, Requests: remove(model.KindNormal, "derive")},
		Capabilities: serdeCaps(),
	})

	assert.Equal(t, src, got)
}

// TestEditor_KindIsolation verifies that only tables of the selected kind change.
func TestEditor_KindIsolation(t *testing.T) {
	src := `[dependencies]
serde = "1.0"

[dev-dependencies]
serde = "1.0"

[build-dependencies]
serde = {version="1.0"}
`
	got, res, _ := applyEditor(t, src, Editor{
		Crate:        "serde",
		Changes:      Changes{Kind: model.KindDev, Requests: add(model.KindDev, "derive")},
		Capabilities: serdeCaps(),
	})

	assert.Equal(t, `[dependencies]
serde = "1.0"

[dev-dependencies]
serde = { version = "1.0", features = ["derive"] }

[build-dependencies]
serde = {version="1.0"}
`, got)
	assert.Equal(t, []Location{{Kind: model.KindDev}}, res.Modified)
}

// TestEditor_TargetTraversal verifies edits in [target.<cond>.*] tables and the
// Target filter.
func TestEditor_TargetTraversal(t *testing.T) {
	src := `[dependencies]
log = "0.4"

[target.'cfg(unix)'.dependencies]
nix = "0.27"

[target.'cfg(windows)'.dependencies]
serde = "1.0"
winapi = { version = "0.3", features = ["winuser"] }
`
	want := `[dependencies]
log = "0.4"

[target.'cfg(unix)'.dependencies]
nix = "0.27"

[target.'cfg(windows)'.dependencies]
serde = { version = "1.0", features = ["rc"] }
winapi = { version = "0.3", features = ["winuser"] }
`

	t.Run("all tables", func(t *testing.T) {
		got, res, events := applyEditor(t, src, Editor{
			Crate:        "serde",
			Changes:      Changes{Kind: model.KindNormal, Requests: add(model.KindNormal, "rc")},
			Capabilities: serdeCaps(),
		})
		assert.Equal(t, want, got)
		assert.Equal(t, []Location{{Kind: model.KindNormal, Target: "cfg(windows)"}}, res.Declared)
		require.Len(t, events, 1)
		assert.Equal(t, "cfg(windows)", events[0].Location.Target)
	})

	t.Run("other target selected", func(t *testing.T) {
		got, res, _ := applyEditor(t, src, Editor{
			Crate:        "serde",
			Target:       "cfg(unix)",
			Changes:      Changes{Kind: model.KindNormal, Requests: add(model.KindNormal, "rc")},
			Capabilities: serdeCaps(),
		})
		assert.Equal(t, src, got)
		assert.Empty(t, res.Declared)
	})
}

// TestEditor_DefaultFeatures covers the default-features toggle.
func TestEditor_DefaultFeatures(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		toggle   model.DefaultFeatures
		requests []model.FeatureEditRequest
		want     string
	}{
		{
			name:     "disable together with an added feature",
			src:      "[dependencies]\nserde = \"1.0\"\n",
			toggle:   model.DefaultFeaturesDisable,
			requests: add(model.KindNormal, "derive"),
			want:     "[dependencies]\nserde = { version = \"1.0\", default-features = false, features = [\"derive\"] }\n",
		},
		{
			name:     "disable wins over removing the default feature",
			src:      "[dependencies]\nserde = { version = \"1.0\", features = [\"default\"] }\n",
			toggle:   model.DefaultFeaturesDisable,
			requests: remove(model.KindNormal, "default"),
			want:     "[dependencies]\nserde = { version = \"1.0\", default-features = false }\n",
		},
		{
			name:   "disable rewrites an existing marker in place",
			src:    "[dependencies]\nserde = { version = \"1.0\", default_features = true, path = \"x\" }\n",
			toggle: model.DefaultFeaturesDisable,
			want:   "[dependencies]\nserde = { version = \"1.0\", default_features = false, path = \"x\" }\n",
		},
		{
			name:   "disable sets both spellings of the marker",
			src:    "[dependencies]\nserde = { version = \"1.0\", default-features = true, default_features = true }\n",
			toggle: model.DefaultFeaturesDisable,
			want:   "[dependencies]\nserde = { version = \"1.0\", default-features = false, default_features = false }\n",
		},
		{
			name:   "disable fixes the spelling that is still true",
			src:    "[dependencies]\nserde = { version = \"1.0\", default-features = false, default_features = true }\n",
			toggle: model.DefaultFeaturesDisable,
			want:   "[dependencies]\nserde = { version = \"1.0\", default-features = false, default_features = false }\n",
		},
		{
			name:   "enable removes the marker and collapses",
			src:    "[dependencies]\nserde = { version = \"1.0\", default-features = false }\n",
			toggle: model.DefaultFeaturesEnable,
			want:   "[dependencies]\nserde = \"1.0\"\n",
		},
		{
			name:   "enable without a marker is a no-op",
			src:    "[dependencies]\nserde = {version = \"1.0\",path=\"x\"}\n",
			toggle: model.DefaultFeaturesEnable,
			want:   "[dependencies]\nserde = {version = \"1.0\",path=\"x\"}\n",
		},
		{
			name:   "unchanged leaves the marker alone",
			src:    "[dependencies]\nserde = { version = \"1.0\", default-features = false }\n",
			toggle: model.DefaultFeaturesUnchanged,
			want:   "[dependencies]\nserde = { version = \"1.0\", default-features = false }\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, _ := applyEditor(t, tt.src, Editor{
				Crate: "serde",
				Changes: Changes{
					Kind:            model.KindNormal,
					Requests:        tt.requests,
					DefaultFeatures: tt.toggle,
				},
				Capabilities: serdeCaps(),
			})
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestEditor_TableShapes covers block tables, dotted keys and multi-line
// feature lists.
func TestEditor_TableShapes(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		requests []model.FeatureEditRequest
		want     string
	}{
		{
			name:     "block table collapses into the parent table",
			src:      "[dependencies]\nlog = \"0.4\"\n\n[dependencies.serde]\nversion = \"1.0\"\nfeatures = [\"derive\"]\n",
			requests: remove(model.KindNormal, "derive"),
			want:     "[dependencies]\nlog = \"0.4\"\nserde = \"1.0\"\n",
		},
		{
			name:     "block table collapse keeps surrounding comments",
			src:      "[dependencies]\nlog = \"0.4\"\n\n# about serde\n[dependencies.serde]\nversion = \"1.0\"\nfeatures = [\"derive\"]\n\n# trailing note\n",
			requests: remove(model.KindNormal, "derive"),
			want:     "[dependencies]\nlog = \"0.4\"\n# about serde\nserde = \"1.0\"\n\n# trailing note\n",
		},
		{
			name:     "block table collapse into a later parent table",
			src:      "[dependencies.serde]\nversion = \"1.0\"\nfeatures = [\"derive\"]\n\n[dependencies]\nlog = \"0.4\"\n",
			requests: remove(model.KindNormal, "derive"),
			want:     "[dependencies]\nlog = \"0.4\"\nserde = \"1.0\"\n",
		},
		{
			name:     "block table without a parent body stays a table",
			src:      "[dependencies.serde]\nversion = \"1.0\"\nfeatures = [\"derive\"]\n",
			requests: remove(model.KindNormal, "derive"),
			want:     "[dependencies.serde]\nversion = \"1.0\"\n",
		},
		{
			name:     "block table gains a feature list",
			src:      "[dependencies.serde]\nversion = \"1.0\"\noptional = true\n\n[features]\n",
			requests: add(model.KindNormal, "derive"),
			want:     "[dependencies.serde]\nversion = \"1.0\"\noptional = true\nfeatures = [\"derive\"]\n\n[features]\n",
		},
		{
			name:     "multi-line feature list keeps its layout",
			src:      "[dependencies.serde]\nversion = \"1.0\"\nfeatures = [\n    \"derive\",\n]\n",
			requests: add(model.KindNormal, "rc"),
			want:     "[dependencies.serde]\nversion = \"1.0\"\nfeatures = [\n    \"derive\",\n    \"rc\",\n]\n",
		},
		{
			name:     "dotted keys collapse",
			src:      "[dependencies]\nserde.version = \"1.0\"\nserde.features = [\"derive\"]\nlog = \"0.4\"\n",
			requests: remove(model.KindNormal, "derive"),
			want:     "[dependencies]\nserde = \"1.0\"\nlog = \"0.4\"\n",
		},
		{
			name:     "dotted keys gain a feature list",
			src:      "[dependencies]\nserde.version = \"1.0\"\nlog = \"0.4\"\n",
			requests: add(model.KindNormal, "derive"),
			want:     "[dependencies]\nserde.version = \"1.0\"\nserde.features = [\"derive\"]\nlog = \"0.4\"\n",
		},
		{
			name:     "removal preserves the order of the rest",
			src:      "[dependencies]\nserde = { version = \"1.0\", features = [\"std\", \"derive\", \"rc\"] }\n",
			requests: remove(model.KindNormal, "derive"),
			want:     "[dependencies]\nserde = { version = \"1.0\", features = [\"std\", \"rc\"] }\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, _ := applyEditor(t, tt.src, Editor{
				Crate:        "serde",
				Changes:      Changes{Kind: model.KindNormal, Requests: tt.requests},
				Capabilities: serdeCaps(),
			})
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestEditor_KeyLookupIsLiteral checks that hyphens and underscores are not
// folded when looking up the declaration.
func TestEditor_KeyLookupIsLiteral(t *testing.T) {
	got, res, _ := applyEditor(t, testWorkspace, Editor{
		Crate:        "test_lib",
		Changes:      Changes{Kind: model.KindNormal, Requests: add(model.KindNormal, "foo")},
		Capabilities: testLibCaps(),
	})

	assert.Equal(t, testWorkspace, got)
	assert.Empty(t, res.Declared)
}

// TestEditor_ShapeErrors verifies the path and description of every shape error.
func TestEditor_ShapeErrors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantPath string
	}{
		{
			name:     "dependencies is a string",
			src:      "dependencies = \"serde\"\n",
			wantPath: "dependencies",
		},
		{
			name:     "declaration is an array",
			src:      "[dependencies]\nserde = [\"1.0\"]\n",
			wantPath: "dependencies.serde",
		},
		{
			name:     "target entry is not a table",
			src:      "[target]\nunix = \"yes\"\n",
			wantPath: "target.unix",
		},
		{
			name:     "features is not an array",
			src:      "[dependencies]\nserde = { version = \"1.0\", features = \"derive\" }\n",
			wantPath: "dependencies.serde.features",
		},
		{
			name:     "target dependencies is not a table",
			src:      "[target.'cfg(unix)']\ndependencies = 1\n",
			wantPath: "target.cfg(unix).dependencies",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := tomledit.Parse([]byte(tt.src))
			require.NoError(t, err)

			ed := &Editor{
				Crate:        "serde",
				Changes:      Changes{Kind: model.KindNormal, Requests: add(model.KindNormal, "derive")},
				Capabilities: serdeCaps(),
			}
			_, err = ed.Apply(doc)

			var shapeErr *ShapeError
			require.ErrorAs(t, err, &shapeErr)
			assert.Equal(t, tt.wantPath, shapeErr.Path)
		})
	}
}
