// list.go renders the features and optional dependencies of a crate when
// no feature arguments are given. Text output is styled for the terminal;
// --format json and --format yaml emit a structured listing instead.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mmr-tortoise/cargo-feature/internal/model"
)

// featureJSON is one feature in the JSON and YAML listing.
type featureJSON struct {
	Name    string   `json:"name" yaml:"name"`
	Implies []string `json:"implies" yaml:"implies"`
}

// featureListJSON is the JSON and YAML listing of a crate. Features keep
// their display order, which a map would lose.
type featureListJSON struct {
	Crate                string        `json:"crate" yaml:"crate"`
	Version              string        `json:"version,omitempty" yaml:"version,omitempty"`
	Features             []featureJSON `json:"features" yaml:"features"`
	OptionalDependencies []string      `json:"optionalDependencies" yaml:"optionalDependencies"`
}

func newFeatureList(caps *model.PackageCapabilities) featureListJSON {
	list := featureListJSON{
		Crate:   caps.Name,
		Version: caps.Version,
		// Empty slices instead of nil so JSON shows [] instead of null.
		Features:             make([]featureJSON, 0, len(caps.Features)),
		OptionalDependencies: make([]string, 0, len(caps.OptionalDependencies)),
	}
	for _, name := range caps.FeatureNames() {
		implies := caps.Features[name]
		if implies == nil {
			implies = []string{}
		}
		list.Features = append(list.Features, featureJSON{Name: name, Implies: implies})
	}
	list.OptionalDependencies = append(list.OptionalDependencies, caps.OptionalDependencies...)
	return list
}

// printFeatureList writes the crate's features in the --format format.
func printFeatureList(w io.Writer, caps *model.PackageCapabilities, color bool) error {
	switch outputFormat {
	case formatJSON:
		data, err := json.MarshalIndent(newFeatureList(caps), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(newFeatureList(caps)); err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return enc.Close()
	default:
		_, err := io.WriteString(w, FormatFeatureList(caps, newPalette(w, color)))
		return err
	}
}

// FormatFeatureList renders the text listing:
//
//	default = ["foo", "bar"]
//	bar = []
//	foo = []
//	serde (optional)
func FormatFeatureList(caps *model.PackageCapabilities, p palette) string {
	var b strings.Builder

	for _, name := range caps.FeatureNames() {
		nameStyle := p.feature
		if name == model.DefaultFeatureName {
			nameStyle = p.defaultFeature
		}

		implied := make([]string, len(caps.Features[name]))
		for i, sub := range caps.Features[name] {
			implied[i] = p.implied.Render(strconv.Quote(sub))
		}
		fmt.Fprintf(&b, "%s = [%s]\n", nameStyle.Render(name), strings.Join(implied, ", "))
	}

	for _, dep := range caps.OptionalDependencies {
		fmt.Fprintf(&b, "%s %s\n", p.optional.Render(dep), p.optionalTag.Render("(optional)"))
	}
	return b.String()
}
