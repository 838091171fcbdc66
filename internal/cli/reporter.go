// reporter.go prints the progress stream: one line per added, removed or
// skipped feature, in the style of cargo's own status output.
package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmr-tortoise/cargo-feature/internal/manifest"
)

// Reporter prints progress lines such as
//
//	      Adding feature `derive` to crate `serde`
//
// to the progress stream. It implements manifest.Reporter.
type Reporter struct {
	w     io.Writer
	quiet bool
	p     palette
}

// NewReporter creates a Reporter writing to w. A quiet reporter prints
// nothing.
func NewReporter(w io.Writer, quiet, color bool) *Reporter {
	return &Reporter{w: w, quiet: quiet, p: newPalette(w, color)}
}

// Report prints one engine event.
func (r *Reporter) Report(ev manifest.Event) {
	where := ""
	if ev.Location.Target != "" {
		where = fmt.Sprintf(" (%s)", ev.Location)
	}

	switch ev.Action {
	case manifest.ActionAdd:
		r.status(r.p.success, "Adding", "feature `%s` to crate `%s`%s", ev.Feature, ev.Crate, where)
	case manifest.ActionRemove:
		r.status(r.p.success, "Removing", "feature `%s` from crate `%s`%s", ev.Feature, ev.Crate, where)
	case manifest.ActionSkip:
		r.status(r.p.warning, "Skipping", "crate `%s` has no feature `%s`", ev.Crate, ev.Feature)
	case manifest.ActionDisableDefaults:
		r.status(r.p.success, "Disabling", "default features of crate `%s`%s", ev.Crate, where)
	case manifest.ActionEnableDefaults:
		r.status(r.p.success, "Enabling", "default features of crate `%s`%s", ev.Crate, where)
	}
}

// Available prints the header of the feature listing.
func (r *Reporter) Available(crate string) {
	r.status(r.p.info, "Available", "features for `%s`", crate)
}

// NotDeclared warns that no table of the selected kind declares crate.
func (r *Reporter) NotDeclared(crate, table string) {
	r.status(r.p.warning, "Warning", "crate `%s` is not declared in [%s]", crate, table)
}

func (r *Reporter) status(label lipgloss.Style, name, format string, args ...interface{}) {
	if r.quiet {
		return
	}
	fmt.Fprintf(r.w, "%s %s\n", label.Render(name), fmt.Sprintf(format, args...))
}
