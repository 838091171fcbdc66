// styles.go defines the lipgloss styles used on stdout and stderr.
package cli

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// labelWidth is the width of the right-aligned status label that starts
// every progress line, as in cargo's own output.
const labelWidth = 12

// palette holds the styles for one output stream. The renderer detects
// whether the stream is a color terminal, so output to pipes and files is
// plain text.
type palette struct {
	// Status labels
	success lipgloss.Style
	warning lipgloss.Style
	info    lipgloss.Style

	// Feature listing
	feature        lipgloss.Style
	defaultFeature lipgloss.Style
	implied        lipgloss.Style
	optional       lipgloss.Style
	optionalTag    lipgloss.Style
}

func newPalette(w io.Writer, color bool) palette {
	r := lipgloss.NewRenderer(w)
	label := r.NewStyle().Width(labelWidth).Align(lipgloss.Right)

	if !color {
		plain := r.NewStyle()
		return palette{
			success:        label,
			warning:        label,
			info:           label,
			feature:        plain,
			defaultFeature: plain,
			implied:        plain,
			optional:       plain,
			optionalTag:    plain,
		}
	}

	return palette{
		success:        label.Bold(true).Foreground(lipgloss.Color("2")),
		warning:        label.Bold(true).Foreground(lipgloss.Color("3")),
		info:           label.Bold(true).Foreground(lipgloss.Color("6")),
		feature:        r.NewStyle().Bold(true).Foreground(lipgloss.Color("2")),
		defaultFeature: r.NewStyle().Bold(true).Foreground(lipgloss.Color("5")),
		implied:        r.NewStyle().Foreground(lipgloss.Color("3")),
		optional:       r.NewStyle().Bold(true).Foreground(lipgloss.Color("3")),
		optionalTag:    r.NewStyle().Faint(true).Foreground(lipgloss.Color("3")),
	}
}
