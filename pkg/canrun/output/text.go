package output

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/jamesainslie/canrun/pkg/canrun/types"
)

// statusGlyph returns the report symbol for a verdict status.
func statusGlyph(s types.Status) string {
	switch s {
	case types.StatusOK:
		return "✅"
	case types.StatusWarning:
		return "⚠️"
	case types.StatusFail:
		return "❌"
	default:
		return "❔"
	}
}

// verdictSummary renders the quantity portion of a verdict line, e.g.
// "available 24 GiB / required 8.0 GiB".
func verdictSummary(v types.Verdict) string {
	switch {
	case v.Measured && v.Required > 0:
		return fmt.Sprintf("available %s / required %s",
			types.FormatQuantity(v.Kind, v.Available),
			types.FormatQuantity(v.Kind, v.Required))
	case v.Measured:
		return fmt.Sprintf("available %s", types.FormatQuantity(v.Kind, v.Available))
	case v.Required > 0:
		return fmt.Sprintf("required %s", types.FormatQuantity(v.Kind, v.Required))
	default:
		return "not measured"
	}
}

// TextFormatter produces the plain line-per-verdict report suitable for
// scripting, logs, and non-TTY output.
type TextFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *TextFormatter) Format(w *bytes.Buffer, d *Document) error {
	for _, v := range d.Report.Verdicts {
		w.WriteString(statusGlyph(v.Status))
		w.WriteString(" ")
		w.WriteString(v.Kind.Label())
		w.WriteString(": ")
		w.WriteString(verdictSummary(v))
		if v.Message != "" {
			fmt.Fprintf(w, " (%s)", v.Message)
		}
		w.WriteByte('\n')
	}

	w.WriteByte('\n')
	w.WriteString("System ready for execution: ")
	if d.Report.Ready {
		w.WriteString("YES")
	} else {
		w.WriteString("NO")
	}
	w.WriteByte('\n')

	if d.Report.Suggestion != "" {
		fmt.Fprintf(w, "Suggestion: %s\n", d.Report.Suggestion)
	}

	if d.Verbose {
		f.writeEvidence(w, d)
	}
	return nil
}

// writeEvidence appends platform, probe, requirement, and dependency
// detail for verbose runs.
func (f *TextFormatter) writeEvidence(w *bytes.Buffer, d *Document) {
	w.WriteByte('\n')

	p := d.Report.Platform
	fmt.Fprintf(w, "Platform: %s/%s", p.OS, p.Arch)
	if p.Hostname != "" {
		fmt.Fprintf(w, " (%s)", p.Hostname)
	}
	w.WriteByte('\n')

	fmt.Fprintf(w, "Project: %s\n", d.ProjectPath)
	if d.ManifestPath != "" {
		fmt.Fprintf(w, "Manifest: %s\n", d.ManifestPath)
	}
	if d.Report.Elapsed > 0 {
		fmt.Fprintf(w, "Elapsed: %s\n", d.Report.Elapsed)
	}

	if len(d.Probes) > 0 {
		w.WriteString("\nProbes:\n")
		for _, m := range d.Probes {
			fmt.Fprintf(w, "  %s: ", m.Kind.Label())
			if m.OK() {
				w.WriteString(types.FormatQuantity(m.Kind, m.Available))
				if m.Total > 0 {
					fmt.Fprintf(w, " of %s", types.FormatQuantity(m.Kind, m.Total))
				}
				if m.Detail != "" {
					fmt.Fprintf(w, " [%s]", m.Detail)
				}
			} else {
				fmt.Fprintf(w, "error: %s", m.Err)
			}
			if m.Duration > 0 {
				fmt.Fprintf(w, " in %s", m.Duration)
			}
			w.WriteByte('\n')
		}
	}

	if len(d.Requirements) > 0 {
		w.WriteString("\nRequirements:\n")
		for _, req := range d.Requirements {
			fmt.Fprintf(w, "  %s: %s (%s)", req.Kind.Label(),
				types.FormatQuantity(req.Kind, req.Required), req.Source)
			if req.Recommended > 0 {
				fmt.Fprintf(w, ", recommended %s", types.FormatQuantity(req.Kind, req.Recommended))
			}
			if req.Detail != "" {
				fmt.Fprintf(w, " [%s]", req.Detail)
			}
			w.WriteByte('\n')
		}
	}

	if len(d.Dependencies) > 0 {
		w.WriteString("\nDependencies:\n")
		ecosystems := make([]string, 0, len(d.Dependencies))
		for eco := range d.Dependencies {
			ecosystems = append(ecosystems, eco)
		}
		sort.Strings(ecosystems)
		for _, eco := range ecosystems {
			fmt.Fprintf(w, "  %s: %s\n", eco, strings.Join(d.Dependencies[eco], ", "))
		}
	}

	if len(d.Report.Warnings) > 0 {
		w.WriteString("\nWarnings:\n")
		for _, warning := range d.Report.Warnings {
			fmt.Fprintf(w, "  %s\n", warning)
		}
	}
}

func init() {
	Register("text", func() Formatter {
		return &TextFormatter{}
	})
}

// Ensure TextFormatter implements Formatter.
var _ Formatter = (*TextFormatter)(nil)
