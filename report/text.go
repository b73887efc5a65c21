package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/c360studio/proplint/validate"
)

var (
	pathStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E5C07B"))
	passStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98C379"))
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
)

// WriteText renders the human-readable report. Passing documents are
// summarized; each violation of a failing document gets one line.
func (r *Report) WriteText(w io.Writer) error {
	var b strings.Builder

	for i := range r.Results {
		res := &r.Results[i]
		if len(res.Violations) == 0 {
			continue
		}

		header := res.Path
		if res.ID > 0 {
			header = fmt.Sprintf("%s (proposal %d)", res.Path, res.ID)
		}
		b.WriteString(pathStyle.Render(header))
		b.WriteByte('\n')

		for _, v := range res.Violations {
			b.WriteString("  ")
			b.WriteString(renderViolation(v))
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}

	b.WriteString(summaryLine(r))
	b.WriteByte('\n')

	_, err := io.WriteString(w, b.String())
	return err
}

func renderViolation(v validate.Violation) string {
	level := errorStyle.Render("error")
	if v.Severity == validate.SeverityWarning {
		level = warnStyle.Render("warning")
	}

	pos := ""
	if v.Line > 0 {
		pos = fmt.Sprintf("line %d: ", v.Line)
	}

	rule := dimStyle.Render(fmt.Sprintf("[%s/%s]", v.Kind, v.Rule))
	return fmt.Sprintf("%s %s%s %s", level, pos, v.Message, rule)
}

func summaryLine(r *Report) string {
	passed := r.Checked - r.Failed
	summary := fmt.Sprintf("%d checked, %d passed, %d failed, %d warnings",
		r.Checked, passed, r.Failed, r.Warnings)
	if r.Passed() {
		return passStyle.Render("PASS") + " " + summary
	}
	return errorStyle.Render("FAIL") + " " + summary
}
