package validate

import (
	"fmt"
	"strings"

	"github.com/c360studio/proplint/proposal"
)

// StyleRules is the externally configured prose formatting rule set.
// Zero values disable individual rules.
type StyleRules struct {
	// MaxLineLength flags body lines longer than this many characters.
	MaxLineLength int
	// NoTrailingWhitespace flags lines ending in spaces or tabs.
	NoTrailingWhitespace bool
	// RequireTopHeading flags bodies whose first content line is not a
	// level-one markdown heading.
	RequireTopHeading bool
}

// StyleChecker applies prose formatting rules to proposal bodies. Style
// findings are warnings: they never gate CI on their own.
type StyleChecker struct {
	rules StyleRules
}

// NewStyleChecker creates a checker for the given rule set.
func NewStyleChecker(rules StyleRules) *StyleChecker {
	return &StyleChecker{rules: rules}
}

// Check scans the body line by line. Fenced code blocks, delimiters
// included, are exempt from the formatting rules; code is quoted verbatim,
// not prose.
func (c *StyleChecker) Check(p *proposal.Proposal) []Violation {
	var violations []Violation

	offset := bodyOffset(p)
	inFence := false
	sawContent := false

	for lineNo, line := range strings.Split(p.Body, "\n") {
		docLine := offset + lineNo + 1

		if c.rules.RequireTopHeading && !sawContent && strings.TrimSpace(line) != "" {
			sawContent = true
			if !strings.HasPrefix(line, "# ") {
				violations = append(violations, Violation{
					Kind:     KindStyle,
					Rule:     "top-heading",
					Message:  "body must start with a level-one heading",
					Line:     docLine,
					Severity: SeverityWarning,
				})
			}
		}

		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}

		if c.rules.NoTrailingWhitespace && line != strings.TrimRight(line, " \t") {
			violations = append(violations, Violation{
				Kind:     KindStyle,
				Rule:     "trailing-whitespace",
				Message:  "line has trailing whitespace",
				Line:     docLine,
				Severity: SeverityWarning,
			})
		}

		if c.rules.MaxLineLength > 0 {
			if n := len([]rune(line)); n > c.rules.MaxLineLength {
				violations = append(violations, Violation{
					Kind:     KindStyle,
					Rule:     "max-line-length",
					Message:  fmt.Sprintf("line exceeds %d characters (%d)", c.rules.MaxLineLength, n),
					Line:     docLine,
					Severity: SeverityWarning,
				})
			}
		}
	}

	return violations
}
