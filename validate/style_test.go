package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/proplint/proposal"
)

func styleDoc(t *testing.T, body string) *proposal.Proposal {
	t.Helper()
	p, err := proposal.Parse("doc.md", []byte("---\nid: 1\n---\n"+body))
	require.NoError(t, err)
	return p
}

func styleRules(violations []Violation) []string {
	out := make([]string, 0, len(violations))
	for _, v := range violations {
		out = append(out, v.Rule)
	}
	return out
}

func TestStyleChecker_TrailingWhitespace(t *testing.T) {
	c := NewStyleChecker(StyleRules{NoTrailingWhitespace: true})

	violations := c.Check(styleDoc(t, "# Title\n\nclean line\ndirty line  \n"))

	require.Len(t, violations, 1)
	assert.Equal(t, KindStyle, violations[0].Kind)
	assert.Equal(t, "trailing-whitespace", violations[0].Rule)
	assert.Equal(t, SeverityWarning, violations[0].Severity)
}

func TestStyleChecker_LineNumbersMatchDocument(t *testing.T) {
	c := NewStyleChecker(StyleRules{NoTrailingWhitespace: true})

	t.Run("no blank line after header", func(t *testing.T) {
		p, err := proposal.Parse("doc.md", []byte("---\nid: 1\n---\n# Title\ndirty line  \n"))
		require.NoError(t, err)

		violations := c.Check(p)
		require.Len(t, violations, 1)
		assert.Equal(t, 5, violations[0].Line)
	})

	t.Run("blank line after header", func(t *testing.T) {
		p, err := proposal.Parse("doc.md", []byte("---\nid: 1\n---\n\n# Title\ndirty line  \n"))
		require.NoError(t, err)

		violations := c.Check(p)
		require.Len(t, violations, 1)
		assert.Equal(t, 6, violations[0].Line)
	})
}

func TestStyleChecker_MaxLineLength(t *testing.T) {
	c := NewStyleChecker(StyleRules{MaxLineLength: 20})

	body := "short line\n" + strings.Repeat("x", 21) + "\n"
	violations := c.Check(styleDoc(t, body))

	assert.Equal(t, []string{"max-line-length"}, styleRules(violations))
}

func TestStyleChecker_FencedCodeExemptFromLineLength(t *testing.T) {
	c := NewStyleChecker(StyleRules{MaxLineLength: 20})

	body := "```\n" + strings.Repeat("x", 80) + "\n```\n"
	assert.Empty(t, c.Check(styleDoc(t, body)))
}

func TestStyleChecker_FencedCodeExemptFromWhitespace(t *testing.T) {
	c := NewStyleChecker(StyleRules{MaxLineLength: 20, NoTrailingWhitespace: true})

	// Trailing whitespace on the delimiter and inside the fence, plus an
	// over-long fenced line.
	body := "# Title\n\n```  \n" + strings.Repeat("x", 80) + "  \n```\n"
	assert.Empty(t, c.Check(styleDoc(t, body)))
}

func TestStyleChecker_RequireTopHeading(t *testing.T) {
	c := NewStyleChecker(StyleRules{RequireTopHeading: true})

	t.Run("heading first", func(t *testing.T) {
		assert.Empty(t, c.Check(styleDoc(t, "# Abstract\n\nprose\n")))
	})

	t.Run("prose first", func(t *testing.T) {
		violations := c.Check(styleDoc(t, "prose without a heading\n"))
		assert.Equal(t, []string{"top-heading"}, styleRules(violations))
	})
}

func TestStyleChecker_AllRulesDisabled(t *testing.T) {
	c := NewStyleChecker(StyleRules{})

	body := "no heading  \n" + strings.Repeat("x", 500) + "\n"
	assert.Empty(t, c.Check(styleDoc(t, body)))
}
