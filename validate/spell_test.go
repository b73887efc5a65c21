package validate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/proplint/proposal"
)

func spellDoc(t *testing.T, body string) *proposal.Proposal {
	t.Helper()
	p, err := proposal.Parse("doc.md", []byte("---\nid: 1\n---\n"+body))
	require.NoError(t, err)
	return p
}

var baseWords = []string{"the", "token", "contract", "must", "return", "balance", "and"}

func TestSpellChecker_UnknownWord(t *testing.T) {
	c := NewSpellChecker(baseWords, nil, SeverityWarning)

	violations := c.Check(spellDoc(t, "the token contrct must return the balance\n"))

	require.Len(t, violations, 1)
	assert.Equal(t, KindSpelling, violations[0].Kind)
	assert.Equal(t, "unknown-word", violations[0].Rule)
	assert.Equal(t, SeverityWarning, violations[0].Severity)
	assert.Contains(t, violations[0].Message, "contrct")
}

func TestSpellChecker_AcceptedSpellings(t *testing.T) {
	c := NewSpellChecker(baseWords, []string{"contrct"}, SeverityWarning)

	assert.Empty(t, c.Check(spellDoc(t, "the token contrct must return the balance\n")))
}

func TestSpellChecker_ReportsEachWordOnce(t *testing.T) {
	c := NewSpellChecker(baseWords, nil, SeverityWarning)

	violations := c.Check(spellDoc(t, "contrct and contrct and contrct\n"))
	assert.Len(t, violations, 1)
}

func TestSpellChecker_LineNumbersAfterFence(t *testing.T) {
	c := NewSpellChecker(baseWords, nil, SeverityWarning)

	body := "the token\n```\nzzqx\nflibber\nmore\n```\nthe balance contrct\n"
	violations := c.Check(spellDoc(t, body))

	require.Len(t, violations, 1)
	assert.Contains(t, violations[0].Message, "contrct")
	assert.Equal(t, 10, violations[0].Line)
}

func TestSpellChecker_SkipsCodeAndURLs(t *testing.T) {
	c := NewSpellChecker(baseWords, nil, SeverityError)

	body := "the token must return the balance\n" +
		"```\nzzqx flibber\n```\n" +
		"and `wrblx` and https://example.com/zzqx\n"
	assert.Empty(t, c.Check(spellDoc(t, body)))
}

func TestSpellChecker_SkipsProperNounsAndAcronyms(t *testing.T) {
	c := NewSpellChecker(baseWords, nil, SeverityError)

	assert.Empty(t, c.Check(spellDoc(t, "Ethereum and the ERC token and the ABI\n")))
}

func TestSpellChecker_EmptyDictionaryDisabled(t *testing.T) {
	c := NewSpellChecker(nil, nil, SeverityError)

	assert.Empty(t, c.Check(spellDoc(t, "anything goes here\n")))
}

func TestSpellChecker_SeverityError(t *testing.T) {
	c := NewSpellChecker(baseWords, nil, SeverityError)

	violations := c.Check(spellDoc(t, "the contrct\n"))
	require.Len(t, violations, 1)
	assert.Equal(t, SeverityError, violations[0].Severity)
}

func TestLoadDictionary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	content := "# comment line\nalpha\n\nbeta\n  gamma  \n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	words, err := LoadDictionary(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, words)

	_, err = LoadDictionary(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
