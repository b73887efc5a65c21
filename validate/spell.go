package validate

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"

	"github.com/c360studio/proplint/proposal"
)

// Body stripping patterns: code and URLs are never spell-checked.
var (
	fencedCodeRe = regexp.MustCompile("(?s)```.*?```")
	inlineCodeRe = regexp.MustCompile("`[^`\n]*`")
	urlRe        = regexp.MustCompile(`[a-zA-Z][a-zA-Z0-9+.-]*://[^\s)]+`)
	wordRe       = regexp.MustCompile(`[a-zA-Z']+`)
)

// SpellChecker checks prose words in proposal bodies against a dictionary.
// The dictionary is the externally configured base wordlist merged with the
// accepted-spellings list; an empty dictionary disables the checker rather
// than flagging every word.
type SpellChecker struct {
	dict     map[string]bool
	severity Severity
}

// NewSpellChecker builds a checker from the base wordlist and the accepted
// extra spellings. Lookup is case-insensitive.
func NewSpellChecker(words, accepted []string, severity Severity) *SpellChecker {
	dict := make(map[string]bool, len(words)+len(accepted))
	for _, w := range words {
		dict[strings.ToLower(w)] = true
	}
	for _, w := range accepted {
		dict[strings.ToLower(w)] = true
	}
	return &SpellChecker{dict: dict, severity: severity}
}

// LoadDictionary reads a wordlist file: one word per line, blank lines and
// #-comments ignored.
func LoadDictionary(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary: %w", err)
	}
	defer f.Close()

	var words []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read dictionary: %w", err)
	}
	return words, nil
}

// Check scans the proposal body for words missing from the dictionary.
// Each unknown word is reported once per document.
func (c *SpellChecker) Check(p *proposal.Proposal) []Violation {
	if len(c.dict) == 0 {
		return nil
	}

	// Fences are replaced newline for newline so line numbers after a code
	// block still match the document.
	body := fencedCodeRe.ReplaceAllStringFunc(p.Body, func(m string) string {
		return strings.Repeat("\n", strings.Count(m, "\n"))
	})
	body = inlineCodeRe.ReplaceAllString(body, "")
	body = urlRe.ReplaceAllString(body, "")

	var violations []Violation
	reported := make(map[string]bool)

	offset := bodyOffset(p)

	for lineNo, line := range strings.Split(body, "\n") {
		for _, word := range wordRe.FindAllString(line, -1) {
			if !checkable(word) {
				continue
			}
			lower := strings.ToLower(strings.Trim(word, "'"))
			if lower == "" || c.dict[lower] || reported[lower] {
				continue
			}
			reported[lower] = true
			violations = append(violations, Violation{
				Kind:     KindSpelling,
				Rule:     "unknown-word",
				Message:  fmt.Sprintf("unknown word %q", word),
				Line:     offset + lineNo + 1,
				Severity: c.severity,
			})
		}
	}

	return violations
}

// checkable filters out tokens that a prose dictionary cannot judge:
// short words, acronyms and capitalized proper nouns.
func checkable(word string) bool {
	runes := []rune(word)
	if len(runes) < 3 {
		return false
	}
	if unicode.IsUpper(runes[0]) {
		return false
	}
	for _, r := range runes[1:] {
		if unicode.IsUpper(r) {
			return false
		}
	}
	return true
}
