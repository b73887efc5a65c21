package validate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/c360studio/proplint/proposal"
)

// Pre-compiled body link patterns.
var (
	// inlineLinkRe matches inline markdown links, capturing the target.
	inlineLinkRe = regexp.MustCompile(`\[[^\]]*\]\(\s*<?([^)<>\s]+)>?\s*\)`)
	// crossRefRe matches proposal document filenames like proposal-20.md,
	// capturing the numeric id.
	crossRefRe = regexp.MustCompile(`^[a-z]+-([0-9]+)\.md$`)
	// schemeRe detects absolute URLs, which are skipped: link checking is
	// offline so CI gating cannot flake on network conditions.
	schemeRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*:`)
)

// LinkChecker validates inline links in proposal bodies. Relative links
// must resolve to files under the repository root; links to sibling
// proposal documents additionally go through the reference resolver's
// existence and status rules.
type LinkChecker struct {
	root     string
	index    *proposal.Index
	resolver *Resolver
}

// NewLinkChecker creates a link checker rooted at the proposal directory.
func NewLinkChecker(root string, index *proposal.Index, resolver *Resolver) *LinkChecker {
	return &LinkChecker{root: root, index: index, resolver: resolver}
}

// Check extracts and validates every inline link in the body.
func (c *LinkChecker) Check(p *proposal.Proposal) []Violation {
	var violations []Violation

	// Line numbers here count from the top of the body; offset them to the
	// document so diagnostics point at the real line.
	offset := bodyOffset(p)

	for lineNo, line := range strings.Split(p.Body, "\n") {
		for _, match := range inlineLinkRe.FindAllStringSubmatch(line, -1) {
			target := match[1]
			if v := c.checkTarget(p, target, offset+lineNo+1); v != nil {
				violations = append(violations, *v)
			}
		}
	}

	return violations
}

func (c *LinkChecker) checkTarget(p *proposal.Proposal, target string, line int) *Violation {
	if schemeRe.MatchString(target) {
		return nil
	}

	// Drop fragments; anchor resolution inside documents is out of scope.
	if idx := strings.IndexByte(target, '#'); idx >= 0 {
		target = target[:idx]
		if target == "" {
			return nil
		}
	}

	rel := filepath.Join(filepath.Dir(p.Path), filepath.FromSlash(target))
	abs := filepath.Join(c.root, rel)

	if base := filepath.Base(target); crossRefRe.MatchString(base) {
		id, _ := strconv.Atoi(crossRefRe.FindStringSubmatch(base)[1])
		return c.checkCrossRef(id, target, line)
	}

	if _, err := os.Stat(abs); err != nil {
		v := Violation{
			Kind:     KindLink,
			Rule:     "dead-link",
			Message:  fmt.Sprintf("link target %q does not exist", target),
			Line:     line,
			Severity: SeverityError,
		}
		return &v
	}
	return nil
}

// checkCrossRef applies the reference rules to a body link naming another
// proposal document.
func (c *LinkChecker) checkCrossRef(id int, target string, line int) *Violation {
	if c.resolver != nil && c.resolver.Unchecked(id) {
		return nil
	}

	entry, exists := c.index.Lookup(id)
	if !exists {
		v := Violation{
			Kind:     KindLink,
			Rule:     "dead-link",
			Message:  fmt.Sprintf("link target %q names proposal %d, which does not exist", target, id),
			Line:     line,
			Severity: SeverityError,
		}
		return &v
	}
	if !entry.Status.Referencable() {
		v := Violation{
			Kind:     KindLink,
			Rule:     "link-status",
			Message:  fmt.Sprintf("link target %q names proposal %d with status %q", target, id, entry.Status),
			Line:     line,
			Severity: SeverityError,
		}
		return &v
	}
	return nil
}

// bodyOffset converts body-relative line numbers to document lines using
// the body start position the parser recorded.
func bodyOffset(p *proposal.Proposal) int {
	if p.BodyLine > 0 {
		return p.BodyLine - 1
	}
	return 0
}
