package validate

import (
	"fmt"
	"strings"

	"github.com/c360studio/proplint/proposal"
)

// Resolver checks the requires field of a proposal against the corpus
// index. The index is built once before the parallel fan-out and is
// read-only here; Resolver holds no mutable state, so a single instance is
// shared by all workers.
type Resolver struct {
	index     *proposal.Index
	unchecked map[int]bool
}

// NewResolver creates a resolver over the given index. Ids in unchecked are
// exempt from existence and status checks.
func NewResolver(index *proposal.Index, unchecked []int) *Resolver {
	set := make(map[int]bool, len(unchecked))
	for _, id := range unchecked {
		set[id] = true
	}
	return &Resolver{index: index, unchecked: set}
}

// Unchecked reports whether an id is exempt from reference checks.
func (r *Resolver) Unchecked(id int) bool {
	return r.unchecked[id]
}

// Check resolves the proposal's references. A bad reference appends a
// violation and never aborts: one dangling id must not block validation of
// unrelated documents.
func (r *Resolver) Check(p *proposal.Proposal) []Violation {
	var violations []Violation

	selfID, hasID := p.Number()
	if hasID {
		if paths := r.index.DuplicatePaths(selfID); len(paths) > 1 {
			violations = append(violations, referenceViolation(
				"duplicate-id", "id",
				fmt.Sprintf("id %d is declared by multiple proposals: %s", selfID, strings.Join(paths, ", ")), 0))
		}
	}

	f, ok := p.Matter.Get("requires")
	if !ok {
		return violations
	}

	ids := f.Value.List
	if f.Value.Kind == proposal.ValueInt {
		ids = []int{f.Value.Int}
	}

	selfStatus, hasStatus := p.Status()

	for _, id := range ids {
		if hasID && id == selfID {
			violations = append(violations, referenceViolation(
				"requires-self", f.Name,
				fmt.Sprintf("proposal %d cannot require itself", selfID), f.Line))
			continue
		}
		if r.unchecked[id] {
			continue
		}

		entry, exists := r.index.Lookup(id)
		if !exists {
			violations = append(violations, referenceViolation(
				"dangling", f.Name,
				fmt.Sprintf("required proposal %d does not exist", id), f.Line))
			continue
		}

		if !entry.Status.Referencable() {
			violations = append(violations, referenceViolation(
				"requires-status", f.Name,
				fmt.Sprintf("required proposal %d has status %q and cannot be depended on", id, entry.Status), f.Line))
			continue
		}

		// A proposal must not be more stable than anything it requires.
		if hasStatus && selfStatus.Stability() > entry.Status.Stability() {
			violations = append(violations, referenceViolation(
				"requires-stability", f.Name,
				fmt.Sprintf("proposal with status %q cannot require proposal %d with less stable status %q",
					selfStatus, id, entry.Status), f.Line))
		}
	}

	return violations
}
