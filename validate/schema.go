package validate

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/c360studio/proplint/proposal"
)

// Header length limits, measured in characters.
const (
	maxTitleLen       = 44
	maxDescriptionLen = 140
)

// Pre-compiled author entry patterns.
var (
	// authorHandleRe matches "Full Name (@handle)".
	authorHandleRe = regexp.MustCompile(`^[^()<>]+\s\(@[a-zA-Z0-9][a-zA-Z0-9-]*\)$`)
	// authorEmailRe matches "Full Name <user@example.com>".
	authorEmailRe = regexp.MustCompile(`^[^()<>]+\s<[^<>@\s]+@[^<>@\s]+>$`)
	// authorPlainRe matches a bare name with no contact handle.
	authorPlainRe = regexp.MustCompile(`^[^()<>]+$`)
)

// FieldSpec declares one recognized front-matter field: its requiredness,
// accepted value kinds and any field-local check.
type FieldSpec struct {
	Name     string
	Required bool
	Kinds    []proposal.ValueKind
	Check    func(f proposal.Field) []Violation
}

// Schema is the static front-matter field table plus the cross-field rules.
type Schema struct {
	fields map[string]FieldSpec
	order  []string
}

// DefaultSchema returns the schema every proposal header is validated
// against.
func DefaultSchema() *Schema {
	specs := []FieldSpec{
		{Name: "id", Required: true, Kinds: []proposal.ValueKind{proposal.ValueInt}, Check: checkID},
		{Name: "title", Required: true, Kinds: []proposal.ValueKind{proposal.ValueString}, Check: headlineCheck("title", maxTitleLen)},
		{Name: "description", Required: true, Kinds: []proposal.ValueKind{proposal.ValueString}, Check: headlineCheck("description", maxDescriptionLen)},
		{Name: "author", Required: true, Kinds: []proposal.ValueKind{proposal.ValueString, proposal.ValueStringList}, Check: checkAuthor},
		{Name: "discussions-to", Required: true, Kinds: []proposal.ValueKind{proposal.ValueString}, Check: checkDiscussionsTo},
		{Name: "status", Required: true, Kinds: []proposal.ValueKind{proposal.ValueString}, Check: checkStatus},
		{Name: "type", Required: true, Kinds: []proposal.ValueKind{proposal.ValueString}, Check: checkType},
		{Name: "category", Required: false, Kinds: []proposal.ValueKind{proposal.ValueString}, Check: checkCategory},
		{Name: "created", Required: true, Kinds: []proposal.ValueKind{proposal.ValueDate}},
		{Name: "last-call-deadline", Required: false, Kinds: []proposal.ValueKind{proposal.ValueDate}},
		{Name: "requires", Required: false, Kinds: []proposal.ValueKind{proposal.ValueInt, proposal.ValueIntList}, Check: checkRequires},
		{Name: "withdrawal-reason", Required: false, Kinds: []proposal.ValueKind{proposal.ValueString}},
	}

	s := &Schema{fields: make(map[string]FieldSpec, len(specs))}
	for _, spec := range specs {
		s.fields[spec.Name] = spec
		s.order = append(s.order, spec.Name)
	}
	return s
}

// Check validates one proposal's front matter against the schema. All
// violations are accumulated and returned; nothing fails fast, so a caller
// sees every problem in a single pass.
func (s *Schema) Check(p *proposal.Proposal) []Violation {
	var violations []Violation

	// Declared fields: recognized, well-typed, field-local rules.
	for _, f := range p.Matter.Fields {
		spec, known := s.fields[f.Name]
		if !known {
			violations = append(violations, schemaViolation(
				"unknown-field", f.Name,
				fmt.Sprintf("unrecognized field %q", f.Name), f.Line))
			continue
		}

		if !kindAllowed(spec.Kinds, f.Value.Kind) {
			violations = append(violations, schemaViolation(
				"type", f.Name,
				fmt.Sprintf("field %q must be a %s, got %s", f.Name, kindNames(spec.Kinds), f.Value.Kind), f.Line))
			continue
		}

		if spec.Check != nil {
			violations = append(violations, spec.Check(f)...)
		}
	}

	// Required fields.
	for _, name := range s.order {
		spec := s.fields[name]
		if spec.Required && !p.Matter.Has(name) {
			violations = append(violations, schemaViolation(
				"required", name,
				fmt.Sprintf("missing required field %q", name), 0))
		}
	}

	violations = append(violations, s.crossFieldChecks(p)...)
	return violations
}

// crossFieldChecks applies the status- and type-dependent requiredness
// rules. A field that is conditional in one direction is rejected in the
// other, so stale metadata cannot survive a status transition.
func (s *Schema) crossFieldChecks(p *proposal.Proposal) []Violation {
	var violations []Violation

	status, statusOK := p.Matter.Get("status")
	conditional := func(field string, want bool, reason string) {
		f, present := p.Matter.Get(field)
		switch {
		case want && !present:
			violations = append(violations, schemaViolation(
				"required", field,
				fmt.Sprintf("field %q is required %s", field, reason), status.Line))
		case !want && present:
			violations = append(violations, schemaViolation(
				"forbidden", field,
				fmt.Sprintf("field %q is only allowed %s", field, reason), f.Line))
		}
	}

	if statusOK && status.Value.Kind == proposal.ValueString {
		sv := proposal.Status(status.Value.Str)
		if sv.Valid() {
			conditional("last-call-deadline", sv == proposal.StatusLastCall, `when status is "Last Call"`)
			conditional("withdrawal-reason", sv == proposal.StatusWithdrawn, `when status is "Withdrawn"`)
		}
	}

	if typ, ok := p.Matter.Get("type"); ok && typ.Value.Kind == proposal.ValueString {
		tv := proposal.Type(typ.Value.Str)
		if tv.Valid() {
			f, present := p.Matter.Get("category")
			switch {
			case tv == proposal.TypeStandardsTrack && !present:
				violations = append(violations, schemaViolation(
					"required", "category",
					`field "category" is required for Standards Track proposals`, typ.Line))
			case tv != proposal.TypeStandardsTrack && present:
				violations = append(violations, schemaViolation(
					"forbidden", "category",
					`field "category" is only allowed for Standards Track proposals`, f.Line))
			}
		}
	}

	return violations
}

func checkID(f proposal.Field) []Violation {
	if f.Value.Int < 1 {
		return []Violation{schemaViolation(
			"range", f.Name,
			fmt.Sprintf("id must be a positive integer, got %d", f.Value.Int), f.Line)}
	}
	return nil
}

// headlineCheck builds the shared rule set for one-line prose fields.
func headlineCheck(name string, maxLen int) func(f proposal.Field) []Violation {
	return func(f proposal.Field) []Violation {
		var violations []Violation
		text := f.Value.Str

		if strings.TrimSpace(text) == "" {
			violations = append(violations, schemaViolation(
				"required", name,
				fmt.Sprintf("field %q must not be empty", name), f.Line))
			return violations
		}
		if n := len([]rune(text)); n > maxLen {
			violations = append(violations, schemaViolation(
				"max-length", name,
				fmt.Sprintf("field %q exceeds %d characters (%d)", name, maxLen, n), f.Line))
		}
		if strings.HasSuffix(text, ".") {
			violations = append(violations, schemaViolation(
				"no-trailing-period", name,
				fmt.Sprintf("field %q must not end with a period", name), f.Line))
		}
		return violations
	}
}

// checkAuthor validates the comma-separated author list. At least one entry
// must carry a contact (a GitHub handle or an email address) so that the
// proposal has a reachable owner.
func checkAuthor(f proposal.Field) []Violation {
	var entries []string
	if f.Value.Kind == proposal.ValueStringList {
		entries = f.Value.Strs
	} else {
		entries = strings.Split(f.Value.Str, ",")
	}

	var violations []Violation
	reachable := false
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			violations = append(violations, schemaViolation(
				"author-format", f.Name, "empty author entry", f.Line))
			continue
		}
		switch {
		case authorHandleRe.MatchString(entry), authorEmailRe.MatchString(entry):
			reachable = true
		case authorPlainRe.MatchString(entry):
			// Bare name, allowed but not reachable.
		default:
			violations = append(violations, schemaViolation(
				"author-format", f.Name,
				fmt.Sprintf("author entry %q must be \"Name\", \"Name (@handle)\" or \"Name <email>\"", entry), f.Line))
		}
	}

	if !reachable {
		violations = append(violations, schemaViolation(
			"author-contact", f.Name,
			"at least one author must include a (@handle) or <email> contact", f.Line))
	}
	return violations
}

func checkDiscussionsTo(f proposal.Field) []Violation {
	u, err := url.Parse(f.Value.Str)
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return []Violation{schemaViolation(
			"url", f.Name,
			fmt.Sprintf("field %q must be a valid https URL, got %q", f.Name, f.Value.Str), f.Line)}
	}
	return nil
}

func checkStatus(f proposal.Field) []Violation {
	if !proposal.Status(f.Value.Str).Valid() {
		return []Violation{schemaViolation(
			"enum", f.Name,
			fmt.Sprintf("unknown status %q (want one of %s)", f.Value.Str, enumList(statusNames())), f.Line)}
	}
	return nil
}

func checkType(f proposal.Field) []Violation {
	if !proposal.Type(f.Value.Str).Valid() {
		return []Violation{schemaViolation(
			"enum", f.Name,
			fmt.Sprintf("unknown type %q (want one of %s)", f.Value.Str, enumList(typeNames())), f.Line)}
	}
	return nil
}

func checkCategory(f proposal.Field) []Violation {
	if !proposal.Category(f.Value.Str).Valid() {
		return []Violation{schemaViolation(
			"enum", f.Name,
			fmt.Sprintf("unknown category %q (want one of %s)", f.Value.Str, enumList(categoryNames())), f.Line)}
	}
	return nil
}

// checkRequires enforces that the requires list is sorted ascending with no
// duplicates. Existence and status of the referenced ids belong to the
// reference resolver, which has the corpus index.
func checkRequires(f proposal.Field) []Violation {
	ids := f.Value.List
	if f.Value.Kind == proposal.ValueInt {
		ids = []int{f.Value.Int}
	}

	var violations []Violation
	seen := make(map[int]bool, len(ids))
	for i, id := range ids {
		if seen[id] {
			violations = append(violations, schemaViolation(
				"requires-duplicate", f.Name,
				fmt.Sprintf("duplicate required id %d", id), f.Line))
		}
		seen[id] = true
		if i > 0 && ids[i-1] > id {
			violations = append(violations, schemaViolation(
				"requires-order", f.Name,
				fmt.Sprintf("required ids must be in ascending order (%d after %d)", id, ids[i-1]), f.Line))
		}
	}
	return violations
}

func kindAllowed(allowed []proposal.ValueKind, got proposal.ValueKind) bool {
	for _, k := range allowed {
		if k == got {
			return true
		}
	}
	return false
}

func kindNames(kinds []proposal.ValueKind) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return strings.Join(names, " or ")
}

func statusNames() []string {
	names := make([]string, len(proposal.Statuses))
	for i, s := range proposal.Statuses {
		names[i] = string(s)
	}
	return names
}

func typeNames() []string {
	names := make([]string, len(proposal.Types))
	for i, t := range proposal.Types {
		names[i] = string(t)
	}
	return names
}

func categoryNames() []string {
	names := make([]string, len(proposal.Categories))
	for i, c := range proposal.Categories {
		names[i] = string(c)
	}
	return names
}

func enumList(names []string) string {
	return strings.Join(names, ", ")
}
