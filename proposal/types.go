// Package proposal provides the proposal document model and front-matter parser.
package proposal

import (
	"time"
)

// Status tracks a proposal through its lifecycle.
type Status string

// Proposal lifecycle statuses.
const (
	StatusDraft     Status = "Draft"
	StatusReview    Status = "Review"
	StatusLastCall  Status = "Last Call"
	StatusFinal     Status = "Final"
	StatusStagnant  Status = "Stagnant"
	StatusWithdrawn Status = "Withdrawn"
	StatusLiving    Status = "Living"
)

// Statuses lists all recognized statuses in lifecycle order.
var Statuses = []Status{
	StatusDraft,
	StatusReview,
	StatusLastCall,
	StatusFinal,
	StatusStagnant,
	StatusWithdrawn,
	StatusLiving,
}

// Valid reports whether s is a recognized status.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Stability returns the stability rank used for reference checks.
// A proposal may not require another proposal of lower rank than its own.
// Stagnant and Withdrawn have no rank; they are not referencable at all.
func (s Status) Stability() int {
	switch s {
	case StatusDraft:
		return 1
	case StatusReview:
		return 2
	case StatusLastCall:
		return 3
	case StatusFinal, StatusLiving:
		return 4
	default:
		return 0
	}
}

// Referencable reports whether other proposals may list s-status proposals
// in their requires field.
func (s Status) Referencable() bool {
	switch s {
	case StatusStagnant, StatusWithdrawn:
		return false
	default:
		return s.Valid()
	}
}

// Type classifies what a proposal standardizes.
type Type string

// Proposal types.
const (
	TypeStandardsTrack Type = "Standards Track"
	TypeMeta           Type = "Meta"
	TypeInformational  Type = "Informational"
)

// Types lists all recognized proposal types.
var Types = []Type{TypeStandardsTrack, TypeMeta, TypeInformational}

// Valid reports whether t is a recognized type.
func (t Type) Valid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// Category subdivides Standards Track proposals.
type Category string

// Standards Track categories.
const (
	CategoryCore        Category = "Core"
	CategoryNetworking  Category = "Networking"
	CategoryInterface   Category = "Interface"
	CategoryApplication Category = "Application"
)

// Categories lists all recognized categories.
var Categories = []Category{CategoryCore, CategoryNetworking, CategoryInterface, CategoryApplication}

// Valid reports whether c is a recognized category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ValueKind discriminates the typed front-matter value variants.
type ValueKind int

// Front-matter value kinds.
const (
	ValueString ValueKind = iota
	ValueInt
	ValueDate
	ValueIntList
	ValueStringList
)

// String returns a human-readable name for the kind.
func (k ValueKind) String() string {
	switch k {
	case ValueString:
		return "string"
	case ValueInt:
		return "integer"
	case ValueDate:
		return "date"
	case ValueIntList:
		return "integer list"
	case ValueStringList:
		return "string list"
	default:
		return "unknown"
	}
}

// Value is a tagged-variant front-matter value. Exactly the field matching
// Kind is meaningful; the rest are zero.
type Value struct {
	Kind ValueKind
	Str  string
	Int  int
	Date time.Time
	List []int
	Strs []string
}

// Field is one declared front-matter entry with its source position.
type Field struct {
	Name  string
	Value Value
	Line  int
}

// FrontMatter is the parsed header block with declaration order preserved.
type FrontMatter struct {
	Fields []Field
}

// Get returns the named field if declared.
func (fm *FrontMatter) Get(name string) (Field, bool) {
	if fm == nil {
		return Field{}, false
	}
	for _, f := range fm.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Has reports whether the named field is declared.
func (fm *FrontMatter) Has(name string) bool {
	_, ok := fm.Get(name)
	return ok
}

// Proposal is one document in the set: numeric identity, parsed header and
// opaque body. Path is relative to the repository root.
type Proposal struct {
	Path   string
	Matter *FrontMatter
	Body   string
	// BodyLine is the 1-based document line the body starts on. Body checks
	// add it to body-relative line numbers so diagnostics point at the file.
	BodyLine int
	Hash     string
}

// Number returns the proposal's numeric id from the front matter.
func (p *Proposal) Number() (int, bool) {
	f, ok := p.Matter.Get("id")
	if !ok || f.Value.Kind != ValueInt {
		return 0, false
	}
	return f.Value.Int, true
}

// Status returns the proposal's declared status, if valid.
func (p *Proposal) Status() (Status, bool) {
	f, ok := p.Matter.Get("status")
	if !ok || f.Value.Kind != ValueString {
		return "", false
	}
	s := Status(f.Value.Str)
	if !s.Valid() {
		return "", false
	}
	return s, true
}

// Title returns the proposal's declared title, if present.
func (p *Proposal) Title() string {
	f, ok := p.Matter.Get("title")
	if !ok || f.Value.Kind != ValueString {
		return ""
	}
	return f.Value.Str
}
