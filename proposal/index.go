package proposal

import "sort"

// Entry is one proposal's row in the corpus index.
type Entry struct {
	ID     int    `json:"id"`
	Status Status `json:"status"`
	Title  string `json:"title,omitempty"`
	Path   string `json:"path"`
}

// Index is the id lookup shared by all validation workers. It is built once
// before the fan-out and never mutated afterwards, so concurrent reads need
// no locking.
type Index struct {
	entries map[int]Entry
	paths   map[int][]string
}

// IndexBuilder accumulates proposals into an Index.
type IndexBuilder struct {
	entries map[int]Entry
	paths   map[int][]string
}

// NewIndexBuilder creates an empty builder.
func NewIndexBuilder() *IndexBuilder {
	return &IndexBuilder{
		entries: make(map[int]Entry),
		paths:   make(map[int][]string),
	}
}

// Add records a proposal. Proposals without a numeric id are skipped; the
// schema validator reports those separately. The first occurrence of an id
// wins; later paths are retained only for duplicate detection.
func (b *IndexBuilder) Add(p *Proposal) {
	id, ok := p.Number()
	if !ok {
		return
	}

	b.paths[id] = append(b.paths[id], p.Path)
	if _, exists := b.entries[id]; exists {
		return
	}

	entry := Entry{ID: id, Path: p.Path, Title: p.Title()}
	if status, ok := p.Status(); ok {
		entry.Status = status
	}
	b.entries[id] = entry
}

// Build finalizes the index. The builder must not be used afterwards.
func (b *IndexBuilder) Build() *Index {
	return &Index{entries: b.entries, paths: b.paths}
}

// Lookup returns the entry for an id.
func (i *Index) Lookup(id int) (Entry, bool) {
	e, ok := i.entries[id]
	return e, ok
}

// DuplicatePaths returns all paths declaring the given id, in insertion
// order. More than one path means the uniqueness invariant is broken.
func (i *Index) DuplicatePaths(id int) []string {
	return i.paths[id]
}

// Len returns the number of distinct ids indexed.
func (i *Index) Len() int {
	return len(i.entries)
}

// Entries returns all entries sorted by id.
func (i *Index) Entries() []Entry {
	out := make([]Entry, 0, len(i.entries))
	for _, e := range i.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out
}
