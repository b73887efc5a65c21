package proposal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, path, content string) *Proposal {
	t.Helper()
	p, err := Parse(path, []byte(content))
	require.NoError(t, err)
	return p
}

func TestIndex_LookupAndEntries(t *testing.T) {
	b := NewIndexBuilder()
	b.Add(mustParse(t, "b.md", "---\nid: 2\ntitle: Second\nstatus: Final\n---\nBody.\n"))
	b.Add(mustParse(t, "a.md", "---\nid: 1\ntitle: First\nstatus: Draft\n---\nBody.\n"))
	idx := b.Build()

	assert.Equal(t, 2, idx.Len())

	e, ok := idx.Lookup(1)
	require.True(t, ok)
	assert.Equal(t, StatusDraft, e.Status)
	assert.Equal(t, "First", e.Title)
	assert.Equal(t, "a.md", e.Path)

	_, ok = idx.Lookup(3)
	assert.False(t, ok)

	// Entries come back sorted by id regardless of insertion order
	entries := idx.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].ID)
	assert.Equal(t, 2, entries[1].ID)
}

func TestIndex_Duplicates(t *testing.T) {
	b := NewIndexBuilder()
	b.Add(mustParse(t, "a.md", "---\nid: 1\nstatus: Draft\n---\nBody.\n"))
	b.Add(mustParse(t, "copy.md", "---\nid: 1\nstatus: Final\n---\nBody.\n"))
	idx := b.Build()

	assert.Equal(t, 1, idx.Len())
	assert.Equal(t, []string{"a.md", "copy.md"}, idx.DuplicatePaths(1))

	// First occurrence wins
	e, _ := idx.Lookup(1)
	assert.Equal(t, "a.md", e.Path)
}

func TestIndex_SkipsProposalsWithoutID(t *testing.T) {
	b := NewIndexBuilder()
	b.Add(mustParse(t, "a.md", "---\ntitle: No id here\n---\nBody.\n"))
	idx := b.Build()

	assert.Equal(t, 0, idx.Len())
}

func TestStatus_Stability(t *testing.T) {
	assert.Greater(t, StatusFinal.Stability(), StatusDraft.Stability())
	assert.Greater(t, StatusLastCall.Stability(), StatusReview.Stability())
	assert.Equal(t, StatusFinal.Stability(), StatusLiving.Stability())
	assert.Equal(t, 0, StatusWithdrawn.Stability())

	assert.True(t, StatusDraft.Referencable())
	assert.False(t, StatusWithdrawn.Referencable())
	assert.False(t, StatusStagnant.Referencable())
	assert.False(t, Status("Nonsense").Referencable())
}
