package proposal

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_FullHeader(t *testing.T) {
	content := `---
id: 20
title: Token Standard
description: A standard interface for tokens
author: Jane Doe (@janedoe), John Roe <john@example.com>
discussions-to: https://forum.example.com/t/20
status: Final
type: Standards Track
category: Application
created: 2020-01-15
requires:
  - 1
  - 2
---
# Abstract

Body text here.
`

	p, err := Parse("proposals/proposal-20.md", []byte(content))
	require.NoError(t, err)

	assert.Equal(t, "proposals/proposal-20.md", p.Path)
	assert.NotEmpty(t, p.Hash)
	assert.Contains(t, p.Body, "# Abstract")

	// Declaration order is preserved
	names := make([]string, 0, len(p.Matter.Fields))
	for _, f := range p.Matter.Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{
		"id", "title", "description", "author", "discussions-to",
		"status", "type", "category", "created", "requires",
	}, names)

	id, ok := p.Number()
	require.True(t, ok)
	assert.Equal(t, 20, id)

	status, ok := p.Status()
	require.True(t, ok)
	assert.Equal(t, StatusFinal, status)

	created, ok := p.Matter.Get("created")
	require.True(t, ok)
	assert.Equal(t, ValueDate, created.Value.Kind)
	assert.Equal(t, time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC), created.Value.Date)

	requires, ok := p.Matter.Get("requires")
	require.True(t, ok)
	assert.Equal(t, ValueIntList, requires.Value.Kind)
	assert.Equal(t, []int{1, 2}, requires.Value.List)
}

func TestParse_FieldLines(t *testing.T) {
	content := `---
id: 7
title: Short
---
Body.
`

	p, err := Parse("proposal-7.md", []byte(content))
	require.NoError(t, err)

	id, ok := p.Matter.Get("id")
	require.True(t, ok)
	assert.Equal(t, 2, id.Line)

	title, ok := p.Matter.Get("title")
	require.True(t, ok)
	assert.Equal(t, 3, title.Line)
}

func TestParse_BodyLine(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		bodyLine int
	}{
		{
			name:     "no blank line after header",
			content:  "---\nid: 1\n---\n# Title\n",
			bodyLine: 4,
		},
		{
			name:     "one blank line after header",
			content:  "---\nid: 1\n---\n\n# Title\n",
			bodyLine: 5,
		},
		{
			name:     "two blank lines after header",
			content:  "---\nid: 1\n---\n\n\n# Title\n",
			bodyLine: 6,
		},
		{
			name:     "multi-line last field",
			content:  "---\nid: 1\nrequires:\n  - 1\n  - 2\n---\n# Title\n",
			bodyLine: 7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse("doc.md", []byte(tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.bodyLine, p.BodyLine)
			assert.Equal(t, "# Title\n", p.Body)
		})
	}
}

func TestParse_ScalarRequires(t *testing.T) {
	content := `---
id: 7
requires: 1
---
Body.
`

	p, err := Parse("proposal-7.md", []byte(content))
	require.NoError(t, err)

	requires, ok := p.Matter.Get("requires")
	require.True(t, ok)
	assert.Equal(t, ValueInt, requires.Value.Kind)
	assert.Equal(t, 1, requires.Value.Int)
}

func TestParse_MissingOpeningDelimiter(t *testing.T) {
	_, err := Parse("doc.md", []byte("# Just a heading\n"))

	var mhe *MalformedHeaderError
	require.ErrorAs(t, err, &mhe)
	assert.Equal(t, "doc.md", mhe.Path)
	assert.Contains(t, mhe.Reason, "opening delimiter")
}

func TestParse_MissingClosingDelimiter(t *testing.T) {
	content := `---
id: 7
title: Never closed
`

	_, err := Parse("doc.md", []byte(content))

	var mhe *MalformedHeaderError
	require.ErrorAs(t, err, &mhe)
	assert.Contains(t, mhe.Reason, "closing delimiter")
}

func TestParse_UnparseableLine(t *testing.T) {
	content := `---
id: 7
this is not a key value line
---
Body.
`

	_, err := Parse("doc.md", []byte(content))
	var mhe *MalformedHeaderError
	require.ErrorAs(t, err, &mhe)
}

func TestParse_NonMappingHeader(t *testing.T) {
	content := `---
- just
- a
- list
---
Body.
`

	_, err := Parse("doc.md", []byte(content))
	var mhe *MalformedHeaderError
	require.ErrorAs(t, err, &mhe)
	assert.Contains(t, mhe.Reason, "mapping")
}

func TestParse_QuotedDate(t *testing.T) {
	content := `---
created: "2021-03-02"
---
Body.
`

	p, err := Parse("doc.md", []byte(content))
	require.NoError(t, err)

	created, ok := p.Matter.Get("created")
	require.True(t, ok)
	assert.Equal(t, ValueDate, created.Value.Kind)
}

func TestParse_CRLF(t *testing.T) {
	content := "---\r\nid: 3\r\ntitle: Windows line endings\r\n---\r\nBody.\r\n"

	p, err := Parse("doc.md", []byte(content))
	require.NoError(t, err)

	id, ok := p.Number()
	require.True(t, ok)
	assert.Equal(t, 3, id)
}

func TestParse_Idempotent(t *testing.T) {
	content := `---
id: 9
title: Same every time
---
Body.
`

	first, err := Parse("doc.md", []byte(content))
	require.NoError(t, err)
	second, err := Parse("doc.md", []byte(content))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestMalformedHeaderError_Error(t *testing.T) {
	err := &MalformedHeaderError{Path: "doc.md", Reason: "broken", Line: 4}
	assert.Equal(t, "doc.md:4: malformed front matter: broken", err.Error())

	err = &MalformedHeaderError{Path: "doc.md", Reason: "broken"}
	assert.False(t, errors.Is(err, errors.New("broken")))
	assert.Equal(t, "doc.md: malformed front matter: broken", err.Error())
}
