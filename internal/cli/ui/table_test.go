package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableAlignsColumns(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTable(&buf, "ENTITY", "JUNCTION")
	tbl.AddRow("Post", "no")
	tbl.AddRow("PostTag", "yes")
	tbl.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "ENTITY")
	assert.Contains(t, lines[2], "Post")
	assert.Contains(t, lines[3], "PostTag")

	// Second column starts at the same offset in every row.
	assert.Equal(t, strings.Index(lines[2], "no"), strings.Index(lines[3], "yes"))
}

func TestTableEmptyHeadersRendersNothing(t *testing.T) {
	var buf bytes.Buffer
	NewTable(&buf).Render()
	assert.Empty(t, buf.String())
}

func TestKeyValueTableAlignsKeys(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewKeyValueTable(&buf)
	tbl.AddRow("files", "12")
	tbl.AddRow("routes planned", "30")
	tbl.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Index(lines[0], "12"), strings.Index(lines[1], "30"))
}
