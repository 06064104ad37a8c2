// Package ui holds the terminal rendering helpers the CLI commands
// share: aligned tables for the inspect output and key-value summaries
// for run results.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Table renders rows under bold headers with aligned columns.
type Table struct {
	writer  io.Writer
	headers []string
	rows    [][]string
}

// NewTable creates a table with the given headers.
func NewTable(w io.Writer, headers ...string) *Table {
	return &Table{writer: w, headers: headers}
}

// AddRow appends one row. Short rows leave trailing columns empty.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Render writes the table.
func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = len(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	bold := color.New(color.Bold)
	for i, h := range t.headers {
		bold.Fprint(t.writer, padRight(h, widths[i]))
		if i < len(t.headers)-1 {
			fmt.Fprint(t.writer, "  ")
		}
	}
	fmt.Fprintln(t.writer)

	gray := color.New(color.FgHiBlack)
	for i, width := range widths {
		gray.Fprint(t.writer, strings.Repeat("─", width))
		if i < len(widths)-1 {
			gray.Fprint(t.writer, "  ")
		}
	}
	fmt.Fprintln(t.writer)

	for _, row := range t.rows {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			fmt.Fprint(t.writer, padRight(cell, widths[i]))
			if i < len(row)-1 {
				fmt.Fprint(t.writer, "  ")
			}
		}
		fmt.Fprintln(t.writer)
	}
}

// KeyValueTable renders aligned key: value pairs.
type KeyValueTable struct {
	writer io.Writer
	keys   []string
	values []string
}

// NewKeyValueTable creates an empty key-value table.
func NewKeyValueTable(w io.Writer) *KeyValueTable {
	return &KeyValueTable{writer: w}
}

// AddRow appends one pair.
func (t *KeyValueTable) AddRow(key, value string) {
	t.keys = append(t.keys, key)
	t.values = append(t.values, value)
}

// Render writes the pairs with keys aligned.
func (t *KeyValueTable) Render() {
	width := 0
	for _, k := range t.keys {
		if len(k) > width {
			width = len(k)
		}
	}
	cyan := color.New(color.FgCyan)
	for i, k := range t.keys {
		cyan.Fprint(t.writer, padRight(k+":", width+1))
		fmt.Fprintf(t.writer, " %s\n", t.values[i])
	}
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
