package matrix

import (
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// Builder fills a matrix before it is frozen. It is not safe for
// concurrent use.
type Builder struct {
	origin Origin
	rows   []*bitset.BitSet
	cols   int
}

// NewBuilder returns a builder for a rows × cols matrix of zeros.
func NewBuilder(origin Origin, rows, cols int) *Builder {
	rows = max(rows, 0)
	cols = max(cols, 0)
	b := &Builder{origin: origin, rows: make([]*bitset.BitSet, rows), cols: cols}
	for i := range b.rows {
		b.rows[i] = bitset.New(uint(cols))
	}
	return b
}

// Set sets the bit at (row, col). Out-of-bounds writes are ignored.
func (b *Builder) Set(row, col int) {
	if row < 0 || row >= len(b.rows) || col < 0 || col >= b.cols {
		return
	}
	b.rows[row].Set(uint(col))
}

// Build freezes the matrix. The builder must not be used afterwards.
func (b *Builder) Build() *Matrix {
	m := &Matrix{origin: b.origin, rows: b.rows, cols: b.cols}
	b.rows = nil
	return m
}

// Parse builds a matrix from lines of '0' and '1', one line per row.
// Blank lines are skipped and any other rune is treated as '0'.
func Parse(origin Origin, s string) *Matrix {
	var lines []string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	cols := 0
	for _, l := range lines {
		cols = max(cols, len(l))
	}
	b := NewBuilder(origin, len(lines), cols)
	for i, l := range lines {
		for j := 0; j < len(l); j++ {
			if l[j] == '1' {
				b.Set(i, j)
			}
		}
	}
	return b.Build()
}
