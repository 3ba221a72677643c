// Package matrix holds the address × time activity matrix.
//
// Rows are address buckets, columns are time buckets. Each row is a
// bitset.BitSet of Cols() bits. A Matrix is immutable once built; every
// transformation returns a new one. Each Matrix carries the Origin of its
// cell (0, 0), so selections stay addressable on their own.
package matrix

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/ipactivity/addr"
	"github.com/hupe1980/ipactivity/timeidx"
)

// ErrOutOfBounds is returned for coordinates outside the matrix.
var ErrOutOfBounds = errors.New("matrix: coordinates out of bounds")

// Origin anchors a matrix in address space and time.
type Origin struct {
	// FirstAddress is the address bucket of row 0.
	FirstAddress addr.Address
	// Granularity is the prefix length of one address bucket.
	Granularity uint8
	// FirstTime is the start of the time bucket of column 0.
	FirstTime time.Time
	// Interval is the length of one time bucket.
	Interval time.Duration
}

// AddressAt returns the address bucket of row i.
func (o Origin) AddressAt(i int) (addr.Address, error) {
	return addr.AddressAt(o.FirstAddress, int64(i), o.Granularity)
}

// TimeAt returns the start of the time bucket of column j.
func (o Origin) TimeAt(j int) time.Time {
	return timeidx.TimeAt(o.FirstTime, int64(j), o.Interval)
}

// Rebase returns the origin of the sub-matrix starting at (row, col).
func (o Origin) Rebase(row, col int) (Origin, error) {
	first, err := o.AddressAt(row)
	if err != nil {
		return Origin{}, err
	}
	return Origin{
		FirstAddress: first,
		Granularity:  o.Granularity,
		FirstTime:    o.TimeAt(col),
		Interval:     o.Interval,
	}, nil
}

// Matrix is an immutable address-major bit matrix.
type Matrix struct {
	origin Origin
	rows   []*bitset.BitSet
	cols   int
}

// Empty returns a matrix with no cells.
func Empty(origin Origin) *Matrix {
	return &Matrix{origin: origin}
}

// Origin returns the coordinates of cell (0, 0).
func (m *Matrix) Origin() Origin { return m.origin }

// Rows returns the number of address buckets.
func (m *Matrix) Rows() int { return len(m.rows) }

// Cols returns the number of time buckets.
func (m *Matrix) Cols() int { return m.cols }

// IsEmpty reports whether the matrix has no cells.
func (m *Matrix) IsEmpty() bool { return len(m.rows) == 0 || m.cols == 0 }

// Contains reports whether (row, col) is inside the matrix.
func (m *Matrix) Contains(row, col int) bool {
	return row >= 0 && row < len(m.rows) && col >= 0 && col < m.cols
}

// Get returns the bit at (row, col). Out-of-bounds cells read as false.
func (m *Matrix) Get(row, col int) bool {
	if !m.Contains(row, col) {
		return false
	}
	return m.rows[row].Test(uint(col))
}

// Lookup is Get with a bounds error.
func (m *Matrix) Lookup(row, col int) (bool, error) {
	if !m.Contains(row, col) {
		return false, fmt.Errorf("%w: (%d, %d) in %dx%d", ErrOutOfBounds, row, col, len(m.rows), m.cols)
	}
	return m.rows[row].Test(uint(col)), nil
}

// Row returns a copy of row i.
func (m *Matrix) Row(i int) *bitset.BitSet {
	if i < 0 || i >= len(m.rows) {
		return bitset.New(uint(m.cols))
	}
	return m.rows[i].Clone()
}

// Count returns the number of set bits.
func (m *Matrix) Count() int {
	n := uint(0)
	for _, r := range m.rows {
		n += r.Count()
	}
	return int(n)
}

// RowCount returns the number of set bits in row i.
func (m *Matrix) RowCount(i int) int {
	if i < 0 || i >= len(m.rows) {
		return 0
	}
	return int(m.rows[i].Count())
}

// ActiveRows returns the address buckets with at least one set bit.
func (m *Matrix) ActiveRows() *roaring.Bitmap {
	rb := roaring.New()
	for i, r := range m.rows {
		if r.Any() {
			rb.Add(uint32(i))
		}
	}
	return rb
}

// ActiveCols returns the time buckets with at least one set bit.
func (m *Matrix) ActiveCols() *roaring.Bitmap {
	union := bitset.New(uint(m.cols))
	for _, r := range m.rows {
		union.InPlaceUnion(r)
	}
	rb := roaring.New()
	for j, ok := union.NextSet(0); ok && j < uint(m.cols); j, ok = union.NextSet(j + 1) {
		rb.Add(uint32(j))
	}
	return rb
}

// Sub copies rows [r0, r1) and columns [c0, c1) into a new matrix whose
// origin is re-based to (r0, c0). Bounds must already be valid.
func (m *Matrix) Sub(r0, r1, c0, c1 int) (*Matrix, error) {
	if r0 < 0 || r1 > len(m.rows) || r0 >= r1 || c0 < 0 || c1 > m.cols || c0 >= c1 {
		return nil, fmt.Errorf("%w: rows [%d, %d) cols [%d, %d) in %dx%d", ErrOutOfBounds, r0, r1, c0, c1, len(m.rows), m.cols)
	}
	origin, err := m.origin.Rebase(r0, c0)
	if err != nil {
		return nil, err
	}

	cols := c1 - c0
	rows := make([]*bitset.BitSet, r1-r0)
	for i := range rows {
		src := m.rows[r0+i]
		dst := bitset.New(uint(cols))
		for j, ok := src.NextSet(uint(c0)); ok && j < uint(c1); j, ok = src.NextSet(j + 1) {
			dst.Set(j - uint(c0))
		}
		rows[i] = dst
	}
	return &Matrix{origin: origin, rows: rows, cols: cols}, nil
}

// Equal reports whether both matrices have the same shape and bits.
// Origins are not compared.
func (m *Matrix) Equal(o *Matrix) bool {
	if m.Rows() != o.Rows() || m.cols != o.cols {
		return false
	}
	for i := range m.rows {
		if !m.rows[i].Equal(o.rows[i]) {
			return false
		}
	}
	return true
}

// String renders the matrix as one line of 0/1 per row.
func (m *Matrix) String() string {
	var sb strings.Builder
	for i, r := range m.rows {
		if i > 0 {
			sb.WriteByte('\n')
		}
		for j := 0; j < m.cols; j++ {
			if r.Test(uint(j)) {
				sb.WriteByte('1')
			} else {
				sb.WriteByte('0')
			}
		}
	}
	return sb.String()
}
