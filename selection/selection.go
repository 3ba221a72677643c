// Package selection cuts rectangular regions out of an activity matrix.
//
// Ranges are half-open: a query covers address buckets [first, last) and
// time buckets [first, last). Indices falling outside the matrix are clamped
// to it; a range that is empty after clamping is an error.
package selection

import (
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/ipactivity/addr"
	"github.com/hupe1980/ipactivity/matrix"
	"github.com/hupe1980/ipactivity/timeidx"
)

// ErrOutOfRange is returned when a selection does not overlap the matrix.
var ErrOutOfRange = errors.New("selection: out of range")

// Query selects by address and time.
type Query struct {
	AddrFirst   addr.Address
	AddrLast    addr.Address
	Granularity uint8
	TimeFirst   time.Time
	TimeLast    time.Time
}

// Bounds is a clamped, non-empty index rectangle.
type Bounds struct {
	AddrStart, AddrEnd int
	TimeStart, TimeEnd int
}

// Rows returns the number of selected address buckets.
func (b Bounds) Rows() int { return b.AddrEnd - b.AddrStart }

// Cols returns the number of selected time buckets.
func (b Bounds) Cols() int { return b.TimeEnd - b.TimeStart }

func (b Bounds) String() string {
	return fmt.Sprintf("addr [%d, %d) time [%d, %d)", b.AddrStart, b.AddrEnd, b.TimeStart, b.TimeEnd)
}

// Resolve translates q into matrix indices relative to m's origin. The
// query granularity must match the matrix granularity.
func Resolve(m *matrix.Matrix, q Query) (Bounds, error) {
	o := m.Origin()
	if q.Granularity != o.Granularity {
		return Bounds{}, fmt.Errorf("%w: query /%d on a /%d matrix", addr.ErrInvalidGranularity, q.Granularity, o.Granularity)
	}
	if err := timeidx.CheckInterval(o.Interval); err != nil {
		return Bounds{}, err
	}

	as, err := addr.BucketIndex(o.FirstAddress, q.AddrFirst, q.Granularity)
	if err != nil {
		return Bounds{}, err
	}
	ae, err := addr.BucketIndex(o.FirstAddress, q.AddrLast, q.Granularity)
	if err != nil {
		return Bounds{}, err
	}
	ts := timeidx.BucketIndex(o.FirstTime, q.TimeFirst, o.Interval)
	te := timeidx.BucketIndex(o.FirstTime, q.TimeLast, o.Interval)

	return Clamp(m, as, ae, ts, te)
}

// Clamp limits both index ranges to the matrix and rejects empty or
// inverted results.
func Clamp(m *matrix.Matrix, addrStart, addrEnd, timeStart, timeEnd int64) (Bounds, error) {
	rows, cols := int64(m.Rows()), int64(m.Cols())
	b := Bounds{
		AddrStart: int(clamp(addrStart, rows)),
		AddrEnd:   int(clamp(addrEnd, rows)),
		TimeStart: int(clamp(timeStart, cols)),
		TimeEnd:   int(clamp(timeEnd, cols)),
	}
	if b.Rows() <= 0 || b.Cols() <= 0 {
		return Bounds{}, fmt.Errorf("%w: addr [%d, %d) time [%d, %d) on %dx%d", ErrOutOfRange, addrStart, addrEnd, timeStart, timeEnd, rows, cols)
	}
	return b, nil
}

func clamp(v, n int64) int64 {
	return min(max(v, 0), n)
}

// Select returns the part of m that q covers, re-based to its own origin.
func Select(m *matrix.Matrix, q Query) (*matrix.Matrix, error) {
	b, err := Resolve(m, q)
	if err != nil {
		return nil, err
	}
	return m.Sub(b.AddrStart, b.AddrEnd, b.TimeStart, b.TimeEnd)
}

// SelectIndices is Select for raw indices.
func SelectIndices(m *matrix.Matrix, addrStart, addrEnd, timeStart, timeEnd int64) (*matrix.Matrix, error) {
	b, err := Clamp(m, addrStart, addrEnd, timeStart, timeEnd)
	if err != nil {
		return nil, err
	}
	return m.Sub(b.AddrStart, b.AddrEnd, b.TimeStart, b.TimeEnd)
}
