package selection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/ipactivity/addr"
	"github.com/hupe1980/ipactivity/matrix"
)

var (
	t0     = time.Date(2016, 5, 1, 12, 0, 0, 0, time.UTC)
	origin = matrix.Origin{
		FirstAddress: addr.MustParse("10.0.0.0"),
		Granularity:  24,
		FirstTime:    t0,
		Interval:     5 * time.Minute,
	}
	full = matrix.Parse(origin, `
		10000
		01000
		00100
		00010
		00001
	`)
)

func at(i int) time.Time { return t0.Add(time.Duration(i) * 5 * time.Minute) }

func TestSelect(t *testing.T) {
	sub, err := Select(full, Query{
		AddrFirst:   addr.MustParse("10.0.1.0"),
		AddrLast:    addr.MustParse("10.0.4.0"),
		Granularity: 24,
		TimeFirst:   at(1),
		TimeLast:    at(3),
	})
	require.NoError(t, err)

	assert.Equal(t, "10\n01\n00", sub.String())
	assert.Equal(t, "10.0.1.0", sub.Origin().FirstAddress.String())
	assert.Equal(t, at(1), sub.Origin().FirstTime)
}

func TestSelect_TruncatesInsideBuckets(t *testing.T) {
	sub, err := Select(full, Query{
		AddrFirst:   addr.MustParse("10.0.1.77"),
		AddrLast:    addr.MustParse("10.0.2.200"),
		Granularity: 24,
		TimeFirst:   at(1).Add(time.Minute),
		TimeLast:    at(2).Add(4 * time.Minute),
	})
	require.NoError(t, err)
	assert.Equal(t, "1", sub.String())
}

func TestSelect_Clamps(t *testing.T) {
	sub, err := Select(full, Query{
		AddrFirst:   addr.MustParse("9.0.0.0"),
		AddrLast:    addr.MustParse("11.0.0.0"),
		Granularity: 24,
		TimeFirst:   at(-10),
		TimeLast:    at(100),
	})
	require.NoError(t, err)
	assert.True(t, sub.Equal(full))
	assert.Equal(t, origin.FirstAddress, sub.Origin().FirstAddress)
}

func TestSelect_Errors(t *testing.T) {
	_, err := Select(full, Query{
		AddrFirst:   addr.MustParse("10.0.0.0"),
		AddrLast:    addr.MustParse("10.0.4.0"),
		Granularity: 16,
		TimeFirst:   at(0),
		TimeLast:    at(4),
	})
	assert.ErrorIs(t, err, addr.ErrInvalidGranularity)

	_, err = Select(full, Query{
		AddrFirst:   addr.MustParse("10.0.3.0"),
		AddrLast:    addr.MustParse("10.0.1.0"),
		Granularity: 24,
		TimeFirst:   at(0),
		TimeLast:    at(4),
	})
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = Select(full, Query{
		AddrFirst:   addr.MustParse("10.0.0.0"),
		AddrLast:    addr.MustParse("10.0.4.0"),
		Granularity: 24,
		TimeFirst:   at(7),
		TimeLast:    at(9),
	})
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = Select(full, Query{
		AddrFirst:   addr.MustParse("::1"),
		AddrLast:    addr.MustParse("10.0.4.0"),
		Granularity: 24,
		TimeFirst:   at(0),
		TimeLast:    at(4),
	})
	assert.ErrorIs(t, err, addr.ErrFamilyMismatch)
}

func TestSelectIndices(t *testing.T) {
	sub, err := SelectIndices(full, 3, 5, 3, 5)
	require.NoError(t, err)
	assert.Equal(t, "10\n01", sub.String())
	assert.Equal(t, "10.0.3.0", sub.Origin().FirstAddress.String())
	assert.Equal(t, at(3), sub.Origin().FirstTime)

	// Selecting from a selection keeps addressing consistent.
	inner, err := SelectIndices(sub, 1, 2, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "1", inner.String())
	assert.Equal(t, "10.0.4.0", inner.Origin().FirstAddress.String())
	assert.Equal(t, at(4), inner.Origin().FirstTime)

	_, err = SelectIndices(full, 2, 2, 0, 5)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = SelectIndices(full, -5, -1, 0, 5)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestBounds(t *testing.T) {
	b, err := Clamp(full, -1, 3, 2, 99)
	require.NoError(t, err)
	assert.Equal(t, Bounds{AddrStart: 0, AddrEnd: 3, TimeStart: 2, TimeEnd: 5}, b)
	assert.Equal(t, 3, b.Rows())
	assert.Equal(t, 3, b.Cols())
	assert.Equal(t, "addr [0, 3) time [2, 5)", b.String())
}
