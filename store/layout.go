package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/ipactivity/config"
	"github.com/hupe1980/ipactivity/matrix"
)

// ErrInvalidLayout is returned for a layout that cannot describe a file.
var ErrInvalidLayout = errors.New("store: invalid layout")

// Layout describes how a bitmap file is to be read.
type Layout struct {
	// VectorSize is the number of address buckets of a row.
	VectorSize int
	// ByteVectorSize is the stored size of a row in bytes.
	ByteVectorSize int
	// Window is the capacity of the ring buffer in rows.
	Window int
	// Intervals is the number of intervals recorded so far.
	Intervals int
	// Origin anchors the decoded matrix.
	Origin matrix.Origin
}

// LayoutFor derives the layout of cfg's bitmap files at now.
func LayoutFor(cfg *config.Config, now time.Time) Layout {
	return Layout{
		VectorSize:     cfg.VectorSize(),
		ByteVectorSize: cfg.ByteVectorSize(),
		Window:         cfg.Time.Window,
		Intervals:      cfg.Intervals(now),
		Origin: matrix.Origin{
			FirstAddress: cfg.Addresses.First,
			Granularity:  cfg.Addresses.Granularity,
			FirstTime:    cfg.WindowFirst(now),
			Interval:     cfg.Time.Interval,
		},
	}
}

// Validate checks the layout's sizes.
func (l Layout) Validate() error {
	switch {
	case l.VectorSize <= 0:
		return fmt.Errorf("%w: vector size %d", ErrInvalidLayout, l.VectorSize)
	case l.ByteVectorSize != (l.VectorSize+7)/8:
		return fmt.Errorf("%w: %d bytes cannot hold %d bits", ErrInvalidLayout, l.ByteVectorSize, l.VectorSize)
	case l.Window <= 0:
		return fmt.Errorf("%w: window %d", ErrInvalidLayout, l.Window)
	case l.Intervals < 0:
		return fmt.Errorf("%w: intervals %d", ErrInvalidLayout, l.Intervals)
	}
	return nil
}

// MaxBytes returns the largest number of bytes a file of this layout holds.
func (l Layout) MaxBytes() int64 {
	return int64(l.Window) * int64(l.ByteVectorSize)
}

// Rotation returns how far the rows must be rotated left so that index 0 is
// the oldest interval. The buffer only wraps once more than window
// intervals were recorded.
func Rotation(intervals, window int) int {
	if window <= 0 || intervals <= window {
		return 0
	}
	return intervals % window
}
