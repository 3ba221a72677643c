// Package timeidx maps timestamps to time-bucket indices and back.
//
// A time bucket is a half-open interval [first+i*interval, first+(i+1)*interval).
package timeidx

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Layout is the canonical timestamp layout, "YYYY-MM-DD HH:MM:SS".
const Layout = "2006-01-02 15:04:05"

// ProducerLayout is the layout the bitmap producer writes, "DD-MM-YYYY HH:MM:SS".
const ProducerLayout = "02-01-2006 15:04:05"

// Undefined is the placeholder written instead of a timestamp that does not
// exist yet.
const Undefined = "undefined"

var (
	// ErrInvalidTimestamp is returned when a timestamp matches no known layout.
	ErrInvalidTimestamp = errors.New("invalid timestamp")

	// ErrInvalidInterval is returned for a non-positive interval.
	ErrInvalidInterval = errors.New("invalid interval")
)

var layouts = []string{Layout, ProducerLayout, time.RFC3339}

// BucketIndex returns floor((t - first) / interval).
//
// Timestamps before first yield negative indices; they are not clamped.
// The interval must be positive.
func BucketIndex(first, t time.Time, interval time.Duration) int64 {
	d := t.Sub(first)
	q := int64(d / interval)
	if d%interval < 0 {
		q--
	}
	return q
}

// TimeAt returns first + index*interval.
func TimeAt(first time.Time, index int64, interval time.Duration) time.Time {
	return first.Add(time.Duration(index) * interval)
}

// CheckInterval validates an interval length.
func CheckInterval(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInterval, interval)
	}
	return nil
}

// Parse parses a timestamp in Layout, ProducerLayout or RFC 3339. Timestamps
// without a zone are interpreted in loc; a nil loc means time.Local.
func Parse(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	s = strings.TrimSpace(s)
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
}

// Format formats t in Layout.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// IsUndefined reports whether s is the Undefined placeholder or empty.
func IsUndefined(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, Undefined)
}
