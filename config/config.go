package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/ipactivity/addr"
	"github.com/hupe1980/ipactivity/blobstore"
	"github.com/hupe1980/ipactivity/timeidx"
)

const (
	// MaxVectorSize caps the number of address buckets of a dataset.
	MaxVectorSize = 1000
	// MaxWindow caps the number of time buckets kept in the ring buffer.
	MaxWindow = 1000
	// MaxInterval caps the length of one time bucket.
	MaxInterval = 24 * time.Hour
)

var (
	// ErrInvalid is returned for malformed or incomplete configuration.
	ErrInvalid = errors.New("invalid configuration")

	// ErrMissingDataset is returned when the configuration has no entry for
	// the requested dataset.
	ErrMissingDataset = errors.New("dataset not found in configuration")

	// ErrInvalidRange is returned when a range has a non-positive or
	// excessive size.
	ErrInvalidRange = errors.New("invalid range")

	// ErrModeRegression is returned by Refresh when an offline dataset
	// would become online again.
	ErrModeRegression = errors.New("mode regression")
)

// FieldError describes a single invalid or missing field.
type FieldError struct {
	Path   string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

func (e *FieldError) Unwrap() error { return ErrInvalid }

// Mode tells whether the producer is still recording.
type Mode uint8

const (
	// Online datasets are still being written; the number of recorded
	// intervals follows the wall clock.
	Online Mode = iota
	// Offline datasets are finished; the number of recorded intervals is
	// frozen in the configuration.
	Offline
)

func (m Mode) String() string {
	if m == Offline {
		return "offline"
	}
	return "online"
}

// AddressRange is the address axis of a dataset.
type AddressRange struct {
	First       addr.Address
	Last        addr.Address
	Granularity uint8
}

// VectorSize returns the number of address buckets between First and Last.
func (r AddressRange) VectorSize() (int, error) {
	if r.First.Family() != r.Last.Family() {
		return 0, fmt.Errorf("%w: %s and %s", addr.ErrFamilyMismatch, r.First, r.Last)
	}
	if r.First.Compare(r.Last) > 0 {
		return 0, fmt.Errorf("%w: first address %s is above last address %s", ErrInvalidRange, r.First, r.Last)
	}
	n, err := addr.BucketIndex(r.First, r.Last, r.Granularity)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("%w: %s - %s at /%d spans %d buckets", ErrInvalidRange, r.First, r.Last, r.Granularity, n)
	}
	if n > MaxVectorSize {
		return 0, fmt.Errorf("%w: %d address buckets exceed the limit of %d", ErrInvalidRange, n, MaxVectorSize)
	}
	return int(n), nil
}

// TimeRange is the time axis of a dataset.
type TimeRange struct {
	First    time.Time
	Last     time.Time // zero while online
	Interval time.Duration
	Window   int
	// Intervals is the number of recorded intervals of an offline dataset.
	Intervals int
}

// Module holds the producer's start and end markers as written.
type Module struct {
	Start string
	End   string
}

// Config is the validated description of one bitmap dataset.
//
// A Config is immutable. A refresh builds a new one.
type Config struct {
	Dataset   string
	Mode      Mode
	Addresses AddressRange
	Time      TimeRange
	Module    Module

	vectorSize     int
	byteVectorSize int
}

// VectorSize returns the number of address buckets.
func (c *Config) VectorSize() int { return c.vectorSize }

// ByteVectorSize returns the number of bytes of one stored row.
func (c *Config) ByteVectorSize() int { return c.byteVectorSize }

// Intervals returns the number of intervals recorded so far. Online datasets
// derive it from now; offline datasets return the frozen count.
func (c *Config) Intervals(now time.Time) int {
	if c.Mode == Offline {
		return c.Time.Intervals
	}
	n := timeidx.BucketIndex(c.Time.First, now, c.Time.Interval)
	if n < 0 {
		return 0
	}
	return int(n)
}

// StoredIntervals returns the number of intervals retained by the ring
// buffer, min(Intervals, Window).
func (c *Config) StoredIntervals(now time.Time) int {
	return min(c.Intervals(now), c.Time.Window)
}

// Last returns the end of the recorded period: the configured last
// timestamp when offline, now when online.
func (c *Config) Last(now time.Time) time.Time {
	if c.Mode == Offline {
		return c.Time.Last
	}
	return now
}

// WindowFirst returns the start of the oldest interval still retained.
func (c *Config) WindowFirst(now time.Time) time.Time {
	skipped := max(c.Intervals(now)-c.Time.Window, 0)
	return timeidx.TimeAt(c.Time.First, int64(skipped), c.Time.Interval)
}

// Transition describes the outcome of a refresh.
type Transition uint8

const (
	// TransitionNone means the dataset kept its mode.
	TransitionNone Transition = iota
	// TransitionOnlineToOffline means the producer finished recording.
	TransitionOnlineToOffline
)

func (t Transition) String() string {
	if t == TransitionOnlineToOffline {
		return "online->offline"
	}
	return "none"
}

// Refresh decides whether next may replace c. It never modifies c.
func (c *Config) Refresh(next *Config) (Transition, error) {
	if next == nil {
		return TransitionNone, fmt.Errorf("%w: empty refresh", ErrInvalid)
	}
	if next.Dataset != c.Dataset {
		return TransitionNone, fmt.Errorf("%w: dataset changed from %q to %q", ErrInvalid, c.Dataset, next.Dataset)
	}
	switch {
	case c.Mode == next.Mode:
		return TransitionNone, nil
	case c.Mode == Online && next.Mode == Offline:
		return TransitionOnlineToOffline, nil
	}
	return TransitionNone, fmt.Errorf("%w: %s dataset %q reported as %s", ErrModeRegression, c.Mode, c.Dataset, next.Mode)
}

// Parse validates the configuration source for one dataset.
//
// The checks run in order: the dataset exists, the required fields are
// present, the offline markers (module.end, time.last, time.intervals) are
// either all present or all absent, and finally the values themselves.
// Timestamps without a zone are read in loc (time.Local when nil).
func Parse(data []byte, dataset string, loc *time.Location) (*Config, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	node, ok := doc[dataset]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingDataset, dataset)
	}
	if node.Kind != yaml.MappingNode {
		return nil, &FieldError{Path: dataset, Reason: "expected a mapping"}
	}
	raw := &rawDataset{}
	if err := node.Decode(raw); err != nil {
		return nil, &FieldError{Path: dataset, Reason: err.Error()}
	}

	if missing := raw.missingFields(); len(missing) > 0 {
		return nil, &FieldError{Path: dataset, Reason: "missing " + strings.Join(missing, ", ")}
	}

	mode, err := detectMode(dataset, raw)
	if err != nil {
		return nil, err
	}

	c := &Config{Dataset: dataset, Mode: mode}
	if err := c.parseAddresses(raw.Addresses); err != nil {
		return nil, err
	}
	if err := c.parseTime(raw.Time, loc); err != nil {
		return nil, err
	}
	c.Module = Module{Start: scalar(&raw.Module.Start), End: scalar(&raw.Module.End)}

	return c, nil
}

func detectMode(dataset string, raw *rawDataset) (Mode, error) {
	end := present(&raw.Module.End)
	last := present(&raw.Time.Last) && !timeidx.IsUndefined(scalar(&raw.Time.Last))
	intervals := present(&raw.Time.Intervals)

	switch {
	case end && last && intervals:
		return Offline, nil
	case !end && !last && !intervals:
		return Online, nil
	}
	return Online, &FieldError{
		Path:   dataset,
		Reason: fmt.Sprintf("partial offline markers (module.end=%t, time.last=%t, time.intervals=%t)", end, last, intervals),
	}
}

func (c *Config) parseAddresses(raw *rawAddresses) error {
	first, err := addr.Parse(scalar(&raw.First))
	if err != nil {
		return &FieldError{Path: "addresses.first", Reason: err.Error()}
	}
	last, err := addr.Parse(scalar(&raw.Last))
	if err != nil {
		return &FieldError{Path: "addresses.last", Reason: err.Error()}
	}
	g, err := intField("addresses.granularity", &raw.Granularity)
	if err != nil {
		return err
	}
	if g < 0 || g > int(first.BitWidth()) {
		return fmt.Errorf("%w: addresses.granularity /%d for %s", addr.ErrInvalidGranularity, g, first.Family())
	}

	c.Addresses = AddressRange{First: first, Last: last, Granularity: uint8(g)}
	n, err := c.Addresses.VectorSize()
	if err != nil {
		return err
	}
	c.vectorSize = n
	c.byteVectorSize = (n + 7) / 8
	return nil
}

func (c *Config) parseTime(raw *rawTime, loc *time.Location) error {
	first, err := timeidx.Parse(scalar(&raw.First), loc)
	if err != nil {
		return &FieldError{Path: "time.first", Reason: err.Error()}
	}
	seconds, err := intField("time.granularity", &raw.Granularity)
	if err != nil {
		return err
	}
	interval := time.Duration(seconds) * time.Second
	if interval <= 0 || interval > MaxInterval {
		return fmt.Errorf("%w: time.granularity %ds outside (0, %d]", ErrInvalidRange, seconds, int(MaxInterval/time.Second))
	}
	window, err := intField("time.window", &raw.Window)
	if err != nil {
		return err
	}
	if window <= 0 || window > MaxWindow {
		return fmt.Errorf("%w: time.window %d outside (0, %d]", ErrInvalidRange, window, MaxWindow)
	}

	c.Time = TimeRange{First: first, Interval: interval, Window: window}
	if c.Mode == Online {
		return nil
	}

	intervals, err := intField("time.intervals", &raw.Intervals)
	if err != nil {
		return err
	}
	if intervals < 0 {
		return fmt.Errorf("%w: time.intervals %d is negative", ErrInvalidRange, intervals)
	}
	last, err := timeidx.Parse(scalar(&raw.Last), loc)
	if err != nil {
		return &FieldError{Path: "time.last", Reason: err.Error()}
	}
	if last.Before(first) {
		return fmt.Errorf("%w: time.last %s is before time.first %s", ErrInvalidRange, timeidx.Format(last), timeidx.Format(first))
	}
	c.Time.Intervals = intervals
	c.Time.Last = last
	return nil
}

// Load reads the configuration blob name from store and parses dataset.
func Load(ctx context.Context, store blobstore.BlobStore, name, dataset string, loc *time.Location) (*Config, error) {
	data, err := blobstore.ReadFile(ctx, store, name)
	if err != nil {
		return nil, fmt.Errorf("read configuration %s: %w", name, err)
	}
	return Parse(data, dataset, loc)
}
