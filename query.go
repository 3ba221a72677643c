package ipactivity

import (
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/ipactivity/addr"
	"github.com/hupe1980/ipactivity/config"
	"github.com/hupe1980/ipactivity/matrix"
	"github.com/hupe1980/ipactivity/render"
	"github.com/hupe1980/ipactivity/selection"
	"github.com/hupe1980/ipactivity/store"
	"github.com/hupe1980/ipactivity/timeidx"
)

// Axis selects the address or the time axis.
type Axis uint8

const (
	// AxisAddress is the address axis.
	AxisAddress Axis = iota
	// AxisTime is the time axis.
	AxisTime
)

func (a Axis) String() string {
	if a == AxisTime {
		return "time"
	}
	return "address"
}

// ParseAxis parses "address" (or "addr", "ip") and "time".
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "address", "addr", "ip":
		return AxisAddress, nil
	case "time":
		return AxisTime, nil
	}
	return 0, fmt.Errorf("%w: unknown axis %q", ErrInvalidRange, s)
}

// IndexQuery asks for the value offset buckets away from First.
type IndexQuery struct {
	Axis Axis
	// First is an address or a timestamp. Empty means the dataset's first
	// address or first recorded interval.
	First  string
	Offset int64
}

// IndexValue is the answer to an IndexQuery.
type IndexValue struct {
	Axis    Axis
	Address addr.Address
	Time    time.Time
}

func (v IndexValue) String() string {
	if v.Axis == AxisTime {
		return timeidx.Format(v.Time)
	}
	return v.Address.String()
}

// IndexAt returns the first address or the start time of the bucket
// q.Offset buckets after q.First, using the dataset's granularity or
// interval.
func (e *Engine) IndexAt(q IndexQuery) (IndexValue, error) {
	cfg := e.cfg.Load()
	switch q.Axis {
	case AxisAddress:
		first, err := e.firstAddress(cfg, q.First)
		if err != nil {
			return IndexValue{}, err
		}
		a, err := addr.AddressAt(first, q.Offset, cfg.Addresses.Granularity)
		if err != nil {
			return IndexValue{}, translateError(err)
		}
		return IndexValue{Axis: AxisAddress, Address: a}, nil
	case AxisTime:
		first, err := e.firstTime(cfg, q.First)
		if err != nil {
			return IndexValue{}, err
		}
		return IndexValue{Axis: AxisTime, Time: timeidx.TimeAt(first, q.Offset, cfg.Time.Interval)}, nil
	}
	return IndexValue{}, fmt.Errorf("%w: unknown axis %d", ErrInvalidRange, q.Axis)
}

// IndexOf is the inverse of IndexAt: it returns the bucket index of value
// counted from first. Values below first give negative indices.
func (e *Engine) IndexOf(axis Axis, first, value string) (int64, error) {
	cfg := e.cfg.Load()
	switch axis {
	case AxisAddress:
		f, err := e.firstAddress(cfg, first)
		if err != nil {
			return 0, err
		}
		a, err := addr.Parse(value)
		if err != nil {
			return 0, translateError(err)
		}
		i, err := addr.BucketIndex(f, a, cfg.Addresses.Granularity)
		return i, translateError(err)
	case AxisTime:
		f, err := e.firstTime(cfg, first)
		if err != nil {
			return 0, err
		}
		t, err := timeidx.Parse(value, e.opts.location)
		if err != nil {
			return 0, translateError(err)
		}
		return timeidx.BucketIndex(f, t, cfg.Time.Interval), nil
	}
	return 0, fmt.Errorf("%w: unknown axis %d", ErrInvalidRange, axis)
}

func (e *Engine) firstAddress(cfg *config.Config, s string) (addr.Address, error) {
	if strings.TrimSpace(s) == "" {
		return cfg.Addresses.First, nil
	}
	a, err := addr.Parse(s)
	if err != nil {
		return addr.Address{}, translateError(err)
	}
	return a, nil
}

func (e *Engine) firstTime(cfg *config.Config, s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return cfg.WindowFirst(e.opts.clock()), nil
	}
	t, err := timeidx.Parse(s, e.opts.location)
	if err != nil {
		return time.Time{}, translateError(err)
	}
	return t, nil
}

// ParseSelection builds a selection query from text in the dataset's
// granularity. Timestamps without a zone are read in the engine's location.
func (e *Engine) ParseSelection(addrFirst, addrLast, timeFirst, timeLast string) (selection.Query, error) {
	cfg := e.cfg.Load()
	af, err := addr.Parse(addrFirst)
	if err != nil {
		return selection.Query{}, translateError(err)
	}
	al, err := addr.Parse(addrLast)
	if err != nil {
		return selection.Query{}, translateError(err)
	}
	tf, err := timeidx.Parse(timeFirst, e.opts.location)
	if err != nil {
		return selection.Query{}, translateError(err)
	}
	tl, err := timeidx.Parse(timeLast, e.opts.location)
	if err != nil {
		return selection.Query{}, translateError(err)
	}
	return selection.Query{
		AddrFirst:   af,
		AddrLast:    al,
		Granularity: cfg.Addresses.Granularity,
		TimeFirst:   tf,
		TimeLast:    tl,
	}, nil
}

// CellState is the state of one matrix cell.
type CellState uint8

const (
	// CellInactive is a cell without activity.
	CellInactive CellState = iota
	// CellActive is a cell with activity.
	CellActive
	// CellUndefined is a position outside the matrix.
	CellUndefined
)

func (s CellState) String() string {
	switch s {
	case CellActive:
		return "active"
	case CellInactive:
		return "inactive"
	default:
		return "undefined"
	}
}

// Pixel returns the gray value the renderer uses for s.
func (s CellState) Pixel() uint8 {
	switch s {
	case CellActive:
		return render.Active
	case CellInactive:
		return render.Inactive
	default:
		return render.Undefined
	}
}

// Cell describes one position of a matrix.
type Cell struct {
	// Address is the first address of the cell's bucket.
	Address addr.Address
	// Time is the start of the cell's interval.
	Time  time.Time
	State CellState
}

// Defined reports whether the cell lies inside the matrix.
func (c Cell) Defined() bool { return c.State != CellUndefined }

// Cell looks up (addrIdx, timeIdx) in m. Positions outside m yield a Cell
// with State CellUndefined and no address or time.
func (e *Engine) Cell(m *matrix.Matrix, addrIdx, timeIdx int) Cell {
	return CellAt(m, addrIdx, timeIdx)
}

// CellAt is Engine.Cell without an engine.
func CellAt(m *matrix.Matrix, addrIdx, timeIdx int) Cell {
	if m == nil || !m.Contains(addrIdx, timeIdx) {
		return Cell{State: CellUndefined}
	}
	o := m.Origin()
	a, err := o.AddressAt(addrIdx)
	if err != nil {
		return Cell{State: CellUndefined}
	}
	c := Cell{Address: a, Time: o.TimeAt(timeIdx), State: CellInactive}
	if m.Get(addrIdx, timeIdx) {
		c.State = CellActive
	}
	return c
}

// Info describes the dataset at one instant.
type Info struct {
	Dataset      string
	Mode         config.Mode
	FirstAddress addr.Address
	LastAddress  addr.Address
	Granularity  uint8
	VectorSize   int
	Interval     time.Duration
	Window       int
	// Intervals is the number of intervals recorded so far.
	Intervals int
	// StoredIntervals is the number of intervals the file retains.
	StoredIntervals int
	// Rotation is the ring-buffer position of the oldest retained row.
	Rotation int
	// First is the start of the recording.
	First time.Time
	// WindowFirst is the start of the oldest retained interval.
	WindowFirst time.Time
	// Last is the end of the recording, or now while online.
	Last time.Time
}

// Info summarizes the current configuration at now.
func (e *Engine) Info(now time.Time) Info {
	cfg := e.cfg.Load()
	intervals := cfg.Intervals(now)
	return Info{
		Dataset:         cfg.Dataset,
		Mode:            cfg.Mode,
		FirstAddress:    cfg.Addresses.First,
		LastAddress:     cfg.Addresses.Last,
		Granularity:     cfg.Addresses.Granularity,
		VectorSize:      cfg.VectorSize(),
		Interval:        cfg.Time.Interval,
		Window:          cfg.Time.Window,
		Intervals:       intervals,
		StoredIntervals: cfg.StoredIntervals(now),
		Rotation:        store.Rotation(intervals, cfg.Time.Window),
		First:           cfg.Time.First,
		WindowFirst:     cfg.WindowFirst(now),
		Last:            cfg.Last(now),
	}
}
