package ipactivity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/ipactivity/blobstore"
	"github.com/hupe1980/ipactivity/config"
	"github.com/hupe1980/ipactivity/matrix"
	"github.com/hupe1980/ipactivity/render"
	"github.com/hupe1980/ipactivity/selection"
	"github.com/hupe1980/ipactivity/store"
)

// Engine serves the bitmaps of one dataset.
//
// An Engine only reads. The configuration is swapped atomically on refresh,
// so concurrent readers see either the previous or the new snapshot, never
// a mix. Bitmaps are re-read on every call.
type Engine struct {
	store     blobstore.BlobStore
	reader    *store.Reader
	cfg       atomic.Pointer[config.Config]
	refreshMu sync.Mutex

	opts    options
	logger  *Logger
	metrics MetricsCollector
}

// Open loads the dataset's configuration from bs and returns an Engine
// serving its bitmaps.
func Open(ctx context.Context, bs blobstore.BlobStore, optFns ...Option) (*Engine, error) {
	if bs == nil {
		return nil, errors.New("ipactivity: nil blob store")
	}
	o := applyOptions(optFns)

	e := &Engine{
		store:   bs,
		reader:  store.NewReader(o.resources),
		opts:    o,
		logger:  o.logger.WithDataset(o.dataset),
		metrics: o.metricsCollector,
	}

	cfg, err := e.loadConfig(ctx)
	if err != nil {
		e.logger.LogOpen(ctx, o.dataset, "", err)
		return nil, err
	}
	e.cfg.Store(cfg)
	e.logger.LogOpen(ctx, o.dataset, cfg.Mode.String(), nil)
	return e, nil
}

// Dataset returns the served dataset name.
func (e *Engine) Dataset() string { return e.opts.dataset }

// Config returns the current configuration snapshot.
func (e *Engine) Config() *config.Config { return e.cfg.Load() }

// Now returns the engine's current time.
func (e *Engine) Now() time.Time { return e.opts.clock() }

func (e *Engine) loadConfig(ctx context.Context) (*config.Config, error) {
	data, err := blobstore.ReadFile(ctx, e.store, e.opts.configName)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: read %s: %w", ErrStoreIO, e.opts.configName, err)
	}
	cfg, err := config.Parse(data, e.opts.dataset, e.opts.location)
	if err != nil {
		return nil, configError(err)
	}
	return cfg, nil
}

// configError makes every parse failure other than a missing dataset an
// ErrConfigInvalid.
func configError(err error) error {
	err = translateError(err)
	if errors.Is(err, ErrConfigMissingDataset) || errors.Is(err, ErrConfigInvalid) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrConfigInvalid, err)
}

// RefreshConfig re-reads the configuration. On error the previous snapshot
// stays in place and the error is returned. An offline dataset that is
// reported online again is rejected with ErrModeRegression.
func (e *Engine) RefreshConfig(ctx context.Context) (config.Transition, error) {
	start := time.Now()
	e.refreshMu.Lock()
	defer e.refreshMu.Unlock()

	tr, err := e.refresh(ctx)
	e.metrics.RecordRefresh(tr == config.TransitionOnlineToOffline, time.Since(start), err)
	e.logger.LogRefresh(ctx, e.opts.dataset, tr.String(), err)
	return tr, err
}

func (e *Engine) refresh(ctx context.Context) (config.Transition, error) {
	next, err := e.loadConfig(ctx)
	if err != nil {
		return config.TransitionNone, err
	}
	tr, err := e.cfg.Load().Refresh(next)
	if err != nil {
		return config.TransitionNone, translateError(err)
	}
	e.cfg.Store(next)
	return tr, nil
}

// Bitmap is the outcome of ReadBitmap.
type Bitmap struct {
	Kind Kind
	// Matrix holds the retained intervals, oldest first. It is empty, but
	// still anchored at the window's origin, when NoData is set.
	Matrix *matrix.Matrix
	// NoData reports an absent bitmap file or one without a complete row.
	NoData bool
	// Name is the blob that was read, including an archive suffix.
	Name string
	// Codec names the archive format of the blob ("none", "zstd" or "lz4").
	Codec string
	// Rotation is the ring-buffer rotation that was undone.
	Rotation int
	// Dropped counts trailing bytes that did not form a complete row.
	Dropped int64
	// Config is the configuration snapshot the bitmap was read with.
	Config *config.Config
	// Time is the instant the bitmap was read at.
	Time time.Time
}

// Summary condenses a bitmap into counts.
type Summary struct {
	Cells           int
	ActiveCells     int
	ActiveAddresses uint64
	ActiveIntervals uint64
}

// Summary counts the active cells, address buckets and intervals.
func (b Bitmap) Summary() Summary {
	if b.Matrix == nil {
		return Summary{}
	}
	return Summary{
		Cells:           b.Matrix.Rows() * b.Matrix.Cols(),
		ActiveCells:     b.Matrix.Count(),
		ActiveAddresses: b.Matrix.ActiveRows().GetCardinality(),
		ActiveIntervals: b.Matrix.ActiveCols().GetCardinality(),
	}
}

// ReadBitmap reads the bitmap of kind with the current configuration.
//
// An absent or empty file is not an error: the returned Bitmap has NoData
// set and an empty matrix. Unexpected I/O failures are returned as
// ErrStoreIO.
func (e *Engine) ReadBitmap(ctx context.Context, kind Kind) (Bitmap, error) {
	if kind > KindBoth {
		return Bitmap{}, fmt.Errorf("%w: %s", ErrInvalidKind, kind)
	}
	start := time.Now()
	cfg := e.cfg.Load()
	now := e.opts.clock()
	layout := store.LayoutFor(cfg, now)
	name := kind.Filename(e.opts.filename)

	b := Bitmap{Kind: kind, Name: name, Codec: "none", Config: cfg, Time: now}
	var size int64

	snap, err := e.reader.Open(ctx, e.store, name, layout)
	switch {
	case errors.Is(err, store.ErrNoData):
		b.Matrix = matrix.Empty(layout.Origin)
		b.NoData = true
		err = nil
	case err != nil:
		err = translateError(err)
	default:
		b.Matrix = snap.Matrix
		b.Name = snap.Name
		b.Codec = snap.Codec.String()
		b.Rotation = snap.Rotation
		b.Dropped = snap.Dropped
		size = snap.Size
	}

	e.metrics.RecordRead(size, b.NoData, time.Since(start), err)
	rows, cols := 0, 0
	if b.Matrix != nil {
		rows, cols = b.Matrix.Rows(), b.Matrix.Cols()
	}
	e.logger.WithKind(kind).LogRead(ctx, b.Name, rows, cols, b.NoData, err)
	if err != nil {
		return Bitmap{}, err
	}
	return b, nil
}

// Select returns the part of m that q covers, re-based to its own origin.
// The address range is [q.AddrFirst, q.AddrLast) and the time range
// [q.TimeFirst, q.TimeLast), both clamped to m.
func (e *Engine) Select(ctx context.Context, m *matrix.Matrix, q selection.Query) (*matrix.Matrix, error) {
	start := time.Now()
	out, err := selection.Select(m, q)
	return e.selected(ctx, start, out, err)
}

// SelectIndices is Select for raw row and column indices.
func (e *Engine) SelectIndices(ctx context.Context, m *matrix.Matrix, addrStart, addrEnd, timeStart, timeEnd int64) (*matrix.Matrix, error) {
	start := time.Now()
	out, err := selection.SelectIndices(m, addrStart, addrEnd, timeStart, timeEnd)
	return e.selected(ctx, start, out, err)
}

func (e *Engine) selected(ctx context.Context, start time.Time, m *matrix.Matrix, err error) (*matrix.Matrix, error) {
	err = translateError(err)
	cells, rows, cols := 0, 0, 0
	if err == nil {
		rows, cols = m.Rows(), m.Cols()
		cells = rows * cols
	}
	e.metrics.RecordSelect(cells, time.Since(start), err)
	e.logger.LogSelect(ctx, rows, cols, err)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// RenderRaster draws m onto canvas c.
func (e *Engine) RenderRaster(ctx context.Context, m *matrix.Matrix, c render.Canvas) (*render.Raster, error) {
	start := time.Now()
	r, err := render.Render(m, c)
	err = translateError(err)
	width, height := c.Size()
	pixels := 0
	if err == nil {
		pixels = r.Width() * r.Height()
	}
	e.metrics.RecordRender(pixels, time.Since(start), err)
	e.logger.LogRender(ctx, width, height, err)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Render draws m onto canvas c and returns the PNG encoding.
func (e *Engine) Render(ctx context.Context, m *matrix.Matrix, c render.Canvas) ([]byte, error) {
	r, err := e.RenderRaster(ctx, m, c)
	if err != nil {
		return nil, err
	}
	return r.PNG()
}

// Image is a rendered PNG with the scales it was drawn at.
type Image struct {
	PNG       []byte
	Width     int
	Height    int
	ScaleRows int
	ScaleCols int
}

// RenderBitmap draws a full view of b. The canvas spans all address
// buckets and the whole window, so intervals not yet recorded are padding.
func (e *Engine) RenderBitmap(ctx context.Context, b Bitmap, scale int) (Image, error) {
	cfg := b.Config
	if cfg == nil {
		cfg = e.cfg.Load()
	}
	c := render.Canvas{
		Height:    max(cfg.VectorSize(), b.Matrix.Rows()),
		Width:     max(cfg.Time.Window, b.Matrix.Cols()),
		ScaleRows: scale,
		ScaleCols: scale,
	}
	return e.renderImage(ctx, b.Matrix, c)
}

// RenderSelection draws a selection of full. The selection is enlarged
// by SelectionScale so that it fills roughly the area full takes at scale.
func (e *Engine) RenderSelection(ctx context.Context, full, selected *matrix.Matrix, scale int) (Image, error) {
	if scale < 1 {
		return Image{}, fmt.Errorf("%w: %d", ErrInvalidScale, scale)
	}
	rows, cols := render.SelectionScale(full, selected)
	c := render.Canvas{
		Height:    full.Rows() * scale,
		Width:     full.Cols() * scale,
		ScaleRows: rows * scale,
		ScaleCols: cols * scale,
		Selection: true,
	}
	return e.renderImage(ctx, selected, c)
}

func (e *Engine) renderImage(ctx context.Context, m *matrix.Matrix, c render.Canvas) (Image, error) {
	r, err := e.RenderRaster(ctx, m, c)
	if err != nil {
		return Image{}, err
	}
	data, err := r.PNG()
	if err != nil {
		return Image{}, err
	}
	return Image{
		PNG:       data,
		Width:     r.Width(),
		Height:    r.Height(),
		ScaleRows: c.ScaleRows,
		ScaleCols: c.ScaleCols,
	}, nil
}
