package store

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/ipactivity/blobstore"
	"github.com/hupe1980/ipactivity/internal/archive"
	"github.com/hupe1980/ipactivity/matrix"
	"github.com/hupe1980/ipactivity/resource"
)

var (
	// ErrNoData is returned when a bitmap file is absent or holds no
	// complete row. It is an expected condition, not a failure.
	ErrNoData = errors.New("store: no data")

	// ErrIO wraps unexpected errors while reading a bitmap file.
	ErrIO = errors.New("store: i/o error")
)

// Snapshot is the outcome of one read.
type Snapshot struct {
	Matrix *matrix.Matrix
	// Name is the blob that was read, including an archive suffix.
	Name string
	// Codec is the archive format the blob was stored in.
	Codec archive.Codec
	// Size is the number of decoded bytes considered.
	Size int64
	// Rotation is the applied left rotation.
	Rotation int
	// Dropped counts trailing bytes that did not form a complete row.
	Dropped int64
}

// Reader reads bitmap files.
type Reader struct {
	rc *resource.Controller
}

// NewReader creates a reader. A nil controller imposes no limits.
func NewReader(rc *resource.Controller) *Reader {
	return &Reader{rc: rc}
}

// Open reads the bitmap stored under name. When name is absent, archived
// copies (name plus ".zst" or ".lz4") are tried in turn.
func (r *Reader) Open(ctx context.Context, bs blobstore.BlobStore, name string, l Layout) (*Snapshot, error) {
	candidates := []string{name}
	for _, c := range archive.Codecs {
		candidates = append(candidates, name+c.Suffix())
	}

	for _, candidate := range candidates {
		blob, err := bs.Open(ctx, candidate)
		if errors.Is(err, blobstore.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, wrapIO(fmt.Errorf("open %s: %w", candidate, err))
		}
		snap, err := r.read(ctx, blob, archive.CodecFor(candidate), l)
		if cerr := blob.Close(); cerr != nil && err == nil {
			err = wrapIO(fmt.Errorf("close: %w", cerr))
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", candidate, err)
		}
		snap.Name = candidate
		return snap, nil
	}
	return nil, fmt.Errorf("%w: %s: %w", ErrNoData, name, blobstore.ErrNotFound)
}

// Read reads an uncompressed bitmap blob in a single pass over its size
// snapshot.
func (r *Reader) Read(ctx context.Context, blob blobstore.Blob, l Layout) (*matrix.Matrix, error) {
	snap, err := r.read(ctx, blob, archive.None, l)
	if err != nil {
		return nil, err
	}
	return snap.Matrix, nil
}

func (r *Reader) read(ctx context.Context, blob blobstore.Blob, codec archive.Codec, l Layout) (*Snapshot, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	size := blob.Size()
	if size <= 0 {
		return nil, ErrNoData
	}

	if err := r.rc.AcquireRead(ctx); err != nil {
		return nil, err
	}
	defer r.rc.ReleaseRead()

	limit := l.MaxBytes()
	want := limit
	if codec == archive.None {
		want = min(size, limit)
	}
	res, err := r.rc.ReserveMemory(ctx, want)
	if err != nil {
		return nil, wrapIO(err)
	}
	defer res.Release()

	var data []byte
	if codec == archive.None {
		data, err = r.readRaw(ctx, blob, want)
	} else {
		src := resource.NewRateLimitedReader(ctx, blobstore.NewReader(ctx, blob, size), r.rc)
		data, err = archive.Decode(codec, src, limit)
	}
	if err != nil {
		return nil, wrapIO(err)
	}

	m, err := Decode(data, l)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Matrix:   m,
		Codec:    codec,
		Size:     int64(len(data)),
		Rotation: Rotation(l.Intervals, l.Window) % m.Cols(),
		Dropped:  int64(len(data) % l.ByteVectorSize),
	}, nil
}

// readRaw reads the first n bytes. A short read is not an error: the
// producer may have rewritten the file underneath, and Decode drops the
// incomplete row.
func (r *Reader) readRaw(ctx context.Context, blob blobstore.Blob, n int64) ([]byte, error) {
	if err := r.rc.WaitIO(ctx, int(n)); err != nil {
		return nil, err
	}
	if m, ok := blob.(blobstore.Mappable); ok {
		if mapped, err := m.Bytes(); err == nil {
			out := make([]byte, min(int64(len(mapped)), n))
			copy(out, mapped)
			return out, nil
		}
	}
	buf := make([]byte, n)
	got, err := blob.ReadAt(ctx, buf, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return buf[:got], nil
}

func wrapIO(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrIO, err)
}
