// Package archive decodes bitmap files that were compressed for archival.
//
// Archived datasets keep their file names with an extra suffix: ".zst" for
// a zstd frame, ".lz4" for an LZ4 frame. The decoded bytes are the
// original packed rows.
package archive

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// ErrCorrupt is returned when an archive cannot be decoded.
var ErrCorrupt = errors.New("archive: corrupt data")

// Codec identifies an archive format.
type Codec uint8

const (
	// None means the file is stored as written by the producer.
	None Codec = iota
	// Zstd is a zstd frame (".zst").
	Zstd
	// LZ4 is an LZ4 frame (".lz4").
	LZ4
)

// Codecs lists the archive formats in lookup order.
var Codecs = []Codec{Zstd, LZ4}

// Suffix returns the file name suffix of c.
func (c Codec) Suffix() string {
	switch c {
	case Zstd:
		return ".zst"
	case LZ4:
		return ".lz4"
	default:
		return ""
	}
}

func (c Codec) String() string {
	switch c {
	case Zstd:
		return "zstd"
	case LZ4:
		return "lz4"
	default:
		return "none"
	}
}

// CodecFor derives the codec from a file name.
func CodecFor(name string) Codec {
	for _, c := range Codecs {
		if strings.HasSuffix(name, c.Suffix()) {
			return c
		}
	}
	return None
}

var zstdDecoderPool sync.Pool

func getZstdDecoder(r io.Reader) (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		dec := v.(*zstd.Decoder)
		if err := dec.Reset(r); err != nil {
			return nil, err
		}
		return dec, nil
	}
	return zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
}

func putZstdDecoder(dec *zstd.Decoder) {
	// Drop the reference to the source before pooling.
	if err := dec.Reset(nil); err == nil {
		zstdDecoderPool.Put(dec)
	}
}

// Decode reads the archive from r and returns at most limit decoded bytes.
// Output beyond limit is not decoded. A limit <= 0 means no limit.
func Decode(c Codec, r io.Reader, limit int64) ([]byte, error) {
	var (
		src  io.Reader
		done func()
	)
	switch c {
	case None:
		src = r
	case Zstd:
		dec, err := getZstdDecoder(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		src, done = dec, func() { putZstdDecoder(dec) }
	case LZ4:
		src = lz4.NewReader(r)
	default:
		return nil, fmt.Errorf("archive: unknown codec %d", c)
	}
	if done != nil {
		defer done()
	}
	if limit > 0 {
		src = io.LimitReader(src, limit)
	}

	data, err := io.ReadAll(src)
	if err != nil {
		if c == None {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, c, err)
	}
	return data, nil
}

// NewWriter returns a writer that archives into w with codec c. Close
// flushes the frame but does not close w.
func NewWriter(c Codec, w io.Writer) (io.WriteCloser, error) {
	switch c {
	case None:
		return nopCloser{w}, nil
	case Zstd:
		zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
		if err != nil {
			return nil, err
		}
		return zw, nil
	case LZ4:
		zw := lz4.NewWriter(w)
		if err := zw.Apply(lz4.CompressionLevelOption(lz4.Level5)); err != nil {
			return nil, err
		}
		return zw, nil
	default:
		return nil, fmt.Errorf("archive: unknown codec %d", c)
	}
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
