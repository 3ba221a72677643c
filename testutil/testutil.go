package testutil

import (
	"bytes"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hupe1980/ipactivity/internal/archive"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Activity returns the address buckets in [0, vectorSize) that are active,
// each with probability p.
func (r *RNG) Activity(vectorSize int, p float64) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	var active []int
	for a := 0; a < vectorSize; a++ {
		if r.rand.Float64() < p {
			active = append(active, a)
		}
	}
	return active
}

// Pack encodes one row: address bucket a is bit 7-(a%8) of byte a/8.
// Buckets outside [0, vectorSize) are ignored.
func Pack(vectorSize int, active []int) []byte {
	row := make([]byte, (vectorSize+7)/8)
	for _, a := range active {
		if a < 0 || a >= vectorSize {
			continue
		}
		row[a/8] |= 0x80 >> (a % 8)
	}
	return row
}

// Sink receives the producer's writes.
type Sink interface {
	WriteAt(name string, data []byte, off int64)
}

// DirSink writes into files below a directory.
type DirSink string

// WriteAt writes data at off, creating the file when needed. It panics on
// I/O errors, which only happen when the test environment is broken.
func (d DirSink) WriteAt(name string, data []byte, off int64) {
	f, err := os.OpenFile(filepath.Join(string(d), name), os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		panic(err)
	}
	defer f.Close()
	if _, err := f.WriteAt(data, off); err != nil {
		panic(err)
	}
}

// Producer writes a bitmap file the way the capture module does: one packed
// row per interval, appended until the window is full, then overwriting row
// (interval mod window).
type Producer struct {
	sink       Sink
	name       string
	vectorSize int
	window     int
	history    [][]int
}

// NewProducer creates a producer for the file name.
func NewProducer(sink Sink, name string, vectorSize, window int) *Producer {
	return &Producer{sink: sink, name: name, vectorSize: vectorSize, window: window}
}

// Record writes the next interval with the given active address buckets.
func (p *Producer) Record(active ...int) {
	slot := len(p.history) % p.window
	row := Pack(p.vectorSize, active)
	p.sink.WriteAt(p.name, row, int64(slot*len(row)))
	p.history = append(p.history, append([]int(nil), active...))
}

// Skip records n intervals without activity.
func (p *Producer) Skip(n int) {
	for i := 0; i < n; i++ {
		p.Record()
	}
}

// Intervals returns the number of recorded intervals.
func (p *Producer) Intervals() int { return len(p.history) }

// Expected returns the retained intervals as a '0'/'1' matrix string, one
// line per address bucket, oldest interval first.
func (p *Producer) Expected() string {
	retained := p.history[max(len(p.history)-p.window, 0):]
	cells := make([][]byte, p.vectorSize)
	for a := range cells {
		cells[a] = bytes.Repeat([]byte{'0'}, len(retained))
	}
	for t, active := range retained {
		for _, a := range active {
			if a >= 0 && a < p.vectorSize {
				cells[a][t] = '1'
			}
		}
	}
	lines := make([]string, len(cells))
	for a, c := range cells {
		lines[a] = string(c)
	}
	return strings.Join(lines, "\n")
}

// Archive compresses data with codec.
func Archive(codec archive.Codec, data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := archive.NewWriter(codec, &buf)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
