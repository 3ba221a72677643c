package store

import (
	"github.com/hupe1980/ipactivity/matrix"
)

// Decode turns packed rows into an address-major matrix.
//
// At most l.Window complete rows are used; a trailing partial row is
// dropped. Padding bits past l.VectorSize are ignored. The rows are rotated
// by Rotation(l.Intervals, l.Window) so column 0 is the oldest interval.
func Decode(data []byte, l Layout) (*matrix.Matrix, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	bvs := l.ByteVectorSize
	rows := min(len(data)/bvs, l.Window)
	if rows == 0 {
		return nil, ErrNoData
	}

	// A file shorter than the window cannot have wrapped; keep the offset
	// inside the rows that exist.
	shift := Rotation(l.Intervals, l.Window) % rows

	b := matrix.NewBuilder(l.Origin, l.VectorSize, rows)
	for t := 0; t < rows; t++ {
		col := (t - shift + rows) % rows
		row := data[t*bvs : (t+1)*bvs]
		for i, v := range row {
			if v == 0 {
				continue
			}
			for bit := 0; bit < 8; bit++ {
				a := i*8 + bit
				if a >= l.VectorSize {
					break
				}
				if v&(0x80>>bit) != 0 {
					b.Set(a, col)
				}
			}
		}
	}
	return b.Build(), nil
}
