// Package render draws an activity matrix into a grayscale raster.
//
// Each matrix cell becomes a ScaleRows × ScaleCols block of pixels: black
// (0) for an inactive cell, white (255) for an active one. Pixels the
// matrix does not cover are Undefined gray.
//
// The full view anchors the matrix in the lower-left corner with address
// bucket 0 in the bottom pixel row, so addresses grow upwards. Its canvas
// is given in cells and multiplied by the scales; padding is added at
// pixel resolution above and to the right of the matrix. The selection
// view anchors the matrix in the upper-left corner with the first selected
// address bucket in the top pixel row. Its canvas is given in pixels,
// since the scales of a selection are derived from the full view.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/hupe1980/ipactivity/matrix"
)

const (
	// Inactive is the pixel value of a cell without activity.
	Inactive uint8 = 0x00
	// Active is the pixel value of a cell with activity.
	Active uint8 = 0xFF
	// Undefined is the pixel value outside the matrix.
	Undefined uint8 = 0x69
)

var (
	// ErrInvalidScale is returned for a scale factor below 1.
	ErrInvalidScale = errors.New("render: invalid scale")
	// ErrCanvasTooSmall is returned when the scaled matrix does not fit.
	ErrCanvasTooSmall = errors.New("render: canvas too small")
)

// Canvas describes the raster to produce.
type Canvas struct {
	Height    int
	Width     int
	ScaleRows int
	ScaleCols int
	// Selection selects the selection view instead of the full view.
	Selection bool
}

// Size returns the raster size in pixels.
func (c Canvas) Size() (width, height int) {
	if c.Selection {
		return c.Width, c.Height
	}
	return c.Width * c.ScaleCols, c.Height * c.ScaleRows
}

func (c Canvas) validate() error {
	if c.ScaleRows < 1 || c.ScaleCols < 1 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidScale, c.ScaleRows, c.ScaleCols)
	}
	if c.Height < 0 || c.Width < 0 {
		return fmt.Errorf("%w: %dx%d", ErrCanvasTooSmall, c.Width, c.Height)
	}
	return nil
}

// Raster is a rendered one-channel image.
type Raster struct {
	img *image.Gray
}

// Width returns the width in pixels.
func (r *Raster) Width() int { return r.img.Rect.Dx() }

// Height returns the height in pixels.
func (r *Raster) Height() int { return r.img.Rect.Dy() }

// At returns the pixel value at (x, y), with y = 0 at the top.
func (r *Raster) At(x, y int) uint8 { return r.img.GrayAt(x, y).Y }

// Image returns the raster as an image.Image.
func (r *Raster) Image() *image.Gray { return r.img }

// EncodePNG writes the raster as an 8-bit grayscale PNG.
func (r *Raster) EncodePNG(w io.Writer) error {
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	return enc.Encode(w, r.img)
}

// PNG returns the PNG encoding of the raster.
func (r *Raster) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := r.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Render draws m onto c.
func Render(m *matrix.Matrix, c Canvas) (*Raster, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	width, height := c.Size()
	mw, mh := m.Cols()*c.ScaleCols, m.Rows()*c.ScaleRows
	if mw > width || mh > height {
		return nil, fmt.Errorf("%w: %dx%d cells at scale %dx%d need %dx%d pixels, canvas is %dx%d",
			ErrCanvasTooSmall, m.Cols(), m.Rows(), c.ScaleCols, c.ScaleRows, mw, mh, width, height)
	}

	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = Undefined
	}

	for y := 0; y < mh; y++ {
		// Pixel row py inside the matrix area; the full view counts upwards
		// from the bottom edge.
		py := y
		if !c.Selection {
			py = height - 1 - y
		}
		row := y / c.ScaleRows
		line := img.Pix[py*img.Stride : py*img.Stride+mw]
		for x := range line {
			if m.Get(row, x/c.ScaleCols) {
				line[x] = Active
			} else {
				line[x] = Inactive
			}
		}
	}
	return &Raster{img: img}, nil
}

// SelectionScale derives the per-axis scale of a selection so that it
// fills roughly the area the full matrix took: floor(full / selected),
// at least 1.
func SelectionScale(full, selected *matrix.Matrix) (rows, cols int) {
	return ratio(full.Rows(), selected.Rows()), ratio(full.Cols(), selected.Cols())
}

func ratio(full, part int) int {
	if part <= 0 {
		return 1
	}
	return max(full/part, 1)
}
