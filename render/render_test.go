package render

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/ipactivity/matrix"
)

// rows renders r as one string per pixel row using '#' for Active, '.' for
// Inactive and '?' for Undefined.
func rows(r *Raster) []string {
	out := make([]string, r.Height())
	for y := range out {
		line := make([]byte, r.Width())
		for x := range line {
			switch r.At(x, y) {
			case Active:
				line[x] = '#'
			case Inactive:
				line[x] = '.'
			case Undefined:
				line[x] = '?'
			default:
				line[x] = '!'
			}
		}
		out[y] = string(line)
	}
	return out
}

var m = matrix.Parse(matrix.Origin{}, "100\n011")

func TestRender_FullView(t *testing.T) {
	r, err := Render(m, Canvas{Height: 3, Width: 4, ScaleRows: 1, ScaleCols: 1})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"????",
		".##?",
		"#..?",
	}, rows(r))
}

func TestRender_FullViewScaled(t *testing.T) {
	r, err := Render(m, Canvas{Height: 3, Width: 4, ScaleRows: 2, ScaleCols: 2})
	require.NoError(t, err)

	assert.Equal(t, 8, r.Width())
	assert.Equal(t, 6, r.Height())
	assert.Equal(t, []string{
		"????????",
		"????????",
		"..####??",
		"..####??",
		"##....??",
		"##....??",
	}, rows(r))
}

func TestRender_SelectionView(t *testing.T) {
	r, err := Render(m, Canvas{Height: 5, Width: 7, ScaleRows: 2, ScaleCols: 2, Selection: true})
	require.NoError(t, err)

	assert.Equal(t, 7, r.Width())
	assert.Equal(t, 5, r.Height())
	assert.Equal(t, []string{
		"##....?",
		"##....?",
		"..####?",
		"..####?",
		"???????",
	}, rows(r))
}

func TestRender_ExactFit(t *testing.T) {
	r, err := Render(m, Canvas{Height: 2, Width: 3, ScaleRows: 1, ScaleCols: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{".##", "#.."}, rows(r))
}

func TestRender_SizeInvariant(t *testing.T) {
	for _, c := range []Canvas{
		{Height: 10, Width: 20, ScaleRows: 1, ScaleCols: 1},
		{Height: 10, Width: 20, ScaleRows: 3, ScaleCols: 2},
		{Height: 40, Width: 30, ScaleRows: 5, ScaleCols: 7, Selection: true},
	} {
		r, err := Render(m, c)
		require.NoError(t, err)
		w, h := c.Size()
		assert.Equal(t, w, r.Width())
		assert.Equal(t, h, r.Height())
	}
}

func TestRender_Errors(t *testing.T) {
	_, err := Render(m, Canvas{Height: 3, Width: 4, ScaleRows: 0, ScaleCols: 1})
	assert.ErrorIs(t, err, ErrInvalidScale)

	_, err = Render(m, Canvas{Height: 1, Width: 4, ScaleRows: 1, ScaleCols: 1})
	assert.ErrorIs(t, err, ErrCanvasTooSmall)

	_, err = Render(m, Canvas{Height: 4, Width: 5, ScaleRows: 2, ScaleCols: 2, Selection: true})
	assert.ErrorIs(t, err, ErrCanvasTooSmall)
}

func TestRender_EmptyMatrix(t *testing.T) {
	r, err := Render(matrix.Empty(matrix.Origin{}), Canvas{Height: 2, Width: 2, ScaleRows: 1, ScaleCols: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"??", "??"}, rows(r))
}

func TestSelectionScale(t *testing.T) {
	full := matrix.NewBuilder(matrix.Origin{}, 100, 50).Build()
	sel := matrix.NewBuilder(matrix.Origin{}, 30, 7).Build()

	rs, cs := SelectionScale(full, sel)
	assert.Equal(t, 3, rs)
	assert.Equal(t, 7, cs)

	rs, cs = SelectionScale(sel, full)
	assert.Equal(t, 1, rs)
	assert.Equal(t, 1, cs)

	rs, cs = SelectionScale(full, matrix.Empty(matrix.Origin{}))
	assert.Equal(t, 1, rs)
	assert.Equal(t, 1, cs)
}

func TestRaster_PNG(t *testing.T) {
	r, err := Render(m, Canvas{Height: 4, Width: 6, ScaleRows: 2, ScaleCols: 3})
	require.NoError(t, err)

	data, err := r.PNG()
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 18, img.Bounds().Dx())
	assert.Equal(t, 8, img.Bounds().Dy())
	gray, ok := img.(*image.Gray)
	require.True(t, ok)
	assert.Equal(t, r.Image().Pix, gray.Pix)
}
