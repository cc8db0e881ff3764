// Package images holds square, single-channel level images and the small set of
// pixel utilities the rest of the module is built on: integer-factor resizing,
// normalisation, least-common-level redistribution, flips and toroidal shifts.
//
// Pixels are stored row-major in a flat []float32 so that the same helpers work
// on standalone images and on views into a batch buffer.
package images

import (
	"slices"

	"github.com/Noofbiz/rabani"
	"github.com/pkg/errors"
)

// Pixel levels of a simulated image.
const (
	Substrate float32 = 0
	Liquid    float32 = 1
	Particle  float32 = 2
)

// Image is a square Res x Res image. Pix[y*Res+x] holds the pixel at (x, y).
type Image struct {
	Res int
	Pix []float32
}

// New returns a zero-filled res x res image.
func New(res int) *Image {
	return &Image{Res: res, Pix: make([]float32, res*res)}
}

// FromLevels builds an image from row-major discrete levels.
func FromLevels(res int, levels []uint8) (*Image, error) {
	if res <= 0 || len(levels) != res*res {
		return nil, errors.Wrapf(rabani.ErrPrecondition,
			"images: %d levels cannot form a %dx%d image", len(levels), res, res)
	}
	img := New(res)
	for i, v := range levels {
		img.Pix[i] = float32(v)
	}
	return img, nil
}

// FromRows builds an image from a square [][]float32 grid. Convenient for tests
// and small hand-written fixtures.
func FromRows(rows [][]float32) (*Image, error) {
	res := len(rows)
	if res == 0 {
		return nil, errors.Wrap(rabani.ErrPrecondition, "images: empty grid")
	}
	img := New(res)
	for y, row := range rows {
		if len(row) != res {
			return nil, errors.Wrapf(rabani.ErrPrecondition,
				"images: row %d has %d columns, want %d", y, len(row), res)
		}
		copy(img.Pix[y*res:], row)
	}
	return img, nil
}

// At returns the pixel at column x, row y.
func (img *Image) At(x, y int) float32 { return img.Pix[y*img.Res+x] }

// Set sets the pixel at column x, row y.
func (img *Image) Set(x, y int, v float32) { img.Pix[y*img.Res+x] = v }

// Clone returns a deep copy.
func (img *Image) Clone() *Image {
	return &Image{Res: img.Res, Pix: slices.Clone(img.Pix)}
}

// Count returns how many pixels equal v.
func (img *Image) Count(v float32) int {
	n := 0
	for _, p := range img.Pix {
		if p == v {
			n++
		}
	}
	return n
}

// Unique returns the distinct values of pix in ascending order together with
// the number of times each one occurs.
func Unique(pix []float32) (values []float32, counts []int) {
	hist := make(map[float32]int, 4)
	for _, p := range pix {
		hist[p]++
	}
	values = make([]float32, 0, len(hist))
	for v := range hist {
		values = append(values, v)
	}
	slices.Sort(values)
	counts = make([]int, len(values))
	for i, v := range values {
		counts[i] = hist[v]
	}
	return values, counts
}

// Mode returns the most frequent value of pix. Ties resolve to the smallest
// value. It returns 0 for an empty slice.
func Mode(pix []float32) float32 {
	values, counts := Unique(pix)
	if len(values) == 0 {
		return 0
	}
	best := 0
	for i := 1; i < len(values); i++ {
		if counts[i] > counts[best] {
			best = i
		}
	}
	return values[best]
}
