package images

import (
	"image"

	"github.com/Noofbiz/rabani"
	"github.com/pkg/errors"
)

// toGray encodes the res x res pixels of pix as an 8-bit image of palette
// indices, so imaging's geometric transforms move levels around without ever
// blending them. The palette holds the distinct levels in ascending order.
func toGray(pix []float32, res int) (*image.Gray, []float32, error) {
	palette, _ := Unique(pix)
	if len(palette) > 256 {
		return nil, nil, errors.Wrapf(rabani.ErrPrecondition,
			"images: %d distinct levels do not fit an 8-bit palette", len(palette))
	}
	index := make(map[float32]uint8, len(palette))
	for i, v := range palette {
		index[v] = uint8(i)
	}
	gray := image.NewGray(image.Rect(0, 0, res, res))
	for i, p := range pix {
		gray.Pix[i] = index[p]
	}
	return gray, palette, nil
}

// fromNRGBA decodes palette indices stored in the red channel of img into dst.
func fromNRGBA(dst []float32, img *image.NRGBA, palette []float32) {
	w := img.Rect.Dx()
	for y := 0; y < img.Rect.Dy(); y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < w; x++ {
			dst[y*w+x] = palette[row[4*x]]
		}
	}
}
