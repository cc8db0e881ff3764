package topology

import (
	"math"

	"github.com/Noofbiz/rabani"
	"github.com/Noofbiz/rabani/images"
	"github.com/pkg/errors"
)

// Descriptors are the scale-invariant statistics of a binary image.
type Descriptors struct {
	SIA float64 // particle area fraction
	SIP float64 // perimeter per feature and characteristic length
	SIE float64 // H0 / H1

	H0, H1    int     // component counts of the closed image and its complement
	Area      int     // pixel area of the particle side
	Perimeter float64 // total perimeter of the complement of the closed image
}

// ExtractDescriptors computes SIA, SIP and SIE for a strictly binary image.
//
// The image is thresholded at its higher level and closed with a 3×3 square.
// H0 and H1 count the 8-connected components of the closed image and of its
// complement. The more fragmented side is the particle phase. The perimeter
// sums every region of the complement.
//
// Images without exactly two levels fail with rabani.ErrPrecondition. Images
// whose closed form or complement is empty fail with rabani.ErrDegenerateInput.
func ExtractDescriptors(img *images.Image) (Descriptors, error) {
	var d Descriptors
	values, _ := images.Unique(img.Pix)
	if len(values) != 2 {
		return d, errors.Wrapf(rabani.ErrPrecondition,
			"descriptors: image must be binary, found %d levels", len(values))
	}

	res := img.Res
	mask := make([]bool, len(img.Pix))
	for i, v := range img.Pix {
		mask[i] = v == values[1]
	}
	closed := Close(mask, res)
	inverse := Invert(closed)

	d.H0 = CountComponents(closed, res, res, Conn8)
	d.H1 = CountComponents(inverse, res, res, Conn8)
	if d.H0 == 0 || d.H1 == 0 {
		return d, errors.Wrapf(rabani.ErrDegenerateInput,
			"descriptors: closed image has %d components and its complement %d", d.H0, d.H1)
	}

	count := d.H1
	d.Area = Area(inverse)
	if d.H0 > d.H1 {
		count = d.H0
		d.Area = Area(closed)
	}
	avg := float64(d.Area) / float64(count)
	d.Perimeter = Perimeter(inverse, res, res)

	d.SIA = float64(d.Area) / float64(len(img.Pix))
	d.SIP = d.Perimeter / (float64(d.H0) * math.Sqrt(avg))
	d.SIE = float64(d.H0) / float64(d.H1)
	return d, nil
}
