package images

import (
	"github.com/Noofbiz/rabani"
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// Resize enlarges img to target x target with nearest-neighbor sampling, which
// at an integer factor k = target / img.Res replicates every source pixel into
// a k x k block. Resizing to the same size returns a copy. A target that is
// not a positive integer multiple of the source size fails with
// rabani.ErrConfiguration.
func Resize(img *Image, target int) (*Image, error) {
	if target == img.Res {
		return img.Clone(), nil
	}
	if img.Res <= 0 || target <= 0 || target%img.Res != 0 {
		return nil, errors.Wrapf(rabani.ErrConfiguration,
			"images: cannot resize %d -> %d, target must be an integer multiple of the source", img.Res, target)
	}
	gray, palette, err := toGray(img.Pix, img.Res)
	if err != nil {
		return nil, err
	}
	out := New(target)
	fromNRGBA(out.Pix, imaging.Resize(gray, target, target, imaging.NearestNeighbor), palette)
	return out, nil
}
