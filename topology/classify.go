package topology

import (
	"github.com/Noofbiz/rabani"
	"github.com/Noofbiz/rabani/images"
	"github.com/Noofbiz/rabani/records"
	"github.com/pkg/errors"
)

// Classification thresholds.
const (
	// HoleSubstrateFraction is the substrate fraction above which a
	// liquid-dominated image counts as a hole.
	HoleSubstrateFraction = 0.02

	CellularMinEuler  = -0.00025
	LabyrinthMinEuler = -0.01
	LabyrinthMaxEuler = -0.001
	IslandMaxEuler    = -0.03
)

// Region labels of the two-region split used by Classify.
const (
	SubstrateRegion = 1
	CoveredRegion   = 2
)

// RegionProps describes the region Classify measured.
type RegionProps struct {
	// Label is SubstrateRegion or CoveredRegion.
	Label int
	// Area is the pixel count of the region.
	Area int
	// EulerNumber of the region, 8-connected objects minus 4-connected holes.
	EulerNumber int
	// Perimeter of the region, see Perimeter.
	Perimeter float64
	// NormalisedEuler is EulerNumber divided by the particle pixel count, or
	// 0 when the image holds no particles.
	NormalisedEuler float64
}

// Regions splits img into substrate pixels (label 1) and covered pixels,
// liquid or particle (label 2), and measures the lowest labeled region
// present: the substrate, unless the image has none.
func Regions(img *images.Image) RegionProps {
	mask := make([]bool, len(img.Pix))
	label := CoveredRegion
	for i, v := range img.Pix {
		mask[i] = v == images.Substrate
		if mask[i] {
			label = SubstrateRegion
		}
	}
	if label == CoveredRegion {
		mask = Invert(mask)
	}
	return RegionProps{
		Label:       label,
		Area:        Area(mask),
		EulerNumber: EulerNumber(mask, img.Res, img.Res),
		Perimeter:   Perimeter(mask, img.Res, img.Res),
	}
}

// Classify assigns a heuristic morphology category to a raw three-level image
// of resolution res.
//
// Liquid-dominated images are liquid or hole depending on their substrate
// fraction. Otherwise the ratio R of the region Euler number to the particle
// count decides:
//
//	R ≥ -0.00025          cellular
//	-0.01 ≤ R < -0.001    labyrinth
//	R ≤ -0.03             island
//	anything else         none
//
// An image that is not liquid-dominated and holds no particles returns
// records.None with an error wrapping rabani.ErrDegenerateInput.
func Classify(img *images.Image, res int) (RegionProps, records.Category, error) {
	if res <= 0 || res != img.Res {
		return RegionProps{}, records.None, errors.Wrapf(rabani.ErrPrecondition,
			"classify: resolution %d does not match a %dx%d image", res, img.Res, img.Res)
	}
	props := Regions(img)
	particles := img.Count(images.Particle)
	if particles > 0 {
		props.NormalisedEuler = float64(props.EulerNumber) / float64(particles)
	}

	if images.Mode(img.Pix) == images.Liquid {
		if float64(img.Count(images.Substrate))/float64(res*res) >= HoleSubstrateFraction {
			return props, records.Hole, nil
		}
		return props, records.Liquid, nil
	}

	if particles == 0 {
		return props, records.None, errors.Wrap(rabani.ErrDegenerateInput,
			"classify: no particle pixels to normalise the Euler number")
	}
	return props, categoryForEuler(props.NormalisedEuler), nil
}

func categoryForEuler(r float64) records.Category {
	switch {
	case r >= CellularMinEuler:
		return records.Cellular
	case r >= LabyrinthMinEuler && r < LabyrinthMaxEuler:
		return records.Labyrinth
	case r <= IslandMaxEuler:
		return records.Island
	}
	return records.None
}
