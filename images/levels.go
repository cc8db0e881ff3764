package images

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Normalize rescales pix in place to [0, 1]. A constant slice becomes all zeros.
func Normalize(pix []float32) {
	if len(pix) == 0 {
		return
	}
	lo, hi := pix[0], pix[0]
	for _, p := range pix[1:] {
		lo = min(lo, p)
		hi = max(hi, p)
	}
	span := hi - lo
	if span == 0 {
		clear(pix)
		return
	}
	for i, p := range pix {
		pix[i] = (p - lo) / span
	}
}

// RemoveLeastCommonLevel collapses pix to at most two distinct levels. While
// more than two levels remain, every pixel of the least common one (lowest
// value on ties) is replaced by one of the other levels, drawn independently
// per pixel with probability proportional to that level's frequency.
//
// Images with two or fewer levels are left untouched.
func RemoveLeastCommonLevel(pix []float32, src rand.Source) {
	for {
		values, counts := Unique(pix)
		if len(values) <= 2 {
			return
		}
		least := 0
		for i := 1; i < len(counts); i++ {
			if counts[i] < counts[least] {
				least = i
			}
		}
		others := make([]float32, 0, len(values)-1)
		weights := make([]float64, 0, len(values)-1)
		for i, v := range values {
			if i == least {
				continue
			}
			others = append(others, v)
			weights = append(weights, float64(counts[i]))
		}
		replace := distuv.NewCategorical(weights, src)
		target := values[least]
		for i, p := range pix {
			if p == target {
				pix[i] = others[int(replace.Rand())]
			}
		}
	}
}
