package datasets

import (
	"math/rand/v2"

	"github.com/Noofbiz/rabani/images"
	"gonum.org/v1/gonum/stat/distuv"
	"k8s.io/klog/v2"
)

// Axis selects the flip direction.
type Axis int

const (
	// Vertical reverses the row order.
	Vertical Axis = iota
	// Horizontal reverses the pixels inside each row.
	Horizontal
)

// Augmenter applies the stochastic training transforms to a batch, in order:
// vertical flip, horizontal flip, circular shift, level randomisation and
// speckle noise. Each step has its own switch.
type Augmenter struct {
	VerticalFlip    bool
	HorizontalFlip  bool
	CircShift       bool
	RandomiseLevels bool
	Noise           float64
	NoiseStdDev     float64

	src rand.Source
	rng *rand.Rand
}

// NewAugmenter builds an Augmenter from the augmentation fields of cfg. All
// draws come from src.
func NewAugmenter(cfg Config, src rand.Source) *Augmenter {
	return &Augmenter{
		VerticalFlip:    cfg.VerticalFlip,
		HorizontalFlip:  cfg.HorizontalFlip,
		CircShift:       cfg.CircShift,
		RandomiseLevels: cfg.RandomiseLevels,
		Noise:           cfg.Noise,
		NoiseStdDev:     cfg.NoiseStdDev,
		src:             src,
		rng:             rand.New(src),
	}
}

// Apply runs every enabled step on b in place.
func (a *Augmenter) Apply(b *Batch) error {
	if a.VerticalFlip {
		if err := a.Flip(b, Vertical); err != nil {
			return err
		}
	}
	if a.HorizontalFlip {
		if err := a.Flip(b, Horizontal); err != nil {
			return err
		}
	}
	if a.CircShift {
		a.Shift(b)
	}
	if a.RandomiseLevels {
		a.PermuteLevels(b)
	}
	if a.Noise > 0 {
		a.Speckle(b.Images, b.Size, b.Res, a.Noise, a.NoiseStdDev)
	}
	return nil
}

// Flip draws a batch-sized sample of image indices without replacement and
// flips every sampled image along axis. The sample spans the whole batch.
func (a *Augmenter) Flip(b *Batch, axis Axis) error {
	flip := images.FlipCols
	if axis == Vertical {
		flip = images.FlipRows
	}
	for _, i := range a.rng.Perm(b.Size)[:b.Size] {
		if err := flip(b.Image(i), b.Res); err != nil {
			return err
		}
	}
	return nil
}

// Shift rolls every image toroidally by two independent offsets in [0, Res).
func (a *Augmenter) Shift(b *Batch) {
	for i := 0; i < b.Size; i++ {
		dy, dx := a.rng.IntN(b.Res), a.rng.IntN(b.Res)
		images.Roll(b.Image(i), b.Res, dy, dx)
	}
}

// PermuteLevels draws one random permutation of the distinct levels present in
// the batch and remaps the whole batch through it: the level drawn in position
// i becomes i. The same permutation is used for every image of the batch.
func (a *Augmenter) PermuteLevels(b *Batch) {
	values, _ := images.Unique(b.Images)
	remap := make(map[float32]float32, len(values))
	for i, j := range a.rng.Perm(len(values)) {
		remap[values[j]] = float32(i)
	}
	for i, v := range b.Images {
		b.Images[i] = remap[v]
	}
}

// Speckle corrupts n images of resolution res stored in pix. For each image a
// corruption probability is drawn from Normal(perc, std) and clipped to
// [0, 1]; each pixel is then replaced with that probability by a level drawn
// uniformly from the distinct levels of pix (possibly its own). Single-valued
// input is left as is.
func (a *Augmenter) Speckle(pix []float32, n, res int, perc, std float64) {
	levels, _ := images.Unique(pix)
	if len(levels) < 2 {
		klog.V(2).Infof("speckle noise skipped: batch holds a single level")
		return
	}
	stride := res * res
	for i := 0; i < n; i++ {
		p := distuv.Normal{Mu: perc, Sigma: std, Src: a.src}.Rand()
		p = min(max(p, 0), 1)
		if p == 0 {
			continue
		}
		mask := distuv.Bernoulli{P: p, Src: a.src}
		img := pix[i*stride : (i+1)*stride]
		for j := range img {
			if mask.Rand() == 1 {
				img[j] = levels[a.rng.IntN(len(levels))]
			}
		}
	}
}
