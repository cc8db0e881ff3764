package datasets

import (
	"math/rand/v2"

	"github.com/Noofbiz/rabani/images"
)

// Binarise collapses every image of b to at most two levels by redistributing
// its least common level over the remaining ones (weighted by their
// frequency), then rescales each image to [0, 1].
func Binarise(b *Batch, src rand.Source) {
	for i := 0; i < b.Size; i++ {
		img := b.Image(i)
		images.RemoveLeastCommonLevel(img, src)
		images.Normalize(img)
	}
}
