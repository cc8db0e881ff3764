package datasets

import (
	"github.com/Noofbiz/rabani"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Accumulator collects every image and label of one validation pass.
//
// Its capacity is fixed at construction to batches*batchSize rows. Batch k of a
// pass is written to rows [k*batchSize, (k+1)*batchSize); writing the same
// slot twice within a pass is an error, and storing batch 0 again starts a new
// pass.
type Accumulator struct {
	batches       int
	batchSize     int
	res           int
	numCategories int

	// Images is [Rows, Res, Res, 1] and Labels [Rows, NumCategories].
	Images []float32
	Labels []float32

	filled []bool
	stored int
	passes int
}

// NewAccumulator allocates an accumulator for batches batches of batchSize
// images at resolution res.
func NewAccumulator(batches, batchSize, res, numCategories int) *Accumulator {
	rows := batches * batchSize
	return &Accumulator{
		batches:       batches,
		batchSize:     batchSize,
		res:           res,
		numCategories: numCategories,
		Images:        make([]float32, rows*res*res),
		Labels:        make([]float32, rows*numCategories),
		filled:        make([]bool, batches),
	}
}

// Rows returns the capacity in images.
func (a *Accumulator) Rows() int { return a.batches * a.batchSize }

// Res returns the image resolution.
func (a *Accumulator) Res() int { return a.res }

// Complete reports whether every slot of the current pass has been written.
func (a *Accumulator) Complete() bool { return a.stored == a.batches }

// Passes returns the number of completed passes.
func (a *Accumulator) Passes() int { return a.passes }

// Image returns row r as a view into the buffer.
func (a *Accumulator) Image(r int) []float32 {
	stride := a.res * a.res
	return a.Images[r*stride : (r+1)*stride]
}

// Label returns the category index of row r, or -1 if the row is unset.
func (a *Accumulator) Label(r int) int {
	row := a.Labels[r*a.numCategories : (r+1)*a.numCategories]
	for j, v := range row {
		if v == 1 {
			return j
		}
	}
	return -1
}

// Reset forgets the current pass.
func (a *Accumulator) Reset() {
	clear(a.filled)
	a.stored = 0
}

// Store copies batch b into slot batchIdx.
func (a *Accumulator) Store(batchIdx int, b *Batch) error {
	if b.Size != a.batchSize || b.Res != a.res || b.NumCategories != a.numCategories {
		return errors.Wrapf(rabani.ErrPrecondition,
			"batch shaped [%d,%d,%d] does not fit accumulator [%d,%d,%d]",
			b.Size, b.Res, b.NumCategories, a.batchSize, a.res, a.numCategories)
	}
	if batchIdx < 0 || batchIdx >= a.batches {
		return errors.Wrapf(rabani.ErrPrecondition, "batch slot %d out of range [0, %d)", batchIdx, a.batches)
	}
	if batchIdx == 0 && a.stored > 0 {
		a.Reset()
	}
	if a.filled[batchIdx] {
		return errors.Wrapf(rabani.ErrPrecondition, "batch slot %d already written in this pass", batchIdx)
	}
	copy(a.Images[batchIdx*len(b.Images):], b.Images)
	copy(a.Labels[batchIdx*len(b.Labels):], b.Labels)
	a.filled[batchIdx] = true
	a.stored++
	if a.Complete() {
		a.passes++
		klog.V(1).Infof("validation accumulator complete: %d rows, pass %d", a.Rows(), a.passes)
	}
	return nil
}
