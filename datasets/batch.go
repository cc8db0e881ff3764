package datasets

import (
	"github.com/gomlx/gomlx/pkg/core/tensors"
)

// Batch stores one fetch in flat contiguous buffers.
//
// Images is laid out as [Size, Res, Res, 1] and Labels as [Size, NumCategories]
// (one-hot). Targets is only set in autoencoder mode and holds the clean images
// while Images holds their corrupted copy. Params is [Size, NumParams] and holds
// the configured simulation parameters of each record.
type Batch struct {
	Size          int
	Res           int
	NumCategories int
	NumParams     int

	Images  []float32
	Labels  []float32
	Targets []float32
	Params  []float64
}

func newBatch(size, res, numCategories, numParams int) *Batch {
	return &Batch{
		Size:          size,
		Res:           res,
		NumCategories: numCategories,
		NumParams:     numParams,
		Images:        make([]float32, size*res*res),
		Labels:        make([]float32, size*numCategories),
		Params:        make([]float64, size*numParams),
	}
}

// Param returns the simulation parameters of example i, ordered like
// Config.Parameters.
func (b *Batch) Param(i int) []float64 {
	return b.Params[i*b.NumParams : (i+1)*b.NumParams]
}

// Image returns the pixels of image i as a view into the batch buffer.
func (b *Batch) Image(i int) []float32 {
	stride := b.Res * b.Res
	return b.Images[i*stride : (i+1)*stride]
}

// Label returns the category index of example i, or -1 if its one-hot row is empty.
func (b *Batch) Label(i int) int {
	row := b.Labels[i*b.NumCategories : (i+1)*b.NumCategories]
	for j, v := range row {
		if v == 1 {
			return j
		}
	}
	return -1
}

// ToTensors converts the batch to gomlx tensors: the inputs shaped
// [Size, Res, Res, 1] and, depending on the mode, either the one-hot labels
// shaped [Size, NumCategories] or the clean targets shaped like the inputs.
func (b *Batch) ToTensors() (inputs, labels *tensors.Tensor) {
	inputs = tensors.FromFlatDataAndDimensions(b.Images, b.Size, b.Res, b.Res, 1)
	if b.Targets != nil {
		labels = tensors.FromFlatDataAndDimensions(b.Targets, b.Size, b.Res, b.Res, 1)
		return inputs, labels
	}
	labels = tensors.FromFlatDataAndDimensions(b.Labels, b.Size, b.NumCategories)
	return inputs, labels
}
