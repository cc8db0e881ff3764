// Package features builds the classical feature table: the scale-invariant
// descriptors of every image of a validation pass, together with its
// ground-truth category and the category assigned by the topological
// heuristic. The two labels are kept side by side and never reconciled.
package features

import (
	"slices"

	"github.com/Noofbiz/rabani"
	"github.com/Noofbiz/rabani/datasets"
	"github.com/Noofbiz/rabani/images"
	"github.com/Noofbiz/rabani/records"
	"github.com/Noofbiz/rabani/topology"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"k8s.io/klog/v2"
)

// Row is one image of the table.
type Row struct {
	Index     int
	Truth     records.Category
	Heuristic records.Category
	SIA       float64
	SIP       float64
	SIE       float64

	// Params holds the generator's configured simulation parameters of the
	// image, ordered like datasets.Config.Parameters.
	Params []float64
}

// Options configure Build.
type Options struct {
	// MaxImages bounds the number of images read. Only whole batches are
	// read; zero reads a full pass.
	MaxImages int

	// Progress, if set, is advanced once per batch.
	Progress *progressbar.ProgressBar
}

// Build runs one validation pass of gen and returns a row per image.
//
// gen must be a classifier validation generator with forced binarisation:
// descriptors are computed on the binarised images, while the heuristic
// category is computed on the raw resized image captured by an accumulator
// before binarisation. The accumulator is detached again before Build
// returns. Images whose descriptors are undefined (single level after
// binarisation, or no background left after closing) are skipped.
func Build(gen *datasets.Generator, opts Options) ([]Row, error) {
	cfg := gen.Config()
	if cfg.Mode != datasets.Classifier {
		return nil, errors.Wrapf(rabani.ErrConfiguration, "features: generator must be a classifier, got %s", cfg.Mode)
	}
	if !cfg.ForceBinarisation {
		return nil, errors.Wrap(rabani.ErrConfiguration, "features: generator must force binarisation")
	}
	acc := gen.NewAccumulator()
	if err := gen.AttachAccumulator(acc); err != nil {
		return nil, err
	}
	defer gen.DetachAccumulator()
	gen.Reset()

	numBatches := gen.Len()
	if opts.MaxImages > 0 {
		numBatches = min(numBatches, opts.MaxImages/cfg.BatchSize)
	}

	var rows []Row
	skipped := 0
	for b := 0; b < numBatches; b++ {
		batch, err := gen.Next()
		if err != nil {
			return nil, errors.WithMessagef(err, "features: batch %d", b)
		}
		for j := 0; j < batch.Size; j++ {
			idx := b*batch.Size + j
			row, err := buildRow(idx, batch, j, acc, cfg.Categories)
			if errors.Is(err, rabani.ErrPrecondition) || errors.Is(err, rabani.ErrDegenerateInput) {
				klog.V(1).Infof("features: image %d skipped: %v", idx, err)
				skipped++
				continue
			}
			if err != nil {
				return nil, err
			}
			rows = append(rows, row)
		}
		if opts.Progress != nil {
			_ = opts.Progress.Add(1)
		}
	}
	if skipped > 0 {
		klog.Warningf("features: %d of %d images had undefined descriptors", skipped, numBatches*cfg.BatchSize)
	}
	return rows, nil
}

func buildRow(idx int, batch *datasets.Batch, j int, acc *datasets.Accumulator, cats []records.Category) (Row, error) {
	row := Row{Index: idx, Truth: records.None, Params: slices.Clone(batch.Param(j))}
	if l := batch.Label(j); l >= 0 {
		row.Truth = cats[l]
	}

	d, err := topology.ExtractDescriptors(&images.Image{Res: batch.Res, Pix: batch.Image(j)})
	if err != nil {
		return row, err
	}
	row.SIA, row.SIP, row.SIE = d.SIA, d.SIP, d.SIE

	// A raw image without particles has no heuristic category.
	_, row.Heuristic, _ = topology.Classify(&images.Image{Res: acc.Res(), Pix: acc.Image(idx)}, acc.Res())
	return row, nil
}

// Filter keeps the rows whose ground truth is in cats.
func Filter(rows []Row, cats []records.Category) []Row {
	var out []Row
	for _, r := range rows {
		if _, err := records.IndexOf(cats, r.Truth); err == nil {
			out = append(out, r)
		}
	}
	return out
}
