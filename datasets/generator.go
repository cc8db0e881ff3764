package datasets

import (
	"fmt"
	"io"
	"math/rand/v2"
	"slices"

	"github.com/Noofbiz/rabani"
	"github.com/Noofbiz/rabani/images"
	"github.com/Noofbiz/rabani/records"
	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/gomlx/gomlx/pkg/ml/train"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Generator yields batches of resized, labeled (and optionally augmented and
// binarised) simulation images from a record directory.
type Generator struct {
	cfg       Config
	cursor    *Cursor
	src       rand.Source
	augmenter *Augmenter
	acc       *Accumulator

	imageRes     int
	length       int
	classWeights []float64

	// yielded counts batches handed out through Yield since the last Reset.
	yielded int
}

var _ train.Dataset = (*Generator)(nil)

// NewGenerator validates cfg, lists the record directory and computes the
// class weights. Training generators visit records in a seeded shuffled order,
// validation generators in sorted path order.
func NewGenerator(cfg Config) (*Generator, error) {
	cfg, err := cfg.WithDefaults()
	if err != nil {
		return nil, err
	}
	src := newSource(cfg.Seed)

	var shuffle *rand.Rand
	if cfg.Train {
		shuffle = rand.New(src)
	}
	cursor, err := NewCursor(cfg.Dir, shuffle)
	if err != nil {
		return nil, err
	}

	g := &Generator{
		cfg:       cfg,
		cursor:    cursor,
		src:       src,
		augmenter: NewAugmenter(cfg, src),
		length:    cursor.Len() / cfg.BatchSize,
	}
	if g.length == 0 {
		return nil, errors.Wrapf(rabani.ErrConfiguration,
			"%s holds %d records, fewer than one batch of %d", cfg.Dir, cursor.Len(), cfg.BatchSize)
	}

	g.imageRes = cfg.ImageSize
	if g.imageRes == 0 {
		if err := g.readImageRes(); err != nil {
			return nil, err
		}
	}
	if err := g.computeClassWeights(); err != nil {
		return nil, err
	}
	klog.V(1).Infof("%s: %d records, %d batches of %d at %dx%d",
		g.Name(), cursor.Len(), g.length, cfg.BatchSize, g.imageRes, g.imageRes)
	return g, nil
}

// readImageRes takes the canonical resolution from the first record.
func (g *Generator) readImageRes() error {
	defer g.cursor.Reset()
	path, err := g.cursor.Next()
	if err != nil {
		return err
	}
	rec, err := records.Load(path)
	if err != nil {
		return err
	}
	g.imageRes = rec.Resolution
	return nil
}

// Config returns the effective configuration, defaults included.
func (g *Generator) Config() Config { return g.cfg }

// Len returns the number of complete batches in the directory. It depends only
// on the record count taken at construction.
func (g *Generator) Len() int { return g.length }

// ImageRes returns the canonical image resolution.
func (g *Generator) ImageRes() int { return g.imageRes }

// Cursor exposes the scan state, mostly for inspection.
func (g *Generator) Cursor() *Cursor { return g.cursor }

// NewAccumulator returns an accumulator sized for one full pass of g.
func (g *Generator) NewAccumulator() *Accumulator {
	return NewAccumulator(g.length, g.cfg.BatchSize, g.imageRes, len(g.cfg.Categories))
}

// Accumulator returns the attached accumulator, or nil.
func (g *Generator) Accumulator() *Accumulator { return g.acc }

// DetachAccumulator stops copying fetches into the attached accumulator and
// returns it.
func (g *Generator) DetachAccumulator() *Accumulator {
	acc := g.acc
	g.acc = nil
	return acc
}

// AttachAccumulator makes every subsequent fetch copy its assembled batch
// (before binarisation) into acc. Only validation generators accept one.
func (g *Generator) AttachAccumulator(acc *Accumulator) error {
	if g.cfg.Train {
		return errors.Wrap(rabani.ErrConfiguration, "accumulators are only supported on validation generators")
	}
	if acc.batches != g.length || acc.batchSize != g.cfg.BatchSize ||
		acc.res != g.imageRes || acc.numCategories != len(g.cfg.Categories) {
		return errors.Wrapf(rabani.ErrConfiguration,
			"accumulator [%d batches x %d, %dx%d, %d categories] does not match generator",
			acc.batches, acc.batchSize, acc.res, acc.res, acc.numCategories)
	}
	g.acc = acc
	return nil
}

// OnEpochEnd restarts the directory scan and zeroes the batch counter.
func (g *Generator) OnEpochEnd() {
	klog.V(2).Infof("%s: epoch end after %d batches", g.Name(), g.cursor.Batches())
	g.cursor.Reset()
}

// Next assembles one batch.
//
// Any failure reading or labeling a record aborts the whole fetch and leaves
// the cursor where the fetch started, so a retry delivers the same records.
// Validation generators rewind automatically once Len batches have been
// served, so every pass delivers each record exactly once.
func (g *Generator) Next() (*Batch, error) {
	batch := newBatch(g.cfg.BatchSize, g.imageRes, len(g.cfg.Categories), len(g.cfg.Parameters))
	g.cursor.mark()
	if err := g.fill(batch); err != nil {
		g.cursor.rollback()
		return nil, err
	}
	g.cursor.commit()

	if g.cfg.ForceBinarisation {
		Binarise(batch, g.src)
	}

	g.cursor.advanceBatch()
	if !g.cfg.Train && g.cursor.Batches() >= g.length {
		klog.V(1).Infof("%s: pass of %d batches complete, rewinding", g.Name(), g.length)
		g.cursor.Reset()
	}

	if g.cfg.Mode == Autoencoder {
		batch.Targets = slices.Clone(batch.Images)
		g.augmenter.Speckle(batch.Images, batch.Size, batch.Res, autoencoderNoise, autoencoderNoiseStdDev)
	}
	return batch, nil
}

// fill assembles every slot of batch, then augments it (training) or copies
// it into the attached accumulator (validation).
func (g *Generator) fill(batch *Batch) error {
	for i := 0; i < batch.Size; i++ {
		if err := g.assemble(batch, i); err != nil {
			return err
		}
	}
	if g.cfg.Train {
		return g.augmenter.Apply(batch)
	}
	if g.acc != nil {
		return g.acc.Store(g.cursor.Batches(), batch)
	}
	return nil
}

// assemble reads the next record into slot i of batch.
func (g *Generator) assemble(batch *Batch, i int) error {
	path, err := g.cursor.Next()
	if err != nil {
		return err
	}
	rec, err := records.Load(path)
	if err != nil {
		return err
	}
	img, err := rec.Image()
	if err != nil {
		return errors.WithMessagef(err, "record %s", path)
	}
	img, err = images.Resize(img, g.imageRes)
	if err != nil {
		return errors.WithMessagef(err, "record %s", path)
	}
	copy(batch.Image(i), img.Pix)

	idx, err := g.categoryIndex(rec.Category)
	if err != nil {
		return errors.WithMessagef(err, "record %s", path)
	}
	batch.Labels[i*batch.NumCategories+idx] = 1

	params := batch.Param(i)
	for j, name := range g.cfg.Parameters {
		v, ok := rec.Params[name]
		if !ok {
			return errors.Wrapf(rabani.ErrLookup, "record %s has no parameter %q", path, name)
		}
		params[j] = v
	}
	return nil
}

// Name implements train.Dataset.
func (g *Generator) Name() string {
	if g.cfg.Train {
		return fmt.Sprintf("rabani-%s-train", g.cfg.Mode)
	}
	return fmt.Sprintf("rabani-%s-eval", g.cfg.Mode)
}

// Yield implements train.Dataset. It returns g as spec, the image batch as the
// only input and either the one-hot labels or the clean targets as the only
// label. After Len batches it returns io.EOF until Reset is called.
func (g *Generator) Yield() (spec any, inputs, labels []*tensors.Tensor, err error) {
	if g.yielded >= g.length {
		return nil, nil, nil, io.EOF
	}
	batch, err := g.Next()
	if err != nil {
		return nil, nil, nil, err
	}
	g.yielded++
	in, lab := batch.ToTensors()
	return g, []*tensors.Tensor{in}, []*tensors.Tensor{lab}, nil
}

// Reset implements train.Dataset: it marks an epoch boundary.
func (g *Generator) Reset() {
	g.yielded = 0
	g.OnEpochEnd()
}
