package datasets

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/Noofbiz/rabani"
	"github.com/Noofbiz/rabani/records"
)

// writeRecords writes n records named 0000.rec, 0001.rec, ... into dir. The
// record for index k is produced by mk.
func writeRecords(t *testing.T, dir string, n int, mk func(k int) *records.Record) {
	t.Helper()
	for k := 0; k < n; k++ {
		path := filepath.Join(dir, fmt.Sprintf("%04d.rec", k))
		if err := records.Save(path, mk(k)); err != nil {
			t.Fatalf("failed to write record %s: %v", path, err)
		}
	}
}

// markedRecord returns a 16x16 liquid image whose pixel k is a particle, so the
// record index can be recovered from any copy of the image.
func markedRecord(k int) *records.Record {
	levels := make([]uint8, 256)
	for i := range levels {
		levels[i] = 1
	}
	levels[k%256] = 2
	return &records.Record{
		Resolution: 16,
		Levels:     levels,
		Category:   records.DefaultCategories[k%len(records.DefaultCategories)].String(),
	}
}

func markerOf(img []float32) int {
	return slices.Index(img, 2)
}

func validationConfig(dir string, batchSize int) Config {
	return Config{
		Dir:       dir,
		Mode:      Classifier,
		BatchSize: batchSize,
		Seed:      7,
	}
}

// TestValidationPassDeliversEveryRecordOnce builds 256 records with a batch
// size of 64 and checks the length, the accumulator coverage, and the wrap on
// the fifth fetch.
func TestValidationPassDeliversEveryRecordOnce(t *testing.T) {
	tmp := t.TempDir()
	writeRecords(t, tmp, 256, markedRecord)

	g, err := NewGenerator(validationConfig(tmp, 64))
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}
	if got := g.Len(); got != 4 {
		t.Fatalf("expected 4 batches, got %d", got)
	}
	if g.ImageRes() != 16 {
		t.Fatalf("expected resolution discovered from records, got %d", g.ImageRes())
	}

	acc := g.NewAccumulator()
	if err := g.AttachAccumulator(acc); err != nil {
		t.Fatalf("AttachAccumulator failed: %v", err)
	}

	var first *Batch
	for b := 0; b < 4; b++ {
		batch, err := g.Next()
		if err != nil {
			t.Fatalf("Next #%d failed: %v", b, err)
		}
		if b == 0 {
			first = batch
		}
		if g.Len() != 4 {
			t.Fatalf("Len changed while iterating")
		}
	}
	if !acc.Complete() || acc.Rows() != 256 {
		t.Fatalf("accumulator incomplete: complete=%v rows=%d", acc.Complete(), acc.Rows())
	}

	seen := make([]bool, 256)
	for r := 0; r < acc.Rows(); r++ {
		k := markerOf(acc.Image(r))
		if k < 0 {
			t.Fatalf("row %d holds no marked record", r)
		}
		if seen[k] {
			t.Fatalf("record %d delivered twice", k)
		}
		seen[k] = true
		if want := k % len(records.DefaultCategories); acc.Label(r) != want {
			t.Fatalf("row %d: label %d, want %d", r, acc.Label(r), want)
		}
	}
	for k, ok := range seen {
		if !ok {
			t.Fatalf("record %d missing from the pass", k)
		}
	}

	fifth, err := g.Next()
	if err != nil {
		t.Fatalf("fifth Next should wrap, got %v", err)
	}
	if markerOf(fifth.Image(0)) != markerOf(first.Image(0)) {
		t.Fatalf("fifth fetch did not restart at the first record")
	}
	if acc.Complete() {
		t.Fatalf("accumulator should have started a new pass")
	}
}

func TestClassWeightsAreBalancedAndLeaveCursorAtStart(t *testing.T) {
	tmp := t.TempDir()
	labels := []string{"liquid", "liquid", "hole", "liquid", "island", "hole", "liquid", "island", "hole", "liquid"}
	writeRecords(t, tmp, len(labels), func(k int) *records.Record {
		r := markedRecord(k)
		r.Category = labels[k]
		return r
	})

	cfg := validationConfig(tmp, 5)
	cfg.Categories = []records.Category{records.Liquid, records.Hole, records.Island}
	g, err := NewGenerator(cfg)
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}
	want := []float64{10.0 / 15, 10.0 / 9, 10.0 / 6}
	got := g.ClassWeights()
	for i := range want {
		if diff := got[i] - want[i]; diff > 1e-9 || diff < -1e-9 {
			t.Fatalf("weights = %v, want %v", got, want)
		}
	}
	if g.Cursor().Position() != 0 || g.Cursor().Batches() != 0 {
		t.Fatalf("cursor not reset after weight scan: pos=%d batches=%d",
			g.Cursor().Position(), g.Cursor().Batches())
	}

	cfg.Train = true
	cfg.WeightSampleCap = 4
	tg, err := NewGenerator(cfg)
	if err != nil {
		t.Fatalf("NewGenerator(train) failed: %v", err)
	}
	var total float64
	for i, w := range tg.ClassWeights() {
		if w < 0 {
			t.Fatalf("negative weight %v for %d", w, i)
		}
		total += w
	}
	if total == 0 {
		t.Fatalf("all weights zero")
	}
	if tg.Cursor().Position() != 0 {
		t.Fatalf("training cursor not reset after weight scan")
	}
}

func TestUnknownCategoryAbortsFetch(t *testing.T) {
	tmp := t.TempDir()
	writeRecords(t, tmp, 4, func(k int) *records.Record {
		r := markedRecord(k)
		r.Category = "liquid"
		if k == 3 {
			r.Category = "island"
		}
		return r
	})
	cfg := validationConfig(tmp, 4)
	cfg.Categories = []records.Category{records.Liquid}
	if _, err := NewGenerator(cfg); !errors.Is(err, rabani.ErrLookup) {
		t.Fatalf("expected ErrLookup from the weight scan, got %v", err)
	}
}

func TestConfigurationErrors(t *testing.T) {
	if _, err := ParseMode("regressor"); !errors.Is(err, rabani.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration for unknown mode, got %v", err)
	}
	if m, err := ParseMode("Autoencoder"); err != nil || m != Autoencoder {
		t.Fatalf("ParseMode(Autoencoder) = %v, %v", m, err)
	}

	tmp := t.TempDir()
	writeRecords(t, tmp, 4, func(k int) *records.Record {
		return &records.Record{Resolution: 4, Levels: make([]uint8, 16), Category: "liquid"}
	})

	cfg := validationConfig(tmp, 2)
	cfg.Mode = 0
	if _, err := NewGenerator(cfg); !errors.Is(err, rabani.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration for unset mode, got %v", err)
	}

	cfg = validationConfig(tmp, 8)
	if _, err := NewGenerator(cfg); !errors.Is(err, rabani.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration when fewer records than a batch, got %v", err)
	}

	cfg = validationConfig(tmp, 2)
	cfg.ImageSize = 10
	g, err := NewGenerator(cfg)
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}
	if _, err := g.Next(); !errors.Is(err, rabani.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration for non-multiple resize, got %v", err)
	}

	cfg.ImageSize = 8
	cfg.Train = true
	tg, err := NewGenerator(cfg)
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}
	if err := tg.AttachAccumulator(tg.NewAccumulator()); !errors.Is(err, rabani.ErrConfiguration) {
		t.Fatalf("training generators must refuse accumulators, got %v", err)
	}
}

// threeLevelRecord is a 4x4 image with 8 liquid, 5 particle and 3 substrate pixels.
func threeLevelRecord(k int) *records.Record {
	return &records.Record{
		Resolution: 4,
		Levels:     []uint8{1, 1, 1, 1, 1, 1, 1, 1, 2, 2, 2, 2, 2, 0, 0, 0},
		Category:   records.DefaultCategories[k%5].String(),
	}
}

func TestTrainingBatchesAreAugmentedAndBinarised(t *testing.T) {
	tmp := t.TempDir()
	writeRecords(t, tmp, 12, threeLevelRecord)

	cfg := DefaultConfig(tmp)
	cfg.BatchSize = 4
	cfg.ImageSize = 8
	cfg.RandomiseLevels = true
	cfg.Seed = 11
	g, err := NewGenerator(cfg)
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}
	if g.Len() != 3 {
		t.Fatalf("expected 3 batches, got %d", g.Len())
	}

	for epoch := 0; epoch < 2; epoch++ {
		steps := 0
		for {
			spec, inputs, labels, err := g.Yield()
			if err == io.EOF {
				break
			}
			if err != nil {
				t.Fatalf("Yield failed: %v", err)
			}
			if spec != g || len(inputs) != 1 || len(labels) != 1 {
				t.Fatalf("unexpected Yield result: spec=%v inputs=%d labels=%d", spec, len(inputs), len(labels))
			}
			if dims := inputs[0].Shape().Dimensions; !slices.Equal(dims, []int{4, 8, 8, 1}) {
				t.Fatalf("input dims %v", dims)
			}
			if dims := labels[0].Shape().Dimensions; !slices.Equal(dims, []int{4, 5}) {
				t.Fatalf("label dims %v", dims)
			}
			steps++
		}
		if steps != 3 {
			t.Fatalf("epoch %d yielded %d batches, want 3", epoch, steps)
		}
		g.Reset()
	}

	batch, err := g.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	for i := 0; i < batch.Size; i++ {
		for _, v := range batch.Image(i) {
			if v != 0 && v != 1 {
				t.Fatalf("image %d not binarised: value %v", i, v)
			}
		}
		if batch.Label(i) < 0 {
			t.Fatalf("image %d has no label", i)
		}
	}
}

func TestAutoencoderYieldsCorruptedInputAndCleanTarget(t *testing.T) {
	tmp := t.TempDir()
	writeRecords(t, tmp, 4, threeLevelRecord)

	cfg := validationConfig(tmp, 4)
	cfg.Mode = Autoencoder
	cfg.ForceBinarisation = true
	cfg.ImageSize = 16
	g, err := NewGenerator(cfg)
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}
	batch, err := g.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if len(batch.Targets) != len(batch.Images) {
		t.Fatalf("targets missing in autoencoder mode")
	}
	changed := 0
	for i := range batch.Images {
		if batch.Targets[i] != 0 && batch.Targets[i] != 1 {
			t.Fatalf("target not binarised: %v", batch.Targets[i])
		}
		if batch.Images[i] != batch.Targets[i] {
			changed++
		}
	}
	if changed == 0 {
		t.Fatalf("expected speckle corruption of the inputs")
	}

	_, labels := batch.ToTensors()
	if dims := labels.Shape().Dimensions; !slices.Equal(dims, []int{4, 16, 16, 1}) {
		t.Fatalf("autoencoder label dims %v", dims)
	}
}

func TestFailedFetchLeavesCursorAtBatchStart(t *testing.T) {
	tmp := t.TempDir()
	writeRecords(t, tmp, 8, markedRecord)
	g, err := NewGenerator(validationConfig(tmp, 4))
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}
	acc := g.NewAccumulator()
	if err := g.AttachAccumulator(acc); err != nil {
		t.Fatalf("AttachAccumulator failed: %v", err)
	}

	broken := filepath.Join(tmp, "0002.rec")
	if err := os.WriteFile(broken, []byte("not a record"), 0o644); err != nil {
		t.Fatalf("failed to corrupt %s: %v", broken, err)
	}
	if _, err := g.Next(); err == nil {
		t.Fatalf("expected the fetch over a corrupt record to fail")
	}
	if g.Cursor().Position() != 0 || g.Cursor().Batches() != 0 {
		t.Fatalf("failed fetch moved the cursor: pos=%d batches=%d",
			g.Cursor().Position(), g.Cursor().Batches())
	}

	if err := records.Save(broken, markedRecord(2)); err != nil {
		t.Fatalf("failed to repair %s: %v", broken, err)
	}
	for b := 0; b < 2; b++ {
		batch, err := g.Next()
		if err != nil {
			t.Fatalf("retry #%d failed: %v", b, err)
		}
		for i := 0; i < batch.Size; i++ {
			if got, want := markerOf(batch.Image(i)), b*4+i; got != want {
				t.Fatalf("batch %d slot %d holds record %d, want %d", b, i, got, want)
			}
		}
	}
	if !acc.Complete() {
		t.Fatalf("accumulator should be complete after the retried pass")
	}
}

func TestShuffledRollbackRestoresOrder(t *testing.T) {
	tmp := t.TempDir()
	writeRecords(t, tmp, 6, markedRecord)
	c, err := NewCursor(tmp, rand.New(rand.NewPCG(4, 4)))
	if err != nil {
		t.Fatalf("NewCursor failed: %v", err)
	}
	drain(t, c, 4)
	c.mark()
	want := drain(t, c, 4)
	c.rollback()
	if c.Position() != 4 {
		t.Fatalf("rollback left position %d, want 4", c.Position())
	}
	// The first two records after the mark come from the order in force
	// before the reshuffle.
	if got := drain(t, c, 2); !slices.Equal(got, want[:2]) {
		t.Fatalf("rollback across a reshuffle: got %v, want %v", got, want[:2])
	}
}

func TestParametersAreCopiedIntoBatches(t *testing.T) {
	tmp := t.TempDir()
	writeRecords(t, tmp, 4, func(k int) *records.Record {
		r := markedRecord(k)
		r.Params = map[string]float64{"kT": float64(k) / 2, "mu": 3}
		return r
	})
	cfg := validationConfig(tmp, 4)
	cfg.Parameters = []string{"mu", "kT"}
	g, err := NewGenerator(cfg)
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}
	batch, err := g.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	for i := 0; i < batch.Size; i++ {
		if got := batch.Param(i); !slices.Equal(got, []float64{3, float64(i) / 2}) {
			t.Fatalf("example %d params %v", i, got)
		}
	}

	cfg.Parameters = []string{"num_mc_steps"}
	g, err = NewGenerator(cfg)
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}
	if _, err := g.Next(); !errors.Is(err, rabani.ErrLookup) {
		t.Fatalf("expected ErrLookup for a missing parameter, got %v", err)
	}
}

func TestWithDefaultsFillsZeroValues(t *testing.T) {
	cfg, err := Config{Dir: "x", Mode: Classifier, BatchSize: 2}.WithDefaults()
	if err != nil {
		t.Fatalf("WithDefaults failed: %v", err)
	}
	if !slices.Equal(cfg.Categories, records.DefaultCategories) {
		t.Fatalf("categories %v", cfg.Categories)
	}
	if cfg.NoiseStdDev != 0.002 || cfg.WeightSampleCap != 50000 {
		t.Fatalf("defaults not filled: std=%v cap=%d", cfg.NoiseStdDev, cfg.WeightSampleCap)
	}
	if _, err := (Config{Mode: Classifier}).WithDefaults(); !errors.Is(err, rabani.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration for a zero batch size, got %v", err)
	}
}

func TestDetachAccumulator(t *testing.T) {
	tmp := t.TempDir()
	writeRecords(t, tmp, 8, markedRecord)
	g, err := NewGenerator(validationConfig(tmp, 4))
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}
	acc := g.NewAccumulator()
	if err := g.AttachAccumulator(acc); err != nil {
		t.Fatalf("AttachAccumulator failed: %v", err)
	}
	if _, err := g.Next(); err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if got := g.DetachAccumulator(); got != acc || g.Accumulator() != nil {
		t.Fatalf("DetachAccumulator did not return and clear the accumulator")
	}
	before := slices.Clone(acc.Images)
	if _, err := g.Next(); err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if !slices.Equal(before, acc.Images) || acc.Complete() {
		t.Fatalf("detached accumulator was written")
	}
}
