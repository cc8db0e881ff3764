package datasets

import (
	"github.com/Noofbiz/rabani/records"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"k8s.io/klog/v2"
)

// computeClassWeights scans the first records of the cursor, counts their
// categories and stores balanced inverse-frequency weights:
//
//	w[c] = total / (numCategories * count[c])
//
// Training generators sample at most cfg.WeightSampleCap records, evaluation
// generators read a full pass. The cursor is reset before and after the scan.
func (g *Generator) computeClassWeights() error {
	g.cursor.Reset()
	defer g.cursor.Reset()

	n := g.length * g.cfg.BatchSize
	if g.cfg.Train {
		if g.cfg.WeightSampleCap > n {
			klog.V(1).Infof("class weight sample of %d clamped to the %d available records", g.cfg.WeightSampleCap, n)
		} else {
			n = g.cfg.WeightSampleCap
		}
	}

	counts := make([]float64, len(g.cfg.Categories))
	for i := 0; i < n; i++ {
		path, err := g.cursor.Next()
		if err != nil {
			return err
		}
		rec, err := records.Load(path)
		if err != nil {
			return err
		}
		idx, err := g.categoryIndex(rec.Category)
		if err != nil {
			return errors.WithMessagef(err, "class weights: record %s", path)
		}
		counts[idx]++
	}

	total := floats.Sum(counts)
	weights := make([]float64, len(counts))
	for c, count := range counts {
		if count == 0 {
			klog.Warningf("category %q absent from the %d sampled records, weight set to 0",
				g.cfg.Categories[c], int(total))
			continue
		}
		weights[c] = total / (float64(len(counts)) * count)
	}
	g.classWeights = weights
	klog.V(1).Infof("class weights from %d records: %v", int(total), weights)
	return nil
}

// ClassWeights returns a copy of the balanced class weights, indexed like
// Config.Categories. They are computed once, at construction.
func (g *Generator) ClassWeights() []float64 {
	out := make([]float64, len(g.classWeights))
	copy(out, g.classWeights)
	return out
}

func (g *Generator) categoryIndex(name string) (int, error) {
	cat, err := records.ParseCategory(name)
	if err != nil {
		return -1, err
	}
	return records.IndexOf(g.cfg.Categories, cat)
}
