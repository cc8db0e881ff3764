// Package records reads and writes labeled simulation images, one record per
// file. Records are immutable once written; the dataset code only reads them.
package records

import (
	"encoding/gob"
	"os"
	"path/filepath"
	"slices"

	"github.com/Noofbiz/rabani"
	"github.com/Noofbiz/rabani/images"
	"github.com/pkg/errors"
)

// Record is one simulated image with its labels.
//
// Levels holds Resolution*Resolution row-major pixel levels
// (0 substrate, 1 liquid, 2 particle). Category is the simulation's ground truth
// name. Params carries optional simulation parameters such as "kT", "mu" or
// "num_mc_steps".
type Record struct {
	Resolution int
	Levels     []uint8
	Category   string
	Params     map[string]float64
}

// Image converts the record levels into an images.Image.
func (r *Record) Image() (*images.Image, error) {
	return images.FromLevels(r.Resolution, r.Levels)
}

// Load opens, decodes and closes a single record file.
func Load(path string) (*Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open record %s", path)
	}
	defer f.Close()

	rec := &Record{}
	if err := gob.NewDecoder(f).Decode(rec); err != nil {
		return nil, errors.Wrapf(err, "failed to decode record %s", path)
	}
	if rec.Resolution <= 0 || len(rec.Levels) != rec.Resolution*rec.Resolution {
		return nil, errors.Wrapf(rabani.ErrPrecondition,
			"record %s: %d levels for resolution %d", path, len(rec.Levels), rec.Resolution)
	}
	return rec, nil
}

// Save writes rec to path, replacing any existing file.
func Save(path string, rec *Record) error {
	if rec.Resolution <= 0 || len(rec.Levels) != rec.Resolution*rec.Resolution {
		return errors.Wrapf(rabani.ErrPrecondition,
			"record: %d levels for resolution %d", len(rec.Levels), rec.Resolution)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create record %s", path)
	}
	if err := gob.NewEncoder(f).Encode(rec); err != nil {
		f.Close()
		return errors.Wrapf(err, "failed to encode record %s", path)
	}
	return errors.Wrapf(f.Close(), "failed to close record %s", path)
}

// List returns the sorted paths of the regular files directly inside dir.
// The directory is expected to hold nothing but records.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list %s", dir)
	}
	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	slices.Sort(paths)
	return paths, nil
}
