// Package datasets turns a directory of labeled simulation records into
// fixed-size batches for model training and evaluation.
//
// A Generator walks the directory through a Cursor, resizes every record to a
// canonical resolution, builds one-hot labels, and (in training mode) runs the
// configured augmentations before optionally forcing the images down to two
// levels. Generators implement gomlx's train.Dataset, so they can be handed to
// a gomlx training loop directly, and also expose Next for plain Go callers.
//
// A single Generator is not safe for concurrent use. Run one per worker.
package datasets

import (
	"strings"

	"github.com/Noofbiz/rabani"
	"github.com/Noofbiz/rabani/records"
	"github.com/pkg/errors"
)

// Mode selects what a Generator yields.
type Mode int

const (
	// Classifier yields (image batch, one-hot labels).
	Classifier Mode = iota + 1
	// Autoencoder yields (speckle-corrupted batch, clean batch).
	Autoencoder
)

// ParseMode resolves a mode name. Anything other than "classifier" or
// "autoencoder" fails with rabani.ErrConfiguration.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "classifier":
		return Classifier, nil
	case "autoencoder":
		return Autoencoder, nil
	}
	return 0, errors.Wrapf(rabani.ErrConfiguration, "unknown generator mode %q", s)
}

func (m Mode) String() string {
	switch m {
	case Classifier:
		return "classifier"
	case Autoencoder:
		return "autoencoder"
	}
	return "invalid"
}

// MarshalText implements encoding.TextMarshaler so modes read naturally in
// JSON configuration files.
func (m Mode) MarshalText() ([]byte, error) {
	if m != Classifier && m != Autoencoder {
		return nil, errors.Wrapf(rabani.ErrConfiguration, "invalid generator mode %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Config holds the generator configuration.
type Config struct {
	// Dir is the record directory. It must contain only records.
	Dir string `json:"dir"`

	// Mode is Classifier or Autoencoder.
	Mode Mode `json:"mode"`

	// BatchSize is the number of records returned by every fetch.
	BatchSize int `json:"batch_size"`

	// Categories is the ordered category list used for one-hot labels.
	// Defaults to records.DefaultCategories.
	Categories []records.Category `json:"categories"`

	// Parameters names simulation parameters (such as "kT" or "mu") copied
	// from every record into Batch.Params. A record missing one fails the
	// fetch with rabani.ErrLookup.
	Parameters []string `json:"parameters,omitempty"`

	// Train enables augmentation and shuffled directory order. Validation
	// generators (Train == false) rewind after Len batches and deliver every
	// record exactly once per pass.
	Train bool `json:"train"`

	// ImageSize is the canonical resolution. Zero reads it from the first record.
	ImageSize int `json:"image_size"`

	// Augmentations, applied only when Train is set.
	VerticalFlip    bool    `json:"vertical_flip"`
	HorizontalFlip  bool    `json:"horizontal_flip"`
	CircShift       bool    `json:"circshift"`
	RandomiseLevels bool    `json:"randomise_levels"`
	Noise           float64 `json:"x_noise"`       // mean speckle probability, 0 disables
	NoiseStdDev     float64 `json:"x_noise_std"`   // default 0.002
	WeightSampleCap int     `json:"weight_sample"` // default 50000, training only

	// ForceBinarisation collapses every image to two levels and rescales it to [0,1].
	ForceBinarisation bool `json:"force_binarisation"`

	// Seed for all random draws. Zero uses a time based seed.
	Seed uint64 `json:"seed"`
}

// Autoencoder corruption settings.
const (
	autoencoderNoise       = 0.4
	autoencoderNoiseStdDev = 0.005
)

// DefaultConfig returns the configuration used for classifier training.
func DefaultConfig(dir string) Config {
	return Config{
		Dir:               dir,
		Mode:              Classifier,
		BatchSize:         128,
		Categories:        records.DefaultCategories,
		Train:             true,
		VerticalFlip:      true,
		HorizontalFlip:    true,
		CircShift:         true,
		Noise:             0.005,
		NoiseStdDev:       0.002,
		WeightSampleCap:   50000,
		ForceBinarisation: true,
	}
}

// WithDefaults validates cfg and returns it with zero values filled, as
// NewGenerator uses it.
func (cfg Config) WithDefaults() (Config, error) {
	if cfg.Mode != Classifier && cfg.Mode != Autoencoder {
		return cfg, errors.Wrapf(rabani.ErrConfiguration, "generator mode %d is neither classifier nor autoencoder", int(cfg.Mode))
	}
	if cfg.BatchSize <= 0 {
		return cfg, errors.Wrapf(rabani.ErrConfiguration, "batch size must be positive, got %d", cfg.BatchSize)
	}
	if cfg.ImageSize < 0 {
		return cfg, errors.Wrapf(rabani.ErrConfiguration, "image size must not be negative, got %d", cfg.ImageSize)
	}
	if cfg.Noise < 0 {
		return cfg, errors.Wrapf(rabani.ErrConfiguration, "speckle noise must not be negative, got %g", cfg.Noise)
	}
	if len(cfg.Categories) == 0 {
		cfg.Categories = records.DefaultCategories
	}
	if cfg.NoiseStdDev == 0 {
		cfg.NoiseStdDev = 0.002
	}
	if cfg.WeightSampleCap <= 0 {
		cfg.WeightSampleCap = 50000
	}
	return cfg, nil
}
