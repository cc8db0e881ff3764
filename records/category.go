package records

import (
	"strconv"
	"strings"

	"github.com/Noofbiz/rabani"
	"github.com/pkg/errors"
)

// Category is a coarse morphology label. It is assigned either by the
// simulation (ground truth) or by the topological heuristic; the two may
// disagree and are kept side by side.
type Category int

const (
	Liquid Category = iota
	Hole
	Cellular
	Labyrinth
	Island
	None
)

var categoryNames = [...]string{"liquid", "hole", "cellular", "labyrinth", "island", "none"}

// DefaultCategories is the category list the classifiers are trained on.
var DefaultCategories = []Category{Liquid, Hole, Cellular, Labyrinth, Island}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "Category(" + strconv.Itoa(int(c)) + ")"
	}
	return categoryNames[c]
}

// ParseCategory maps a stored category name to its Category. Unknown names
// fail with rabani.ErrLookup.
func ParseCategory(name string) (Category, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	for i, n := range categoryNames {
		if n == name {
			return Category(i), nil
		}
	}
	return None, errors.Wrapf(rabani.ErrLookup, "unknown category %q", name)
}

// ParseCategories parses a list of names, e.g. from a comma separated flag.
func ParseCategories(names []string) ([]Category, error) {
	cats := make([]Category, 0, len(names))
	for _, n := range names {
		c, err := ParseCategory(n)
		if err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, nil
}

// IndexOf returns the position of c in cats, or an rabani.ErrLookup error.
func IndexOf(cats []Category, c Category) (int, error) {
	for i, v := range cats {
		if v == c {
			return i, nil
		}
	}
	return -1, errors.Wrapf(rabani.ErrLookup, "category %q not in %v", c, cats)
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	if c < 0 || int(c) >= len(categoryNames) {
		return nil, errors.Wrapf(rabani.ErrLookup, "invalid category %d", int(c))
	}
	return []byte(categoryNames[c]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
