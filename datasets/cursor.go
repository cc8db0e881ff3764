package datasets

import (
	"math/rand/v2"
	"slices"

	"github.com/Noofbiz/rabani"
	"github.com/Noofbiz/rabani/records"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Cursor tracks the scan position over a record directory.
//
// The directory is listed once, at construction; the resulting path list is
// the only view of the directory the cursor ever uses. With a shuffle source
// every rewind draws a new permutation of the list, otherwise records are
// visited in sorted path order.
type Cursor struct {
	dir     string
	paths   []string
	order   []int
	pos     int
	batches int
	shuffle *rand.Rand

	saved *cursorMark
}

// cursorMark is the scan state at the start of a fetch. order is only copied
// if the fetch reshuffles.
type cursorMark struct {
	pos   int
	order []int
}

// NewCursor lists dir and returns a cursor positioned at its first record.
// shuffle may be nil.
func NewCursor(dir string, shuffle *rand.Rand) (*Cursor, error) {
	paths, err := records.List(dir)
	if err != nil {
		return nil, err
	}
	c := &Cursor{
		dir:     dir,
		paths:   paths,
		order:   make([]int, len(paths)),
		shuffle: shuffle,
	}
	for i := range c.order {
		c.order[i] = i
	}
	c.Reset()
	return c, nil
}

// Len returns the number of records listed at construction.
func (c *Cursor) Len() int { return len(c.paths) }

// Batches returns the batch counter.
func (c *Cursor) Batches() int { return c.batches }

// Position returns how many records have been consumed since the last rewind.
func (c *Cursor) Position() int { return c.pos }

// Next returns the path of the next record. Running past the end rescans the
// directory list from the start (reshuffling if enabled) without touching the
// batch counter.
func (c *Cursor) Next() (string, error) {
	if len(c.paths) == 0 {
		return "", errors.Wrapf(rabani.ErrConfiguration, "record directory %s is empty", c.dir)
	}
	if c.pos >= len(c.order) {
		klog.V(1).Infof("cursor over %s exhausted after %d records, rescanning", c.dir, c.pos)
		c.rewind()
	}
	path := c.paths[c.order[c.pos]]
	c.pos++
	return path, nil
}

// Reset restarts the scan and zeroes the batch counter. It is called at epoch
// boundaries and when a validation pass wraps around.
func (c *Cursor) Reset() {
	c.saved = nil
	c.rewind()
	c.batches = 0
}

func (c *Cursor) advanceBatch() { c.batches++ }

// mark records the scan state so a failed fetch can be undone with rollback.
func (c *Cursor) mark() { c.saved = &cursorMark{pos: c.pos} }

// rollback restores the state recorded by mark.
func (c *Cursor) rollback() {
	if c.saved == nil {
		return
	}
	if c.saved.order != nil {
		c.order = c.saved.order
	}
	c.pos = c.saved.pos
	c.saved = nil
}

// commit drops the state recorded by mark.
func (c *Cursor) commit() { c.saved = nil }

func (c *Cursor) rewind() {
	if c.saved != nil && c.saved.order == nil && c.shuffle != nil {
		c.saved.order = slices.Clone(c.order)
	}
	c.pos = 0
	if c.shuffle != nil {
		c.shuffle.Shuffle(len(c.order), func(i, j int) {
			c.order[i], c.order[j] = c.order[j], c.order[i]
		})
	}
}
