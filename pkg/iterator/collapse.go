package iterator

import (
	"bytes"

	"lsmkv/pkg/row"
)

type collapseIterator struct {
	src Iterator
}

// Collapse keeps the first row of every run of rows sharing a key. Over a
// merged sequence that is the freshest version of each key.
func Collapse(src Iterator) Iterator {
	return &collapseIterator{src: src}
}

func (c *collapseIterator) Valid() bool { return c.src.Valid() }

func (c *collapseIterator) Next() {
	if !c.src.Valid() {
		return
	}
	last := c.src.Row().Key
	c.src.Next()
	for c.src.Valid() && bytes.Equal(c.src.Row().Key, last) {
		c.src.Next()
	}
}

func (c *collapseIterator) Row() row.Row { return c.src.Row() }

func (c *collapseIterator) Err() error { return c.src.Err() }

func (c *collapseIterator) Close() error { return c.src.Close() }

type filterIterator struct {
	src  Iterator
	keep func(row.Row) bool
}

// Filter yields only the rows of src for which keep returns true.
func Filter(src Iterator, keep func(row.Row) bool) Iterator {
	f := &filterIterator{src: src, keep: keep}
	f.skip()
	return f
}

// SkipTombstones drops deleted rows.
func SkipTombstones(src Iterator) Iterator {
	return Filter(src, func(r row.Row) bool { return !r.IsTombstone() })
}

func (f *filterIterator) skip() {
	for f.src.Valid() && !f.keep(f.src.Row()) {
		f.src.Next()
	}
}

func (f *filterIterator) Valid() bool { return f.src.Valid() }

func (f *filterIterator) Next() {
	if !f.src.Valid() {
		return
	}
	f.src.Next()
	f.skip()
}

func (f *filterIterator) Row() row.Row { return f.src.Row() }

func (f *filterIterator) Err() error { return f.src.Err() }

func (f *filterIterator) Close() error { return f.src.Close() }
