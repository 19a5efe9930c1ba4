// Package table defines the sorted row source shared by the write buffer and
// on-disk segments.
package table

import "lsmkv/pkg/iterator"

// Table is a sorted collection of rows. Each key appears at most once.
type Table interface {
	// IteratorFrom returns rows with key >= from in key order. A nil or empty
	// from starts at the smallest key.
	IteratorFrom(from []byte) (iterator.Iterator, error)
	// Upsert stores a live value for key.
	Upsert(key, value []byte) error
	// Remove records a tombstone for key.
	Remove(key []byte) error
	// SizeInBytes reports the serialized footprint of the table.
	SizeInBytes() int64
	// Origin orders tables by recency. Larger is fresher.
	Origin() uint64
}

// Bounded is implemented by tables whose IteratorFrom materializes rows and
// can stop after limit of them.
type Bounded interface {
	IteratorFromN(from []byte, limit int) (iterator.Iterator, error)
}
