package iterator

import "lsmkv/pkg/row"

// Iterator walks rows in ascending row.Compare order.
//
// A freshly returned iterator is already positioned on its first row. Iterators
// are forward-only and cannot be restarted; open a new one to scan again.
type Iterator interface {
	// Valid reports whether the iterator points to a row.
	Valid() bool
	// Next advances to the following row.
	Next()
	// Row returns the current row. Only meaningful while Valid.
	Row() row.Row
	// Err returns the error that stopped the iteration, if any.
	Err() error
	// Close releases resources held by the iterator.
	Close() error
}

type sliceIterator struct {
	rows []row.Row
	pos  int
}

// NewSlice iterates over rows that are already in ascending order.
func NewSlice(rows []row.Row) Iterator {
	return &sliceIterator{rows: rows}
}

// Empty returns an iterator with no rows.
func Empty() Iterator {
	return &sliceIterator{}
}

func (it *sliceIterator) Valid() bool { return it.pos < len(it.rows) }

func (it *sliceIterator) Next() {
	if it.pos < len(it.rows) {
		it.pos++
	}
}

func (it *sliceIterator) Row() row.Row {
	if !it.Valid() {
		return row.Row{}
	}
	return it.rows[it.pos]
}

func (it *sliceIterator) Err() error { return nil }

func (it *sliceIterator) Close() error {
	it.rows = nil
	it.pos = 0
	return nil
}

// Collect drains it into a slice and closes it.
func Collect(it Iterator) ([]row.Row, error) {
	var rows []row.Row
	for ; it.Valid(); it.Next() {
		rows = append(rows, it.Row())
	}
	err := it.Err()
	if cerr := it.Close(); err == nil {
		err = cerr
	}
	return rows, err
}
