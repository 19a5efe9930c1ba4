package store

import (
	"bytes"

	"lsmkv/pkg/iterator"
)

// recordIterator projects merged rows to key/value pairs. Row bytes may live
// in a segment mapping, so both are copied out.
type recordIterator struct {
	rows iterator.Iterator
}

func newRecordIterator(rows iterator.Iterator) *recordIterator {
	return &recordIterator{rows: rows}
}

func (it *recordIterator) Valid() bool { return it.rows.Valid() }

func (it *recordIterator) Next() { it.rows.Next() }

func (it *recordIterator) Key() []byte {
	if !it.rows.Valid() {
		return nil
	}
	return bytes.Clone(it.rows.Row().Key)
}

func (it *recordIterator) Value() []byte {
	if !it.rows.Valid() {
		return nil
	}
	return append([]byte{}, it.rows.Row().Value.Data...)
}

func (it *recordIterator) Err() error { return it.rows.Err() }

func (it *recordIterator) Close() error { return it.rows.Close() }
