package memtable

import (
	"bytes"

	"lsmkv/pkg/row"
)

type sortedSet struct {
	*concurrentSet
}

// sorted copies up to limit rows with key >= from in ascending key order.
// A non-positive limit copies the whole tail.
func (mt *Memtable) sorted(from []byte, limit int) []row.Row {
	s := sortedSet{mt.underlying.Load()}
	return s.From(from, limit)
}

// From walks the set from its first key: skipped keys cost time but no
// allocation.
func (s sortedSet) From(from []byte, limit int) []row.Row {
	var result []row.Row
	if limit > 0 {
		result = make([]row.Row, 0, limit)
	}
	s.Range(func(key []byte, value row.Row) bool {
		if len(from) > 0 && bytes.Compare(key, from) < 0 {
			return true
		}
		result = append(result, value)
		return limit <= 0 || len(result) < limit
	})
	return result
}
