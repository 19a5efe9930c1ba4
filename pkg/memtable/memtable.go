package memtable

import (
	"bytes"
	"fmt"
	"sync"
	"sync/atomic"

	"lsmkv/pkg/clock"
	"lsmkv/pkg/dberrors"
	"lsmkv/pkg/iterator"
	"lsmkv/pkg/row"
	"lsmkv/pkg/table"

	"github.com/zhangyunhao116/skipmap"
)

type concurrentSet = skipmap.FuncMap[[]byte, row.Row]

var (
	_ table.Table   = (*Memtable)(nil)
	_ table.Bounded = (*Memtable)(nil)
)

func newSet() *concurrentSet {
	return skipmap.NewFunc[[]byte, row.Row](func(a, b []byte) bool {
		return bytes.Compare(a, b) < 0
	})
}

// Memtable is the in-memory write buffer. It keeps one row per key and an
// estimate of the bytes those rows would occupy once flushed.
//
// Reads are lock-free. Mutations are serialized by mu so that the size
// counter stays consistent with the map contents.
type Memtable struct {
	clock clock.TimeProvider
	size  atomic.Int64

	underlying atomic.Pointer[concurrentSet]
	mu         sync.Mutex
}

func New(tp clock.TimeProvider) *Memtable {
	if tp == nil {
		tp = clock.System()
	}
	mt := &Memtable{clock: tp}
	mt.underlying.Store(newSet())
	return mt
}

// Get returns the stored row for key, tombstones included.
func (mt *Memtable) Get(key []byte) (row.Row, bool) {
	return mt.underlying.Load().Load(key)
}

// Upsert stores a live value stamped with the current wall-clock time.
//
// A key seen for the first time adds its full encoded size. Overwriting an
// existing key only adds the length of the new payload.
func (mt *Memtable) Upsert(key, value []byte) error {
	if key == nil {
		return fmt.Errorf("upsert: nil key: %w", dberrors.ErrInvalidArgument)
	}

	mt.mu.Lock()
	defer mt.mu.Unlock()

	set := mt.underlying.Load()
	r := row.Row{
		Key:    bytes.Clone(key),
		Value:  row.Live(clock.Millis(mt.clock), cloneValue(value)),
		Origin: row.BufferOrigin,
	}

	if _, ok := set.Load(key); ok {
		mt.size.Add(int64(len(value)))
	} else {
		mt.size.Add(r.EncodedSize())
	}
	set.Store(r.Key, r)
	return nil
}

// Remove records a tombstone for key.
//
// A new key adds the tombstone's encoded size, replacing a live row subtracts
// the old payload length, and replacing a tombstone changes nothing.
func (mt *Memtable) Remove(key []byte) error {
	if key == nil {
		return fmt.Errorf("remove: nil key: %w", dberrors.ErrInvalidArgument)
	}

	mt.mu.Lock()
	defer mt.mu.Unlock()

	set := mt.underlying.Load()
	ts := clock.Millis(mt.clock)
	if ts < 1 {
		ts = 1
	}
	r := row.Row{
		Key:    bytes.Clone(key),
		Value:  row.Tombstone(ts),
		Origin: row.BufferOrigin,
	}

	prev, ok := set.Load(key)
	switch {
	case !ok:
		mt.size.Add(r.EncodedSize())
	case !prev.IsTombstone():
		mt.size.Add(-int64(len(prev.Value.Data)))
	}
	set.Store(r.Key, r)
	return nil
}

// IteratorFrom returns a snapshot of the rows with key >= from. Later
// mutations of the memtable are not visible through the returned iterator.
func (mt *Memtable) IteratorFrom(from []byte) (iterator.Iterator, error) {
	return iterator.NewSlice(mt.sorted(from, 0)), nil
}

// IteratorFromN is IteratorFrom cut to the first limit rows.
func (mt *Memtable) IteratorFromN(from []byte, limit int) (iterator.Iterator, error) {
	return iterator.NewSlice(mt.sorted(from, limit)), nil
}

// Clear drops every row and resets the size estimate.
func (mt *Memtable) Clear() {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	mt.underlying.Store(newSet())
	mt.size.Store(0)
}

// SizeInBytes is the running size estimate.
func (mt *Memtable) SizeInBytes() int64 {
	return mt.size.Load()
}

// Origin is always the freshest possible recency tag.
func (mt *Memtable) Origin() uint64 {
	return row.BufferOrigin
}

func (mt *Memtable) Len() int {
	return mt.underlying.Load().Len()
}

func (mt *Memtable) Empty() bool {
	return mt.Len() == 0
}

func cloneValue(v []byte) []byte {
	if v == nil {
		return []byte{}
	}
	return bytes.Clone(v)
}
