package store

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"lsmkv/pkg/db"
	"lsmkv/pkg/dberrors"
	"lsmkv/pkg/iterator"
	"lsmkv/pkg/memtable"
	"lsmkv/pkg/metrics"
	"lsmkv/pkg/persistence"
	"lsmkv/pkg/row"
	"lsmkv/pkg/table"
)

// Store is the LSM engine: one memtable in front of an append-only list of
// segments.
//
// mu guards the memtable together with the segment list. Writers hold it
// exclusively, so a flush publishes the new segment and clears the memtable
// in one step. Scan holds it shared only while it captures its sources.
type Store struct {
	opts    Options
	metrics metrics.Collector
	flusher *Flusher

	mu       sync.RWMutex
	mt       *memtable.Memtable
	segments []*persistence.Segment
	closed   bool
}

var _ db.DAO = (*Store)(nil)

// New opens every segment already present in opts.Dir and returns a store
// ready for reads and writes.
func New(opts Options) (*Store, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}

	segments, next, err := persistence.OpenDir(opts.Dir, opts.Naming)
	if err != nil {
		return nil, fmt.Errorf("failed to open data dir: %w", err)
	}

	s := &Store{
		opts:     opts,
		metrics:  opts.Metrics,
		flusher:  NewFlusher(opts.Dir, opts.Naming, next, opts.Metrics),
		mt:       memtable.New(opts.TimeProvider),
		segments: segments,
	}
	s.metrics.SetGauge("segments", nil, float64(len(segments)))

	slog.Info("store opened",
		"dir", opts.Dir,
		"segments", len(segments),
		"next_serial", next,
		"flush_threshold", opts.FlushThreshold,
	)

	return s, nil
}

// Upsert stores value under key, flushing the memtable first when the new
// row would bring it to the flush threshold.
func (s *Store) Upsert(key, value []byte) error {
	if err := checkKey("upsert", key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return dberrors.ErrClosed
	}
	if err := s.makeRoom(row.EncodedSize(key, value, false)); err != nil {
		return err
	}
	if err := s.mt.Upsert(key, value); err != nil {
		return fmt.Errorf("failed to upsert into memtable: %w", err)
	}

	s.metrics.IncCounter("upserts", nil, 1)
	return nil
}

// Remove writes a tombstone for key under the same flush rule as Upsert.
func (s *Store) Remove(key []byte) error {
	if err := checkKey("remove", key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return dberrors.ErrClosed
	}
	if err := s.makeRoom(row.EncodedSize(key, nil, true)); err != nil {
		return err
	}
	if err := s.mt.Remove(key); err != nil {
		return fmt.Errorf("failed to remove from memtable: %w", err)
	}

	s.metrics.IncCounter("removes", nil, 1)
	return nil
}

func (s *Store) PutString(key, value string) error {
	return s.Upsert([]byte(key), []byte(value))
}

func (s *Store) GetString(key string) (string, bool, error) {
	v, ok, err := s.Get([]byte(key))
	return string(v), ok, err
}

func (s *Store) Delete(key string) error {
	return s.Remove([]byte(key))
}

// Get returns the live value stored under key.
//
// The memtable holds at most one row per key, so only its first row at or
// after key is copied; segments are read lazily as in Scan.
func (s *Store) Get(key []byte) (value []byte, found bool, err error) {
	if err := checkKey("get", key); err != nil {
		return nil, false, err
	}

	sources, err := s.sources(key, 1)
	if err != nil {
		return nil, false, err
	}
	it := newRecordIterator(iterator.SkipTombstones(iterator.Collapse(iterator.Merge(sources...))))
	defer func() {
		if cerr := it.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close lookup: %w", cerr)
		}
	}()

	s.metrics.IncCounter("gets", nil, 1)
	if it.Valid() && bytes.Equal(it.Key(), key) {
		return it.Value(), true, nil
	}
	return nil, false, it.Err()
}

// Scan returns live records with key >= from in ascending key order.
//
// The iterator sees the memtable and the segments as they were when Scan was
// called and does not block writers.
func (s *Store) Scan(from []byte) (db.Iterator, error) {
	sources, err := s.sources(from, 0)
	if err != nil {
		return nil, err
	}

	s.metrics.IncCounter("scans", nil, 1)
	merged := iterator.SkipTombstones(iterator.Collapse(iterator.Merge(sources...)))
	return newRecordIterator(merged), nil
}

// sources opens every table from key from. A positive bufferLimit caps the
// rows copied out of tables that materialize their snapshot.
func (s *Store) sources(from []byte, bufferLimit int) ([]iterator.Iterator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, dberrors.ErrClosed
	}

	tables := make([]table.Table, 0, len(s.segments)+1)
	for _, seg := range s.segments {
		tables = append(tables, seg)
	}
	tables = append(tables, s.mt)

	sources := make([]iterator.Iterator, 0, len(tables))
	for _, t := range tables {
		var (
			it  iterator.Iterator
			err error
		)
		if b, ok := t.(table.Bounded); ok && bufferLimit > 0 {
			it, err = b.IteratorFromN(from, bufferLimit)
		} else {
			it, err = t.IteratorFrom(from)
		}
		if err != nil {
			closeSources(sources)
			return nil, fmt.Errorf("failed to open source %d: %w", t.Origin(), err)
		}
		sources = append(sources, it)
	}
	return sources, nil
}

// Flush writes the memtable to a new segment. An empty memtable is skipped.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return dberrors.ErrClosed
	}
	if s.mt.Empty() {
		return nil
	}
	return s.flushLocked(reasonManual)
}

// Close flushes the memtable, even when it is empty, and releases every
// segment. Any later call, Close included, returns dberrors.ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return dberrors.ErrClosed
	}
	if err := s.flushLocked(reasonClose); err != nil {
		return err
	}

	s.closed = true
	err := persistence.CloseAll(s.segments)
	s.segments = nil

	slog.Info("store closed", "dir", s.opts.Dir, "next_serial", s.flusher.NextSerial())
	if err != nil {
		return fmt.Errorf("failed to close segments: %w", err)
	}
	return nil
}

// makeRoom flushes the memtable, even an empty one, when adding incoming bytes
// would reach the threshold.
func (s *Store) makeRoom(incoming int64) error {
	if s.mt.SizeInBytes()+incoming < s.opts.FlushThreshold {
		return nil
	}
	return s.flushLocked(reasonThreshold)
}

func (s *Store) flushLocked(reason flushReason) error {
	seg, err := s.flusher.flush(s.mt, reason)
	if err != nil {
		return err
	}

	s.segments = append(s.segments, seg)
	s.mt.Clear()
	s.metrics.SetGauge("segments", nil, float64(len(s.segments)))
	return nil
}

// Stats describes the current shape of the store.
type Stats struct {
	Segments     int
	SegmentBytes int64
	BufferRows   int
	BufferBytes  int64
	NextSerial   uint64
	Metrics      metrics.Snapshot
}

func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{
		Segments:    len(s.segments),
		BufferRows:  s.mt.Len(),
		BufferBytes: s.mt.SizeInBytes(),
		NextSerial:  s.flusher.NextSerial(),
	}
	for _, seg := range s.segments {
		st.SegmentBytes += seg.SizeInBytes()
	}
	if r, ok := s.metrics.(*metrics.Registry); ok {
		st.Metrics = r.Snapshot()
	}
	return st
}

func closeSources(sources []iterator.Iterator) {
	var errs []error
	for _, it := range sources {
		if err := it.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		slog.Warn("failed to release scan sources", "error", err)
	}
}
