package persistence

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"

	"lsmkv/pkg/dberrors"
	"lsmkv/pkg/iterator"
	"lsmkv/pkg/row"
	"lsmkv/pkg/table"
)

var _ table.Table = (*Segment)(nil)

const (
	offsetSize = 8
	footerSize = 8
)

// Segment is an immutable sorted run of rows backed by a read-only mapping
// of its file.
//
// File layout, big-endian:
//
//	rows    | int32 keyLen | key | int64 ts | [int64 valLen | val] |  (value part only when ts >= 0)
//	offsets | int64 x rowCount, relative to the start of the row region
//	footer  | int64 rowCount
//
// Rows are decoded lazily. The mapping is reference counted: the segment owns
// one reference and every open iterator holds another.
type Segment struct {
	path   string
	serial uint64

	data    []byte
	rows    []byte
	offsets []byte
	count   int
	size    int64

	refs   atomic.Int64
	closed atomic.Bool
}

// OpenSegment maps the file at path read-only. Only the footer is validated;
// row bytes are checked when they are decoded.
func OpenSegment(path string, serial uint64) (*Segment, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open segment file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			slog.Warn("failed to close segment file", "path", path, "error", cerr)
		}
	}()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat segment file: %w", err)
	}
	size := info.Size()
	if size < footerSize {
		return nil, fmt.Errorf("segment %s is %d bytes: %w", path, size, dberrors.ErrCorruptedSegment)
	}

	data, err := mapFile(file, int(size))
	if err != nil {
		return nil, fmt.Errorf("failed to map segment file: %w", err)
	}

	count := int64(binary.BigEndian.Uint64(data[size-footerSize:]))
	if count < 0 || count > (size-footerSize)/offsetSize {
		if uerr := unmapFile(data); uerr != nil {
			slog.Warn("failed to unmap segment after footer check", "path", path, "error", uerr)
		}
		return nil, fmt.Errorf("segment %s declares %d rows: %w", path, count, dberrors.ErrCorruptedSegment)
	}

	rowsEnd := size - footerSize - count*offsetSize
	s := &Segment{
		path:    path,
		serial:  serial,
		data:    data,
		rows:    data[:rowsEnd],
		offsets: data[rowsEnd : size-footerSize],
		count:   int(count),
		size:    size,
	}
	s.refs.Store(1)
	return s, nil
}

func (s *Segment) Path() string { return s.path }

func (s *Segment) Serial() uint64 { return s.serial }

// Rows is the number of rows stored, tombstones included.
func (s *Segment) Rows() int { return s.count }

// SizeInBytes is the file length.
func (s *Segment) SizeInBytes() int64 { return s.size }

// Origin is the serial number of the segment.
func (s *Segment) Origin() uint64 { return s.serial }

func (s *Segment) Upsert([]byte, []byte) error {
	return fmt.Errorf("upsert into segment %d: %w", s.serial, dberrors.ErrUnsupportedOperation)
}

func (s *Segment) Remove([]byte) error {
	return fmt.Errorf("remove from segment %d: %w", s.serial, dberrors.ErrUnsupportedOperation)
}

// IteratorFrom positions a lazy iterator on the first row with key >= from.
// The iterator keeps the mapping alive until it is closed.
func (s *Segment) IteratorFrom(from []byte) (iterator.Iterator, error) {
	if !s.acquire() {
		return nil, fmt.Errorf("segment %d: %w", s.serial, dberrors.ErrClosed)
	}

	pos, err := s.position(from)
	if err != nil {
		s.release()
		return nil, err
	}

	it := &segmentIterator{seg: s, idx: pos}
	it.load()
	return it, nil
}

// Close drops the owner reference. The mapping goes away once every iterator
// derived from the segment is closed as well.
func (s *Segment) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return fmt.Errorf("segment %d: %w", s.serial, dberrors.ErrClosed)
	}
	return s.release()
}

func (s *Segment) acquire() bool {
	for {
		n := s.refs.Load()
		if n <= 0 {
			return false
		}
		if s.refs.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

func (s *Segment) release() error {
	if s.refs.Add(-1) != 0 {
		return nil
	}
	data := s.data
	s.data, s.rows, s.offsets = nil, nil, nil
	if err := unmapFile(data); err != nil {
		return fmt.Errorf("failed to unmap segment %s: %w", s.path, err)
	}
	return nil
}

// position returns the index of the first row whose key is >= key, or the
// row count when every key is smaller.
func (s *Segment) position(key []byte) (int, error) {
	lo, hi := 0, s.count
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		k, err := s.keyAt(mid)
		if err != nil {
			return 0, err
		}
		if bytes.Compare(k, key) < 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo, nil
}

func (s *Segment) bounds(i int) ([]byte, error) {
	start := int64(binary.BigEndian.Uint64(s.offsets[i*offsetSize:]))
	end := int64(len(s.rows))
	if i+1 < s.count {
		end = int64(binary.BigEndian.Uint64(s.offsets[(i+1)*offsetSize:]))
	}
	if start < 0 || start > end || end > int64(len(s.rows)) {
		return nil, s.corrupted(i, "row offsets out of range")
	}
	return s.rows[start:end:end], nil
}

func (s *Segment) keyAt(i int) ([]byte, error) {
	b, err := s.bounds(i)
	if err != nil {
		return nil, err
	}
	return s.decodeKey(i, b)
}

func (s *Segment) decodeKey(i int, b []byte) ([]byte, error) {
	if len(b) < row.KeyLenSize {
		return nil, s.corrupted(i, "truncated key length")
	}
	keyLen := int64(int32(binary.BigEndian.Uint32(b)))
	end := row.KeyLenSize + keyLen
	if keyLen < 0 || end > int64(len(b)) {
		return nil, s.corrupted(i, "key out of range")
	}
	return b[row.KeyLenSize:end:end], nil
}

func (s *Segment) rowAt(i int) (row.Row, error) {
	b, err := s.bounds(i)
	if err != nil {
		return row.Row{}, err
	}
	key, err := s.decodeKey(i, b)
	if err != nil {
		return row.Row{}, err
	}

	p := row.KeyLenSize + len(key)
	if p+row.TimestampSize > len(b) {
		return row.Row{}, s.corrupted(i, "truncated timestamp")
	}
	ts := int64(binary.BigEndian.Uint64(b[p:]))
	p += row.TimestampSize

	r := row.Row{Key: key, Value: row.Value{Timestamp: ts}, Origin: s.serial}
	if ts < 0 {
		return r, nil
	}

	if p+row.ValueLenSize > len(b) {
		return row.Row{}, s.corrupted(i, "truncated value length")
	}
	valLen := int64(binary.BigEndian.Uint64(b[p:]))
	p += row.ValueLenSize
	if valLen < 0 || valLen > int64(len(b)-p) {
		return row.Row{}, s.corrupted(i, "value out of range")
	}
	end := p + int(valLen)
	r.Value.Data = b[p:end:end]
	return r, nil
}

func (s *Segment) corrupted(i int, reason string) error {
	return fmt.Errorf("segment %s row %d: %s: %w", s.path, i, reason, dberrors.ErrCorruptedSegment)
}

type segmentIterator struct {
	seg      *Segment
	idx      int
	cur      row.Row
	err      error
	released bool
}

func (it *segmentIterator) load() {
	if it.idx >= it.seg.count {
		it.cur = row.Row{}
		return
	}
	it.cur, it.err = it.seg.rowAt(it.idx)
}

func (it *segmentIterator) Valid() bool {
	return !it.released && it.err == nil && it.idx < it.seg.count
}

func (it *segmentIterator) Next() {
	if !it.Valid() {
		return
	}
	it.idx++
	it.load()
}

// Row points into the mapping and stays readable until Close.
func (it *segmentIterator) Row() row.Row { return it.cur }

func (it *segmentIterator) Err() error { return it.err }

func (it *segmentIterator) Close() error {
	if it.released {
		return nil
	}
	it.released = true
	it.cur = row.Row{}
	return it.seg.release()
}
