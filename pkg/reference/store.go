// Package reference is a map-backed key-value store with no persistence.
// It serves as a test oracle for the LSM engine and as the CLI's memory
// backend.
package reference

import (
	"bytes"
	"fmt"
	"sync"

	"lsmkv/pkg/db"
	"lsmkv/pkg/dberrors"

	"github.com/huandu/skiplist"
)

func compareKeys(a, b interface{}) int {
	return bytes.Compare(a.([]byte), b.([]byte))
}

type Store struct {
	mu     sync.RWMutex
	list   *skiplist.SkipList
	closed bool
}

var _ db.DAO = (*Store)(nil)

func New() *Store {
	return &Store{
		list: skiplist.New(skiplist.GreaterThanFunc(compareKeys)),
	}
}

func (s *Store) Upsert(key, value []byte) error {
	if key == nil {
		return fmt.Errorf("upsert: nil key: %w", dberrors.ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return dberrors.ErrClosed
	}
	s.list.Set(bytes.Clone(key), append([]byte{}, value...))
	return nil
}

func (s *Store) Remove(key []byte) error {
	if key == nil {
		return fmt.Errorf("remove: nil key: %w", dberrors.ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return dberrors.ErrClosed
	}
	s.list.Remove(key)
	return nil
}

// Scan copies the tail of the map starting at from.
func (s *Store) Scan(from []byte) (db.Iterator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, dberrors.ErrClosed
	}

	el := s.list.Front()
	if len(from) > 0 {
		el = s.list.Find(from)
	}

	var records []db.Record
	for ; el != nil; el = el.Next() {
		records = append(records, db.Record{
			Key:   el.Key().([]byte),
			Value: el.Value.([]byte),
		})
	}
	return &recordIterator{records: records}, nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.list.Len()
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return dberrors.ErrClosed
	}
	s.closed = true
	s.list.Init()
	return nil
}

type recordIterator struct {
	records []db.Record
	pos     int
}

func (it *recordIterator) Valid() bool { return it.pos < len(it.records) }

func (it *recordIterator) Next() {
	if it.Valid() {
		it.pos++
	}
}

func (it *recordIterator) Key() []byte {
	if !it.Valid() {
		return nil
	}
	return bytes.Clone(it.records[it.pos].Key)
}

func (it *recordIterator) Value() []byte {
	if !it.Valid() {
		return nil
	}
	return append([]byte{}, it.records[it.pos].Value...)
}

func (it *recordIterator) Err() error { return nil }

func (it *recordIterator) Close() error {
	it.records = nil
	return nil
}
