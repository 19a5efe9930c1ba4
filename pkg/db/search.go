package db

import (
	"bytes"
	"fmt"
)

// Record is a key/value pair returned by Range.
type Record struct {
	Key   []byte
	Value []byte
}

// SearchCallback receives records in key order. Returning an error stops the
// search and the error is handed back to the caller.
type SearchCallback func(Record) error

// SearchRange walks records with key >= from, stopping after limit records
// when limit is positive.
func SearchRange(dao DAO, from []byte, limit int, callback SearchCallback) (err error) {
	iter, err := dao.Scan(from)
	if err != nil {
		return fmt.Errorf("failed to open scan: %w", err)
	}
	defer func() {
		if cerr := iter.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close scan: %w", cerr)
		}
	}()

	count := 0
	for ; iter.Valid() && (limit <= 0 || count < limit); iter.Next() {
		if err := callback(Record{Key: iter.Key(), Value: iter.Value()}); err != nil {
			return err
		}
		count++
	}

	return iter.Err()
}

// Get is a point read expressed as a scan starting at key.
func Get(dao DAO, key []byte) ([]byte, bool, error) {
	var (
		value []byte
		found bool
	)
	err := SearchRange(dao, key, 1, func(r Record) error {
		if bytes.Equal(r.Key, key) {
			value, found = r.Value, true
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return value, found, nil
}
