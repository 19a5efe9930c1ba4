// Package db holds the public key-value contract implemented by the LSM
// engine and the in-memory baseline.
package db

// Iterator yields live key/value pairs in ascending key order. It starts on
// its first record, is forward-only and must be closed.
//
// Key and Value return copies that stay valid after Close.
type Iterator interface {
	Valid() bool
	Next()
	Key() []byte
	Value() []byte
	Err() error
	Close() error
}

// DAO is the key-value API.
type DAO interface {
	// Scan iterates over live records with key >= from.
	Scan(from []byte) (Iterator, error)
	Upsert(key, value []byte) error
	Remove(key []byte) error
	Close() error
}
