package row

import (
	"bytes"
	"math"
)

// BufferOrigin is the origin of rows held by the write buffer. It is larger
// than any segment serial, so the buffer wins ties against every segment.
const BufferOrigin uint64 = math.MaxUint64

// Encoded field widths of a row inside a segment file.
const (
	KeyLenSize    = 4
	TimestampSize = 8
	ValueLenSize  = 8
)

// Row binds a key to a value and records which source produced it.
type Row struct {
	Key    []byte
	Value  Value
	Origin uint64
}

func (r Row) IsTombstone() bool {
	return r.Value.IsTombstone()
}

// EncodedSize is the number of bytes the row occupies in a segment file.
func (r Row) EncodedSize() int64 {
	return EncodedSize(r.Key, r.Value.Data, r.Value.IsTombstone())
}

// EncodedSize computes the on-disk size of a row with the given key and
// payload. Tombstones carry no value-length field and no payload.
func EncodedSize(key, data []byte, tombstone bool) int64 {
	size := int64(KeyLenSize + len(key) + TimestampSize)
	if !tombstone {
		size += int64(ValueLenSize + len(data))
	}
	return size
}

// Compare is the total order used by the merge: key ascending, then value
// time descending, then origin descending.
func Compare(a, b Row) int {
	if c := bytes.Compare(a.Key, b.Key); c != 0 {
		return c
	}
	if c := a.Value.Compare(b.Value); c != 0 {
		return c
	}
	switch {
	case a.Origin > b.Origin:
		return -1
	case a.Origin < b.Origin:
		return 1
	}
	return 0
}

// Less reports whether a sorts before b under Compare.
func Less(a, b Row) bool {
	return Compare(a, b) < 0
}
