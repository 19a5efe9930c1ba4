package row

// Value is a versioned cell. A live value has a non-negative Timestamp.
// A tombstone has a negative Timestamp whose magnitude is the deletion time
// and carries no Data.
type Value struct {
	Timestamp int64
	Data      []byte
}

// Live returns a live value written at ts.
func Live(ts int64, data []byte) Value {
	return Value{Timestamp: ts, Data: data}
}

// Tombstone returns a deletion marker for a delete issued at ts.
func Tombstone(ts int64) Value {
	return Value{Timestamp: -ts}
}

func (v Value) IsTombstone() bool {
	return v.Timestamp < 0
}

// Time returns the write or deletion time regardless of the tombstone sign.
func (v Value) Time() int64 {
	if v.Timestamp < 0 {
		return -v.Timestamp
	}
	return v.Timestamp
}

// Compare orders values by Time descending, so the more recent value sorts first.
func (v Value) Compare(other Value) int {
	a, b := v.Time(), other.Time()
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	}
	return 0
}
