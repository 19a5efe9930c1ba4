package memtable

import (
	"errors"
	"testing"
	"time"

	"lsmkv/pkg/dberrors"
	"lsmkv/pkg/iterator"
	"lsmkv/pkg/row"
)

type mockTimeProvider struct {
	now time.Time
}

func (m *mockTimeProvider) Now() time.Time { return m.now }

func newTestMemtable() (*Memtable, *mockTimeProvider) {
	tp := &mockTimeProvider{now: time.UnixMilli(1_000)}
	return New(tp), tp
}

func TestMemtable_SizeAccounting(t *testing.T) {
	t.Run("new key adds full row size", func(t *testing.T) {
		mt, _ := newTestMemtable()
		if err := mt.Upsert([]byte("key"), []byte("value")); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
		if got, want := mt.SizeInBytes(), int64(4+3+8+8+5); got != want {
			t.Fatalf("expected size %d, got %d", want, got)
		}
	})

	t.Run("overwrite adds only payload length", func(t *testing.T) {
		mt, _ := newTestMemtable()
		_ = mt.Upsert([]byte("key"), []byte("value"))
		_ = mt.Upsert([]byte("key"), []byte("ab"))
		if got, want := mt.SizeInBytes(), int64(28+2); got != want {
			t.Fatalf("expected size %d, got %d", want, got)
		}
	})

	t.Run("remove of unknown key adds tombstone size", func(t *testing.T) {
		mt, _ := newTestMemtable()
		_ = mt.Remove([]byte("key"))
		if got, want := mt.SizeInBytes(), int64(4+3+8); got != want {
			t.Fatalf("expected size %d, got %d", want, got)
		}
	})

	t.Run("remove of live key subtracts payload length", func(t *testing.T) {
		mt, _ := newTestMemtable()
		_ = mt.Upsert([]byte("key"), []byte("value"))
		_ = mt.Remove([]byte("key"))
		if got, want := mt.SizeInBytes(), int64(28-5); got != want {
			t.Fatalf("expected size %d, got %d", want, got)
		}
	})

	t.Run("remove over tombstone changes nothing", func(t *testing.T) {
		mt, _ := newTestMemtable()
		_ = mt.Remove([]byte("key"))
		before := mt.SizeInBytes()
		_ = mt.Remove([]byte("key"))
		if got := mt.SizeInBytes(); got != before {
			t.Fatalf("expected size %d, got %d", before, got)
		}
	})

	t.Run("clear resets", func(t *testing.T) {
		mt, _ := newTestMemtable()
		_ = mt.Upsert([]byte("a"), []byte("1"))
		mt.Clear()
		if mt.SizeInBytes() != 0 || !mt.Empty() {
			t.Fatalf("expected empty memtable, got size=%d len=%d", mt.SizeInBytes(), mt.Len())
		}
	})
}

func TestMemtable_Timestamps(t *testing.T) {
	mt, tp := newTestMemtable()

	_ = mt.Upsert([]byte("k"), []byte("v"))
	r, ok := mt.Get([]byte("k"))
	if !ok {
		t.Fatal("expected row for k")
	}
	if r.Value.Timestamp != 1_000 || r.Origin != row.BufferOrigin {
		t.Fatalf("unexpected row %+v", r)
	}

	tp.now = time.UnixMilli(2_000)
	_ = mt.Remove([]byte("k"))
	r, _ = mt.Get([]byte("k"))
	if !r.IsTombstone() || r.Value.Timestamp != -2_000 || len(r.Value.Data) != 0 {
		t.Fatalf("expected tombstone at -2000, got %+v", r.Value)
	}

	tp.now = time.UnixMilli(0)
	_ = mt.Remove([]byte("epoch"))
	r, _ = mt.Get([]byte("epoch"))
	if !r.IsTombstone() {
		t.Fatalf("tombstone at epoch must stay negative, got %d", r.Value.Timestamp)
	}
}

func TestMemtable_IteratorFrom(t *testing.T) {
	mt, _ := newTestMemtable()
	for _, k := range []string{"d", "b", "a", "c"} {
		if err := mt.Upsert([]byte(k), []byte("v"+k)); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}
	_ = mt.Remove([]byte("c"))

	tests := []struct {
		from string
		want []string
	}{
		{"", []string{"a", "b", "c", "d"}},
		{"b", []string{"b", "c", "d"}},
		{"bb", []string{"c", "d"}},
		{"z", nil},
	}
	for _, tt := range tests {
		t.Run("from="+tt.from, func(t *testing.T) {
			it, err := mt.IteratorFrom([]byte(tt.from))
			if err != nil {
				t.Fatalf("IteratorFrom failed: %v", err)
			}
			rows, err := iterator.Collect(it)
			if err != nil {
				t.Fatalf("Collect failed: %v", err)
			}
			if len(rows) != len(tt.want) {
				t.Fatalf("expected %d rows, got %d", len(tt.want), len(rows))
			}
			for i, r := range rows {
				if string(r.Key) != tt.want[i] {
					t.Errorf("row %d: expected %q, got %q", i, tt.want[i], r.Key)
				}
			}
		})
	}
}

func TestMemtable_IteratorFromN(t *testing.T) {
	mt, _ := newTestMemtable()
	for _, k := range []string{"a", "b", "c", "d"} {
		_ = mt.Upsert([]byte(k), []byte("v"+k))
	}

	tests := []struct {
		from  string
		limit int
		want  []string
	}{
		{"b", 1, []string{"b"}},
		{"bb", 2, []string{"c", "d"}},
		{"c", 10, []string{"c", "d"}},
		{"a", 0, []string{"a", "b", "c", "d"}},
		{"z", 1, nil},
	}
	for _, tt := range tests {
		it, err := mt.IteratorFromN([]byte(tt.from), tt.limit)
		if err != nil {
			t.Fatalf("IteratorFromN failed: %v", err)
		}
		rows, _ := iterator.Collect(it)
		if len(rows) != len(tt.want) {
			t.Fatalf("from=%q limit=%d: expected %d rows, got %d", tt.from, tt.limit, len(tt.want), len(rows))
		}
		for i, r := range rows {
			if string(r.Key) != tt.want[i] {
				t.Errorf("from=%q limit=%d row %d: expected %q, got %q", tt.from, tt.limit, i, tt.want[i], r.Key)
			}
		}
	}
}

func TestMemtable_IteratorIsSnapshot(t *testing.T) {
	mt, _ := newTestMemtable()
	_ = mt.Upsert([]byte("a"), []byte("1"))

	it, _ := mt.IteratorFrom(nil)
	_ = mt.Upsert([]byte("b"), []byte("2"))
	mt.Clear()

	rows, _ := iterator.Collect(it)
	if len(rows) != 1 || string(rows[0].Key) != "a" {
		t.Fatalf("expected snapshot with only a, got %d rows", len(rows))
	}
}

func TestMemtable_CopiesInput(t *testing.T) {
	mt, _ := newTestMemtable()
	key, val := []byte("key"), []byte("val")
	_ = mt.Upsert(key, val)
	key[0], val[0] = 'X', 'X'

	r, ok := mt.Get([]byte("key"))
	if !ok || string(r.Value.Data) != "val" {
		t.Fatalf("memtable must not alias caller buffers, got %+v", r)
	}
}

func TestMemtable_NilKey(t *testing.T) {
	mt, _ := newTestMemtable()
	if err := mt.Upsert(nil, []byte("v")); !errors.Is(err, dberrors.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if err := mt.Remove(nil); !errors.Is(err, dberrors.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}
