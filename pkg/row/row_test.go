package row

import (
	"sort"
	"testing"
)

func TestValue_Tombstone(t *testing.T) {
	v := Tombstone(100)
	if !v.IsTombstone() {
		t.Fatal("expected tombstone")
	}
	if v.Timestamp != -100 {
		t.Fatalf("expected raw timestamp -100, got %d", v.Timestamp)
	}
	if v.Time() != 100 {
		t.Fatalf("expected deletion time 100, got %d", v.Time())
	}
	if len(v.Data) != 0 {
		t.Fatalf("expected empty payload, got %q", v.Data)
	}

	live := Live(0, nil)
	if live.IsTombstone() {
		t.Fatal("zero timestamp must be live")
	}
}

func TestValue_CompareMostRecentFirst(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want int
	}{
		{"newer live first", Live(200, nil), Live(100, nil), -1},
		{"older live second", Live(100, nil), Live(200, nil), 1},
		{"tombstone magnitude", Tombstone(300), Live(200, nil), -1},
		{"same time", Tombstone(100), Live(100, []byte("x")), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Compare(tt.b); got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestEncodedSize(t *testing.T) {
	tests := []struct {
		name      string
		key, data []byte
		tombstone bool
		want      int64
	}{
		{"live", []byte("key"), []byte("value"), false, 4 + 3 + 8 + 8 + 5},
		{"live empty payload", []byte("key"), nil, false, 4 + 3 + 8 + 8},
		{"tombstone", []byte("key"), nil, true, 4 + 3 + 8},
		{"empty key", nil, []byte("v"), false, 4 + 8 + 8 + 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EncodedSize(tt.key, tt.data, tt.tombstone); got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}

	r := Row{Key: []byte("k"), Value: Tombstone(5)}
	if got := r.EncodedSize(); got != 4+1+8 {
		t.Fatalf("expected tombstone row size 13, got %d", got)
	}
}

func TestCompare_TotalOrder(t *testing.T) {
	rows := []Row{
		{Key: []byte("b"), Value: Live(100, []byte("b-seg0")), Origin: 0},
		{Key: []byte("a"), Value: Live(100, []byte("a-seg1")), Origin: 1},
		{Key: []byte("b"), Value: Live(100, []byte("b-seg1")), Origin: 1},
		{Key: []byte("b"), Value: Live(200, []byte("b-new")), Origin: 0},
		{Key: []byte("b"), Value: Tombstone(100), Origin: BufferOrigin},
	}
	sort.SliceStable(rows, func(i, j int) bool { return Less(rows[i], rows[j]) })

	want := []string{"a-seg1", "b-new", "", "b-seg1", "b-seg0"}
	for i, r := range rows {
		if string(r.Value.Data) != want[i] {
			t.Fatalf("position %d: expected %q, got %q", i, want[i], r.Value.Data)
		}
	}
}
