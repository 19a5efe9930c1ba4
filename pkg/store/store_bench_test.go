package store

import (
	"fmt"
	"testing"
)

func BenchmarkStoreWrite(b *testing.B) {
	store := newTestStore(b, b.TempDir(), 1<<20)
	defer store.Close()

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if err := store.PutString(fmt.Sprintf("key-%d", i), "value-"+fmt.Sprint(i)); err != nil {
			b.Fatalf("PutString failed: %v", err)
		}
	}
}

func BenchmarkStoreRead(b *testing.B) {
	store := newTestStore(b, b.TempDir(), 64<<10)
	defer store.Close()

	const preloaded = 10_000
	for i := 0; i < preloaded; i++ {
		if err := store.PutString(fmt.Sprintf("key-%d", i), "value-"+fmt.Sprint(i)); err != nil {
			b.Fatalf("PutString failed: %v", err)
		}
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, _, err := store.GetString(fmt.Sprintf("key-%d", i%preloaded)); err != nil {
			b.Fatalf("GetString failed: %v", err)
		}
	}
}

func BenchmarkStoreScan(b *testing.B) {
	store := newTestStore(b, b.TempDir(), 64<<10)
	defer store.Close()

	for i := 0; i < 10_000; i++ {
		if err := store.PutString(fmt.Sprintf("key-%05d", i), "value"); err != nil {
			b.Fatalf("PutString failed: %v", err)
		}
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = scanAll(b, store, "key-05000")
	}
}
