package store

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"lsmkv/pkg/db"
	"lsmkv/pkg/reference"
)

// TestModelAgainstReference replays random operations on the engine and on
// the in-memory baseline and compares their full scans.
func TestModelAgainstReference(t *testing.T) {
	dir := t.TempDir()
	rnd := rand.New(rand.NewSource(42))

	tp := newMockTime()
	store := newTestStoreWithTime(t, dir, 256, tp)
	model := reference.New()
	defer model.Close()

	const (
		ops  = 2_000
		keys = 64
	)
	for i := 0; i < ops; i++ {
		key := []byte(fmt.Sprintf("key-%02d", rnd.Intn(keys)))

		switch p := rnd.Intn(100); {
		case p < 60:
			val := []byte(fmt.Sprintf("val-%d", i))
			if err := store.Upsert(key, val); err != nil {
				t.Fatalf("Upsert failed: %v", err)
			}
			_ = model.Upsert(key, val)
		case p < 90:
			if err := store.Remove(key); err != nil {
				t.Fatalf("Remove failed: %v", err)
			}
			_ = model.Remove(key)
		case p < 98:
			from := fmt.Sprintf("key-%02d", rnd.Intn(keys))
			if got, want := scanAll(t, store, from), scanAll(t, model, from); !equal(got, want) {
				t.Fatalf("op %d: scan from %s diverged\nengine: %v\nmodel:  %v", i, from, got, want)
			}
		default:
			if err := store.Close(); err != nil {
				t.Fatalf("Close failed: %v", err)
			}
			store = newTestStoreWithTime(t, dir, 256, tp)
		}
	}

	if got, want := scanAll(t, store, ""), scanAll(t, model, ""); !equal(got, want) {
		t.Fatalf("final scan diverged\nengine: %v\nmodel:  %v", got, want)
	}
	if store.Stats().Segments < 2 {
		t.Fatal("expected the workload to produce several segments")
	}
	_ = store.Close()
}

func TestDataPersistence(t *testing.T) {
	dir := t.TempDir()

	store := newTestStore(t, dir, 512)
	for i := 0; i < 100; i++ {
		if err := store.PutString(fmt.Sprintf("key%03d", i), fmt.Sprintf("value%d", i)); err != nil {
			t.Fatalf("PutString failed: %v", err)
		}
	}
	for i := 0; i < 100; i += 3 {
		if err := store.Delete(fmt.Sprintf("key%03d", i)); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	store = newTestStore(t, dir, 512)
	defer store.Close()
	for i := 0; i < 100; i++ {
		value, found, err := store.GetString(fmt.Sprintf("key%03d", i))
		if err != nil {
			t.Fatalf("GetString failed: %v", err)
		}
		if i%3 == 0 {
			if found {
				t.Fatalf("key%03d must stay deleted after restart", i)
			}
			continue
		}
		if !found || value != fmt.Sprintf("value%d", i) {
			t.Fatalf("key%03d: expected value%d, got %q (found=%v)", i, i, value, found)
		}
	}
}

func TestScanIsolation(t *testing.T) {
	store := newTestStore(t, t.TempDir(), 1<<20)

	_ = store.PutString("a", "1")
	_ = store.PutString("b", "2")
	if err := store.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	_ = store.PutString("c", "3")

	iter, err := store.Scan(nil)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	_ = store.PutString("a", "changed")
	_ = store.PutString("d", "4")
	if err := store.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// segments stay mapped until the iterator is closed
	var got []string
	for ; iter.Valid(); iter.Next() {
		got = append(got, string(iter.Key())+"="+string(iter.Value()))
	}
	if err := iter.Err(); err != nil {
		t.Fatalf("iteration failed: %v", err)
	}
	if err := iter.Close(); err != nil {
		t.Fatalf("iterator Close failed: %v", err)
	}
	if !equal(got, []string{"a=1", "b=2", "c=3"}) {
		t.Fatalf("scan must reflect the store at call time, got %v", got)
	}
}

func TestConcurrentConsistency(t *testing.T) {
	store := newTestStore(t, t.TempDir(), 2_048)
	defer store.Close()

	const (
		writers   = 4
		perWriter = 300
		readers   = 4
	)

	var writersWG, readersWG sync.WaitGroup
	errs := make(chan error, writers+readers)

	for w := 0; w < writers; w++ {
		writersWG.Add(1)
		go func(w int) {
			defer writersWG.Done()
			for i := 0; i < perWriter; i++ {
				key := fmt.Sprintf("w%d-%04d", w, i)
				if err := store.PutString(key, key); err != nil {
					errs <- err
					return
				}
				if i%5 == 0 {
					if err := store.Delete(key); err != nil {
						errs <- err
						return
					}
				}
			}
		}(w)
	}

	done := make(chan struct{})
	for r := 0; r < readers; r++ {
		readersWG.Add(1)
		go func() {
			defer readersWG.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				var prev string
				err := db.SearchRange(store, nil, 0, func(rec db.Record) error {
					k := string(rec.Key)
					if k <= prev {
						return fmt.Errorf("keys out of order: %q after %q", k, prev)
					}
					if string(rec.Value) != k {
						return fmt.Errorf("key %q has value %q", k, rec.Value)
					}
					prev = k
					return nil
				})
				if err != nil {
					errs <- err
					return
				}
			}
		}()
	}

	writersWG.Wait()
	close(done)
	readersWG.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent operation failed: %v", err)
	}

	got := scanAll(t, store, "")
	if want := writers * perWriter * 4 / 5; len(got) != want {
		t.Fatalf("expected %d live keys, got %d", want, len(got))
	}
	if store.Stats().Segments == 0 {
		t.Fatal("expected concurrent writes to trigger flushes")
	}
}
