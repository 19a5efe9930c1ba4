package clock

import (
	"sync"
	"testing"
	"time"
)

func TestAtomicClock_Next(t *testing.T) {
	ac := NewAtomic(5)

	if got := ac.Next(); got != 5 {
		t.Fatalf("expected first serial 5, got %d", got)
	}
	if got := ac.Next(); got != 6 {
		t.Fatalf("expected second serial 6, got %d", got)
	}
	if got := ac.Val(); got != 7 {
		t.Fatalf("expected Val 7, got %d", got)
	}
}

func TestAtomicClock_ConcurrentNextIsUnique(t *testing.T) {
	ac := NewAtomic(0)

	const workers, perWorker = 8, 100
	var (
		mu   sync.Mutex
		seen = make(map[uint64]struct{}, workers*perWorker)
		wg   sync.WaitGroup
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				v := ac.Next()
				mu.Lock()
				seen[v] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != workers*perWorker {
		t.Fatalf("expected %d unique serials, got %d", workers*perWorker, len(seen))
	}
}

func TestMillis(t *testing.T) {
	at := time.UnixMilli(1_700_000_000_123)
	if got := Millis(fixed(at)); got != 1_700_000_000_123 {
		t.Fatalf("expected 1700000000123, got %d", got)
	}
}

type fixed time.Time

func (f fixed) Now() time.Time { return time.Time(f) }
