package clock

import "sync/atomic"

// AtomicClock hands out monotonically increasing serial numbers.
// Val reports the serial the next call to Next will return.
type AtomicClock struct {
	atomic.Uint64
}

func NewAtomic(init uint64) *AtomicClock {
	var ac AtomicClock
	ac.Set(init)
	return &ac
}

func (ac *AtomicClock) Val() uint64 {
	return ac.Load()
}

// Next returns the current serial and advances the clock.
func (ac *AtomicClock) Next() uint64 {
	return ac.Add(1) - 1
}

func (ac *AtomicClock) Set(t uint64) {
	ac.Store(t)
}
