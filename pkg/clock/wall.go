package clock

import "time"

// TimeProvider is the source of wall-clock time for value timestamps.
type TimeProvider interface {
	Now() time.Time
}

type systemTime struct{}

func (systemTime) Now() time.Time {
	return time.Now()
}

// System returns a TimeProvider backed by time.Now.
func System() TimeProvider {
	return systemTime{}
}

// Millis converts the provider's current time to Unix milliseconds.
func Millis(tp TimeProvider) int64 {
	return tp.Now().UnixMilli()
}
