package store

import (
	"fmt"

	"lsmkv/pkg/clock"
	"lsmkv/pkg/dberrors"
	"lsmkv/pkg/metrics"
	"lsmkv/pkg/persistence"
)

// Options configure a Store.
type Options struct {
	// Dir holds the segment files. It is created when missing.
	Dir string
	// FlushThreshold is the buffer size in bytes at which a write first
	// flushes the buffer to a new segment.
	FlushThreshold int64
	Naming         persistence.Naming
	TimeProvider   clock.TimeProvider
	Metrics        metrics.Collector
}

func (o Options) withDefaults() Options {
	if o.Naming == (persistence.Naming{}) {
		o.Naming = persistence.DefaultNaming()
	}
	if o.TimeProvider == nil {
		o.TimeProvider = clock.System()
	}
	if o.Metrics == nil {
		o.Metrics = metrics.NewRegistry()
	}
	return o
}

func (o Options) validate() error {
	if o.Dir == "" {
		return fmt.Errorf("empty data dir: %w", dberrors.ErrInvalidArgument)
	}
	if o.FlushThreshold <= 0 {
		return fmt.Errorf("flush threshold %d: %w", o.FlushThreshold, dberrors.ErrInvalidArgument)
	}
	return nil
}
