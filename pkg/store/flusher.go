package store

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"lsmkv/pkg/clock"
	"lsmkv/pkg/memtable"
	"lsmkv/pkg/metrics"
	"lsmkv/pkg/persistence"
)

type flushReason string

const (
	reasonThreshold flushReason = "threshold"
	reasonManual    flushReason = "manual"
	reasonClose     flushReason = "close"
)

// Flusher turns the contents of a memtable into a new segment file. It owns
// the serial counter so that every segment gets a unique name.
type Flusher struct {
	dataDir string
	naming  persistence.Naming
	serial  *clock.AtomicClock
	metrics metrics.Collector
}

func NewFlusher(dataDir string, naming persistence.Naming, next uint64, m metrics.Collector) *Flusher {
	return &Flusher{
		dataDir: dataDir,
		naming:  naming,
		serial:  clock.NewAtomic(next),
		metrics: m,
	}
}

// NextSerial is the serial the following flush will use.
func (f *Flusher) NextSerial() uint64 {
	return f.serial.Val()
}

// flush writes every row of mt to a new segment and opens it. The memtable
// is left untouched; clearing it is up to the caller.
func (f *Flusher) flush(mt *memtable.Memtable, reason flushReason) (*persistence.Segment, error) {
	var (
		serial = f.serial.Next()
		path   = filepath.Join(f.dataDir, f.naming.FileName(serial))
		start  = time.Now()
	)

	it, err := mt.IteratorFrom(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot memtable: %w", err)
	}
	rows, err := persistence.WriteSegment(path, it)
	if cerr := it.Close(); cerr != nil {
		slog.Warn("failed to close memtable iterator", "error", cerr)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to flush memtable: %w", err)
	}

	seg, err := persistence.OpenSegment(path, serial)
	if err != nil {
		return nil, fmt.Errorf("failed to open flushed segment: %w", err)
	}

	labels := map[string]string{"reason": string(reason)}
	f.metrics.IncCounter("flushes", labels, 1)
	f.metrics.IncCounter("rows_flushed", nil, float64(rows))
	f.metrics.ObserveHistogram("flush_ms", nil, float64(time.Since(start).Milliseconds()))

	slog.Info("memtable flushed",
		"serial", serial,
		"path", path,
		"rows", rows,
		"bytes", seg.SizeInBytes(),
		"reason", reason,
	)

	return seg, nil
}
