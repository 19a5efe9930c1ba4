package persistence

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// OpenDir opens every segment in dir named according to naming, creating the
// directory when it is missing. Segments are returned ordered by serial
// together with the serial the next segment should use.
func OpenDir(dir string, naming Naming) ([]*Segment, uint64, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, 0, fmt.Errorf("failed to create data dir: %w", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read data dir: %w", err)
	}

	var (
		segments []*Segment
		next     uint64
	)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		serial, ok := naming.Parse(entry.Name())
		if !ok {
			slog.Warn("ignoring file in data dir", "dir", dir, "name", entry.Name())
			continue
		}

		seg, err := OpenSegment(filepath.Join(dir, entry.Name()), serial)
		if err != nil {
			if cerr := CloseAll(segments); cerr != nil {
				slog.Warn("failed to close segments after open error", "dir", dir, "error", cerr)
			}
			return nil, 0, err
		}
		segments = append(segments, seg)
		if serial+1 > next {
			next = serial + 1
		}
	}

	sort.SliceStable(segments, func(i, j int) bool {
		return segments[i].Serial() < segments[j].Serial()
	})

	return segments, next, nil
}

// CloseAll closes every segment and joins the errors.
func CloseAll(segments []*Segment) error {
	var errs []error
	for _, seg := range segments {
		if err := seg.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
