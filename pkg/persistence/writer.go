package persistence

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"

	"lsmkv/pkg/iterator"
	"lsmkv/pkg/row"
)

// WriteSegment writes the rows produced by it, which must already be in
// ascending key order, to a new segment file at path. The file must not
// exist yet. On failure the partial file is removed.
//
// It returns the number of rows written.
func WriteSegment(path string, it iterator.Iterator) (n int, err error) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, fmt.Errorf("failed to create segment file: %w", err)
	}
	defer func() {
		if err == nil {
			return
		}
		if cerr := file.Close(); cerr != nil && !errors.Is(cerr, os.ErrClosed) {
			slog.Warn("failed to close segment file", "path", path, "error", cerr)
		}
		if rerr := os.Remove(path); rerr != nil {
			slog.Warn("failed to remove partial segment file", "path", path, "error", rerr)
		}
	}()

	w := bufio.NewWriter(file)
	offsets := make([]int64, 0, 64)
	var offset int64

	for ; it.Valid(); it.Next() {
		r := it.Row()
		offsets = append(offsets, offset)

		written, err := writeRow(w, r)
		if err != nil {
			return 0, fmt.Errorf("failed to write row %d: %w", len(offsets)-1, err)
		}
		offset += written
	}
	if err := it.Err(); err != nil {
		return 0, fmt.Errorf("failed to read rows for segment: %w", err)
	}

	var buf [8]byte
	for _, off := range offsets {
		binary.BigEndian.PutUint64(buf[:], uint64(off))
		if _, err := w.Write(buf[:]); err != nil {
			return 0, fmt.Errorf("failed to write offset index: %w", err)
		}
	}
	binary.BigEndian.PutUint64(buf[:], uint64(len(offsets)))
	if _, err := w.Write(buf[:]); err != nil {
		return 0, fmt.Errorf("failed to write footer: %w", err)
	}

	if err := w.Flush(); err != nil {
		return 0, fmt.Errorf("failed to flush segment file: %w", err)
	}
	if err := file.Sync(); err != nil {
		return 0, fmt.Errorf("failed to sync segment file: %w", err)
	}
	if err := file.Close(); err != nil {
		return 0, fmt.Errorf("failed to close segment file: %w", err)
	}

	return len(offsets), nil
}

func writeRow(w *bufio.Writer, r row.Row) (int64, error) {
	if len(r.Key) > math.MaxInt32 {
		return 0, fmt.Errorf("key too large: %d", len(r.Key))
	}

	var buf [8]byte
	binary.BigEndian.PutUint32(buf[:4], uint32(len(r.Key)))
	if _, err := w.Write(buf[:4]); err != nil {
		return 0, err
	}
	if _, err := w.Write(r.Key); err != nil {
		return 0, err
	}

	binary.BigEndian.PutUint64(buf[:], uint64(r.Value.Timestamp))
	if _, err := w.Write(buf[:]); err != nil {
		return 0, err
	}

	if !r.IsTombstone() {
		binary.BigEndian.PutUint64(buf[:], uint64(len(r.Value.Data)))
		if _, err := w.Write(buf[:]); err != nil {
			return 0, err
		}
		if _, err := w.Write(r.Value.Data); err != nil {
			return 0, err
		}
	}

	return r.EncodedSize(), nil
}
