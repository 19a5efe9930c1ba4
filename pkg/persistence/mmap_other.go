//go:build !unix

package persistence

import (
	"io"
	"os"
)

// Platforms without mmap load the whole segment into memory instead.
func mapFile(f *os.File, size int) ([]byte, error) {
	data := make([]byte, size)
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, err
	}
	return data, nil
}

func unmapFile([]byte) error { return nil }
