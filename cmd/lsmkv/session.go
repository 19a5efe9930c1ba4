package main

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"lsmkv/pkg/db"
	"lsmkv/pkg/store"
)

var errNotSupported = errors.New("not supported by this engine")

// session runs key-value commands against an open engine and prints the
// results to out.
type session struct {
	dao db.DAO
	out io.Writer
}

func (s *session) put(key, value string) error {
	if err := s.dao.Upsert([]byte(key), []byte(value)); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "OK")
	return nil
}

func (s *session) get(key string) error {
	value, found, err := db.Get(s.dao, []byte(key))
	if err != nil {
		return err
	}
	if !found {
		fmt.Fprintln(s.out, "(not found)")
		return nil
	}
	fmt.Fprintln(s.out, string(value))
	return nil
}

func (s *session) del(key string) error {
	if err := s.dao.Remove([]byte(key)); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "OK")
	return nil
}

func (s *session) scan(from string, limit int) error {
	count := 0
	err := db.SearchRange(s.dao, []byte(from), limit, func(r db.Record) error {
		fmt.Fprintf(s.out, "%s\t%s\n", r.Key, r.Value)
		count++
		return nil
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "(%d records)\n", count)
	return nil
}

func (s *session) flush() error {
	f, ok := s.dao.(interface{ Flush() error })
	if !ok {
		return fmt.Errorf("flush: %w", errNotSupported)
	}
	if err := f.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "OK")
	return nil
}

func (s *session) stats() error {
	st, ok := s.dao.(interface{ Stats() store.Stats })
	if !ok {
		return fmt.Errorf("stats: %w", errNotSupported)
	}
	printStats(s.out, st.Stats())
	return nil
}

func printStats(w io.Writer, st store.Stats) {
	fmt.Fprintf(w, "segments:      %d\n", st.Segments)
	fmt.Fprintf(w, "segment bytes: %d\n", st.SegmentBytes)
	fmt.Fprintf(w, "buffer rows:   %d\n", st.BufferRows)
	fmt.Fprintf(w, "buffer bytes:  %d\n", st.BufferBytes)
	fmt.Fprintf(w, "next serial:   %d\n", st.NextSerial)

	names := make([]string, 0, len(st.Metrics.Counters))
	for name := range st.Metrics.Counters {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "%s: %v\n", name, st.Metrics.Counters[name])
	}
}
