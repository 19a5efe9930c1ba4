package iterator

import (
	"container/heap"
	"errors"

	"lsmkv/pkg/row"
)

type cursor struct {
	it  Iterator
	idx int
}

// cursorHeap is a min-heap of sources ordered by their current row.
type cursorHeap []cursor

func (h cursorHeap) Len() int { return len(h) }

func (h cursorHeap) Less(i, j int) bool {
	if c := row.Compare(h[i].it.Row(), h[j].it.Row()); c != 0 {
		return c < 0
	}
	return h[i].idx < h[j].idx
}

func (h cursorHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *cursorHeap) Push(x any) { *h = append(*h, x.(cursor)) }

func (h *cursorHeap) Pop() any {
	old := *h
	n := len(old)
	c := old[n-1]
	*h = old[:n-1]
	return c
}

type mergeIterator struct {
	h       cursorHeap
	sources []Iterator

	cur     row.Row
	valid   bool
	err     error
	pending error
}

// Merge combines individually sorted sources into one sequence ordered by
// row.Compare. Rows sharing a key come out adjacent, freshest first.
func Merge(sources ...Iterator) Iterator {
	m := &mergeIterator{
		h:       make(cursorHeap, 0, len(sources)),
		sources: sources,
	}
	for i, src := range sources {
		if err := src.Err(); err != nil {
			m.err = err
			return m
		}
		if src.Valid() {
			m.h = append(m.h, cursor{it: src, idx: i})
		}
	}
	heap.Init(&m.h)
	m.advance()
	return m
}

func (m *mergeIterator) advance() {
	if m.pending != nil {
		m.err, m.pending = m.pending, nil
	}
	if m.err != nil || m.h.Len() == 0 {
		m.valid = false
		m.cur = row.Row{}
		return
	}

	top := m.h[0]
	m.cur = top.it.Row()
	m.valid = true

	top.it.Next()
	switch {
	case top.it.Err() != nil:
		m.pending = top.it.Err()
		heap.Pop(&m.h)
	case top.it.Valid():
		heap.Fix(&m.h, 0)
	default:
		heap.Pop(&m.h)
	}
}

func (m *mergeIterator) Valid() bool { return m.valid }

func (m *mergeIterator) Next() {
	if m.valid {
		m.advance()
	}
}

func (m *mergeIterator) Row() row.Row { return m.cur }

func (m *mergeIterator) Err() error { return m.err }

func (m *mergeIterator) Close() error {
	var errs []error
	for _, src := range m.sources {
		if err := src.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	m.sources = nil
	m.h = nil
	m.valid = false
	return errors.Join(errs...)
}
