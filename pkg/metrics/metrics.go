package metrics

import (
	"sort"
	"strings"
	"sync"
)

// Collector captures counters, gauges and histograms.
type Collector interface {
	IncCounter(name string, labels map[string]string, delta float64)
	SetGauge(name string, labels map[string]string, value float64)
	ObserveHistogram(name string, labels map[string]string, value float64)
}

// Nop discards everything.
type Nop struct{}

func (Nop) IncCounter(string, map[string]string, float64)       {}
func (Nop) SetGauge(string, map[string]string, float64)         {}
func (Nop) ObserveHistogram(string, map[string]string, float64) {}

// Summary aggregates histogram observations.
type Summary struct {
	Count uint64
	Sum   float64
	Max   float64
}

// Snapshot is a point-in-time copy of a Registry.
type Snapshot struct {
	Counters   map[string]float64
	Gauges     map[string]float64
	Histograms map[string]Summary
}

// Registry is an in-process Collector. Series are keyed by name plus sorted
// labels, e.g. `flushes{reason=threshold}`.
type Registry struct {
	mu         sync.Mutex
	counters   map[string]float64
	gauges     map[string]float64
	histograms map[string]Summary
}

func NewRegistry() *Registry {
	return &Registry{
		counters:   make(map[string]float64),
		gauges:     make(map[string]float64),
		histograms: make(map[string]Summary),
	}
}

func (r *Registry) IncCounter(name string, labels map[string]string, delta float64) {
	key := seriesKey(name, labels)
	r.mu.Lock()
	r.counters[key] += delta
	r.mu.Unlock()
}

func (r *Registry) SetGauge(name string, labels map[string]string, value float64) {
	key := seriesKey(name, labels)
	r.mu.Lock()
	r.gauges[key] = value
	r.mu.Unlock()
}

func (r *Registry) ObserveHistogram(name string, labels map[string]string, value float64) {
	key := seriesKey(name, labels)
	r.mu.Lock()
	s := r.histograms[key]
	s.Count++
	s.Sum += value
	if s.Count == 1 || value > s.Max {
		s.Max = value
	}
	r.histograms[key] = s
	r.mu.Unlock()
}

func (r *Registry) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := Snapshot{
		Counters:   make(map[string]float64, len(r.counters)),
		Gauges:     make(map[string]float64, len(r.gauges)),
		Histograms: make(map[string]Summary, len(r.histograms)),
	}
	for k, v := range r.counters {
		snap.Counters[k] = v
	}
	for k, v := range r.gauges {
		snap.Gauges[k] = v
	}
	for k, v := range r.histograms {
		snap.Histograms[k] = v
	}
	return snap
}

func seriesKey(name string, labels map[string]string) string {
	if len(labels) == 0 {
		return name
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(labels[k])
	}
	b.WriteByte('}')
	return b.String()
}
