package statsd

import (
	"maps"
	"sync"
	"time"
)

// Kind identifies the metric type of a recorded sample.
type Kind string

// Recorded metric kinds.
const (
	KindCount  Kind = "count"
	KindGauge  Kind = "gauge"
	KindTiming Kind = "timing"
)

// Sample is one metric captured by a Recorder.
type Sample struct {
	Kind     Kind
	Name     string
	Value    float64
	Duration time.Duration
	Tags     map[string]string
}

// Recorder is an in-memory Sink used by tests and the admin CLI dry runs.
type Recorder struct {
	mu      sync.Mutex
	samples []Sample
}

var _ Sink = (*Recorder)(nil)

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Count records a counter sample.
func (r *Recorder) Count(name string, value int64, tags map[string]string) {
	r.add(Sample{Kind: KindCount, Name: name, Value: float64(value), Tags: maps.Clone(tags)})
}

// Gauge records a gauge sample.
func (r *Recorder) Gauge(name string, value float64, tags map[string]string) {
	r.add(Sample{Kind: KindGauge, Name: name, Value: value, Tags: maps.Clone(tags)})
}

// Timing records a timing sample.
func (r *Recorder) Timing(name string, value time.Duration, tags map[string]string) {
	r.add(Sample{Kind: KindTiming, Name: name, Duration: value, Tags: maps.Clone(tags)})
}

func (r *Recorder) add(s Sample) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, s)
}

// Samples returns a copy of everything recorded so far.
func (r *Recorder) Samples() []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Sample, len(r.samples))
	copy(out, r.samples)
	return out
}

// Named returns the samples recorded under name.
func (r *Recorder) Named(name string) []Sample {
	var out []Sample
	for _, s := range r.Samples() {
		if s.Name == name {
			out = append(out, s)
		}
	}
	return out
}

// CountTotal sums counter values recorded under name whose tags include every pair in match.
func (r *Recorder) CountTotal(name string, match map[string]string) int64 {
	var total int64
	for _, s := range r.Named(name) {
		if s.Kind != KindCount || !tagsMatch(s.Tags, match) {
			continue
		}
		total += int64(s.Value)
	}
	return total
}

func tagsMatch(tags, match map[string]string) bool {
	for k, v := range match {
		if tags[k] != v {
			return false
		}
	}
	return true
}
