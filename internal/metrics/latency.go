package metrics

import (
	"sort"
	"sync"
	"time"
)

// StageLatency is the rolling latency summary of one pipeline stage.
type StageLatency struct {
	// EWMA of latency in milliseconds.
	EWMAms float64

	// Counters since start.
	OK    uint64
	Error uint64

	Last   time.Duration
	LastAt time.Time
}

// LatencyTracker keeps an EWMA per stage. Safe for concurrent use.
type LatencyTracker struct {
	mu     sync.RWMutex
	alpha  float64
	stages map[string]*StageLatency
}

// NewLatencyTracker creates a tracker with EWMA smoothing factor alpha.
// Typical alpha: 0.1..0.3 (higher reacts faster).
func NewLatencyTracker(alpha float64) *LatencyTracker {
	if alpha <= 0 || alpha >= 1 {
		alpha = 0.2
	}
	return &LatencyTracker{
		alpha:  alpha,
		stages: map[string]*StageLatency{},
	}
}

func (t *LatencyTracker) ObserveOK(stage string, d time.Duration) {
	t.observe(stage, d, true)
}

func (t *LatencyTracker) ObserveError(stage string, d time.Duration) {
	t.observe(stage, d, false)
}

func (t *LatencyTracker) observe(stage string, d time.Duration, ok bool) {
	now := time.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.stages[stage]
	if s == nil {
		s = &StageLatency{}
		t.stages[stage] = s
	}

	// sub-millisecond stages are the norm, keep the fraction
	ms := float64(d) / float64(time.Millisecond)
	if ms < 0 {
		ms = 0
	}

	if s.OK+s.Error == 0 {
		s.EWMAms = ms
	} else {
		s.EWMAms = (t.alpha * ms) + ((1.0 - t.alpha) * s.EWMAms)
	}

	s.Last = d
	s.LastAt = now
	if ok {
		s.OK++
	} else {
		s.Error++
	}
}

// Get returns a copy of one stage's summary.
func (t *LatencyTracker) Get(stage string) (StageLatency, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.stages[stage]
	if !ok {
		return StageLatency{}, false
	}
	return *s, true
}

// Snapshot returns copies of all stage summaries keyed by stage, plus the
// stage names in sorted order.
func (t *LatencyTracker) Snapshot() (map[string]StageLatency, []string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string]StageLatency, len(t.stages))
	names := make([]string, 0, len(t.stages))
	for k, v := range t.stages {
		out[k] = *v
		names = append(names, k)
	}
	sort.Strings(names)
	return out, names
}
