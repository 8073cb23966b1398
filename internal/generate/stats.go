package generate

import (
	"slices"
	"sync"
	"time"
)

type call struct {
	at      time.Time
	elapsed time.Duration
	failed  bool
}

// StatsSnapshot aggregates generation calls inside the stats window.
// Latency fields cover successful calls only.
type StatsSnapshot struct {
	Count    int     `json:"count"`
	Failures int     `json:"failures"`
	MinMs    int64   `json:"min_ms"`
	MaxMs    int64   `json:"max_ms"`
	AvgMs    float64 `json:"avg_ms"`
	P50Ms    float64 `json:"p50_ms"`
	P95Ms    float64 `json:"p95_ms"`
	P99Ms    float64 `json:"p99_ms"`
}

// LLMStats keeps a rolling window of generation outcomes.
type LLMStats struct {
	mu     sync.Mutex
	calls  []call
	window time.Duration
	now    func() time.Time
}

func NewLLMStats(window time.Duration) *LLMStats {
	if window <= 0 {
		window = time.Hour
	}
	return &LLMStats{window: window, now: time.Now}
}

// Record adds one completed call. A non-nil err counts as a failure and
// contributes no latency sample.
func (s *LLMStats) Record(elapsed time.Duration, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.expireLocked(now)
	s.calls = append(s.calls, call{at: now, elapsed: max(elapsed, 0), failed: err != nil})
}

func (s *LLMStats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(s.now())

	var snap StatsSnapshot
	ms := make([]int64, 0, len(s.calls))
	var total int64
	for _, c := range s.calls {
		if c.failed {
			snap.Failures++
			continue
		}
		v := c.elapsed.Milliseconds()
		ms = append(ms, v)
		total += v
	}
	snap.Count = len(ms)
	if snap.Count == 0 {
		return snap
	}

	slices.Sort(ms)
	snap.MinMs = ms[0]
	snap.MaxMs = ms[len(ms)-1]
	snap.AvgMs = float64(total) / float64(len(ms))
	snap.P50Ms = interpolate(ms, 50)
	snap.P95Ms = interpolate(ms, 95)
	snap.P99Ms = interpolate(ms, 99)
	return snap
}

// expireLocked drops calls older than the window. Calls are appended in
// time order so the survivors are a suffix.
func (s *LLMStats) expireLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	i := 0
	for i < len(s.calls) && s.calls[i].at.Before(cutoff) {
		i++
	}
	if i > 0 {
		s.calls = slices.Delete(s.calls, 0, i)
	}
}

// interpolate returns the pct-th percentile of sorted using linear
// interpolation between closest ranks.
func interpolate(sorted []int64, pct float64) float64 {
	switch {
	case len(sorted) == 0:
		return 0
	case pct <= 0:
		return float64(sorted[0])
	case pct >= 100:
		return float64(sorted[len(sorted)-1])
	}
	rank := float64(len(sorted)-1) * pct / 100
	lo := int(rank)
	if lo+1 >= len(sorted) {
		return float64(sorted[lo])
	}
	frac := rank - float64(lo)
	return float64(sorted[lo]) + frac*float64(sorted[lo+1]-sorted[lo])
}
