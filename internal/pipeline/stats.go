package pipeline

import (
	"slices"
	"sync"
	"time"
)

// Stages timed by the worker.
const (
	StageBuild  = "build"
	StageStore  = "store"
	StageMirror = "mirror"
)

type sample struct {
	at time.Time
	ms int64
}

// StatsSnapshot aggregates the latency samples of one stage.
type StatsSnapshot struct {
	Count int     `json:"count"`
	MinMs int64   `json:"min_ms"`
	MaxMs int64   `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
	P99Ms float64 `json:"p99_ms"`
}

// LatencyStats keeps per-stage section latencies within a rolling window.
type LatencyStats struct {
	mu     sync.Mutex
	stages map[string][]sample
	maxAge time.Duration
}

func NewLatencyStats(maxAge time.Duration) *LatencyStats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &LatencyStats{
		stages: make(map[string][]sample),
		maxAge: maxAge,
	}
}

// Record adds one sample for stage.
func (s *LatencyStats) Record(stage string, d time.Duration) {
	ms := d.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stages[stage] = append(prune(s.stages[stage], now.Add(-s.maxAge)), sample{at: now, ms: ms})
}

// Snapshot aggregates every stage that still has samples in the window.
func (s *LatencyStats) Snapshot() map[string]StatsSnapshot {
	cutoff := time.Now().Add(-s.maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]StatsSnapshot, len(s.stages))
	for stage, samples := range s.stages {
		samples = prune(samples, cutoff)
		s.stages[stage] = samples
		if len(samples) == 0 {
			continue
		}
		out[stage] = summarize(samples)
	}
	return out
}

func summarize(samples []sample) StatsSnapshot {
	values := make([]int64, 0, len(samples))
	var sum int64
	for _, sm := range samples {
		values = append(values, sm.ms)
		sum += sm.ms
	}
	slices.Sort(values)

	return StatsSnapshot{
		Count: len(values),
		MinMs: values[0],
		MaxMs: values[len(values)-1],
		AvgMs: float64(sum) / float64(len(values)),
		P50Ms: percentile(values, 50),
		P95Ms: percentile(values, 95),
		P99Ms: percentile(values, 99),
	}
}

// prune drops samples older than cutoff, reusing the backing array.
func prune(samples []sample, cutoff time.Time) []sample {
	keep := samples[:0]
	for _, sm := range samples {
		if !sm.at.Before(cutoff) {
			keep = append(keep, sm)
		}
	}
	return keep
}

func percentile(sorted []int64, pct float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sorted[0])
	}
	if pct >= 100 {
		return float64(sorted[len(sorted)-1])
	}

	index := (float64(len(sorted)-1) * pct) / 100.0
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return float64(sorted[lower])
	}
	weight := index - float64(lower)
	lo := float64(sorted[lower])
	hi := float64(sorted[upper])
	return lo + ((hi - lo) * weight)
}
