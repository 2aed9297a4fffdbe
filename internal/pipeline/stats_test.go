package pipeline

import (
	"testing"
	"time"
)

func TestLatencyStats_Percentiles(t *testing.T) {
	stats := NewLatencyStats(time.Hour)
	for _, ms := range []int{100, 200, 300, 400, 500} {
		stats.Record(StageBuild, time.Duration(ms)*time.Millisecond)
	}

	snap, ok := stats.Snapshot()[StageBuild]
	if !ok {
		t.Fatal("expected build stage in snapshot")
	}
	if snap.Count != 5 {
		t.Fatalf("expected count=5, got %d", snap.Count)
	}
	if snap.MinMs != 100 || snap.MaxMs != 500 {
		t.Fatalf("expected min=100 max=500, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
	if snap.AvgMs != 300 {
		t.Fatalf("expected avg=300, got %f", snap.AvgMs)
	}
	if snap.P50Ms != 300 {
		t.Fatalf("expected p50=300, got %f", snap.P50Ms)
	}
	if snap.P95Ms != 480 {
		t.Fatalf("expected p95=480, got %f", snap.P95Ms)
	}
	if snap.P99Ms != 496 {
		t.Fatalf("expected p99=496, got %f", snap.P99Ms)
	}
}

func TestLatencyStats_StagesAreSeparate(t *testing.T) {
	stats := NewLatencyStats(time.Hour)
	stats.Record(StageBuild, 5*time.Millisecond)
	stats.Record(StageStore, 40*time.Millisecond)
	stats.Record(StageStore, 60*time.Millisecond)

	snap := stats.Snapshot()
	if snap[StageBuild].Count != 1 || snap[StageStore].Count != 2 {
		t.Errorf("unexpected counts: build=%d store=%d", snap[StageBuild].Count, snap[StageStore].Count)
	}
	if _, ok := snap[StageMirror]; ok {
		t.Error("expected no mirror stage without samples")
	}
}

func TestLatencyStats_PrunesExpiredSamples(t *testing.T) {
	stats := NewLatencyStats(10 * time.Millisecond)
	stats.Record(StageStore, 100*time.Millisecond)
	time.Sleep(25 * time.Millisecond)

	if _, ok := stats.Snapshot()[StageStore]; ok {
		t.Fatal("expected expired stage to drop out of snapshot")
	}

	stats.Record(StageStore, 200*time.Millisecond)
	snap := stats.Snapshot()[StageStore]
	if snap.Count != 1 || snap.MinMs != 200 {
		t.Fatalf("expected one fresh sample of 200ms, got %+v", snap)
	}
}

func TestLatencyStats_ClampsNegativeDuration(t *testing.T) {
	stats := NewLatencyStats(time.Hour)
	stats.Record(StageBuild, -10*time.Millisecond)
	snap := stats.Snapshot()[StageBuild]
	if snap.Count != 1 || snap.MaxMs != 0 {
		t.Fatalf("expected one clamped sample, got %+v", snap)
	}
}
