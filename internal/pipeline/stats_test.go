package pipeline

import (
	"testing"
	"time"
)

func TestExtractionStatsPercentiles(t *testing.T) {
	stats := NewExtractionStats(time.Hour)
	for _, ms := range []int64{100, 200, 300, 400, 500} {
		stats.Record(".pdf", time.Duration(ms)*time.Millisecond)
	}

	snap := stats.Snapshot()
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

func TestExtractionStatsByFormat(t *testing.T) {
	stats := NewExtractionStats(time.Hour)
	stats.Record(".pdf", 900*time.Millisecond)
	stats.Record(".pdf", 1100*time.Millisecond)
	stats.Record(".xlsx", 20*time.Millisecond)

	snap := stats.Snapshot()
	if snap.Count != 3 {
		t.Fatalf("expected count=3, got %d", snap.Count)
	}
	pdf, ok := snap.ByFormat[".pdf"]
	if !ok || pdf.Count != 2 || pdf.AvgMs != 1000 {
		t.Fatalf("unexpected pdf aggregate: %+v", pdf)
	}
	if snap.ByFormat[".xlsx"].MaxMs != 20 {
		t.Fatalf("unexpected xlsx aggregate: %+v", snap.ByFormat[".xlsx"])
	}
}

func TestExtractionStatsPrunesExpiredSamples(t *testing.T) {
	stats := NewExtractionStats(10 * time.Millisecond)
	stats.Record(".csv", 100*time.Millisecond)
	time.Sleep(25 * time.Millisecond)

	if snap := stats.Snapshot(); snap.Count != 0 || snap.ByFormat != nil {
		t.Fatalf("expected empty snapshot after prune, got %+v", snap)
	}

	stats.Record(".csv", 200*time.Millisecond)
	snap := stats.Snapshot()
	if snap.Count != 1 || snap.MinMs != 200 || snap.MaxMs != 200 {
		t.Fatalf("expected a single 200ms sample, got %+v", snap)
	}
}

func TestExtractionStatsClampsNegativeDuration(t *testing.T) {
	stats := NewExtractionStats(time.Hour)
	stats.Record(".txt", -10*time.Millisecond)
	snap := stats.Snapshot()
	if snap.Count != 1 || snap.MaxMs != 0 {
		t.Fatalf("expected clamped duration=0, got %+v", snap)
	}
}
