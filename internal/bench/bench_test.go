package bench

import (
	"path/filepath"
	"testing"
	"time"
)

func TestRunProducesOrderedPercentiles(t *testing.T) {
	result, err := Run(t.Context(), Options{
		Calls:         5,
		FramesPerCall: 3,
		ServiceDelay:  time.Millisecond,
	})
	if err != nil {
		t.Fatalf("expected the benchmark to run, got %v", err)
	}

	if result.Calls != 5 {
		t.Errorf("expected 5 calls, got %d", result.Calls)
	}
	if result.MinLatency <= 0 {
		t.Errorf("expected a positive minimum latency, got %f", result.MinLatency)
	}
	if result.LatencyP50 > result.LatencyP95 || result.LatencyP95 > result.LatencyP99 {
		t.Errorf("expected non-decreasing percentiles, got p50=%f p95=%f p99=%f",
			result.LatencyP50, result.LatencyP95, result.LatencyP99)
	}
	if result.MaxLatency < result.LatencyP99 {
		t.Errorf("expected the max to bound p99, got max=%f p99=%f",
			result.MaxLatency, result.LatencyP99)
	}
}

func TestRunRejectsInvalidOptions(t *testing.T) {
	if _, err := Run(t.Context(), Options{Calls: 0, FramesPerCall: 10}); err == nil {
		t.Fatal("expected zero calls to be rejected")
	}
}

func TestWriteReport(t *testing.T) {
	result, err := Run(t.Context(), Options{
		Calls:         2,
		FramesPerCall: 2,
		ServiceDelay:  time.Millisecond,
	})
	if err != nil {
		t.Fatalf("expected the benchmark to run, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "report.json")
	if err := WriteReport(result, path); err != nil {
		t.Fatalf("expected the report to be written, got %v", err)
	}
}
