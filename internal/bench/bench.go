// Package bench measures end-to-end session latency by driving
// simulated calls through the session handler with an in-process
// scripted transport. No network or audio device is involved, so the
// numbers isolate the handler's own overhead plus the simulated
// service delay.
package bench

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"time"

	session "github.com/Cloudinfo-Github/call-center-ai/core"
	"github.com/Cloudinfo-Github/call-center-ai/core/events"
	"github.com/Cloudinfo-Github/call-center-ai/core/realtime"
	"github.com/Cloudinfo-Github/call-center-ai/core/tools"
)

// Options shapes a benchmark run.
type Options struct {
	// Calls is how many simulated calls to run sequentially.
	Calls int
	// FramesPerCall is how many audio deltas the simulated service
	// produces per call.
	FramesPerCall int
	// ServiceDelay is the simulated per-event service latency.
	ServiceDelay time.Duration
}

// DefaultOptions mirror a short burst of realistic calls.
func DefaultOptions() Options {
	return Options{
		Calls:         20,
		FramesPerCall: 25,
		ServiceDelay:  10 * time.Millisecond,
	}
}

// Result summarizes one benchmark run. Latencies are the time from
// session start to the first audio delta, in milliseconds.
type Result struct {
	Calls         int     `json:"calls"`
	FramesPerCall int     `json:"frames_per_call"`
	LatencyP50    float64 `json:"latency_p50_ms"`
	LatencyP95    float64 `json:"latency_p95_ms"`
	LatencyP99    float64 `json:"latency_p99_ms"`
	AvgLatency    float64 `json:"avg_latency_ms"`
	MinLatency    float64 `json:"min_latency_ms"`
	MaxLatency    float64 `json:"max_latency_ms"`
	TotalDuration float64 `json:"total_duration_ms"`
}

// Run executes the benchmark.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Calls <= 0 || opts.FramesPerCall <= 0 {
		return nil, fmt.Errorf("calls and frames per call must be positive")
	}

	handler := session.New(session.WithTransportDialer(
		func(ctx context.Context, config realtime.SessionConfig) (realtime.Transport, error) {
			return newScriptedTransport(opts.FramesPerCall, opts.ServiceDelay), nil
		},
	))

	latencies := make([]float64, 0, opts.Calls)
	runStart := time.Now()

	for range opts.Calls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		callStart := time.Now()
		sawFirstAudio := false

		for event := range handler.StartSession(ctx, silentSource(opts.FramesPerCall), noopExecutor{}) {
			switch event := event.(type) {
			case events.AudioDelta:
				if !sawFirstAudio {
					sawFirstAudio = true
					latencies = append(latencies, float64(time.Since(callStart).Microseconds())/1000)
				}
			case events.SessionError:
				if event.Terminal {
					return nil, fmt.Errorf("simulated call failed: %s", event.Detail)
				}
			}
		}

		if !sawFirstAudio {
			return nil, fmt.Errorf("simulated call produced no audio")
		}
	}

	slices.Sort(latencies)
	result := &Result{
		Calls:         opts.Calls,
		FramesPerCall: opts.FramesPerCall,
		LatencyP50:    percentile(latencies, 50),
		LatencyP95:    percentile(latencies, 95),
		LatencyP99:    percentile(latencies, 99),
		AvgLatency:    mean(latencies),
		MinLatency:    latencies[0],
		MaxLatency:    latencies[len(latencies)-1],
		TotalDuration: float64(time.Since(runStart).Microseconds()) / 1000,
	}
	return result, nil
}

// WriteReport writes the result as JSON.
func WriteReport(result *Result, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// percentile expects sorted data.
func percentile(sorted []float64, p int) float64 {
	if len(sorted) == 0 {
		return 0
	}
	index := len(sorted) * p / 100
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}

func mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	var sum float64
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

func silentSource(frames int) session.AudioSource {
	return func(yield func([]byte) bool) {
		frame := make([]byte, 960) // 20ms of pcm16 at 24kHz
		for range frames {
			if !yield(frame) {
				return
			}
		}
	}
}

type noopExecutor struct{}

func (noopExecutor) Execute(ctx context.Context, name string, arguments map[string]any) (map[string]any, error) {
	return map[string]any{"success": true}, nil
}

var _ tools.Executor = noopExecutor{}
