package bench

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Cloudinfo-Github/call-center-ai/core/realtime"
)

// scriptedTransport plays the remote service's role: it accepts
// whatever the outbound pump sends and produces a fixed number of
// audio deltas with a simulated per-event delay.
type scriptedTransport struct {
	frames int
	delay  time.Duration

	closed atomic.Bool
	done   chan struct{}
}

func newScriptedTransport(frames int, delay time.Duration) *scriptedTransport {
	return &scriptedTransport{
		frames: frames,
		delay:  delay,
		done:   make(chan struct{}),
	}
}

func (t *scriptedTransport) SendAudio(audio []byte) error {
	if t.closed.Load() {
		return realtime.ErrTransportClosed
	}
	return nil
}

func (t *scriptedTransport) SendToolResult(callID string, result map[string]any) error {
	if t.closed.Load() {
		return realtime.ErrTransportClosed
	}
	return nil
}

func (t *scriptedTransport) CommitInput() error {
	if t.closed.Load() {
		return realtime.ErrTransportClosed
	}
	return nil
}

func (t *scriptedTransport) Events(ctx context.Context) func(func(realtime.RawEvent, error) bool) {
	payload := fmt.Sprintf(`{"type":"response.audio.delta","delta":%q}`,
		base64.StdEncoding.EncodeToString(make([]byte, 960)))

	return func(yield func(realtime.RawEvent, error) bool) {
		for range t.frames {
			select {
			case <-ctx.Done():
				return
			case <-t.done:
				return
			case <-time.After(t.delay):
			}

			event := realtime.RawEvent{
				Type:    "response.audio.delta",
				Payload: json.RawMessage(payload),
			}
			if !yield(event, nil) {
				return
			}
		}
	}
}

func (t *scriptedTransport) Close() error {
	if t.closed.CompareAndSwap(false, true) {
		close(t.done)
	}
	return nil
}
