package session

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/Cloudinfo-Github/call-center-ai/core/events"
	"github.com/Cloudinfo-Github/call-center-ai/core/realtime"
)

func TestStartSessionSurfacesEventsInArrivalOrder(t *testing.T) {
	transport := newFakeTransport()
	handler := newTestHandler(transport)

	transport.emit("response.audio.delta", `{"type":"response.audio.delta","delta":"aGVsbG8="}`)
	transport.emit("response.text.delta", `{"type":"response.text.delta","delta":"Hello"}`)
	transport.emit("input_audio_buffer.speech_started", `{"type":"input_audio_buffer.speech_started"}`)
	transport.finish()

	received := collectEvents(t, handler.StartSession(t.Context(), emptySource(), &fakeExecutor{}))

	if len(received) != 3 {
		t.Fatalf("expected 3 events, got %d: %v", len(received), received)
	}

	audio, ok := received[0].(events.AudioDelta)
	if !ok {
		t.Fatalf("expected first event to be an audio delta, got %T", received[0])
	}
	if string(audio.Audio) != "hello" {
		t.Errorf("expected decoded audio %q, got %q", "hello", audio.Audio)
	}

	text, ok := received[1].(events.TextDelta)
	if !ok {
		t.Fatalf("expected second event to be a text delta, got %T", received[1])
	}
	if text.Text != "Hello" {
		t.Errorf("expected text %q, got %q", "Hello", text.Text)
	}

	if _, ok := received[2].(events.Interruption); !ok {
		t.Fatalf("expected third event to be an interruption, got %T", received[2])
	}

	if transport.closes() != 1 {
		t.Errorf("expected the transport to be closed exactly once, closed %d times", transport.closes())
	}
}

func TestStartSessionConnectFailureYieldsSingleTerminalError(t *testing.T) {
	handler := New(WithTransportDialer(
		func(ctx context.Context, config realtime.SessionConfig) (realtime.Transport, error) {
			return nil, &realtime.ConnectError{Err: errors.New("dial tcp: connection refused")}
		},
	))

	received := collectEvents(t, handler.StartSession(t.Context(), emptySource(), &fakeExecutor{}))

	if len(received) != 1 {
		t.Fatalf("expected exactly 1 event, got %d: %v", len(received), received)
	}
	sessionErr, ok := received[0].(events.SessionError)
	if !ok {
		t.Fatalf("expected a session error, got %T", received[0])
	}
	if !sessionErr.Terminal {
		t.Error("expected the connect failure to be terminal")
	}
}

func TestStartSessionAbruptTransportErrorIsTerminal(t *testing.T) {
	transport := newFakeTransport()
	handler := newTestHandler(transport)

	transport.emit("response.text.delta", `{"type":"response.text.delta","delta":"Hel"}`)
	transport.fail(errors.New("read tcp: connection reset by peer"))

	received := collectEvents(t, handler.StartSession(t.Context(), emptySource(), &fakeExecutor{}))

	if len(received) != 2 {
		t.Fatalf("expected 2 events, got %d: %v", len(received), received)
	}
	sessionErr, ok := received[1].(events.SessionError)
	if !ok {
		t.Fatalf("expected the stream to end with a session error, got %T", received[1])
	}
	if !sessionErr.Terminal {
		t.Error("expected the transport failure to be terminal")
	}
	if transport.closes() != 1 {
		t.Errorf("expected the transport to be closed exactly once, closed %d times", transport.closes())
	}
}

func TestStartSessionRemoteErrorDoesNotEndTheSession(t *testing.T) {
	transport := newFakeTransport()
	handler := newTestHandler(transport)

	transport.emit("error", `{"type":"error","error":"rate_limited"}`)
	transport.emit("response.text.delta", `{"type":"response.text.delta","delta":"still here"}`)
	transport.finish()

	received := collectEvents(t, handler.StartSession(t.Context(), emptySource(), &fakeExecutor{}))

	if len(received) != 2 {
		t.Fatalf("expected 2 events, got %d: %v", len(received), received)
	}
	sessionErr, ok := received[0].(events.SessionError)
	if !ok {
		t.Fatalf("expected a session error first, got %T", received[0])
	}
	if sessionErr.Terminal {
		t.Error("expected the remote error to be non-terminal")
	}
	if sessionErr.Detail != "rate_limited" {
		t.Errorf("expected detail %q, got %q", "rate_limited", sessionErr.Detail)
	}
	if _, ok := received[1].(events.TextDelta); !ok {
		t.Fatalf("expected the session to keep delivering events, got %T", received[1])
	}
}

func TestStartSessionUnknownEventsAreDropped(t *testing.T) {
	transport := newFakeTransport()
	handler := newTestHandler(transport)

	transport.emit("rate_limits.updated", `{"type":"rate_limits.updated"}`)
	transport.emit("session.created", `{"type":"session.created"}`)
	transport.emit("response.text.delta", `{"type":"response.text.delta","delta":"kept"}`)
	transport.finish()

	received := collectEvents(t, handler.StartSession(t.Context(), emptySource(), &fakeExecutor{}))

	if len(received) != 1 {
		t.Fatalf("expected only the recognized event, got %d: %v", len(received), received)
	}
	if _, ok := received[0].(events.TextDelta); !ok {
		t.Fatalf("expected a text delta, got %T", received[0])
	}
}

func TestStartSessionBreakingOutClosesTransportOnce(t *testing.T) {
	transport := newFakeTransport()
	handler := newTestHandler(transport)

	for range 5 {
		transport.emit("response.text.delta", `{"type":"response.text.delta","delta":"x"}`)
	}

	received := 0
	for range handler.StartSession(t.Context(), emptySource(), &fakeExecutor{}) {
		received++
		break
	}

	if received != 1 {
		t.Fatalf("expected to receive exactly 1 event before breaking, got %d", received)
	}
	if transport.closes() != 1 {
		t.Errorf("expected the transport to be closed exactly once, closed %d times", transport.closes())
	}
}

func TestStartSessionCancellationStopsBothPumps(t *testing.T) {
	transport := newFakeTransport()
	handler := newTestHandler(transport)

	ctx, cancel := context.WithCancel(t.Context())
	stop := make(chan struct{})
	defer close(stop)

	done := make(chan []events.Event, 1)
	go func() {
		done <- collectEvents(t, handler.StartSession(ctx, streamingSource(stop), &fakeExecutor{}))
	}()

	waitForCondition(t, func() bool { return transport.audioFrames() > 0 },
		"expected the outbound pump to start forwarding audio")

	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("expected the session to end after cancellation")
	}

	if transport.closes() != 1 {
		t.Errorf("expected the transport to be closed exactly once, closed %d times", transport.closes())
	}
}

func TestStartSessionForwardsAudioAndCommitsOnExhaustion(t *testing.T) {
	transport := newFakeTransport()
	handler := newTestHandler(transport)

	frames := [][]byte{{0x01}, {0x02, 0x03}, {0x04}}

	done := make(chan struct{})
	go func() {
		defer close(done)
		collectEvents(t, handler.StartSession(t.Context(), framesSource(frames...), &fakeExecutor{}))
	}()

	waitForCondition(t, func() bool { return transport.audioFrames() == len(frames) && transport.wasCommitted() },
		"expected all frames to be forwarded and the input committed")

	transport.finish()
	<-done

	sent := transport.audio()
	for i, frame := range frames {
		if !slices.Equal(sent[i], frame) {
			t.Errorf("expected frame %d to be %v, got %v", i, frame, sent[i])
		}
	}
}

func TestStartSessionResolvesToolCallsBeforeContinuing(t *testing.T) {
	transport := newFakeTransport()
	executor := &fakeExecutor{result: map[string]any{"success": true, "claim_id": "abc"}}
	handler := newTestHandler(transport)

	transport.emit("response.function_call",
		`{"type":"response.function_call","name":"create_claim","call_id":"c1","arguments":"{\"policyholder_name\":\"Ada\"}"}`)
	transport.finish()

	received := collectEvents(t, handler.StartSession(t.Context(), emptySource(), executor))

	if len(received) != 1 {
		t.Fatalf("expected 1 event, got %d: %v", len(received), received)
	}
	toolCall, ok := received[0].(events.ToolCall)
	if !ok {
		t.Fatalf("expected a tool call event, got %T", received[0])
	}
	if toolCall.ID != "c1" || toolCall.Name != "create_claim" || toolCall.Failed {
		t.Errorf("unexpected tool call event: %+v", toolCall)
	}
	if toolCall.Arguments["policyholder_name"] != "Ada" {
		t.Errorf("expected parsed arguments, got %v", toolCall.Arguments)
	}

	results := transport.results()
	if len(results) != 1 {
		t.Fatalf("expected exactly 1 tool result, got %d", len(results))
	}
	if results[0].callID != "c1" {
		t.Errorf("expected the result to correlate call id c1, got %q", results[0].callID)
	}
	if results[0].result["claim_id"] != "abc" {
		t.Errorf("expected the executor's result to be sent back, got %v", results[0].result)
	}
}

func TestStartSessionToolFailureIsContained(t *testing.T) {
	transport := newFakeTransport()
	executor := &fakeExecutor{err: errors.New("claim store unavailable")}
	handler := newTestHandler(transport)

	transport.emit("response.function_call",
		`{"type":"response.function_call","name":"create_claim","call_id":"c2","arguments":"{}"}`)
	transport.emit("response.text.delta", `{"type":"response.text.delta","delta":"sorry"}`)
	transport.finish()

	received := collectEvents(t, handler.StartSession(t.Context(), emptySource(), executor))

	if len(received) != 2 {
		t.Fatalf("expected 2 events, got %d: %v", len(received), received)
	}
	toolCall, ok := received[0].(events.ToolCall)
	if !ok {
		t.Fatalf("expected a tool call event, got %T", received[0])
	}
	if !toolCall.Failed {
		t.Error("expected the tool call to be marked failed")
	}

	results := transport.results()
	if len(results) != 1 {
		t.Fatalf("expected exactly 1 tool result, got %d", len(results))
	}
	if results[0].result["success"] != false {
		t.Errorf("expected a failure result for the remote session, got %v", results[0].result)
	}
}

func TestStartSessionMalformedToolArgumentsStillResolveTheCall(t *testing.T) {
	transport := newFakeTransport()
	executor := &fakeExecutor{}
	handler := newTestHandler(transport)

	transport.emit("response.function_call",
		`{"type":"response.function_call","name":"create_claim","call_id":"c3","arguments":"{not json"}`)
	transport.finish()

	received := collectEvents(t, handler.StartSession(t.Context(), emptySource(), executor))

	if len(received) != 1 {
		t.Fatalf("expected 1 event, got %d: %v", len(received), received)
	}
	sessionErr, ok := received[0].(events.SessionError)
	if !ok {
		t.Fatalf("expected a session error, got %T", received[0])
	}
	if sessionErr.Terminal {
		t.Error("expected the parse failure to be non-terminal")
	}

	if got := executor.executed(); len(got) != 0 {
		t.Errorf("expected the executor not to run, got %v", got)
	}
	results := transport.results()
	if len(results) != 1 || results[0].callID != "c3" {
		t.Fatalf("expected a failure result for call c3, got %v", results)
	}
	if results[0].result["success"] != false {
		t.Errorf("expected a failure result, got %v", results[0].result)
	}
}

func TestStartSessionRetriesToolResultOnce(t *testing.T) {
	transport := newFakeTransport()
	transport.scriptToolResultErrors(&realtime.SendError{Err: errors.New("write: broken pipe")}, nil)
	executor := &fakeExecutor{result: map[string]any{"success": true}}
	handler := newTestHandler(transport)

	transport.emit("response.function_call",
		`{"type":"response.function_call","name":"end_call","call_id":"c4","arguments":"{}"}`)
	transport.finish()

	received := collectEvents(t, handler.StartSession(t.Context(), emptySource(), executor))

	if len(received) != 1 {
		t.Fatalf("expected 1 event, got %d: %v", len(received), received)
	}
	results := transport.results()
	if len(results) != 1 || results[0].callID != "c4" {
		t.Fatalf("expected the retried result to land exactly once, got %v", results)
	}
}

func TestStartSessionSlowToolDoesNotStarveOutboundAudio(t *testing.T) {
	transport := newFakeTransport()
	release := make(chan struct{})
	executor := &fakeExecutor{result: map[string]any{"success": true}, block: release}
	handler := newTestHandler(transport)

	transport.emit("response.function_call",
		`{"type":"response.function_call","name":"search_knowledge","call_id":"c5","arguments":"{}"}`)

	stop := make(chan struct{})
	defer close(stop)

	done := make(chan []events.Event, 1)
	go func() {
		done <- collectEvents(t, handler.StartSession(t.Context(), streamingSource(stop), executor))
	}()

	baseline := transport.audioFrames()
	waitForCondition(t, func() bool { return transport.audioFrames() > baseline+2 },
		"expected audio to keep flowing while the tool executes")

	close(release)
	transport.finish()

	select {
	case received := <-done:
		if len(received) != 1 {
			t.Fatalf("expected 1 event, got %d: %v", len(received), received)
		}
		if _, ok := received[0].(events.ToolCall); !ok {
			t.Fatalf("expected a tool call event, got %T", received[0])
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected the session to end after the tool was released")
	}
}

type sentToolResult struct {
	callID string
	result map[string]any
}

type fakeEvent struct {
	raw realtime.RawEvent
	err error
}

type fakeTransport struct {
	mu             sync.Mutex
	sentAudio      [][]byte
	sentResults    []sentToolResult
	committed      bool
	closeCount     int
	toolResultErrs []error

	incoming chan fakeEvent
	done     chan struct{}
	doneOnce sync.Once
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		incoming: make(chan fakeEvent, 32),
		done:     make(chan struct{}),
	}
}

func (t *fakeTransport) emit(eventType, payload string) {
	t.incoming <- fakeEvent{raw: realtime.RawEvent{Type: eventType, Payload: json.RawMessage(payload)}}
}

func (t *fakeTransport) fail(err error) {
	t.incoming <- fakeEvent{err: err}
	close(t.incoming)
}

func (t *fakeTransport) finish() { close(t.incoming) }

func (t *fakeTransport) scriptToolResultErrors(errs ...error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.toolResultErrs = errs
}

func (t *fakeTransport) SendAudio(audio []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closeCount > 0 {
		return realtime.ErrTransportClosed
	}
	t.sentAudio = append(t.sentAudio, slices.Clone(audio))
	return nil
}

func (t *fakeTransport) SendToolResult(callID string, result map[string]any) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closeCount > 0 {
		return realtime.ErrTransportClosed
	}
	if len(t.toolResultErrs) > 0 {
		err := t.toolResultErrs[0]
		t.toolResultErrs = t.toolResultErrs[1:]
		if err != nil {
			return err
		}
	}
	t.sentResults = append(t.sentResults, sentToolResult{callID: callID, result: result})
	return nil
}

func (t *fakeTransport) CommitInput() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closeCount > 0 {
		return realtime.ErrTransportClosed
	}
	t.committed = true
	return nil
}

func (t *fakeTransport) Events(ctx context.Context) func(func(realtime.RawEvent, error) bool) {
	return func(yield func(realtime.RawEvent, error) bool) {
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.done:
				return
			case event, ok := <-t.incoming:
				if !ok {
					return
				}
				if !yield(event.raw, event.err) {
					return
				}
			}
		}
	}
}

func (t *fakeTransport) Close() error {
	t.mu.Lock()
	t.closeCount++
	t.mu.Unlock()
	t.doneOnce.Do(func() { close(t.done) })
	return nil
}

func (t *fakeTransport) closes() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closeCount
}

func (t *fakeTransport) audioFrames() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sentAudio)
}

func (t *fakeTransport) audio() [][]byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.sentAudio)
}

func (t *fakeTransport) wasCommitted() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.committed
}

func (t *fakeTransport) results() []sentToolResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.sentResults)
}

type executedCall struct {
	name      string
	arguments map[string]any
}

type fakeExecutor struct {
	mu     sync.Mutex
	calls  []executedCall
	result map[string]any
	err    error
	block  <-chan struct{}
}

func (e *fakeExecutor) Execute(ctx context.Context, name string, arguments map[string]any) (map[string]any, error) {
	if e.block != nil {
		select {
		case <-e.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	e.mu.Lock()
	e.calls = append(e.calls, executedCall{name: name, arguments: arguments})
	e.mu.Unlock()

	if e.err != nil {
		return nil, e.err
	}
	return e.result, nil
}

func (e *fakeExecutor) executed() []executedCall {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.calls)
}

func newTestHandler(transport *fakeTransport) *Handler {
	return New(WithTransportDialer(
		func(ctx context.Context, config realtime.SessionConfig) (realtime.Transport, error) {
			return transport, nil
		},
	))
}

func collectEvents(t *testing.T, session func(func(events.Event) bool)) []events.Event {
	t.Helper()

	var received []events.Event
	for event := range session {
		received = append(received, event)
	}
	return received
}

func emptySource() AudioSource {
	return func(yield func([]byte) bool) {}
}

func framesSource(frames ...[]byte) AudioSource {
	return func(yield func([]byte) bool) {
		for _, frame := range frames {
			if !yield(frame) {
				return
			}
		}
	}
}

func streamingSource(stop <-chan struct{}) AudioSource {
	return func(yield func([]byte) bool) {
		frame := []byte{0x7f, 0x00}
		for {
			select {
			case <-stop:
				return
			default:
			}
			if !yield(frame) {
				return
			}
			time.Sleep(time.Millisecond)
		}
	}
}

func waitForCondition(t *testing.T, condition func() bool, message string, args ...any) {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		if condition() {
			return
		}
		select {
		case <-deadline:
			t.Fatalf(message, args...)
		case <-time.After(5 * time.Millisecond):
		}
	}
}
