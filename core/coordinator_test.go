package session

import (
	"errors"
	"sync"
	"testing"
)

func TestHandleCallBuildsAReportFromTheEventStream(t *testing.T) {
	transport := newFakeTransport()
	executor := &fakeExecutor{result: map[string]any{"success": true}}
	handler := newTestHandler(transport)

	transport.emit("response.text.delta", `{"type":"response.text.delta","delta":"Your claim "}`)
	transport.emit("response.audio.delta", `{"type":"response.audio.delta","delta":"AAECAw=="}`)
	transport.emit("input_audio_buffer.speech_started", `{"type":"input_audio_buffer.speech_started"}`)
	transport.emit("response.text.delta", `{"type":"response.text.delta","delta":"is filed."}`)
	transport.emit("error", `{"type":"error","error":"rate_limited"}`)
	transport.emit("response.function_call",
		`{"type":"response.function_call","name":"end_call","call_id":"c1","arguments":"{}"}`)
	transport.finish()

	var sink recordingSink
	coordinator := NewCoordinator("call-42", handler, sink.Write, executor)

	report, err := coordinator.HandleCall(t.Context(), emptySource())
	if err != nil {
		t.Fatalf("expected the call to complete, got %v", err)
	}

	if report.CallID != "call-42" {
		t.Errorf("expected call id %q, got %q", "call-42", report.CallID)
	}
	if report.Transcript != "Your claim is filed." {
		t.Errorf("expected transcript %q, got %q", "Your claim is filed.", report.Transcript)
	}
	if report.AudioFrames != 1 {
		t.Errorf("expected 1 audio frame, got %d", report.AudioFrames)
	}
	if report.Interruptions != 1 {
		t.Errorf("expected 1 interruption, got %d", report.Interruptions)
	}
	if len(report.Errors) != 1 || report.Errors[0] != "rate_limited" {
		t.Errorf("expected the remote error to be recorded, got %v", report.Errors)
	}
	if len(report.ToolCalls) != 1 || report.ToolCalls[0].Name != "end_call" || report.ToolCalls[0].Failed {
		t.Errorf("unexpected tool outcomes: %+v", report.ToolCalls)
	}

	if frames := sink.frames(); len(frames) != 1 || len(frames[0]) != 4 {
		t.Errorf("expected the synthesized audio to reach the sink, got %v", frames)
	}
}

func TestHandleCallReturnsAnErrorOnTerminalFailure(t *testing.T) {
	transport := newFakeTransport()
	handler := newTestHandler(transport)

	transport.emit("response.text.delta", `{"type":"response.text.delta","delta":"Hel"}`)
	transport.fail(errors.New("read tcp: connection reset by peer"))

	var sink recordingSink
	coordinator := NewCoordinator("call-43", handler, sink.Write, &fakeExecutor{})

	report, err := coordinator.HandleCall(t.Context(), emptySource())
	if err == nil {
		t.Fatal("expected a terminal failure to surface as an error")
	}
	if report == nil {
		t.Fatal("expected the partial report even on failure")
	}
	if report.Transcript != "Hel" {
		t.Errorf("expected the partial transcript to survive, got %q", report.Transcript)
	}
	if len(report.Errors) != 1 {
		t.Errorf("expected the terminal error to be recorded, got %v", report.Errors)
	}
}

func TestHandleCallToleratesASinkFailure(t *testing.T) {
	transport := newFakeTransport()
	handler := newTestHandler(transport)

	transport.emit("response.audio.delta", `{"type":"response.audio.delta","delta":"AAEC"}`)
	transport.emit("response.text.delta", `{"type":"response.text.delta","delta":"done"}`)
	transport.finish()

	failing := func(audio []byte) error { return errors.New("device gone") }
	coordinator := NewCoordinator("call-44", handler, failing, &fakeExecutor{})

	report, err := coordinator.HandleCall(t.Context(), emptySource())
	if err != nil {
		t.Fatalf("expected a sink failure not to end the call, got %v", err)
	}
	if report.AudioFrames != 1 {
		t.Errorf("expected the frame to still be counted, got %d", report.AudioFrames)
	}
	if report.Transcript != "done" {
		t.Errorf("expected the call to continue past the sink failure, got %q", report.Transcript)
	}
}

func TestHandleCallNotifiesTheInterruptionHandler(t *testing.T) {
	transport := newFakeTransport()
	handler := newTestHandler(transport)

	transport.emit("input_audio_buffer.speech_started", `{"type":"input_audio_buffer.speech_started"}`)
	transport.finish()

	interrupted := 0
	var sink recordingSink
	coordinator := NewCoordinator("call-45", handler, sink.Write, &fakeExecutor{},
		WithInterruptionHandler(func() { interrupted++ }),
	)

	report, err := coordinator.HandleCall(t.Context(), emptySource())
	if err != nil {
		t.Fatalf("expected the call to complete, got %v", err)
	}
	if interrupted != 1 || report.Interruptions != 1 {
		t.Errorf("expected one interruption, handler saw %d, report saw %d",
			interrupted, report.Interruptions)
	}
}

type recordingSink struct {
	mu   sync.Mutex
	data [][]byte
}

func (s *recordingSink) Write(audio []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append(s.data, audio)
	return nil
}

func (s *recordingSink) frames() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}
