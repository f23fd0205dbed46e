package session

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Cloudinfo-Github/call-center-ai/core/events"
	"github.com/Cloudinfo-Github/call-center-ai/core/realtime"
	"github.com/Cloudinfo-Github/call-center-ai/core/tools"
)

// dispatcher normalizes raw transport events into session events. Tool
// calls are resolved inline, so a dispatch call does not return until
// the tool result has been sent back over the transport.
type dispatcher struct {
	transport realtime.Transport
	executor  tools.Executor
}

// dispatch maps one raw event to at most one session event. A false
// second return means the event carried nothing for the consumer and
// was dropped.
func (d *dispatcher) dispatch(ctx context.Context, raw realtime.RawEvent) (events.Event, bool) {
	switch raw.Type {
	case "response.audio.delta":
		var payload struct {
			Delta string `json:"delta"`
		}
		if err := json.Unmarshal(raw.Payload, &payload); err != nil {
			return events.NewSessionError(fmt.Sprintf("malformed audio delta: %v", err)), true
		}
		audio, err := base64.StdEncoding.DecodeString(payload.Delta)
		if err != nil {
			return events.NewSessionError(fmt.Sprintf("undecodable audio delta: %v", err)), true
		}
		return events.NewAudioDelta(audio), true

	case "response.text.delta":
		var payload struct {
			Delta string `json:"delta"`
		}
		if err := json.Unmarshal(raw.Payload, &payload); err != nil {
			return events.NewSessionError(fmt.Sprintf("malformed text delta: %v", err)), true
		}
		return events.NewTextDelta(payload.Delta), true

	case "response.function_call":
		return d.dispatchToolCall(ctx, raw), true

	case "input_audio_buffer.speech_started":
		return events.NewInterruption(), true

	case "error":
		return events.NewSessionError(errorDetail(raw.Payload)), true

	default:
		logger.Debug("dropping unrecognized session event", "type", raw.Type)
		return nil, false
	}
}

// dispatchToolCall executes a remote tool call and replies with its
// result. The remote session is blocked on the call id, so every path
// that knows the id sends exactly one result, success or not.
func (d *dispatcher) dispatchToolCall(ctx context.Context, raw realtime.RawEvent) events.Event {
	var payload struct {
		Name      string `json:"name"`
		CallID    string `json:"call_id"`
		Arguments string `json:"arguments"`
	}
	if err := json.Unmarshal(raw.Payload, &payload); err != nil {
		return events.NewSessionError(fmt.Sprintf("malformed tool call: %v", err))
	}

	arguments := map[string]any{}
	if payload.Arguments != "" {
		if err := json.Unmarshal([]byte(payload.Arguments), &arguments); err != nil {
			d.sendToolResult(payload.CallID, map[string]any{
				"success": false,
				"error":   "tool arguments were not valid JSON",
			})
			return events.NewSessionError(
				fmt.Sprintf("malformed arguments for tool %q: %v", payload.Name, err),
			)
		}
	}

	result, err := d.executor.Execute(ctx, payload.Name, arguments)
	if err != nil {
		logger.Error("tool execution failed", "tool", payload.Name, "error", err)
		result = map[string]any{"success": false, "error": err.Error()}
		d.sendToolResult(payload.CallID, result)
		return events.NewFailedToolCall(payload.CallID, payload.Name, arguments, result)
	}

	d.sendToolResult(payload.CallID, result)
	return events.NewToolCall(payload.CallID, payload.Name, arguments, result)
}

// sendToolResult retries a failed send once. A result lost after the
// retry leaves the remote turn unresolved, which we can only log.
func (d *dispatcher) sendToolResult(callID string, result map[string]any) {
	err := d.transport.SendToolResult(callID, result)
	if err == nil {
		return
	}
	if errors.Is(err, realtime.ErrTransportClosed) {
		logger.Warn("tool result dropped, transport closed", "call_id", callID)
		return
	}

	logger.Warn("retrying tool result", "call_id", callID, "error", err)
	if err := d.transport.SendToolResult(callID, result); err != nil {
		logger.Error("tool result lost", "call_id", callID, "error", err)
	}
}

// errorDetail pulls a human-readable detail out of a remote error
// event. The service sends both bare strings and structured objects.
func errorDetail(payload json.RawMessage) string {
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil || len(envelope.Error) == 0 {
		return string(payload)
	}

	var detail string
	if err := json.Unmarshal(envelope.Error, &detail); err == nil {
		return detail
	}

	var structured struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(envelope.Error, &structured); err == nil && structured.Message != "" {
		return structured.Message
	}

	return string(envelope.Error)
}
