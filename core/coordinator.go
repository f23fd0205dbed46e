package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/Cloudinfo-Github/call-center-ai/core/events"
	"github.com/Cloudinfo-Github/call-center-ai/core/realtime"
	"github.com/Cloudinfo-Github/call-center-ai/core/tools"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Coordinator runs a single call end to end: it consumes the session's
// event stream, forwards audio to a sink, and accumulates a
// [CallReport]. It makes no assumptions about how audio, text, and
// tool calls interleave.
type Coordinator struct {
	callID   string
	handler  *Handler
	sink     AudioSink
	executor tools.Executor

	onInterruption func()
}

// CoordinatorOption configures a [Coordinator].
type CoordinatorOption func(*Coordinator)

// WithInterruptionHandler is called when the caller starts speaking
// over the assistant, before the next event is consumed. The demo uses
// it to drop queued playback.
func WithInterruptionHandler(handler func()) CoordinatorOption {
	return func(c *Coordinator) {
		c.onInterruption = handler
	}
}

// NewCoordinator wires a handler to a call's audio sink and tool
// executor.
func NewCoordinator(callID string, handler *Handler, sink AudioSink, executor tools.Executor, opts ...CoordinatorOption) *Coordinator {
	coordinator := &Coordinator{
		callID:   callID,
		handler:  handler,
		sink:     sink,
		executor: executor,
	}

	for _, opt := range opts {
		opt(coordinator)
	}

	return coordinator
}

// ToolOutcome records one tool round-trip within a call.
type ToolOutcome struct {
	Name   string
	Failed bool
	Result map[string]any
}

// CallReport summarizes a finished call.
type CallReport struct {
	CallID        string
	Transcript    string
	AudioFrames   int
	ToolCalls     []ToolOutcome
	Interruptions int
	Errors        []string
}

// HandleCall drives the session until its event stream ends and
// returns the report. The report is returned even on failure; the
// error is non-nil only when the session ended with a terminal error.
func (c *Coordinator) HandleCall(
	ctx context.Context,
	source AudioSource,
	overrides ...realtime.SessionOption,
) (*CallReport, error) {
	ctx, span := tracer.Start(ctx, "handle call",
		trace.WithAttributes(attribute.String("call.id", c.callID)),
	)
	defer span.End()

	report := &CallReport{CallID: c.callID}
	var transcript strings.Builder
	var terminal error

	for event := range c.handler.StartSession(ctx, source, c.executor, overrides...) {
		switch event := event.(type) {
		case events.AudioDelta:
			report.AudioFrames++
			if err := c.sink(event.Audio); err != nil {
				logger.Warn("failed to play synthesized audio",
					"call_id", c.callID, "error", err,
				)
			}

		case events.TextDelta:
			transcript.WriteString(event.Text)

		case events.ToolCall:
			report.ToolCalls = append(report.ToolCalls, ToolOutcome{
				Name:   event.Name,
				Failed: event.Failed,
				Result: event.Result,
			})
			logger.Info("tool call resolved",
				"call_id", c.callID, "tool", event.Name, "failed", event.Failed,
			)

		case events.Interruption:
			report.Interruptions++
			logger.Info("caller interrupted playback", "call_id", c.callID)
			if c.onInterruption != nil {
				c.onInterruption()
			}

		case events.SessionError:
			report.Errors = append(report.Errors, event.Detail)
			if event.Terminal {
				terminal = fmt.Errorf("session failed: %s", event.Detail)
				span.RecordError(terminal)
				span.SetStatus(codes.Error, event.Detail)
			} else {
				logger.Warn("session reported an error",
					"call_id", c.callID, "detail", event.Detail,
				)
			}
		}
	}

	report.Transcript = transcript.String()
	return report, terminal
}
