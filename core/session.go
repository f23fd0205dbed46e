// Package session drives realtime voice sessions against a remote
// speech service. A [Handler] owns the session lifecycle: it dials a
// [realtime.Transport], pumps caller audio out, and surfaces normalized
// [events.Event] values to the consumer as they arrive. Tool calls
// raised by the remote service are executed inline through an injected
// [tools.Executor] and their results are sent back before the next
// event is surfaced.
package session

import (
	"context"
	"errors"
	"iter"
	"sync"

	"github.com/Cloudinfo-Github/call-center-ai/core/events"
	"github.com/Cloudinfo-Github/call-center-ai/core/realtime"
	"github.com/Cloudinfo-Github/call-center-ai/core/realtime/openai"
	"github.com/Cloudinfo-Github/call-center-ai/core/tools"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

// AudioSource yields raw caller audio frames, already encoded per the
// session's input encoding. The source ending means the caller is done
// speaking, not that the session is over.
type AudioSource = iter.Seq[[]byte]

// AudioSink receives synthesized audio frames in arrival order.
type AudioSink func(audio []byte) error

// TransportDialer opens a transport for a configured session.
type TransportDialer func(ctx context.Context, config realtime.SessionConfig) (realtime.Transport, error)

// Handler starts realtime sessions. The zero value is not usable,
// construct it with [New].
type Handler struct {
	defaults realtime.SessionConfig
	dial     TransportDialer
}

// Option configures a [Handler].
type Option func(*Handler)

// WithTransportDialer replaces the default OpenAI realtime dialer.
func WithTransportDialer(dial TransportDialer) Option {
	return func(h *Handler) {
		h.dial = dial
	}
}

// WithDefaultConfig replaces the handler's baseline session config.
// Per-session overrides passed to [Handler.StartSession] still apply
// on top of it.
func WithDefaultConfig(config realtime.SessionConfig) Option {
	return func(h *Handler) {
		h.defaults = config
	}
}

// New constructs a session handler. Without options it dials the
// OpenAI realtime API with [realtime.DefaultSessionConfig].
func New(opts ...Option) *Handler {
	handler := &Handler{
		defaults: realtime.DefaultSessionConfig(),
		dial: func(ctx context.Context, config realtime.SessionConfig) (realtime.Transport, error) {
			return openai.NewClient().Connect(ctx, config)
		},
	}

	for _, opt := range opts {
		opt(handler)
	}

	return handler
}

// StartSession opens a session and returns an iterator over its
// events. The outbound audio pump and the inbound event pump share one
// lifetime: breaking out of the iteration, cancelling ctx, or a fatal
// transport error stops both and closes the transport exactly once.
//
// A connection failure surfaces as a single terminal
// [events.SessionError] and nothing else. Remote error events are
// surfaced but do not end the session; only transport-level failures
// do.
func (h *Handler) StartSession(
	ctx context.Context,
	source AudioSource,
	executor tools.Executor,
	overrides ...realtime.SessionOption,
) iter.Seq[events.Event] {
	config := h.defaults.Merged(overrides...)

	return func(yield func(events.Event) bool) {
		ctx, span := tracer.Start(ctx, "realtime session")
		defer span.End()

		transport, err := h.dial(ctx, config)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to open session transport")
			yield(events.NewTerminalSessionError(err.Error()))
			return
		}

		var closeOnce sync.Once
		closeTransport := func() {
			closeOnce.Do(func() {
				if err := transport.Close(); err != nil {
					logger.Warn("failed to close session transport", "error", err)
				}
			})
		}

		pumps, pumpCtx := errgroup.WithContext(ctx)
		pumpCtx, cancel := context.WithCancel(pumpCtx)
		defer func() {
			cancel()
			// Closing unblocks a pump stuck on a socket write.
			closeTransport()
			if err := pumps.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("outbound audio pump failed", "error", err)
			}
		}()

		pumps.Go(func() error {
			return pumpAudio(pumpCtx, source, transport)
		})

		dispatcher := &dispatcher{transport: transport, executor: executor}
		for raw, err := range transport.Events(pumpCtx) {
			if err != nil {
				span.RecordError(err)
				yield(events.NewTerminalSessionError(err.Error()))
				return
			}

			event, ok := dispatcher.dispatch(pumpCtx, raw)
			if !ok {
				continue
			}
			if !yield(event) {
				return
			}
		}
	}
}

// pumpAudio forwards source frames to the transport until the source
// is exhausted or the session ends. A frame that fails to send is
// logged and skipped; the session only ends through the transport
// closing or the context.
func pumpAudio(ctx context.Context, source AudioSource, transport realtime.Transport) error {
	for frame := range source {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := transport.SendAudio(frame); err != nil {
			if errors.Is(err, realtime.ErrTransportClosed) || ctx.Err() != nil {
				return nil
			}
			logger.Warn("failed to forward audio frame", "error", err)
		}
	}

	if err := transport.CommitInput(); err != nil && !errors.Is(err, realtime.ErrTransportClosed) {
		logger.Warn("failed to commit caller audio", "error", err)
	}
	return nil
}
