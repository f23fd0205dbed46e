package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/Cloudinfo-Github/call-center-ai/core/realtime"
)

// Session is one open duplex connection to the realtime service. Send
// methods and the event sequence may be used from different goroutines: the
// writer side is serialized by a mutex, the reader side is single-consumer.
type Session struct {
	conn *websocket.Conn

	writeMu   sync.Mutex
	closeOnce sync.Once
	closed    atomic.Bool
	closeErr  error
}

var _ realtime.Transport = (*Session)(nil)

func (s *Session) sendSessionUpdate(config realtime.SessionConfig) error {
	return s.sendMessage(sessionUpdateMessage{
		Type: "session.update",
		Session: sessionSettings{
			Modalities:        config.Modalities,
			Instructions:      config.Instructions,
			Voice:             config.Voice,
			InputAudioFormat:  config.InputAudio.Format.Name(),
			OutputAudioFormat: config.OutputAudio.Format.Name(),
			Temperature:       config.Temperature,
			Tools:             config.Tools,
			ToolChoice:        "auto",
			TurnDetection: &turnDetection{
				Type:              "server_vad",
				SilenceDurationMs: 500,
				InterruptResponse: true,
			},
		},
	})
}

func (s *Session) SendAudio(audio []byte) error {
	if err := s.sendMessage(audioAppendMessage{
		Type:  "input_audio_buffer.append",
		Audio: base64.StdEncoding.EncodeToString(audio),
	}); err != nil {
		return &realtime.SendError{Err: err}
	}
	return nil
}

func (s *Session) SendToolResult(callID string, result map[string]any) error {
	output, err := json.Marshal(result)
	if err != nil {
		return &realtime.SendError{Err: fmt.Errorf("failed to encode tool result: %w", err)}
	}

	if err := s.sendMessage(itemCreateMessage{
		Type: "conversation.item.create",
		Item: conversationItem{
			Type:   "function_call_output",
			CallID: callID,
			Output: string(output),
		},
	}); err != nil {
		return &realtime.SendError{Err: err}
	}

	// The service does not resume the turn until a new response is requested.
	if err := s.sendMessage(responseCreateMessage{Type: "response.create"}); err != nil {
		return &realtime.SendError{Err: err}
	}
	return nil
}

func (s *Session) CommitInput() error {
	if err := s.sendMessage(audioCommitMessage{Type: "input_audio_buffer.commit"}); err != nil {
		return &realtime.SendError{Err: err}
	}
	return nil
}

// Events yields inbound messages until the connection closes. An orderly
// close ends the sequence silently; an abrupt one yields a final error.
func (s *Session) Events(ctx context.Context) func(func(realtime.RawEvent, error) bool) {
	return func(yield func(realtime.RawEvent, error) bool) {
		for {
			_, message, err := s.conn.ReadMessage()
			if err != nil {
				if s.closed.Load() || ctx.Err() != nil {
					return
				}
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					return
				}
				yield(realtime.RawEvent{}, fmt.Errorf("failed to read from session socket: %w", err))
				return
			}

			if ctx.Err() != nil {
				return
			}

			var parsed struct {
				Type string `json:"type"`
			}
			if err := json.Unmarshal(message, &parsed); err != nil {
				logger.Warn("dropping unparseable session message", "error", err)
				continue
			}

			if !yield(realtime.RawEvent{Type: parsed.Type, Payload: message}, nil) {
				return
			}
		}
	}
}

// Close tears the connection down. Safe to call multiple times and
// concurrently with in-flight reads and writes.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)

		s.writeMu.Lock()
		_ = s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.writeMu.Unlock()

		s.closeErr = s.conn.Close()
	})
	return s.closeErr
}

func (s *Session) sendMessage(message any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.closed.Load() {
		return realtime.ErrTransportClosed
	}

	if err := s.conn.WriteJSON(message); err != nil {
		return fmt.Errorf("failed to write to session socket: %w", err)
	}
	return nil
}
