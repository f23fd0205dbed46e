// Package realtime defines the duplex transport boundary to a speech-capable
// realtime session service. Implementations live in subpackages; the session
// handler only depends on the contract here.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// RawEvent is one inbound message from the session service. The transport
// only extracts the discriminant type; interpreting the payload is the
// session handler's job.
type RawEvent struct {
	Type    string
	Payload json.RawMessage
}

// Transport is a negotiated duplex channel to the session service. It must
// support one concurrent writer (SendAudio/SendToolResult) and one concurrent
// reader (Events) on the same handle without external locking.
type Transport interface {
	// SendAudio forwards one binary audio frame to the service.
	SendAudio(audio []byte) error

	// SendToolResult replies to a tool invocation, correlated by the opaque
	// call id the service assigned.
	SendToolResult(callID string, result map[string]any) error

	// CommitInput signals end of caller audio input. Sessions using server
	// side speech detection do not require it, but it is always safe to send.
	CommitInput() error

	// Events returns the inbound event sequence. The sequence ends when the
	// transport closes; an orderly close ends it without yielding an error,
	// an abrupt one yields a final non-nil error.
	Events(ctx context.Context) func(func(RawEvent, error) bool)

	// Close tears the connection down. Idempotent.
	Close() error
}

// ErrTransportClosed reports an operation on a closed transport.
var ErrTransportClosed = errors.New("transport closed")

// ConnectError means the session could not be opened at all. Fatal: the
// handler surfaces it as a single terminal event and ends the sequence.
type ConnectError struct {
	Err error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("failed to open session transport: %v", e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// SendError means one outbound message failed. Non-fatal unless the
// transport itself reports closure.
type SendError struct {
	Err error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("failed to send to session transport: %v", e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }
