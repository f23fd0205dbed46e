// Package events defines the closed set of normalized session events.
//
// The remote realtime service emits a vendor-defined stream of raw messages;
// the session handler maps each of them to at most one of the event kinds
// here. A consumer can therefore switch exhaustively over the five cases:
//
//   - AudioDelta (session.audio_delta): synthesized speech audio frame.
//   - TextDelta (session.text_delta): streamed response text segment.
//   - ToolCall (session.tool_call): completed tool round-trip, success or
//     failure, with the arguments and result payloads.
//   - Interruption (session.interruption): the caller started speaking while
//     a response was being delivered.
//   - SessionError (session.error): a contained per-event failure, or, when
//     Terminal is set, the reason the event sequence is about to end.
//
// Timestamps are assigned at arrival; the wire protocol does not carry
// per-delta timestamps in all server versions.
package events
