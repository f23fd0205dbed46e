package events

// KindToolCall identifies a completed tool round-trip.
const KindToolCall Kind = "session.tool_call"

// ToolCall records one tool invocation requested by the model, including the
// result that was sent back over the session. Failed is set when execution
// failed; Result then carries the failure payload that the remote side
// received.
type ToolCall struct {
	Base
	ID        string
	Name      string
	Arguments map[string]any
	Result    map[string]any
	Failed    bool
}

func NewToolCall(id, name string, arguments, result map[string]any) ToolCall {
	return ToolCall{Base: NewBase(KindToolCall), ID: id, Name: name, Arguments: arguments, Result: result}
}

func NewFailedToolCall(id, name string, arguments, result map[string]any) ToolCall {
	call := NewToolCall(id, name, arguments, result)
	call.Failed = true
	return call
}
