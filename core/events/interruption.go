package events

// KindInterruption identifies caller speech starting mid-response.
const KindInterruption Kind = "session.interruption"

// Interruption signals that the caller began speaking while the model's
// response was still being delivered. Flushing any not-yet-played audio is
// the sink's policy, not the handler's.
type Interruption struct {
	Base
}

func NewInterruption() Interruption {
	return Interruption{Base: NewBase(KindInterruption)}
}
