package events

// KindSessionError identifies a surfaced session failure.
const KindSessionError Kind = "session.error"

// SessionError surfaces a failure to the consumer. Non-terminal errors are
// contained: the session keeps running. Terminal is set on the last event
// before the sequence ends because of a connection or transport failure.
type SessionError struct {
	Base
	Detail   string
	Terminal bool
}

func NewSessionError(detail string) SessionError {
	return SessionError{Base: NewBase(KindSessionError), Detail: detail}
}

func NewTerminalSessionError(detail string) SessionError {
	err := NewSessionError(detail)
	err.Terminal = true
	return err
}
