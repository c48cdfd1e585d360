package agent

import "fmt"

// InvocationError is the single typed failure surfaced to callers of
// the streaming and non-streaming calls. It carries the session, the
// operation that failed, and the original error's type and message.
type InvocationError struct {
	SessionID string
	Op        string
	Cause     error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("agent invocation failed (session=%s, op=%s): %T: %v",
		e.SessionID, e.Op, e.Cause, e.Cause)
}

func (e *InvocationError) Unwrap() error {
	return e.Cause
}

func invocationErr(sessionID, op string, cause error) *InvocationError {
	return &InvocationError{SessionID: sessionID, Op: op, Cause: cause}
}

func errUnknownField(field string) error {
	return fmt.Errorf("unknown context field: %s", field)
}

func errVenueIndex(index int) error {
	return fmt.Errorf("no tracked venue at index %d", index)
}
