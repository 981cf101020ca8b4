package pipeline

import (
	"fmt"

	"klik/internal/domain"
)

// TransportError reports a network-level failure talking to the backend,
// including non-2xx HTTP responses. Retrying may succeed.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Code classifies this error for session state reporting.
func (e *TransportError) Code() domain.ErrorCode { return domain.ErrorCodeNetwork }

// DecodeError reports a response body that does not match the expected
// schema. Retrying the same call will not change a malformed contract.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: invalid response: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Code() domain.ErrorCode { return domain.ErrorCodeProtocol }

// RunFailedError reports a run the backend explicitly marked FAILED.
type RunFailedError struct {
	RunID  string
	Reason string
}

func (e *RunFailedError) Error() string { return e.Reason }

func (e *RunFailedError) Code() domain.ErrorCode { return domain.ErrorCodePipelineFailed }

// PollTimeoutError reports a poll cycle that exhausted its attempt budget
// without reaching a terminal status. The backend run may still be going;
// the client gives up.
type PollTimeoutError struct {
	RunID    string
	Attempts int
}

func (e *PollTimeoutError) Error() string {
	return fmt.Sprintf("polling timeout after %d attempts", e.Attempts)
}

func (e *PollTimeoutError) Code() domain.ErrorCode { return domain.ErrorCodeTimeout }
