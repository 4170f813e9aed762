package state

import (
	"errors"
	"fmt"

	"todosync/internal/api"
)

// FallbackError is shown when a failure carries no message of its own.
const FallbackError = "Some error occurred"

// ErrNotFound is the cause of a precondition rejection for an id that is not
// present in local state.
var ErrNotFound = errors.New("not found")

// ErrTitleRequired is the cause of a precondition rejection for a blank title.
var ErrTitleRequired = errors.New("title required")

// ErrorKind classifies a rejected operation.
type ErrorKind int

const (
	// KindTransport means the request could not complete.
	KindTransport ErrorKind = iota + 1

	// KindApplication means the server rejected the request.
	KindApplication

	// KindPrecondition means local state ruled the request out before any call.
	KindPrecondition
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindApplication:
		return "application"
	case KindPrecondition:
		return "precondition"
	default:
		return "unknown"
	}
}

// RejectError is the rejection value of a failed operation. Field errors are
// returned here for the caller to show next to its inputs; they never reach
// the global error.
type RejectError struct {
	Kind        ErrorKind
	Messages    []string
	FieldErrors []api.FieldError
	Err         error
}

func (e *RejectError) Error() string {
	if len(e.Messages) > 0 {
		return e.Messages[0]
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return FallbackError
}

func (e *RejectError) Unwrap() error {
	return e.Err
}

// Rejection returns the *RejectError in err's chain, if any.
func Rejection(err error) (*RejectError, bool) {
	var rej *RejectError
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}

// IsKind reports whether err is a rejection of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	rej, ok := Rejection(err)
	return ok && rej.Kind == kind
}

// CallOption adjusts how a single operation reports failures.
type CallOption func(*callOptions)

type callOptions struct {
	showError bool
}

// SuppressGlobalError keeps a failure out of the global error. The status is
// still set to failed and the rejection still carries every message.
func SuppressGlobalError() CallOption {
	return func(o *callOptions) {
		o.showError = false
	}
}

func newCallOptions(opts []CallOption) callOptions {
	o := callOptions{showError: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// handleAppError records a non-OK envelope and builds the rejection.
func (s *Store) handleAppError(resultCode api.ResultCode, messages []string, fieldErrors []api.FieldError, showError bool) *RejectError {
	var events []Event
	if showError {
		msg := FallbackError
		if len(messages) > 0 {
			msg = messages[0]
		}
		events = append(events, AppErrorSet{Error: msg})
	}
	events = append(events, AppStatusSet{Status: StatusFailed})
	s.Dispatch(events...)

	return &RejectError{
		Kind:        KindApplication,
		Messages:    messages,
		FieldErrors: fieldErrors,
		Err:         fmt.Errorf("result code %d", resultCode),
	}
}

// handleNetworkError records a transport failure and builds the rejection.
func (s *Store) handleNetworkError(err error, showError bool) *RejectError {
	msg := err.Error()
	if msg == "" {
		msg = FallbackError
	}
	var events []Event
	if showError {
		events = append(events, AppErrorSet{Error: msg})
	}
	events = append(events, AppStatusSet{Status: StatusFailed})
	s.Dispatch(events...)

	return &RejectError{
		Kind:     KindTransport,
		Messages: []string{msg},
		Err:      err,
	}
}

// precondition builds a rejection for a request ruled out by local state.
// The shared status is left untouched.
func precondition(err error, format string, args ...any) *RejectError {
	return &RejectError{
		Kind:     KindPrecondition,
		Messages: []string{fmt.Sprintf(format, args...)},
		Err:      err,
	}
}
