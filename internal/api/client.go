package api

import (
	"context"
	"fmt"
)

// Client defines the remote todo service operations.
// Every non-nil error returned by a Client is a *TransportError; application
// failures are reported through the envelope's ResultCode instead.
type Client interface {
	// Me reports the currently authenticated user.
	Me(ctx context.Context) (Envelope[MeData], error)

	// Login starts a session with the given credentials.
	Login(ctx context.Context, params LoginParams) (Envelope[LoginData], error)

	// Logout ends the current session.
	Logout(ctx context.Context) (Envelope[Empty], error)

	// GetTodoLists returns all lists in server order.
	GetTodoLists(ctx context.Context) (Envelope[[]TodoList], error)

	// CreateTodoList creates a list and returns it.
	CreateTodoList(ctx context.Context, title string) (Envelope[Item[TodoList]], error)

	// UpdateTodoList renames a list.
	UpdateTodoList(ctx context.Context, listID, title string) (Envelope[Empty], error)

	// DeleteTodoList deletes a list and all of its tasks.
	DeleteTodoList(ctx context.Context, listID string) (Envelope[Empty], error)

	// GetTasks returns the tasks of a list in server order.
	GetTasks(ctx context.Context, listID string) (Envelope[[]Task], error)

	// CreateTask creates a task in a list and returns it.
	CreateTask(ctx context.Context, listID, title string) (Envelope[Item[Task]], error)

	// UpdateTask replaces a task's fields with model.
	UpdateTask(ctx context.Context, listID, taskID string, model UpdateTaskModel) (Envelope[Item[Task]], error)

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, listID, taskID string) (Envelope[Empty], error)
}

// TransportError reports a call that could not complete: network failure,
// timeout, non-2xx status or an undecodable response body.
type TransportError struct {
	// Op names the failed call, e.g. "GET todo-lists".
	Op string

	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int

	// Message is a human-readable description, preferring a server-supplied
	// message over the generic transport text.
	Message string

	// Err is the underlying error, if any.
	Err error
}

func (e *TransportError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s failed", e.Op)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// OKEnvelope wraps data in a successful envelope.
func OKEnvelope[T any](data T) Envelope[T] {
	return Envelope[T]{ResultCode: ResultOK, Messages: []string{}, Data: data}
}

// ErrorEnvelope builds a failed envelope carrying messages.
func ErrorEnvelope[T any](messages ...string) Envelope[T] {
	return Envelope[T]{ResultCode: ResultError, Messages: messages}
}
