package state

import (
	"context"

	"todosync/internal/api"
)

// run executes one remote operation:
//
//	status=loading → call → transport error | non-OK envelope | OK
//
// On OK the succeeded status and the events built by commit are dispatched as
// one batch, status first. Failures go through the classifier and come back
// as a *RejectError. run always leaves the status at succeeded or failed.
func run[T any](ctx context.Context, s *Store, op string, o callOptions,
	call func(context.Context) (api.Envelope[T], error),
	commit func(T) []Event,
) (T, error) {
	var zero T

	s.Dispatch(AppStatusSet{Status: StatusLoading})
	s.log.Debug("operation started", "op", op)

	env, err := call(ctx)
	if err != nil {
		s.log.Debug("operation failed", "op", op, "kind", KindTransport, "err", err)
		return zero, s.handleNetworkError(err, o.showError)
	}
	if !env.OK() {
		s.log.Debug("operation rejected", "op", op, "result_code", env.ResultCode, "messages", env.Messages)
		return zero, s.handleAppError(env.ResultCode, env.Messages, env.FieldErrors, o.showError)
	}

	events := []Event{AppStatusSet{Status: StatusSucceeded}}
	if commit != nil {
		events = append(events, commit(env.Data)...)
	}
	s.Dispatch(events...)
	s.log.Debug("operation succeeded", "op", op)
	return env.Data, nil
}
