// Package exitcode defines exit codes for the CLI.
package exitcode

import (
	"errors"
	"net/http"

	"todosync/internal/api"
	"todosync/internal/state"
)

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, not found, ambiguous,
	// rejected by the server).
	UserError = 1

	// AuthError indicates an auth/config error.
	AuthError = 2

	// BackendError indicates a backend/API/network error.
	BackendError = 3
)

// FromError maps an operation error to an exit code. Transport failures
// with an auth status map to AuthError; other transport failures to
// BackendError; everything else is a user error.
func FromError(err error) int {
	if err == nil {
		return Success
	}
	rej, ok := state.Rejection(err)
	if !ok || rej.Kind != state.KindTransport {
		return UserError
	}
	var te *api.TransportError
	if errors.As(err, &te) && (te.StatusCode == http.StatusUnauthorized || te.StatusCode == http.StatusForbidden) {
		return AuthError
	}
	return BackendError
}
