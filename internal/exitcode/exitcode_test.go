package exitcode_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"todosync/internal/api"
	"todosync/internal/exitcode"
	"todosync/internal/state"
	"todosync/internal/testutil"
)

func TestFromError(t *testing.T) {
	ctx := context.Background()
	client := testutil.NewFakeClient()
	client.SetLoggedIn(true)
	store := state.NewStore(client)

	client.Errs[testutil.OpGetTodoLists] = &api.TransportError{Message: "Network Error"}
	transport := store.FetchLists(ctx)

	client.Errs[testutil.OpGetTodoLists] = &api.TransportError{StatusCode: http.StatusUnauthorized, Message: "denied"}
	unauthorized := store.FetchLists(ctx)

	client.Rejects[testutil.OpCreateTodoList] = testutil.Rejection{Messages: []string{"Title too long"}}
	_, application := store.CreateList(ctx, "x")

	precondition := store.DeleteList(ctx, "missing")

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitcode.Success},
		{"transport", transport, exitcode.BackendError},
		{"unauthorized", unauthorized, exitcode.AuthError},
		{"application", application, exitcode.UserError},
		{"precondition", precondition, exitcode.UserError},
		{"plain", errors.New("list not found: x"), exitcode.UserError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitcode.FromError(tt.err); got != tt.want {
				t.Errorf("FromError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
