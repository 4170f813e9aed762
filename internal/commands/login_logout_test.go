package commands_test

import (
	"context"
	"strings"
	"testing"

	"todosync/internal/api"
	"todosync/internal/commands"
	"todosync/internal/exitcode"
	"todosync/internal/state"
	"todosync/internal/testutil"
)

// TestLoginCommand_Success verifies login starts a session
func TestLoginCommand_Success(t *testing.T) {
	client := testutil.NewFakeClient()
	store := state.NewStore(client)

	cmd := &commands.LoginCmd{}
	cmd.SetCredentials("user@example.com", "secret")
	stdout, stderr, code := runWithStore(t, cmd, store, nil, false)

	expectCode(t, code, exitcode.Success)
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", stdout)
	}
	if !store.Session().IsLoggedIn {
		t.Error("expected store to be logged in")
	}
}

// TestLoginCommand_AlreadyLoggedIn verifies no login call is made with a live session
func TestLoginCommand_AlreadyLoggedIn(t *testing.T) {
	client := testutil.NewFakeClient()
	client.SetLoggedIn(true)

	stdout, _, code := runCommand(t, &commands.LoginCmd{}, client, nil, false)

	expectCode(t, code, exitcode.Success)
	if stdout != "already logged in\n" {
		t.Errorf("expected 'already logged in', got %q", stdout)
	}
	for _, c := range client.Calls() {
		if c == testutil.OpLogin {
			t.Error("login should not be called")
		}
	}
}

// TestLoginCommand_WrongPassword verifies a rejected login is an auth error
func TestLoginCommand_WrongPassword(t *testing.T) {
	client := testutil.NewFakeClient()
	store := state.NewStore(client)

	cmd := &commands.LoginCmd{}
	cmd.SetCredentials("user@example.com", "wrong")
	stdout, stderr, code := runWithStore(t, cmd, store, nil, false)

	expectCode(t, code, exitcode.AuthError)
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	if stderr != "error: Incorrect Email or Password\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	// Login failures stay out of the global error.
	if app := store.App(); app.Error != "" || app.Status != state.StatusFailed {
		t.Errorf("unexpected app state %+v", app)
	}
}

// TestLoginCommand_FieldErrors verifies field errors are listed under the message
func TestLoginCommand_FieldErrors(t *testing.T) {
	client := testutil.NewFakeClient()
	client.Rejects[testutil.OpLogin] = testutil.Rejection{
		Messages:    []string{"Enter valid Email"},
		FieldErrors: []api.FieldError{{Field: "email", Error: "Email is required"}},
	}

	_, stderr, code := runCommand(t, &commands.LoginCmd{}, client, nil, false)

	expectCode(t, code, exitcode.AuthError)
	if stderr != "error: Enter valid Email\n  email: Email is required\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// TestLoginCommand_Unreachable verifies a transport failure while probing
func TestLoginCommand_Unreachable(t *testing.T) {
	client := testutil.NewFakeClient()
	client.Errs[testutil.OpMe] = &api.TransportError{Op: "me", Message: "Network Error"}

	_, stderr, code := runCommand(t, &commands.LoginCmd{}, client, nil, false)

	expectCode(t, code, exitcode.BackendError)
	if !strings.HasPrefix(stderr, "error: backend error: ") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// TestLogoutCommand_EndsSession verifies logout ends the server session
func TestLogoutCommand_EndsSession(t *testing.T) {
	client := testutil.NewFakeClient()
	client.SetLoggedIn(true)
	store := state.NewStore(client)

	stdout, stderr, code := runWithStore(t, &commands.LogoutCmd{}, store, nil, false)

	expectCode(t, code, exitcode.Success)
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", stdout)
	}
	if store.Session().IsLoggedIn {
		t.Error("expected store to be logged out")
	}
	if _, err := store.ProbeSession(context.Background()); err == nil {
		t.Error("server session should be gone")
	}
}

// TestLogoutCommand_NotLoggedIn verifies logout handles not being logged in
func TestLogoutCommand_NotLoggedIn(t *testing.T) {
	client := testutil.NewFakeClient()

	stdout, stderr, code := runCommand(t, &commands.LogoutCmd{}, client, nil, false)

	expectCode(t, code, exitcode.Success)
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "not logged in\n" {
		t.Errorf("expected 'not logged in\\n', got %q", stdout)
	}
	for _, c := range client.Calls() {
		if c == testutil.OpLogout {
			t.Error("logout should not be called")
		}
	}
}

// TestLogoutCommand_NotLoggedInQuiet verifies logout is quiet when not logged in
func TestLogoutCommand_NotLoggedInQuiet(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.LogoutCmd{}, testutil.NewFakeClient(), nil, true)

	expectCode(t, code, exitcode.Success)
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "" {
		t.Errorf("expected no stdout in quiet mode, got %q", stdout)
	}
}

// TestStatusCommand reports the session for both states
func TestStatusCommand(t *testing.T) {
	client := testutil.NewFakeClient()

	stdout, _, code := runCommand(t, &commands.StatusCmd{}, client, nil, false)
	expectCode(t, code, exitcode.Success)
	if stdout != "backend: rest\nnot logged in\n" {
		t.Errorf("unexpected output %q", stdout)
	}

	client.SetLoggedIn(true)
	stdout, _, code = runCommand(t, &commands.StatusCmd{}, client, nil, false)
	expectCode(t, code, exitcode.Success)
	if stdout != "backend: rest\nlogged in as user (user@example.com)\n" {
		t.Errorf("unexpected output %q", stdout)
	}
}
