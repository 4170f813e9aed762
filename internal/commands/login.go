package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todosync/internal/api"
	"todosync/internal/config"
	"todosync/internal/exitcode"
	"todosync/internal/state"
)

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	email    string
	password string
	remember bool
}

// SetCredentials sets the login credentials (for testing).
func (c *LoginCmd) SetCredentials(email, password string) {
	c.email = email
	c.password = password
}

func (c *LoginCmd) Name() string       { return "login" }
func (c *LoginCmd) Aliases() []string  { return nil }
func (c *LoginCmd) Synopsis() string   { return "Start a session" }
func (c *LoginCmd) Usage() string      { return "todosync login [--email <email>] [--password <password>] [--remember]" }
func (c *LoginCmd) NeedsBackend() bool { return true }
func (c *LoginCmd) NeedsAuth() bool    { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.password, "password", "", "")
	fs.BoolVar(&c.remember, "remember", false, "")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, store *state.Store, args []string, out, errOut io.Writer) int {
	// Check if already logged in
	_, err := store.ProbeSession(ctx, state.SuppressGlobalError())
	if err == nil {
		if !cfg.Quiet {
			fmt.Fprintln(out, "already logged in")
		}
		return exitcode.Success
	}
	if state.IsKind(err, state.KindTransport) {
		return fail(errOut, err)
	}

	params := api.LoginParams{Email: c.email, Password: c.password, RememberMe: c.remember}
	if err := store.Login(ctx, params, state.SuppressGlobalError()); err != nil {
		code := fail(errOut, err)
		if code == exitcode.UserError {
			// A rejected login exits with the auth code.
			return exitcode.AuthError
		}
		return code
	}

	return printOK(out, cfg.Quiet)
}
