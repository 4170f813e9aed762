package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todosync/internal/config"
	"todosync/internal/exitcode"
	"todosync/internal/state"
)

func init() {
	Register(&LogoutCmd{})
}

// LogoutCmd implements the logout command.
type LogoutCmd struct{}

func (c *LogoutCmd) Name() string       { return "logout" }
func (c *LogoutCmd) Aliases() []string  { return nil }
func (c *LogoutCmd) Synopsis() string   { return "End the session" }
func (c *LogoutCmd) Usage() string      { return "todosync logout [common flags]" }
func (c *LogoutCmd) NeedsBackend() bool { return true }
func (c *LogoutCmd) NeedsAuth() bool    { return false }

func (c *LogoutCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LogoutCmd) Run(ctx context.Context, cfg *config.Config, store *state.Store, args []string, out, errOut io.Writer) int {
	if !store.Session().IsLoggedIn {
		_, err := store.ProbeSession(ctx, state.SuppressGlobalError())
		if state.IsKind(err, state.KindTransport) {
			return fail(errOut, err)
		}
		if err != nil {
			if !cfg.Quiet {
				fmt.Fprintln(out, "not logged in")
			}
			return exitcode.Success
		}
	}

	if err := store.Logout(ctx); err != nil {
		return fail(errOut, err)
	}
	return printOK(out, cfg.Quiet)
}
