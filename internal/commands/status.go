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
	Register(&StatusCmd{})
}

// StatusCmd implements the status command.
type StatusCmd struct{}

func (c *StatusCmd) Name() string       { return "status" }
func (c *StatusCmd) Aliases() []string  { return []string{"whoami"} }
func (c *StatusCmd) Synopsis() string   { return "Show session status" }
func (c *StatusCmd) Usage() string      { return "todosync status [common flags]" }
func (c *StatusCmd) NeedsBackend() bool { return true }
func (c *StatusCmd) NeedsAuth() bool    { return false }

func (c *StatusCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *StatusCmd) Run(ctx context.Context, cfg *config.Config, store *state.Store, args []string, out, errOut io.Writer) int {
	me, err := store.ProbeSession(ctx, state.SuppressGlobalError())
	if state.IsKind(err, state.KindTransport) {
		return fail(errOut, err)
	}

	if cfg.Settings.Backend != "" {
		fmt.Fprintf(out, "backend: %s\n", cfg.Settings.Backend)
	}
	if err != nil {
		fmt.Fprintln(out, "not logged in")
		return exitcode.Success
	}

	switch {
	case me.Email != "":
		fmt.Fprintf(out, "logged in as %s (%s)\n", me.Login, me.Email)
	case me.Login != "":
		fmt.Fprintf(out, "logged in as %s\n", me.Login)
	default:
		fmt.Fprintln(out, "logged in")
	}
	return exitcode.Success
}
