package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"todosync/internal/api"
	"todosync/internal/config"
	"todosync/internal/exitcode"
	"todosync/internal/state"
)

func init() {
	Register(&RmListCmd{})
}

// RmListCmd implements the rmlist command.
type RmListCmd struct {
	force bool
}

// SetForce sets the force flag (for testing).
func (c *RmListCmd) SetForce(force bool) {
	c.force = force
}

func (c *RmListCmd) Name() string       { return "rmlist" }
func (c *RmListCmd) Aliases() []string  { return nil }
func (c *RmListCmd) Synopsis() string   { return "Delete a list" }
func (c *RmListCmd) Usage() string      { return "todosync rmlist [--force] <list-name>" }
func (c *RmListCmd) NeedsBackend() bool { return true }
func (c *RmListCmd) NeedsAuth() bool    { return true }

func (c *RmListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.force, "force", false, "")
}

func (c *RmListCmd) Run(ctx context.Context, cfg *config.Config, store *state.Store, args []string, out, errOut io.Writer) int {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		fmt.Fprintln(errOut, "error: list name required")
		return exitcode.UserError
	}

	if err := store.FetchLists(ctx); err != nil {
		return fail(errOut, err)
	}
	list, err := ResolveList(store, name)
	if err != nil {
		return fail(errOut, err)
	}

	// Check if list has open tasks (unless --force)
	if !c.force {
		if err := store.FetchTasks(ctx, list.ID); err != nil {
			return fail(errOut, err)
		}
		tasks, _ := store.Tasks(list.ID)
		for _, t := range tasks {
			if t.Status != api.StatusCompleted {
				fmt.Fprintln(errOut, "error: list not empty (use --force)")
				return exitcode.UserError
			}
		}
	}

	if err := store.DeleteList(ctx, list.ID); err != nil {
		return fail(errOut, err)
	}
	return printOK(out, cfg.Quiet)
}
