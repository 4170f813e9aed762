package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"todosync/internal/config"
	"todosync/internal/exitcode"
	"todosync/internal/state"
)

func init() {
	Register(&RenameListCmd{})
}

// RenameListCmd implements the renamelist command.
type RenameListCmd struct{}

func (c *RenameListCmd) Name() string       { return "renamelist" }
func (c *RenameListCmd) Aliases() []string  { return nil }
func (c *RenameListCmd) Synopsis() string   { return "Rename a list" }
func (c *RenameListCmd) Usage() string      { return "todosync renamelist [common flags] <list> <new-name...>" }
func (c *RenameListCmd) NeedsBackend() bool { return true }
func (c *RenameListCmd) NeedsAuth() bool    { return true }

func (c *RenameListCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RenameListCmd) Run(ctx context.Context, cfg *config.Config, store *state.Store, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "error: list name required")
		return exitcode.UserError
	}
	title := strings.TrimSpace(strings.Join(args[1:], " "))
	if title == "" {
		fmt.Fprintln(errOut, "error: new list name required")
		return exitcode.UserError
	}

	if err := store.FetchLists(ctx); err != nil {
		return fail(errOut, err)
	}
	list, err := resolveListArg(store, args[0])
	if err != nil {
		return fail(errOut, err)
	}

	if err := store.RenameList(ctx, list.ID, title); err != nil {
		return fail(errOut, err)
	}
	return printOK(out, cfg.Quiet)
}
