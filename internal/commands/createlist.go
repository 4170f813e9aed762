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
	Register(&CreateListCmd{})
	Register(&AddListCmd{})
}

// CreateListCmd implements the createlist command.
type CreateListCmd struct{}

func (c *CreateListCmd) Name() string       { return "createlist" }
func (c *CreateListCmd) Aliases() []string  { return nil }
func (c *CreateListCmd) Synopsis() string   { return "Create a new list" }
func (c *CreateListCmd) Usage() string      { return "todosync createlist [common flags] <list-name>" }
func (c *CreateListCmd) NeedsBackend() bool { return true }
func (c *CreateListCmd) NeedsAuth() bool    { return true }

func (c *CreateListCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *CreateListCmd) Run(ctx context.Context, cfg *config.Config, store *state.Store, args []string, out, errOut io.Writer) int {
	return runCreateList(ctx, cfg, store, args, out, errOut)
}

// AddListCmd is an alias for CreateListCmd.
type AddListCmd struct{}

func (c *AddListCmd) Name() string       { return "addlist" }
func (c *AddListCmd) Aliases() []string  { return nil }
func (c *AddListCmd) Synopsis() string   { return "Create a new list (alias for createlist)" }
func (c *AddListCmd) Usage() string      { return "todosync addlist [common flags] <list-name>" }
func (c *AddListCmd) NeedsBackend() bool { return true }
func (c *AddListCmd) NeedsAuth() bool    { return true }

func (c *AddListCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *AddListCmd) Run(ctx context.Context, cfg *config.Config, store *state.Store, args []string, out, errOut io.Writer) int {
	return runCreateList(ctx, cfg, store, args, out, errOut)
}

// runCreateList is the shared implementation for createlist and addlist commands.
func runCreateList(ctx context.Context, cfg *config.Config, store *state.Store, args []string, out, errOut io.Writer) int {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		fmt.Fprintln(errOut, "error: list name required")
		return exitcode.UserError
	}

	// Check if list already exists
	if err := store.FetchLists(ctx); err != nil {
		return fail(errOut, err)
	}
	if _, err := ResolveList(store, name); err == nil {
		fmt.Fprintf(errOut, "error: list already exists: %s\n", name)
		return exitcode.UserError
	}

	if _, err := store.CreateList(ctx, name); err != nil {
		return fail(errOut, err)
	}
	return printOK(out, cfg.Quiet)
}
