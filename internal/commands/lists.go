package commands

import (
	"context"
	"flag"
	"io"

	"todosync/internal/config"
	"todosync/internal/exitcode"
	"todosync/internal/output"
	"todosync/internal/state"
)

func init() {
	Register(&ListsCmd{})
}

// ListsCmd implements the lists command.
type ListsCmd struct{}

func (c *ListsCmd) Name() string       { return "lists" }
func (c *ListsCmd) Aliases() []string  { return nil }
func (c *ListsCmd) Synopsis() string   { return "Print all lists" }
func (c *ListsCmd) Usage() string      { return "todosync lists [common flags]" }
func (c *ListsCmd) NeedsBackend() bool { return true }
func (c *ListsCmd) NeedsAuth() bool    { return true }

func (c *ListsCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ListsCmd) Run(ctx context.Context, cfg *config.Config, store *state.Store, args []string, out, errOut io.Writer) int {
	if err := store.FetchLists(ctx); err != nil {
		return fail(errOut, err)
	}

	for i, list := range store.Lists() {
		output.FormatListName(out, listLetter(i), list)
	}

	return exitcode.Success
}
