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
	Register(&ShowCmd{})
}

// ShowCmd implements the show command.
type ShowCmd struct {
	listName string
}

func (c *ShowCmd) Name() string       { return "show" }
func (c *ShowCmd) Aliases() []string  { return nil }
func (c *ShowCmd) Synopsis() string   { return "Print every field of a task" }
func (c *ShowCmd) Usage() string      { return "todosync show [--list <list-name>] <ref>" }
func (c *ShowCmd) NeedsBackend() bool { return true }
func (c *ShowCmd) NeedsAuth() bool    { return true }

func (c *ShowCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
}

func (c *ShowCmd) Run(ctx context.Context, cfg *config.Config, store *state.Store, args []string, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args)
	if err != nil {
		return fail(errOut, err)
	}

	targets, err := resolveTargets(ctx, store, c.listName, []TaskRef{ref})
	if err != nil {
		return fail(errOut, err)
	}

	output.FormatTaskDetail(out, targets[0].task)
	return exitcode.Success
}
