package commands

import (
	"context"
	"flag"
	"io"

	"todosync/internal/config"
	"todosync/internal/state"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct {
	listName string
}

func (c *RmCmd) Name() string       { return "rm" }
func (c *RmCmd) Aliases() []string  { return nil }
func (c *RmCmd) Synopsis() string   { return "Delete tasks" }
func (c *RmCmd) Usage() string      { return "todosync rm [--list <list-name>] <ref>..." }
func (c *RmCmd) NeedsBackend() bool { return true }
func (c *RmCmd) NeedsAuth() bool    { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, store *state.Store, args []string, out, errOut io.Writer) int {
	refs, err := ParseTaskRefs(args)
	if err != nil {
		return fail(errOut, err)
	}

	// Resolve every reference before deleting, so later numbers don't shift.
	targets, err := resolveTargets(ctx, store, c.listName, refs)
	if err != nil {
		return fail(errOut, err)
	}

	for _, t := range targets {
		if err := store.DeleteTask(ctx, t.list.ID, t.task.ID); err != nil {
			return fail(errOut, err)
		}
	}
	return printOK(out, cfg.Quiet)
}
