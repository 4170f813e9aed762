package commands

import (
	"context"
	"flag"
	"io"

	"todosync/internal/api"
	"todosync/internal/config"
	"todosync/internal/state"
)

func init() {
	Register(&DoneCmd{})
	Register(&UndoneCmd{})
}

// DoneCmd implements the done command.
type DoneCmd struct {
	listName string
}

// SetListName sets the list name (for testing).
func (c *DoneCmd) SetListName(name string) {
	c.listName = name
}

func (c *DoneCmd) Name() string       { return "done" }
func (c *DoneCmd) Aliases() []string  { return nil }
func (c *DoneCmd) Synopsis() string   { return "Mark tasks completed" }
func (c *DoneCmd) Usage() string      { return "todosync done [--list <list-name>] <ref>..." }
func (c *DoneCmd) NeedsBackend() bool { return true }
func (c *DoneCmd) NeedsAuth() bool    { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, store *state.Store, args []string, out, errOut io.Writer) int {
	return runSetStatus(ctx, cfg, store, c.listName, api.StatusCompleted, args, out, errOut)
}

// UndoneCmd implements the undone command.
type UndoneCmd struct {
	listName string
}

func (c *UndoneCmd) Name() string       { return "undone" }
func (c *UndoneCmd) Aliases() []string  { return []string{"reopen"} }
func (c *UndoneCmd) Synopsis() string   { return "Mark tasks not completed" }
func (c *UndoneCmd) Usage() string      { return "todosync undone [--list <list-name>] <ref>..." }
func (c *UndoneCmd) NeedsBackend() bool { return true }
func (c *UndoneCmd) NeedsAuth() bool    { return true }

func (c *UndoneCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
}

func (c *UndoneCmd) Run(ctx context.Context, cfg *config.Config, store *state.Store, args []string, out, errOut io.Writer) int {
	return runSetStatus(ctx, cfg, store, c.listName, api.StatusNew, args, out, errOut)
}

// runSetStatus resolves every reference, then updates the status of each
// task in turn. It stops at the first failure.
func runSetStatus(ctx context.Context, cfg *config.Config, store *state.Store, listName string, status api.TaskStatus, args []string, out, errOut io.Writer) int {
	refs, err := ParseTaskRefs(args)
	if err != nil {
		return fail(errOut, err)
	}

	targets, err := resolveTargets(ctx, store, listName, refs)
	if err != nil {
		return fail(errOut, err)
	}

	for _, t := range targets {
		if err := store.UpdateTask(ctx, t.list.ID, t.task.ID, state.TaskPatch{Status: &status}); err != nil {
			return fail(errOut, err)
		}
	}
	return printOK(out, cfg.Quiet)
}
