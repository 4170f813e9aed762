package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"todosync/internal/config"
	"todosync/internal/exitcode"
	"todosync/internal/output"
	"todosync/internal/state"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `todosync` (no args) and `todosync list <list-name>`.
type ListCmd struct {
	filter string
}

// SetFilter sets the filter flag (for testing).
func (c *ListCmd) SetFilter(filter string) {
	c.filter = filter
}

func (c *ListCmd) Name() string       { return "list" }
func (c *ListCmd) Aliases() []string  { return nil }
func (c *ListCmd) Synopsis() string   { return "List tasks" }
func (c *ListCmd) Usage() string      { return "todosync list [--filter all|active|completed] [<list-name>]" }
func (c *ListCmd) NeedsBackend() bool { return true }
func (c *ListCmd) NeedsAuth() bool    { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.filter, "filter", "", "")
	fs.StringVar(&c.filter, "f", "", "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, store *state.Store, args []string, out, errOut io.Writer) int {
	filter, err := state.ParseFilter(c.filter)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	// If no args, list all lists with their tasks
	if len(args) == 0 {
		return c.listAll(ctx, cfg, store, filter, out, errOut)
	}

	listName := strings.TrimSpace(strings.Join(args, " "))
	if listName == "" {
		fmt.Fprintln(errOut, "error: list name required")
		return exitcode.UserError
	}
	return c.listOne(ctx, store, listName, filter, out, errOut)
}

// listAll prints every non-empty list section (todosync with no args).
func (c *ListCmd) listAll(ctx context.Context, cfg *config.Config, store *state.Store, filter state.Filter, out, errOut io.Writer) int {
	if err := store.FetchAll(ctx); err != nil {
		return fail(errOut, err)
	}

	hasAnyTasks := false
	for i, list := range store.Lists() {
		store.SetFilter(list.ID, filter)
		if printSection(out, store, listLetter(i), list.ID, false) {
			hasAnyTasks = true
		}
	}

	if !hasAnyTasks && !cfg.Quiet {
		fmt.Fprintln(out, "no tasks found")
	}
	return exitcode.Success
}

// listOne prints a single list section, even if empty.
func (c *ListCmd) listOne(ctx context.Context, store *state.Store, listName string, filter state.Filter, out, errOut io.Writer) int {
	if err := store.FetchLists(ctx); err != nil {
		return fail(errOut, err)
	}
	list, err := resolveListArg(store, listName)
	if err != nil {
		return fail(errOut, err)
	}
	if err := store.FetchTasks(ctx, list.ID); err != nil {
		return fail(errOut, err)
	}

	store.SetFilter(list.ID, filter)
	printSection(out, store, letterOf(store, list.ID), list.ID, true)
	return exitcode.Success
}

// printSection prints a list header and its visible tasks numbered by their
// position in the full list, so numbers stay valid as task references.
// Reports whether any task was printed.
func printSection(out io.Writer, store *state.Store, letter rune, listID string, showEmpty bool) bool {
	list, ok := store.List(listID)
	if !ok {
		return false
	}
	all, _ := store.Tasks(listID)
	visible := store.VisibleTasks(listID)
	if len(visible) == 0 && !showEmpty {
		return false
	}

	output.FormatListHeader(out, letter, list)
	for i, task := range all {
		if list.Filter.Match(task.Status) {
			output.FormatTask(out, i+1, task)
		}
	}
	return len(visible) > 0
}

// letterOf returns the reference letter of a list.
func letterOf(store *state.Store, listID string) rune {
	for i, l := range store.Lists() {
		if l.ID == listID {
			return listLetter(i)
		}
	}
	return '-'
}
