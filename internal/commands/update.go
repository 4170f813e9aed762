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
	"todosync/internal/output"
	"todosync/internal/state"
)

func init() {
	Register(&UpdateCmd{})
}

// optString is a string flag that remembers whether it was given.
type optString struct {
	value string
	set   bool
}

func (o *optString) String() string { return o.value }

func (o *optString) Set(v string) error {
	o.value = v
	o.set = true
	return nil
}

// ptr returns the flag value, or nil when the flag was not given.
func (o *optString) ptr() *string {
	if !o.set {
		return nil
	}
	v := o.value
	return &v
}

// UpdateCmd implements the update command.
type UpdateCmd struct {
	listName    string
	title       optString
	description optString
	status      optString
	priority    optString
	start       optString
	deadline    optString
}

func (c *UpdateCmd) Name() string       { return "update" }
func (c *UpdateCmd) Aliases() []string  { return []string{"edit"} }
func (c *UpdateCmd) Synopsis() string   { return "Change fields of a task" }
func (c *UpdateCmd) NeedsBackend() bool { return true }
func (c *UpdateCmd) NeedsAuth() bool    { return true }
func (c *UpdateCmd) Usage() string {
	return "todosync update [--list <list-name>] [--title <t>] [--description <d>] [--status <s>] [--priority <p>] [--start <date>] [--deadline <date>] <ref>"
}

func (c *UpdateCmd) RegisterFlags(fs *flag.FlagSet) {
	*c = UpdateCmd{}
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
	fs.Var(&c.title, "title", "")
	fs.Var(&c.description, "description", "")
	fs.Var(&c.status, "status", "")
	fs.Var(&c.priority, "priority", "")
	fs.Var(&c.start, "start", "")
	fs.Var(&c.deadline, "deadline", "")
}

func (c *UpdateCmd) Run(ctx context.Context, cfg *config.Config, store *state.Store, args []string, out, errOut io.Writer) int {
	patch, err := c.patch()
	if err != nil {
		return fail(errOut, err)
	}
	if patch.Empty() {
		fmt.Fprintln(errOut, "error: nothing to update")
		return exitcode.UserError
	}

	ref, err := ParseTaskRef(args)
	if err != nil {
		return fail(errOut, err)
	}
	targets, err := resolveTargets(ctx, store, c.listName, []TaskRef{ref})
	if err != nil {
		return fail(errOut, err)
	}

	t := targets[0]
	if err := store.UpdateTask(ctx, t.list.ID, t.task.ID, patch); err != nil {
		return fail(errOut, err)
	}
	return printOK(out, cfg.Quiet)
}

// patch builds the task patch from the given flags.
func (c *UpdateCmd) patch() (state.TaskPatch, error) {
	p := state.TaskPatch{
		Title:       c.title.ptr(),
		Description: c.description.ptr(),
		StartDate:   c.start.ptr(),
		Deadline:    c.deadline.ptr(),
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return state.TaskPatch{}, fmt.Errorf("title required")
	}
	if c.status.set {
		s, err := ParseStatus(c.status.value)
		if err != nil {
			return state.TaskPatch{}, err
		}
		p.Status = &s
	}
	if c.priority.set {
		pr, err := ParsePriority(c.priority.value)
		if err != nil {
			return state.TaskPatch{}, err
		}
		p.Priority = &pr
	}
	return p, nil
}

// ParseStatus converts a status name (or its number) to a TaskStatus.
func ParseStatus(s string) (api.TaskStatus, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for st := api.StatusNew; st <= api.StatusDraft; st++ {
		if name == st.String() || name == fmt.Sprint(int(st)) {
			return st, nil
		}
	}
	switch name {
	case "done":
		return api.StatusCompleted, nil
	case "open", "active":
		return api.StatusNew, nil
	}
	return 0, fmt.Errorf("invalid status: %s", s)
}

// ParsePriority converts a priority name (or its number) to a TaskPriority.
func ParsePriority(s string) (api.TaskPriority, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for p := api.PriorityLow; p <= api.PriorityLater; p++ {
		if name == output.PriorityName(p) || name == fmt.Sprint(int(p)) {
			return p, nil
		}
	}
	return 0, fmt.Errorf("invalid priority: %s", s)
}
