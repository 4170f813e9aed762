package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"todosync/internal/api"
	"todosync/internal/exitcode"
	"todosync/internal/state"
)

// maxLetters is the number of lists that get a reference letter.
const maxLetters = 26

// listLetter returns the reference letter of the list at index i, or '-'
// past the last letter.
func listLetter(i int) rune {
	if i >= maxLetters {
		return '-'
	}
	return 'a' + rune(i)
}

// ResolveList finds a list by title (case-insensitive, trimmed) or exact id.
func ResolveList(store *state.Store, name string) (state.ListRecord, error) {
	name = strings.TrimSpace(name)
	nameLower := strings.ToLower(name)

	var matches []state.ListRecord
	for _, l := range store.Lists() {
		if l.ID == name {
			return l, nil
		}
		if strings.ToLower(strings.TrimSpace(l.Title)) == nameLower {
			matches = append(matches, l)
		}
	}

	switch len(matches) {
	case 0:
		return state.ListRecord{}, fmt.Errorf("list not found: %s", name)
	case 1:
		return matches[0], nil
	default:
		return state.ListRecord{}, fmt.Errorf("ambiguous list name: %s", name)
	}
}

// ResolveListByLetter returns the list a reference letter points at.
func ResolveListByLetter(store *state.Store, letter rune) (state.ListRecord, error) {
	lists := store.Lists()
	i := int(letter - 'a')
	if i < 0 || i >= len(lists) || i >= maxLetters {
		return state.ListRecord{}, fmt.Errorf("list letter not found: %c", letter)
	}
	return lists[i], nil
}

// resolveListArg resolves a list given by title, id or a single reference letter.
func resolveListArg(store *state.Store, arg string) (state.ListRecord, error) {
	if len(arg) == 1 && isLetter(rune(arg[0])) {
		if l, err := ResolveListByLetter(store, rune(arg[0])); err == nil {
			return l, nil
		}
	}
	return ResolveList(store, arg)
}

// defaultList returns the first list in store order.
func defaultList(store *state.Store) (state.ListRecord, error) {
	lists := store.Lists()
	if len(lists) == 0 {
		return state.ListRecord{}, fmt.Errorf("no lists (run: todosync createlist <name>)")
	}
	return lists[0], nil
}

// target is a task picked by a reference.
type target struct {
	list state.ListRecord
	task api.Task
	num  int
}

// resolveTargets fetches the lists and the tasks of every referenced list,
// then maps each reference to its task. All references are resolved before
// the caller changes anything, so numbers refer to the listing the user saw.
func resolveTargets(ctx context.Context, store *state.Store, listName string, refs []TaskRef) ([]target, error) {
	for _, ref := range refs {
		if listName != "" && ref.HasLetter {
			return nil, fmt.Errorf("cannot use both --list and list letter")
		}
		if ref.TaskNum < 1 {
			return nil, fmt.Errorf("task number out of range: %d", ref.TaskNum)
		}
	}

	if err := store.FetchLists(ctx); err != nil {
		return nil, err
	}

	fetched := make(map[string]bool)
	targets := make([]target, 0, len(refs))
	for _, ref := range refs {
		var list state.ListRecord
		var err error
		switch {
		case listName != "":
			list, err = ResolveList(store, listName)
		case ref.HasLetter:
			list, err = ResolveListByLetter(store, ref.Letter)
		default:
			list, err = defaultList(store)
		}
		if err != nil {
			return nil, err
		}

		if !fetched[list.ID] {
			if err := store.FetchTasks(ctx, list.ID); err != nil {
				return nil, err
			}
			fetched[list.ID] = true
		}

		tasks, _ := store.Tasks(list.ID)
		if ref.TaskNum > len(tasks) {
			return nil, fmt.Errorf("task number out of range: %d", ref.TaskNum)
		}
		targets = append(targets, target{list: list, task: tasks[ref.TaskNum-1], num: ref.TaskNum})
	}
	return targets, nil
}

// fail prints err in the CLI's error format and returns the matching exit code.
// Field errors of a rejection are listed below the message.
func fail(errOut io.Writer, err error) int {
	code := exitcode.FromError(err)
	switch code {
	case exitcode.BackendError:
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	case exitcode.AuthError:
		fmt.Fprintf(errOut, "error: auth error: %v\n", err)
	default:
		fmt.Fprintf(errOut, "error: %v\n", err)
	}
	if rej, ok := state.Rejection(err); ok {
		for _, fe := range rej.FieldErrors {
			fmt.Fprintf(errOut, "  %s: %s\n", fe.Field, fe.Error)
		}
	}
	return code
}

// printOK prints the success line unless quiet.
func printOK(out io.Writer, quiet bool) int {
	if !quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
