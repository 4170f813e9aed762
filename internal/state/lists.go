package state

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"todosync/internal/api"
)

// FetchLists replaces every list with the server's collection. Task buckets
// follow in the same batch: one per returned list, none for anything else.
func (s *Store) FetchLists(ctx context.Context, opts ...CallOption) error {
	_, err := run(ctx, s, "fetch lists", newCallOptions(opts), s.client.GetTodoLists,
		func(lists []api.TodoList) []Event {
			return []Event{ListsReplaced{Lists: lists}}
		})
	return err
}

// FetchAll fetches the lists and then the tasks of every list.
// A failed list fetch stops immediately; failed task fetches are collected.
func (s *Store) FetchAll(ctx context.Context, opts ...CallOption) error {
	if err := s.FetchLists(ctx, opts...); err != nil {
		return err
	}
	var errs []error
	for _, l := range s.Lists() {
		if err := s.FetchTasks(ctx, l.ID, opts...); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", l.Title, err))
		}
	}
	return errors.Join(errs...)
}

// CreateList creates a list and prepends it together with an empty bucket.
func (s *Store) CreateList(ctx context.Context, title string, opts ...CallOption) (api.TodoList, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return api.TodoList{}, precondition(ErrTitleRequired, "list title required")
	}

	item, err := run(ctx, s, "create list", newCallOptions(opts),
		func(ctx context.Context) (api.Envelope[api.Item[api.TodoList]], error) {
			return s.client.CreateTodoList(ctx, title)
		},
		func(item api.Item[api.TodoList]) []Event {
			return []Event{ListAdded{List: item.Item}}
		})
	return item.Item, err
}

// RenameList changes a list's title.
func (s *Store) RenameList(ctx context.Context, listID, title string, opts ...CallOption) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return precondition(ErrTitleRequired, "list title required")
	}
	if _, ok := s.List(listID); !ok {
		return precondition(ErrNotFound, "list not found: %s", listID)
	}

	_, err := run(ctx, s, "rename list", newCallOptions(opts),
		func(ctx context.Context) (api.Envelope[api.Empty], error) {
			return s.client.UpdateTodoList(ctx, listID, title)
		},
		func(api.Empty) []Event {
			return []Event{ListTitleChanged{ListID: listID, Title: title}}
		})
	return err
}

// DeleteList deletes a list and drops its task bucket. The list's entity
// status is loading while the call is in flight and returns to idle if the
// call fails.
func (s *Store) DeleteList(ctx context.Context, listID string, opts ...CallOption) error {
	if _, ok := s.List(listID); !ok {
		return precondition(ErrNotFound, "list not found: %s", listID)
	}

	s.SetEntityStatus(listID, StatusLoading)
	_, err := run(ctx, s, "delete list", newCallOptions(opts),
		func(ctx context.Context) (api.Envelope[api.Empty], error) {
			return s.client.DeleteTodoList(ctx, listID)
		},
		func(api.Empty) []Event {
			return []Event{ListRemoved{ListID: listID}}
		})
	if err != nil {
		s.SetEntityStatus(listID, StatusIdle)
	}
	return err
}
