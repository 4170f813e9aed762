package state

import (
	"context"
	"strings"

	"todosync/internal/api"
)

// FetchTasks replaces a list's bucket with the server's tasks in server order.
// A list the store does not hold is rejected before any call.
func (s *Store) FetchTasks(ctx context.Context, listID string, opts ...CallOption) error {
	if _, ok := s.Tasks(listID); !ok {
		return precondition(ErrNotFound, "list not found: %s", listID)
	}

	_, err := run(ctx, s, "fetch tasks", newCallOptions(opts),
		func(ctx context.Context) (api.Envelope[[]api.Task], error) {
			return s.client.GetTasks(ctx, listID)
		},
		func(tasks []api.Task) []Event {
			return []Event{TasksReplaced{ListID: listID, Tasks: tasks}}
		})
	return err
}

// CreateTask creates a task and prepends it to its list's bucket.
func (s *Store) CreateTask(ctx context.Context, listID, title string, opts ...CallOption) (api.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return api.Task{}, precondition(ErrTitleRequired, "task title required")
	}
	if _, ok := s.Tasks(listID); !ok {
		return api.Task{}, precondition(ErrNotFound, "list not found: %s", listID)
	}

	item, err := run(ctx, s, "create task", newCallOptions(opts),
		func(ctx context.Context) (api.Envelope[api.Item[api.Task]], error) {
			return s.client.CreateTask(ctx, listID, title)
		},
		func(item api.Item[api.Task]) []Event {
			task := item.Item
			if task.TodoListID == "" {
				task.TodoListID = listID
			}
			return []Event{TaskAdded{Task: task}}
		})
	if err != nil {
		return api.Task{}, err
	}
	if item.Item.TodoListID == "" {
		item.Item.TodoListID = listID
	}
	return item.Item, nil
}

// UpdateTask applies patch to a task.
//
// The remote call needs every field, so the current task is read from the
// store first and frozen into the payload. A task missing from the store is
// rejected with ErrNotFound before any call. On success only the patched
// fields are merged, at the task's current position.
func (s *Store) UpdateTask(ctx context.Context, listID, taskID string, patch TaskPatch, opts ...CallOption) error {
	current, ok := s.Task(listID, taskID)
	if !ok {
		s.log.Warn("task not found in the state", "list_id", listID, "task_id", taskID)
		return precondition(ErrNotFound, "task not found: %s", taskID)
	}
	model := patch.Model(current)

	_, err := run(ctx, s, "update task", newCallOptions(opts),
		func(ctx context.Context) (api.Envelope[api.Item[api.Task]], error) {
			return s.client.UpdateTask(ctx, listID, taskID, model)
		},
		func(api.Item[api.Task]) []Event {
			return []Event{TaskUpdated{ListID: listID, TaskID: taskID, Patch: patch}}
		})
	return err
}

// DeleteTask deletes a task from its list's bucket.
func (s *Store) DeleteTask(ctx context.Context, listID, taskID string, opts ...CallOption) error {
	if _, ok := s.Task(listID, taskID); !ok {
		return precondition(ErrNotFound, "task not found: %s", taskID)
	}

	_, err := run(ctx, s, "delete task", newCallOptions(opts),
		func(ctx context.Context) (api.Envelope[api.Empty], error) {
			return s.client.DeleteTask(ctx, listID, taskID)
		},
		func(api.Empty) []Event {
			return []Event{TaskRemoved{ListID: listID, TaskID: taskID}}
		})
	return err
}
