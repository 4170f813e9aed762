package state

import "todosync/internal/api"

// Event is a named state mutation. The set is closed: only this package
// defines events, so every mutation is visible in the reducers.
type Event interface {
	event()
}

// AppStatusSet sets the shared request status.
type AppStatusSet struct{ Status RequestStatus }

// AppErrorSet sets or clears (empty string) the global error.
type AppErrorSet struct{ Error string }

// InitializedSet marks the startup session probe as finished.
type InitializedSet struct{ Initialized bool }

// LoggedInSet records the session state.
type LoggedInSet struct{ LoggedIn bool }

// ListsReplaced replaces every list with the server's collection.
type ListsReplaced struct{ Lists []api.TodoList }

// ListAdded prepends a newly created list.
type ListAdded struct{ List api.TodoList }

// ListRemoved drops a list and its task bucket.
type ListRemoved struct{ ListID string }

// ListTitleChanged renames a list.
type ListTitleChanged struct {
	ListID string
	Title  string
}

// ListFilterChanged sets a list's display filter.
type ListFilterChanged struct {
	ListID string
	Filter Filter
}

// ListEntityStatusChanged sets a list's per-record request status.
type ListEntityStatusChanged struct {
	ListID string
	Status RequestStatus
}

// TasksReplaced replaces a list's bucket with the server's collection.
type TasksReplaced struct {
	ListID string
	Tasks  []api.Task
}

// TaskAdded prepends a newly created task to its list's bucket.
type TaskAdded struct{ Task api.Task }

// TaskUpdated merges a patch into an existing task in place.
type TaskUpdated struct {
	ListID string
	TaskID string
	Patch  TaskPatch
}

// TaskRemoved drops a task from its list's bucket.
type TaskRemoved struct {
	ListID string
	TaskID string
}

func (AppStatusSet) event()            {}
func (AppErrorSet) event()             {}
func (InitializedSet) event()          {}
func (LoggedInSet) event()             {}
func (ListsReplaced) event()           {}
func (ListAdded) event()               {}
func (ListRemoved) event()             {}
func (ListTitleChanged) event()        {}
func (ListFilterChanged) event()       {}
func (ListEntityStatusChanged) event() {}
func (TasksReplaced) event()           {}
func (TaskAdded) event()               {}
func (TaskUpdated) event()             {}
func (TaskRemoved) event()             {}
