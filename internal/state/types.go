// Package state holds the client-side view of the remote todo service and the
// asynchronous operations that keep it synchronized.
//
// All mutation goes through a closed set of events applied by pure reducers.
// Operations call the remote api.Client, classify the result and commit one
// batch of events per outcome, so a reader never sees a "succeeded" status
// next to a stale collection.
package state

import (
	"fmt"
	"strings"

	"todosync/internal/api"
)

// RequestStatus is the lifecycle of a remote request.
type RequestStatus string

const (
	StatusIdle      RequestStatus = "idle"
	StatusLoading   RequestStatus = "loading"
	StatusSucceeded RequestStatus = "succeeded"
	StatusFailed    RequestStatus = "failed"
)

// Filter selects which tasks of a list are displayed.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// ParseFilter converts a user-supplied name to a Filter.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case FilterAll, FilterActive, FilterCompleted:
		return f, nil
	case "":
		return FilterAll, nil
	default:
		return "", fmt.Errorf("invalid filter: %s", s)
	}
}

// Match reports whether a task with status s passes the filter.
func (f Filter) Match(s api.TaskStatus) bool {
	switch f {
	case FilterActive:
		return s == api.StatusNew
	case FilterCompleted:
		return s == api.StatusCompleted
	default:
		return true
	}
}

// AppState is the shared request status and global error channel.
type AppState struct {
	Status      RequestStatus
	Error       string // empty when there is no error
	Initialized bool
}

// SessionState tracks authentication.
type SessionState struct {
	IsLoggedIn bool
}

// ListRecord is a todo list plus client-only display state.
type ListRecord struct {
	api.TodoList
	Filter       Filter
	EntityStatus RequestStatus
}

// TasksState maps a list id to its ordered task bucket.
type TasksState map[string][]api.Task

// State is the full client state.
type State struct {
	App     AppState
	Session SessionState
	Lists   []ListRecord
	Tasks   TasksState
}

// Initial returns the state at startup.
func Initial() State {
	return State{
		App:   AppState{Status: StatusIdle},
		Lists: []ListRecord{},
		Tasks: TasksState{},
	}
}

// TaskPatch is a partial task update. Nil fields keep their current value.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *api.TaskStatus
	Priority    *api.TaskPriority
	StartDate   *string
	Deadline    *string
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.Priority == nil && p.StartDate == nil && p.Deadline == nil
}

// ApplyTo returns t with the patch's fields applied.
func (p TaskPatch) ApplyTo(t api.Task) api.Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.StartDate != nil {
		t.StartDate = *p.StartDate
	}
	if p.Deadline != nil {
		t.Deadline = *p.Deadline
	}
	return t
}

// Model builds the full update payload from the current task and the patch.
func (p TaskPatch) Model(current api.Task) api.UpdateTaskModel {
	return api.ModelOf(p.ApplyTo(current))
}
