// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"todosync/internal/api"
)

// Operation names used for error injection and call recording.
const (
	OpMe             = "Me"
	OpLogin          = "Login"
	OpLogout         = "Logout"
	OpGetTodoLists   = "GetTodoLists"
	OpCreateTodoList = "CreateTodoList"
	OpUpdateTodoList = "UpdateTodoList"
	OpDeleteTodoList = "DeleteTodoList"
	OpGetTasks       = "GetTasks"
	OpCreateTask     = "CreateTask"
	OpUpdateTask     = "UpdateTask"
	OpDeleteTask     = "DeleteTask"
)

// Rejection is an injected non-OK envelope.
type Rejection struct {
	Messages    []string
	FieldErrors []api.FieldError
}

// FakeClient is an in-memory implementation of api.Client for testing.
// Ids are assigned as L1, L2, ... for lists and T1, T2, ... for tasks.
type FakeClient struct {
	mu       sync.Mutex
	lists    []api.TodoList
	tasks    map[string][]api.Task // listID -> tasks
	loggedIn bool
	nextList int
	nextTask int
	calls    []string

	// Email and Password are the credentials Login accepts.
	Email    string
	Password string

	// Error injection for testing, keyed by operation name.
	Errs    map[string]error
	Rejects map[string]Rejection

	// Before runs before an operation touches fake state, keyed by operation
	// name. Tests use it to interleave other operations with an in-flight call.
	Before map[string]func()

	// LastUpdate is the payload of the most recent UpdateTask call.
	LastUpdate api.UpdateTaskModel
}

// NewFakeClient creates an empty FakeClient.
func NewFakeClient() *FakeClient {
	return &FakeClient{
		tasks:    make(map[string][]api.Task),
		Email:    "user@example.com",
		Password: "secret",
		Errs:     make(map[string]error),
		Rejects:  make(map[string]Rejection),
		Before:   make(map[string]func()),
	}
}

// AddList appends a list to the fake server state.
func (f *FakeClient) AddList(id, title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists = append(f.lists, api.TodoList{ID: id, Title: title, Order: len(f.lists)})
	if f.tasks[id] == nil {
		f.tasks[id] = []api.Task{}
	}
}

// AddTask appends a task to a list in the fake server state.
func (f *FakeClient) AddTask(listID, taskID, title string, status api.TaskStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[listID] = append(f.tasks[listID], api.Task{
		ID:         taskID,
		TodoListID: listID,
		Title:      title,
		Status:     status,
	})
}

// SetLoggedIn sets the fake session state.
func (f *FakeClient) SetLoggedIn(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loggedIn = v
}

// Calls returns the recorded operation names in call order.
func (f *FakeClient) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// ServerTasks returns the fake server's tasks for a list.
func (f *FakeClient) ServerTasks(listID string) []api.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.tasks[listID])
}

// begin records the call, runs the Before hook and reports injected failures.
func begin[T any](f *FakeClient, op string) (api.Envelope[T], bool, error) {
	f.mu.Lock()
	f.calls = append(f.calls, op)
	hook := f.Before[op]
	err := f.Errs[op]
	rej, rejected := f.Rejects[op]
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	if err != nil {
		return api.Envelope[T]{}, true, err
	}
	if rejected {
		return api.Envelope[T]{
			ResultCode:  api.ResultError,
			Messages:    rej.Messages,
			FieldErrors: rej.FieldErrors,
		}, true, nil
	}
	return api.Envelope[T]{}, false, nil
}

// Me implements api.Client.
func (f *FakeClient) Me(ctx context.Context) (api.Envelope[api.MeData], error) {
	if env, done, err := begin[api.MeData](f, OpMe); done {
		return env, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.loggedIn {
		return api.ErrorEnvelope[api.MeData]("You are not authorized"), nil
	}
	return api.OKEnvelope(api.MeData{ID: 1, Email: f.Email, Login: "user"}), nil
}

// Login implements api.Client.
func (f *FakeClient) Login(ctx context.Context, params api.LoginParams) (api.Envelope[api.LoginData], error) {
	if env, done, err := begin[api.LoginData](f, OpLogin); done {
		return env, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if params.Email != f.Email || params.Password != f.Password {
		return api.ErrorEnvelope[api.LoginData]("Incorrect Email or Password"), nil
	}
	f.loggedIn = true
	return api.OKEnvelope(api.LoginData{UserID: 1}), nil
}

// Logout implements api.Client.
func (f *FakeClient) Logout(ctx context.Context) (api.Envelope[api.Empty], error) {
	if env, done, err := begin[api.Empty](f, OpLogout); done {
		return env, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loggedIn = false
	return api.OKEnvelope(api.Empty{}), nil
}

// GetTodoLists implements api.Client.
func (f *FakeClient) GetTodoLists(ctx context.Context) (api.Envelope[[]api.TodoList], error) {
	if env, done, err := begin[[]api.TodoList](f, OpGetTodoLists); done {
		return env, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return api.OKEnvelope(slices.Clone(f.lists)), nil
}

// CreateTodoList implements api.Client.
func (f *FakeClient) CreateTodoList(ctx context.Context, title string) (api.Envelope[api.Item[api.TodoList]], error) {
	if env, done, err := begin[api.Item[api.TodoList]](f, OpCreateTodoList); done {
		return env, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextList++
	list := api.TodoList{ID: fmt.Sprintf("L%d", f.nextList), Title: title}
	f.lists = append([]api.TodoList{list}, f.lists...)
	f.tasks[list.ID] = []api.Task{}
	return api.OKEnvelope(api.Item[api.TodoList]{Item: list}), nil
}

// UpdateTodoList implements api.Client.
func (f *FakeClient) UpdateTodoList(ctx context.Context, listID, title string) (api.Envelope[api.Empty], error) {
	if env, done, err := begin[api.Empty](f, OpUpdateTodoList); done {
		return env, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.lists {
		if f.lists[i].ID == listID {
			f.lists[i].Title = title
			return api.OKEnvelope(api.Empty{}), nil
		}
	}
	return api.ErrorEnvelope[api.Empty]("Todolist not found"), nil
}

// DeleteTodoList implements api.Client.
func (f *FakeClient) DeleteTodoList(ctx context.Context, listID string) (api.Envelope[api.Empty], error) {
	if env, done, err := begin[api.Empty](f, OpDeleteTodoList); done {
		return env, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, l := range f.lists {
		if l.ID == listID {
			f.lists = append(f.lists[:i], f.lists[i+1:]...)
			delete(f.tasks, listID)
			return api.OKEnvelope(api.Empty{}), nil
		}
	}
	return api.ErrorEnvelope[api.Empty]("Todolist not found"), nil
}

// GetTasks implements api.Client.
func (f *FakeClient) GetTasks(ctx context.Context, listID string) (api.Envelope[[]api.Task], error) {
	if env, done, err := begin[[]api.Task](f, OpGetTasks); done {
		return env, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	tasks, ok := f.tasks[listID]
	if !ok {
		return api.ErrorEnvelope[[]api.Task]("Todolist not found"), nil
	}
	return api.OKEnvelope(slices.Clone(tasks)), nil
}

// CreateTask implements api.Client.
func (f *FakeClient) CreateTask(ctx context.Context, listID, title string) (api.Envelope[api.Item[api.Task]], error) {
	if env, done, err := begin[api.Item[api.Task]](f, OpCreateTask); done {
		return env, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.tasks[listID]; !ok {
		return api.ErrorEnvelope[api.Item[api.Task]]("Todolist not found"), nil
	}
	f.nextTask++
	task := api.Task{
		ID:         fmt.Sprintf("T%d", f.nextTask),
		TodoListID: listID,
		Title:      title,
		Status:     api.StatusNew,
	}
	f.tasks[listID] = append([]api.Task{task}, f.tasks[listID]...)
	return api.OKEnvelope(api.Item[api.Task]{Item: task}), nil
}

// UpdateTask implements api.Client.
func (f *FakeClient) UpdateTask(ctx context.Context, listID, taskID string, model api.UpdateTaskModel) (api.Envelope[api.Item[api.Task]], error) {
	f.mu.Lock()
	f.LastUpdate = model
	f.mu.Unlock()

	if env, done, err := begin[api.Item[api.Task]](f, OpUpdateTask); done {
		return env, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, t := range f.tasks[listID] {
		if t.ID == taskID {
			t.Title = model.Title
			t.Description = model.Description
			t.Status = model.Status
			t.Priority = model.Priority
			t.StartDate = model.StartDate
			t.Deadline = model.Deadline
			f.tasks[listID][i] = t
			return api.OKEnvelope(api.Item[api.Task]{Item: t}), nil
		}
	}
	return api.ErrorEnvelope[api.Item[api.Task]]("Task not found"), nil
}

// DeleteTask implements api.Client.
func (f *FakeClient) DeleteTask(ctx context.Context, listID, taskID string) (api.Envelope[api.Empty], error) {
	if env, done, err := begin[api.Empty](f, OpDeleteTask); done {
		return env, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	tasks := f.tasks[listID]
	for i, t := range tasks {
		if t.ID == taskID {
			f.tasks[listID] = append(tasks[:i], tasks[i+1:]...)
			return api.OKEnvelope(api.Empty{}), nil
		}
	}
	return api.ErrorEnvelope[api.Empty]("Task not found"), nil
}
