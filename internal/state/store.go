package state

import (
	"io"
	"log/slog"
	"slices"
	"sync"

	"todosync/internal/api"
)

// Store is the single state container. Reads return copies; the only way to
// change state is Dispatch or one of the operations built on it.
type Store struct {
	client api.Client
	log    *slog.Logger

	mu        sync.RWMutex
	state     State
	listeners []func(State)
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for operation tracing.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithState replaces the initial state (for tests and restored sessions).
func WithState(st State) Option {
	return func(s *Store) {
		s.state = st
	}
}

// NewStore creates a store backed by client.
func NewStore(client api.Client, opts ...Option) *Store {
	s := &Store{
		client: client,
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		state:  Initial(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dispatch applies events in order as one atomic batch and then notifies
// subscribers with the resulting snapshot.
func (s *Store) Dispatch(events ...Event) {
	if len(events) == 0 {
		return
	}
	s.mu.Lock()
	st := s.state
	for _, e := range events {
		st = Reduce(st, e)
	}
	s.state = st
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(st)
	}
}

// Subscribe registers fn to be called after every dispatched batch.
// fn runs outside the store's lock on the dispatching goroutine, so batches
// dispatched from several goroutines may reach fn concurrently and out of
// order. A subscriber with its own state must be used from one goroutine or
// guard that state itself.
func (s *Store) Subscribe(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	st.Lists = slices.Clone(st.Lists)
	tasks := make(TasksState, len(st.Tasks))
	for k, v := range st.Tasks {
		tasks[k] = slices.Clone(v)
	}
	st.Tasks = tasks
	return st
}

// App returns the shared request status.
func (s *Store) App() AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.App
}

// Session returns the session state.
func (s *Store) Session() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Session
}

// Lists returns the lists in display order.
func (s *Store) Lists() []ListRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.state.Lists)
}

// List returns the list with the given id.
func (s *Store) List(id string) (ListRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexOfList(s.state.Lists, id)
	if i < 0 {
		return ListRecord{}, false
	}
	return s.state.Lists[i], true
}

// Tasks returns the full bucket of a list. The second result is false when
// the store holds no bucket for listID.
func (s *Store) Tasks(listID string) ([]api.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bucket, ok := s.state.Tasks[listID]
	return slices.Clone(bucket), ok
}

// Task looks up a single task.
func (s *Store) Task(listID, taskID string) (api.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bucket := s.state.Tasks[listID]
	i := indexOfTask(bucket, taskID)
	if i < 0 {
		return api.Task{}, false
	}
	return bucket[i], true
}

// VisibleTasks returns the tasks of a list that pass the list's filter.
// It is derived on every call and never stored.
func (s *Store) VisibleTasks(listID string) []api.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	filter := FilterAll
	if i := indexOfList(s.state.Lists, listID); i >= 0 {
		filter = s.state.Lists[i].Filter
	}
	return FilterTasks(s.state.Tasks[listID], filter)
}

// FilterTasks returns the tasks matching filter, preserving order.
func FilterTasks(tasks []api.Task, filter Filter) []api.Task {
	out := make([]api.Task, 0, len(tasks))
	for _, t := range tasks {
		if filter.Match(t.Status) {
			out = append(out, t)
		}
	}
	return out
}

// SetFilter changes a list's display filter. Local only.
func (s *Store) SetFilter(listID string, filter Filter) {
	s.Dispatch(ListFilterChanged{ListID: listID, Filter: filter})
}

// SetEntityStatus changes a list's per-record status. Local only.
func (s *Store) SetEntityStatus(listID string, status RequestStatus) {
	s.Dispatch(ListEntityStatusChanged{ListID: listID, Status: status})
}

// DismissError clears the global error.
func (s *Store) DismissError() {
	s.Dispatch(AppErrorSet{Error: ""})
}
