package state

import (
	"slices"

	"todosync/internal/api"
)

// Reduce applies e to s and returns the new state. It never modifies s:
// slices and maps that change are copied, untouched ones are shared.
//
// List lifecycle events update Lists and Tasks in the same call, which keeps
// the key set of Tasks equal to the id set of Lists.
func Reduce(s State, e Event) State {
	s.App = reduceApp(s.App, e)
	s.Session = reduceSession(s.Session, e)
	s.Lists = reduceLists(s.Lists, e)
	s.Tasks = reduceTasks(s.Tasks, e)
	return s
}

func reduceApp(s AppState, e Event) AppState {
	switch e := e.(type) {
	case AppStatusSet:
		s.Status = e.Status
	case AppErrorSet:
		s.Error = e.Error
	case InitializedSet:
		s.Initialized = e.Initialized
	}
	return s
}

func reduceSession(s SessionState, e Event) SessionState {
	if e, ok := e.(LoggedInSet); ok {
		s.IsLoggedIn = e.LoggedIn
	}
	return s
}

func reduceLists(s []ListRecord, e Event) []ListRecord {
	switch e := e.(type) {
	case ListsReplaced:
		out := make([]ListRecord, 0, len(e.Lists))
		for _, l := range e.Lists {
			out = append(out, newRecord(l))
		}
		return out

	case ListAdded:
		// A list already known (e.g. from a fetch that raced the create)
		// moves to the front instead of appearing twice.
		out := make([]ListRecord, 0, len(s)+1)
		out = append(out, newRecord(e.List))
		for _, r := range s {
			if r.ID != e.List.ID {
				out = append(out, r)
			}
		}
		return out

	case ListRemoved:
		i := indexOfList(s, e.ListID)
		if i < 0 {
			return s
		}
		return slices.Delete(slices.Clone(s), i, i+1)

	case ListTitleChanged:
		return updateList(s, e.ListID, func(r *ListRecord) { r.Title = e.Title })

	case ListFilterChanged:
		return updateList(s, e.ListID, func(r *ListRecord) { r.Filter = e.Filter })

	case ListEntityStatusChanged:
		return updateList(s, e.ListID, func(r *ListRecord) { r.EntityStatus = e.Status })
	}
	return s
}

func reduceTasks(s TasksState, e Event) TasksState {
	switch e := e.(type) {
	case ListsReplaced:
		out := make(TasksState, len(e.Lists))
		for _, l := range e.Lists {
			if bucket, ok := s[l.ID]; ok {
				out[l.ID] = bucket
			} else {
				out[l.ID] = []api.Task{}
			}
		}
		return out

	case ListAdded:
		if _, ok := s[e.List.ID]; ok {
			return s
		}
		out := cloneTasks(s)
		out[e.List.ID] = []api.Task{}
		return out

	case ListRemoved:
		if _, ok := s[e.ListID]; !ok {
			return s
		}
		out := cloneTasks(s)
		delete(out, e.ListID)
		return out

	case TasksReplaced:
		// A bucket exists exactly when its list does; a list deleted while the
		// fetch was in flight stays deleted.
		if _, ok := s[e.ListID]; !ok {
			return s
		}
		out := cloneTasks(s)
		out[e.ListID] = slices.Clone(e.Tasks)
		if out[e.ListID] == nil {
			out[e.ListID] = []api.Task{}
		}
		return out

	case TaskAdded:
		bucket, ok := s[e.Task.TodoListID]
		if !ok {
			return s
		}
		out := cloneTasks(s)
		nb := make([]api.Task, 0, len(bucket)+1)
		nb = append(nb, e.Task)
		out[e.Task.TodoListID] = append(nb, bucket...)
		return out

	case TaskUpdated:
		bucket := s[e.ListID]
		i := indexOfTask(bucket, e.TaskID)
		if i < 0 {
			return s
		}
		out := cloneTasks(s)
		nb := slices.Clone(bucket)
		nb[i] = e.Patch.ApplyTo(nb[i])
		out[e.ListID] = nb
		return out

	case TaskRemoved:
		bucket := s[e.ListID]
		i := indexOfTask(bucket, e.TaskID)
		if i < 0 {
			return s
		}
		out := cloneTasks(s)
		out[e.ListID] = slices.Delete(slices.Clone(bucket), i, i+1)
		return out
	}
	return s
}

func newRecord(l api.TodoList) ListRecord {
	return ListRecord{TodoList: l, Filter: FilterAll, EntityStatus: StatusIdle}
}

func updateList(s []ListRecord, id string, fn func(*ListRecord)) []ListRecord {
	i := indexOfList(s, id)
	if i < 0 {
		return s
	}
	out := slices.Clone(s)
	fn(&out[i])
	return out
}

func indexOfList(s []ListRecord, id string) int {
	return slices.IndexFunc(s, func(r ListRecord) bool { return r.ID == id })
}

func indexOfTask(s []api.Task, id string) int {
	return slices.IndexFunc(s, func(t api.Task) bool { return t.ID == id })
}

func cloneTasks(s TasksState) TasksState {
	out := make(TasksState, len(s)+1)
	for k, v := range s {
		out[k] = v
	}
	return out
}
