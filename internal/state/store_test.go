package state_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"todosync/internal/api"
	"todosync/internal/state"
	"todosync/internal/testutil"
)

func newStore(t *testing.T) (*state.Store, *testutil.FakeClient) {
	t.Helper()
	client := testutil.NewFakeClient()
	return state.NewStore(client), client
}

func listIDs(lists []state.ListRecord) []string {
	ids := make([]string, len(lists))
	for i, l := range lists {
		ids[i] = l.ID
	}
	return ids
}

func bucketKeys(tasks state.TasksState) []string {
	keys := make([]string, 0, len(tasks))
	for k := range tasks {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func TestCreateList_PrependsRecordAndBucket(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	list, err := store.CreateList(ctx, "Groceries")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list.ID != "L1" {
		t.Errorf("expected id L1, got %q", list.ID)
	}

	lists := store.Lists()
	if len(lists) != 1 {
		t.Fatalf("expected 1 list, got %d", len(lists))
	}
	got := lists[0]
	if got.ID != "L1" || got.Title != "Groceries" || got.Filter != state.FilterAll || got.EntityStatus != state.StatusIdle {
		t.Errorf("unexpected record: %+v", got)
	}
	if bucket, ok := store.Tasks("L1"); !ok || len(bucket) != 0 {
		t.Errorf("expected empty bucket, got %v (present=%v)", bucket, ok)
	}
	if app := store.App(); app.Status != state.StatusSucceeded || app.Error != "" {
		t.Errorf("expected succeeded without error, got %+v", app)
	}

	if _, err := store.CreateList(ctx, "Work"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ids := listIDs(store.Lists()); !slices.Equal(ids, []string{"L2", "L1"}) {
		t.Errorf("expected most recent first, got %v", ids)
	}
}

func TestCreateList_ApplicationErrorSetsGlobalError(t *testing.T) {
	store, client := newStore(t)
	client.Rejects[testutil.OpCreateTodoList] = testutil.Rejection{Messages: []string{"Title too long"}}

	_, err := store.CreateList(context.Background(), "x")
	if err == nil {
		t.Fatal("expected error")
	}
	if !state.IsKind(err, state.KindApplication) {
		t.Errorf("expected application rejection, got %v", err)
	}

	app := store.App()
	if app.Status != state.StatusFailed || app.Error != "Title too long" {
		t.Errorf("expected failed/Title too long, got %+v", app)
	}
	if len(store.Lists()) != 0 {
		t.Errorf("lists should be unchanged, got %+v", store.Lists())
	}
}

func TestCreateList_ApplicationErrorWithoutMessagesUsesFallback(t *testing.T) {
	store, client := newStore(t)
	client.Rejects[testutil.OpCreateTodoList] = testutil.Rejection{}

	if _, err := store.CreateList(context.Background(), "x"); err == nil {
		t.Fatal("expected error")
	}
	if got := store.App().Error; got != state.FallbackError {
		t.Errorf("expected fallback error, got %q", got)
	}
}

func TestCreateList_BlankTitleIsRejectedLocally(t *testing.T) {
	store, client := newStore(t)

	_, err := store.CreateList(context.Background(), "   ")
	if !errors.Is(err, state.ErrTitleRequired) {
		t.Fatalf("expected ErrTitleRequired, got %v", err)
	}
	if len(client.Calls()) != 0 {
		t.Errorf("expected no remote calls, got %v", client.Calls())
	}
	if store.App().Status != state.StatusIdle {
		t.Errorf("status should stay idle, got %s", store.App().Status)
	}
}

func TestCreateTask_PrependsToBucket(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	if _, err := store.CreateList(ctx, "Groceries"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	task, err := store.CreateTask(ctx, "L1", "Milk")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.ID != "T1" {
		t.Errorf("expected T1, got %q", task.ID)
	}
	if _, err := store.CreateTask(ctx, "L1", "Bread"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bucket, _ := store.Tasks("L1")
	if len(bucket) != 2 || bucket[0].ID != "T2" || bucket[1].ID != "T1" {
		t.Fatalf("expected [T2 T1], got %+v", bucket)
	}
	if bucket[1].Title != "Milk" || bucket[1].Status != api.StatusNew {
		t.Errorf("unexpected task: %+v", bucket[1])
	}
}

func TestUpdateTask_CarriesForwardUnpatchedFields(t *testing.T) {
	store, client := newStore(t)
	ctx := context.Background()

	if _, err := store.CreateList(ctx, "Groceries"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.CreateTask(ctx, "L1", "Milk"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	done := api.StatusCompleted
	if err := store.UpdateTask(ctx, "L1", "T1", state.TaskPatch{Status: &done}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := api.UpdateTaskModel{Title: "Milk", Status: api.StatusCompleted}
	if client.LastUpdate != want {
		t.Errorf("expected payload %+v, got %+v", want, client.LastUpdate)
	}

	task, ok := store.Task("L1", "T1")
	if !ok {
		t.Fatal("task missing after update")
	}
	if task.Status != api.StatusCompleted || task.Title != "Milk" {
		t.Errorf("unexpected task after update: %+v", task)
	}
}

func TestUpdateTask_MissingTaskFailsFast(t *testing.T) {
	store, client := newStore(t)
	ctx := context.Background()
	if _, err := store.CreateList(ctx, "Groceries"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := store.Snapshot()
	callsBefore := len(client.Calls())

	title := "x"
	err := store.UpdateTask(ctx, "L1", "nope", state.TaskPatch{Title: &title})
	if !errors.Is(err, state.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if !state.IsKind(err, state.KindPrecondition) {
		t.Errorf("expected precondition rejection, got %v", err)
	}
	if len(client.Calls()) != callsBefore {
		t.Errorf("expected no remote call, got %v", client.Calls()[callsBefore:])
	}
	after := store.Snapshot()
	if after.App != before.App {
		t.Errorf("shared status changed: %+v -> %+v", before.App, after.App)
	}
}

func TestDeleteTask_RemovesByID(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()
	if _, err := store.CreateList(ctx, "Groceries"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, title := range []string{"Milk", "Bread"} {
		if _, err := store.CreateTask(ctx, "L1", title); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if err := store.DeleteTask(ctx, "L1", "T1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := store.Task("L1", "T1"); ok {
		t.Error("T1 should be gone")
	}
	if _, ok := store.Task("L1", "T2"); !ok {
		t.Error("T2 should remain")
	}

	err := store.DeleteTask(ctx, "L1", "T1")
	if !errors.Is(err, state.ErrNotFound) {
		t.Errorf("deleting again should be a not-found rejection, got %v", err)
	}
	if store.App().Status == state.StatusLoading {
		t.Error("status left at loading")
	}
}

func TestDeleteList_DropsRecordAndBucket(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()
	if _, err := store.CreateList(ctx, "Groceries"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.CreateTask(ctx, "L1", "Milk"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := store.DeleteList(ctx, "L1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := store.List("L1"); ok {
		t.Error("list should be gone")
	}
	if _, ok := store.Tasks("L1"); ok {
		t.Error("bucket should be gone")
	}

	err := store.DeleteList(ctx, "L1")
	if !errors.Is(err, state.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteList_FailureResetsEntityStatus(t *testing.T) {
	store, client := newStore(t)
	ctx := context.Background()
	if _, err := store.CreateList(ctx, "Groceries"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var during state.RequestStatus
	client.Before[testutil.OpDeleteTodoList] = func() {
		l, _ := store.List("L1")
		during = l.EntityStatus
	}
	client.Rejects[testutil.OpDeleteTodoList] = testutil.Rejection{Messages: []string{"cannot delete"}}

	if err := store.DeleteList(ctx, "L1"); err == nil {
		t.Fatal("expected error")
	}
	if during != state.StatusLoading {
		t.Errorf("expected entity status loading during call, got %s", during)
	}
	l, ok := store.List("L1")
	if !ok {
		t.Fatal("list should still exist")
	}
	// A failed delete must re-enable the list controls.
	if l.EntityStatus != state.StatusIdle {
		t.Errorf("expected entity status reset to idle, got %s", l.EntityStatus)
	}
	if app := store.App(); app.Status != state.StatusFailed || app.Error != "cannot delete" {
		t.Errorf("unexpected app state %+v", app)
	}
}

func TestRenameList(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()
	if _, err := store.CreateList(ctx, "Groceries"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := store.RenameList(ctx, "L1", "Food"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l, _ := store.List("L1")
	if l.Title != "Food" {
		t.Errorf("expected Food, got %q", l.Title)
	}

	if err := store.RenameList(ctx, "missing", "x"); !errors.Is(err, state.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateList_RacingFetchKeepsOneRecord(t *testing.T) {
	store, client := newStore(t)
	ctx := context.Background()

	// A fetch that already sees the new list commits before the create does.
	client.Before[testutil.OpCreateTodoList] = func() {
		store.Dispatch(state.ListsReplaced{Lists: []api.TodoList{{ID: "L1", Title: "Groceries"}}})
	}
	if _, err := store.CreateList(ctx, "Groceries"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ids := listIDs(store.Lists()); !slices.Equal(ids, []string{"L1"}) {
		t.Fatalf("expected [L1], got %v", ids)
	}

	if err := store.DeleteList(ctx, "L1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	st := store.Snapshot()
	if len(st.Lists) != 0 || len(st.Tasks) != 0 {
		t.Errorf("expected no lists and no buckets, got lists=%v buckets=%v", listIDs(st.Lists), bucketKeys(st.Tasks))
	}
}

func TestCreateTask_UnknownListIsRejectedLocally(t *testing.T) {
	store, client := newStore(t)
	client.AddList("L9", "Elsewhere")

	_, err := store.CreateTask(context.Background(), "L9", "Milk")
	if !state.IsKind(err, state.KindPrecondition) || !errors.Is(err, state.ErrNotFound) {
		t.Fatalf("expected not-found precondition, got %v", err)
	}
	if n := len(client.Calls()); n != 0 {
		t.Errorf("expected no server calls, got %v", client.Calls())
	}
	if n := len(client.ServerTasks("L9")); n != 0 {
		t.Errorf("expected no task on the server, got %d", n)
	}
	if app := store.App(); app.Status != state.StatusIdle || app.Error != "" {
		t.Errorf("expected untouched app state, got %+v", app)
	}
}

func TestFetchTasks_UnknownListIsRejectedLocally(t *testing.T) {
	store, client := newStore(t)
	client.AddList("L9", "Elsewhere")

	err := store.FetchTasks(context.Background(), "L9")
	if !state.IsKind(err, state.KindPrecondition) || !errors.Is(err, state.ErrNotFound) {
		t.Fatalf("expected not-found precondition, got %v", err)
	}
	if n := len(client.Calls()); n != 0 {
		t.Errorf("expected no server calls, got %v", client.Calls())
	}
	if _, ok := store.Tasks("L9"); ok {
		t.Error("expected no bucket for an unknown list")
	}
}

func TestFetchTasks_TransportErrorSetsNetworkMessage(t *testing.T) {
	store, client := newStore(t)
	ctx := context.Background()
	client.AddList("L1", "Groceries")
	client.AddTask("L1", "T1", "Milk", api.StatusNew)
	if err := store.FetchAll(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before, _ := store.Tasks("L1")

	client.Errs[testutil.OpGetTasks] = &api.TransportError{Op: "GET tasks", Message: "Network Error"}
	err := store.FetchTasks(ctx, "L1")
	if !state.IsKind(err, state.KindTransport) {
		t.Fatalf("expected transport rejection, got %v", err)
	}
	var te *api.TransportError
	if !errors.As(err, &te) {
		t.Error("rejection should unwrap to the transport error")
	}

	app := store.App()
	if app.Status != state.StatusFailed || app.Error != "Network Error" {
		t.Errorf("expected failed/Network Error, got %+v", app)
	}
	after, _ := store.Tasks("L1")
	if !slices.Equal(before, after) {
		t.Errorf("tasks changed: %v -> %v", before, after)
	}
}

func TestFetchLists_ThenTasksKeepsKeySetsEqual(t *testing.T) {
	store, client := newStore(t)
	ctx := context.Background()
	client.AddList("a", "A")
	client.AddList("b", "B")
	client.AddTask("b", "t1", "one", api.StatusNew)

	if err := store.FetchLists(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, l := range store.Lists() {
		if err := store.FetchTasks(ctx, l.ID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	snap := store.Snapshot()
	ids := listIDs(snap.Lists)
	slices.Sort(ids)
	if keys := bucketKeys(snap.Tasks); !slices.Equal(ids, keys) {
		t.Errorf("bucket keys %v != list ids %v", keys, ids)
	}
	if len(snap.Tasks["b"]) != 1 {
		t.Errorf("expected one task in b, got %v", snap.Tasks["b"])
	}
	if snap.Lists[0].ID != "a" {
		t.Errorf("server order should be preserved, got %v", listIDs(snap.Lists))
	}
}

// chattyClient attaches informational messages to successful list fetches.
type chattyClient struct {
	*testutil.FakeClient
}

func (c chattyClient) GetTodoLists(ctx context.Context) (api.Envelope[[]api.TodoList], error) {
	env, err := c.FakeClient.GetTodoLists(ctx)
	env.Messages = []string{"served from cache"}
	return env, err
}

func TestOKEnvelopeWithMessagesIsNotAnError(t *testing.T) {
	client := testutil.NewFakeClient()
	client.AddList("L1", "Groceries")
	store := state.NewStore(chattyClient{client})

	if err := store.FetchLists(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if app := store.App(); app.Status != state.StatusSucceeded || app.Error != "" {
		t.Errorf("unexpected app state %+v", app)
	}
}

func TestProbeSession(t *testing.T) {
	t.Run("logged in", func(t *testing.T) {
		store, client := newStore(t)
		client.SetLoggedIn(true)

		if _, err := store.ProbeSession(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !store.Session().IsLoggedIn {
			t.Error("expected logged in")
		}
		if !store.App().Initialized {
			t.Error("expected initialized")
		}
	})

	t.Run("transport failure still initializes", func(t *testing.T) {
		store, client := newStore(t)
		client.Errs[testutil.OpMe] = &api.TransportError{Message: "request timed out"}

		if _, err := store.ProbeSession(context.Background()); err == nil {
			t.Fatal("expected error")
		}
		if store.Session().IsLoggedIn {
			t.Error("expected logged out")
		}
		if !store.App().Initialized {
			t.Error("expected initialized even on failure")
		}
		if store.App().Error != "request timed out" {
			t.Errorf("unexpected error %q", store.App().Error)
		}
	})
}

func TestLogin_FieldErrorsStayOutOfGlobalError(t *testing.T) {
	store, client := newStore(t)
	client.Rejects[testutil.OpLogin] = testutil.Rejection{
		Messages:    []string{"Enter valid Email"},
		FieldErrors: []api.FieldError{{Field: "email", Error: "Enter valid Email"}},
	}

	err := store.Login(context.Background(), api.LoginParams{Email: "bad"}, state.SuppressGlobalError())
	rej, ok := state.Rejection(err)
	if !ok {
		t.Fatalf("expected rejection, got %v", err)
	}
	if len(rej.FieldErrors) != 1 || rej.FieldErrors[0].Field != "email" {
		t.Errorf("unexpected field errors %+v", rej.FieldErrors)
	}
	app := store.App()
	if app.Error != "" {
		t.Errorf("global error should be suppressed, got %q", app.Error)
	}
	if app.Status != state.StatusFailed {
		t.Errorf("expected failed, got %s", app.Status)
	}
}

func TestLoginLogout(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	if err := store.Login(ctx, api.LoginParams{Email: "user@example.com", Password: "secret"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !store.Session().IsLoggedIn {
		t.Error("expected logged in")
	}
	if err := store.Logout(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.Session().IsLoggedIn {
		t.Error("expected logged out")
	}
}

func TestVisibleTasks_FollowsFilter(t *testing.T) {
	store, client := newStore(t)
	ctx := context.Background()
	client.AddList("L1", "Groceries")
	client.AddTask("L1", "a", "open", api.StatusNew)
	client.AddTask("L1", "b", "done", api.StatusCompleted)
	client.AddTask("L1", "c", "doing", api.StatusInProgress)
	if err := store.FetchAll(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ids := func(tasks []api.Task) []string {
		out := make([]string, len(tasks))
		for i, t := range tasks {
			out[i] = t.ID
		}
		return out
	}

	if got := ids(store.VisibleTasks("L1")); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("all: got %v", got)
	}
	store.SetFilter("L1", state.FilterActive)
	if got := ids(store.VisibleTasks("L1")); !slices.Equal(got, []string{"a"}) {
		t.Errorf("active: got %v", got)
	}
	store.SetFilter("L1", state.FilterCompleted)
	if got := ids(store.VisibleTasks("L1")); !slices.Equal(got, []string{"b"}) {
		t.Errorf("completed: got %v", got)
	}
	if n := len(client.Calls()); n != 2 {
		t.Errorf("filtering should not call the server, got %d calls", n)
	}
}

func TestFetchTasks_ListDeletedWhileInFlightStaysDeleted(t *testing.T) {
	store, client := newStore(t)
	ctx := context.Background()
	client.AddList("L1", "Groceries")
	client.AddTask("L1", "T1", "Milk", api.StatusNew)
	if err := store.FetchLists(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	client.Before[testutil.OpGetTasks] = func() {
		// Remove the list locally while the fetch is pending.
		store.Dispatch(state.ListRemoved{ListID: "L1"})
	}
	if err := store.FetchTasks(ctx, "L1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := store.Tasks("L1"); ok {
		t.Error("late fetch result must not resurrect a removed list's bucket")
	}
}

func TestUpdateTask_TaskDeletedWhileInFlightIsSoftNoOp(t *testing.T) {
	store, client := newStore(t)
	ctx := context.Background()
	client.AddList("L1", "Groceries")
	client.AddTask("L1", "T1", "Milk", api.StatusNew)
	if err := store.FetchAll(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	client.Before[testutil.OpUpdateTask] = func() {
		store.Dispatch(state.TaskRemoved{ListID: "L1", TaskID: "T1"})
	}
	done := api.StatusCompleted
	if err := store.UpdateTask(ctx, "L1", "T1", state.TaskPatch{Status: &done}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bucket, _ := store.Tasks("L1"); len(bucket) != 0 {
		t.Errorf("expected empty bucket, got %v", bucket)
	}
}

func TestSubscribe_SeesStatusAndMutationTogether(t *testing.T) {
	store, _ := newStore(t)

	var snapshots []state.State
	store.Subscribe(func(s state.State) {
		snapshots = append(snapshots, s)
	})

	if _, err := store.CreateList(context.Background(), "Groceries"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, s := range snapshots {
		if s.App.Status == state.StatusSucceeded && len(s.Lists) == 0 {
			t.Error("observed succeeded status with stale lists")
		}
	}
	if len(snapshots) != 2 {
		t.Errorf("expected 2 batches (loading, succeeded), got %d", len(snapshots))
	}
}

func TestDismissError(t *testing.T) {
	store, client := newStore(t)
	client.Errs[testutil.OpGetTodoLists] = &api.TransportError{Message: "Network Error"}
	_ = store.FetchLists(context.Background())

	store.DismissError()
	if store.App().Error != "" {
		t.Errorf("expected error cleared, got %q", store.App().Error)
	}
}
