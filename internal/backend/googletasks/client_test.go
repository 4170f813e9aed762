package googletasks_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"todosync/internal/api"
	"todosync/internal/backend/googletasks"
	"todosync/internal/config"
)

// fakeTasksAPI serves the subset of the Google Tasks REST surface the client uses.
func fakeTasksAPI(t *testing.T) (*httptest.Server, *map[string]any) {
	t.Helper()
	lastPatch := map[string]any{}

	router := mux.NewRouter()
	router.HandleFunc("/tasks/v1/users/@me/lists", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items":[{"id":"L1","title":"Inbox","updated":"2024-01-01T00:00:00Z"},{"id":"L2","title":"Work"}]}`)
	}).Methods(http.MethodGet)
	router.HandleFunc("/tasks/v1/users/@me/lists/{list}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":{"code":404,"message":"Task list not found."}}`)
	}).Methods(http.MethodGet)
	router.HandleFunc("/tasks/v1/lists/{list}/tasks", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items":[{"id":"T1","title":"Milk","status":"needsAction","notes":"2 litres"},{"id":"T2","title":"Bread","status":"completed","due":"2024-02-01T00:00:00.000Z"}]}`)
	}).Methods(http.MethodGet)
	router.HandleFunc("/tasks/v1/lists/{list}/tasks/{task}", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&lastPatch); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		lastPatch["id"] = mux.Vars(r)["task"]
		json.NewEncoder(w).Encode(lastPatch)
	}).Methods(http.MethodPatch)
	router.HandleFunc("/tasks/v1/lists/{list}/tasks/{task}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"code":401,"message":"Invalid Credentials"}}`)
	}).Methods(http.MethodDelete)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, &lastPatch
}

func newTestClient(srv *httptest.Server) *googletasks.Client {
	return googletasks.New(googletasks.Options{
		HTTPClient: srv.Client(),
		Endpoint:   srv.URL + "/",
	})
}

func TestClient_GetTodoLists(t *testing.T) {
	srv, _ := fakeTasksAPI(t)
	c := newTestClient(srv)

	env, err := c.GetTodoLists(context.Background())
	if err != nil {
		t.Fatalf("GetTodoLists failed: %v", err)
	}
	if !env.OK() || len(env.Data) != 2 {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if env.Data[0].ID != "L1" || env.Data[0].Title != "Inbox" || env.Data[1].Order != 1 {
		t.Errorf("unexpected lists: %+v", env.Data)
	}
}

func TestClient_GetTasksMapsStatusAndNotes(t *testing.T) {
	srv, _ := fakeTasksAPI(t)
	c := newTestClient(srv)

	env, err := c.GetTasks(context.Background(), "L1")
	if err != nil {
		t.Fatalf("GetTasks failed: %v", err)
	}
	if len(env.Data) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(env.Data))
	}
	milk, bread := env.Data[0], env.Data[1]
	if milk.Status != api.StatusNew || milk.Description != "2 litres" || milk.TodoListID != "L1" {
		t.Errorf("unexpected first task: %+v", milk)
	}
	if bread.Status != api.StatusCompleted || bread.Deadline == "" {
		t.Errorf("unexpected second task: %+v", bread)
	}
}

func TestClient_UpdateTaskSendsFullModel(t *testing.T) {
	srv, lastPatch := fakeTasksAPI(t)
	c := newTestClient(srv)

	env, err := c.UpdateTask(context.Background(), "L1", "T1", api.UpdateTaskModel{
		Title:    "Milk",
		Status:   api.StatusCompleted,
		Priority: api.PriorityHigh,
	})
	if err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	if (*lastPatch)["status"] != "completed" || (*lastPatch)["title"] != "Milk" {
		t.Errorf("unexpected patch body: %v", *lastPatch)
	}
	if _, ok := (*lastPatch)["notes"]; !ok {
		t.Error("expected empty notes to be sent")
	}
	got := env.Data.Item
	if got.ID != "T1" || got.Status != api.StatusCompleted || got.Priority != api.PriorityHigh {
		t.Errorf("unexpected task: %+v", got)
	}
}

func TestClient_ErrorsBecomeTransportErrors(t *testing.T) {
	srv, _ := fakeTasksAPI(t)
	c := newTestClient(srv)

	_, err := c.Me(context.Background())
	var te *api.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if te.StatusCode != http.StatusNotFound || te.Message != "Task list not found." {
		t.Errorf("unexpected error: %+v", te)
	}

	_, err = c.DeleteTask(context.Background(), "L1", "T1")
	if !errors.As(err, &te) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if !strings.Contains(te.Message, "token expired or revoked") {
		t.Errorf("unexpected message: %q", te.Message)
	}
}

func TestClient_NotLoggedIn(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.OAuthClientFile), []byte(`{}`), 0600); err != nil {
		t.Fatal(err)
	}
	c := googletasks.New(googletasks.Options{Config: &config.Config{Dir: dir}})

	env, err := c.Me(context.Background())
	if err != nil {
		t.Fatalf("Me failed: %v", err)
	}
	if env.OK() || !strings.Contains(env.Messages[0], "not logged in") {
		t.Errorf("expected not logged in envelope, got %+v", env)
	}
}

func TestClient_LoginWithoutOAuthClient(t *testing.T) {
	dir := t.TempDir()
	var prompt strings.Builder
	c := googletasks.New(googletasks.Options{Config: &config.Config{Dir: dir}, Prompt: &prompt})

	env, err := c.Login(context.Background(), api.LoginParams{})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if env.OK() || !strings.Contains(env.Messages[0], "oauth_client.json not found") {
		t.Errorf("unexpected envelope: %+v", env)
	}
	if !strings.Contains(prompt.String(), "console.cloud.google.com") {
		t.Errorf("expected setup help, got %q", prompt.String())
	}
}

func TestClient_LogoutRemovesToken(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{Dir: dir}
	if err := os.WriteFile(cfg.TokenPath(), []byte(`{}`), 0600); err != nil {
		t.Fatal(err)
	}
	c := googletasks.New(googletasks.Options{Config: cfg})

	env, err := c.Logout(context.Background())
	if err != nil || !env.OK() {
		t.Fatalf("Logout failed: %v %+v", err, env)
	}
	if cfg.HasToken() {
		t.Error("expected token to be removed")
	}
}
