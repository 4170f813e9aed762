// Package stubserver is an in-memory implementation of the todo REST API.
// It backs the REST client tests and the todosync-stub development server.
package stubserver

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"todosync/internal/api"
)

const (
	// DefaultPrefix is the path the API is mounted under.
	DefaultPrefix = "/api/1.1"

	// DefaultEmail and DefaultPassword are the credentials of the seeded user
	// when Options.Users is empty.
	DefaultEmail    = "user@example.com"
	DefaultPassword = "secret"

	// SessionCookie is the name of the session cookie set by login.
	SessionCookie = "todosync_session"

	// MaxTitleLength is the longest list or task title accepted.
	MaxTitleLength = 100
)

// Options configures a Server.
type Options struct {
	// Prefix is the mount path; DefaultPrefix when empty.
	Prefix string

	// APIKey, when set, must be sent in the API-KEY header of every request.
	APIKey string

	// Users maps email to password.
	Users map[string]string

	// Logger receives one debug line per request.
	Logger *slog.Logger
}

type user struct {
	id       int
	email    string
	password string
	login    string
}

// account holds one user's lists and tasks.
type account struct {
	lists []api.TodoList
	tasks map[string][]api.Task
}

// Server is an http.Handler serving the todo API from memory.
type Server struct {
	apiKey string
	log    *slog.Logger
	router *mux.Router

	mu       sync.Mutex
	users    map[string]*user
	sessions map[string]int
	accounts map[int]*account
}

// New creates a Server with the given options.
func New(opts Options) *Server {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	creds := opts.Users
	if len(creds) == 0 {
		creds = map[string]string{DefaultEmail: DefaultPassword}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Server{
		apiKey:   opts.APIKey,
		log:      logger,
		users:    make(map[string]*user),
		sessions: make(map[string]int),
		accounts: make(map[int]*account),
	}
	emails := make([]string, 0, len(creds))
	for email := range creds {
		emails = append(emails, email)
	}
	slices.Sort(emails)
	for i, email := range emails {
		id := i + 1
		s.users[email] = &user{id: id, email: email, password: creds[email], login: loginName(email)}
		s.accounts[id] = &account{tasks: make(map[string][]api.Task)}
	}

	s.router = mux.NewRouter()
	sub := s.router.PathPrefix(prefix).Subrouter()
	sub.Use(s.logRequests, s.checkAPIKey)
	s.registerRoutes(sub)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// registerRoutes sets up all routes of the API.
func (s *Server) registerRoutes(r *mux.Router) {
	r.HandleFunc("/auth/me", s.me).Methods(http.MethodGet)
	r.HandleFunc("/auth/login", s.login).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", s.authed(s.logout)).Methods(http.MethodDelete)

	r.HandleFunc("/todo-lists", s.authed(s.getLists)).Methods(http.MethodGet)
	r.HandleFunc("/todo-lists", s.authed(s.createList)).Methods(http.MethodPost)
	r.HandleFunc("/todo-lists/{listID}", s.authed(s.updateList)).Methods(http.MethodPut)
	r.HandleFunc("/todo-lists/{listID}", s.authed(s.deleteList)).Methods(http.MethodDelete)

	r.HandleFunc("/todo-lists/{listID}/tasks", s.authed(s.getTasks)).Methods(http.MethodGet)
	r.HandleFunc("/todo-lists/{listID}/tasks", s.authed(s.createTask)).Methods(http.MethodPost)
	r.HandleFunc("/todo-lists/{listID}/tasks/{taskID}", s.authed(s.updateTask)).Methods(http.MethodPut)
	r.HandleFunc("/todo-lists/{listID}/tasks/{taskID}", s.authed(s.deleteTask)).Methods(http.MethodDelete)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("request", "method", r.Method, "path", r.URL.Path, "elapsed", time.Since(start))
	})
}

func (s *Server) checkAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey != "" && r.Header.Get("API-KEY") != s.apiKey {
			writeStatus(w, http.StatusUnauthorized, "API-KEY is missing or invalid")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// authedHandler is a handler that runs on behalf of a logged-in user.
type authedHandler func(w http.ResponseWriter, r *http.Request, userID int)

// authed rejects requests without a valid session cookie.
func (s *Server) authed(h authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := s.sessionUser(r)
		if !ok {
			writeStatus(w, http.StatusUnauthorized, "Authorization has been denied for this request.")
			return
		}
		h(w, r, userID)
	}
}

func (s *Server) sessionUser(r *http.Request) (int, bool) {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return 0, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.sessions[c.Value]
	return id, ok
}

func newID() string {
	return uuid.NewString()
}

func now() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.999")
}

func loginName(email string) string {
	name, _, _ := strings.Cut(email, "@")
	return name
}

// writeJSON encodes v with a 200 status.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// writeStatus writes a non-2xx response with a message body.
func writeStatus(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

func writeOK[T any](w http.ResponseWriter, data T) {
	writeJSON(w, api.OKEnvelope(data))
}

func writeRejected(w http.ResponseWriter, messages ...string) {
	env := api.ErrorEnvelope[api.Empty](messages...)
	env.FieldErrors = []api.FieldError{}
	writeJSON(w, env)
}
