// Package rest implements api.Client over the todo service's JSON REST API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
	"golang.org/x/oauth2"

	"todosync/internal/api"
)

const (
	// DefaultTimeout is used when Options.Timeout is zero.
	DefaultTimeout = 10 * time.Second

	// maxBodySize caps how much of a response body is read.
	maxBodySize = 4 << 20
)

// Options configures a Client.
type Options struct {
	// BaseURL is the API root, e.g. https://host/api/1.1/.
	BaseURL string

	// APIKey is sent in the API-KEY header when set.
	APIKey string

	// BearerToken authenticates every request through an oauth2 transport when set.
	BearerToken string

	// Timeout bounds each call.
	Timeout time.Duration

	// SessionPath is where session cookies are persisted. Empty disables persistence.
	SessionPath string

	// HTTPClient is the base client (for testing). Its Jar is replaced.
	HTTPClient *http.Client

	// Logger receives debug traces of every call.
	Logger *slog.Logger
}

// Client implements api.Client against the REST API.
type Client struct {
	http        *http.Client
	baseURL     *url.URL
	apiKey      string
	timeout     time.Duration
	sessionPath string
	log         *slog.Logger
}

var _ api.Client = (*Client)(nil)

// New creates a REST client and restores any persisted session.
func New(ctx context.Context, opts Options) (*Client, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url: %q", opts.BaseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	httpClient := &http.Client{}
	if opts.HTTPClient != nil {
		copied := *opts.HTTPClient
		httpClient = &copied
	}
	if opts.BearerToken != "" {
		// oauth2.NewClient wraps the transport of the client found in ctx.
		ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.BearerToken, TokenType: "Bearer"})
		httpClient = oauth2.NewClient(ctx, ts)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	c := &Client{
		http:        httpClient,
		baseURL:     base,
		apiKey:      opts.APIKey,
		timeout:     timeout,
		sessionPath: opts.SessionPath,
		log:         logger,
	}
	if err := c.resetJar(); err != nil {
		return nil, err
	}
	if err := c.loadSession(); err != nil {
		c.log.Warn("ignoring unreadable session file", "path", c.sessionPath, "err", err)
	}
	return c, nil
}

func (c *Client) resetJar() error {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return fmt.Errorf("failed to create cookie jar: %w", err)
	}
	c.http.Jar = jar
	return nil
}

// Me implements api.Client.
func (c *Client) Me(ctx context.Context) (api.Envelope[api.MeData], error) {
	return call[api.MeData](ctx, c, http.MethodGet, "auth/me", nil)
}

// Login implements api.Client. The session cookie is persisted on success.
func (c *Client) Login(ctx context.Context, params api.LoginParams) (api.Envelope[api.LoginData], error) {
	env, err := call[api.LoginData](ctx, c, http.MethodPost, "auth/login", params)
	if err == nil && env.OK() {
		if err := c.saveSession(); err != nil {
			c.log.Warn("failed to persist session", "path", c.sessionPath, "err", err)
		}
	}
	return env, err
}

// Logout implements api.Client. The persisted session is dropped on success.
func (c *Client) Logout(ctx context.Context) (api.Envelope[api.Empty], error) {
	env, err := call[api.Empty](ctx, c, http.MethodDelete, "auth/login", nil)
	if err == nil && env.OK() {
		if err := c.clearSession(); err != nil {
			c.log.Warn("failed to remove session", "path", c.sessionPath, "err", err)
		}
	}
	return env, err
}

// GetTodoLists implements api.Client. The endpoint returns a bare array,
// which is wrapped in an OK envelope.
func (c *Client) GetTodoLists(ctx context.Context) (api.Envelope[[]api.TodoList], error) {
	var lists []api.TodoList
	if err := c.do(ctx, http.MethodGet, "todo-lists", nil, &lists); err != nil {
		return api.Envelope[[]api.TodoList]{}, err
	}
	if lists == nil {
		lists = []api.TodoList{}
	}
	return api.OKEnvelope(lists), nil
}

// CreateTodoList implements api.Client.
func (c *Client) CreateTodoList(ctx context.Context, title string) (api.Envelope[api.Item[api.TodoList]], error) {
	return call[api.Item[api.TodoList]](ctx, c, http.MethodPost, "todo-lists", titleBody{Title: title})
}

// UpdateTodoList implements api.Client.
func (c *Client) UpdateTodoList(ctx context.Context, listID, title string) (api.Envelope[api.Empty], error) {
	return call[api.Empty](ctx, c, http.MethodPut, join("todo-lists", listID), titleBody{Title: title})
}

// DeleteTodoList implements api.Client.
func (c *Client) DeleteTodoList(ctx context.Context, listID string) (api.Envelope[api.Empty], error) {
	return call[api.Empty](ctx, c, http.MethodDelete, join("todo-lists", listID), nil)
}

// tasksPage is the wire shape of the task listing endpoint.
type tasksPage struct {
	Items      []api.Task `json:"items"`
	TotalCount int        `json:"totalCount"`
	Error      *string    `json:"error"`
}

// GetTasks implements api.Client. A non-empty error field in the listing
// becomes an Error envelope.
func (c *Client) GetTasks(ctx context.Context, listID string) (api.Envelope[[]api.Task], error) {
	var page tasksPage
	if err := c.do(ctx, http.MethodGet, join("todo-lists", listID, "tasks"), nil, &page); err != nil {
		return api.Envelope[[]api.Task]{}, err
	}
	if page.Error != nil && *page.Error != "" {
		return api.ErrorEnvelope[[]api.Task](*page.Error), nil
	}
	if page.Items == nil {
		page.Items = []api.Task{}
	}
	return api.OKEnvelope(page.Items), nil
}

// CreateTask implements api.Client.
func (c *Client) CreateTask(ctx context.Context, listID, title string) (api.Envelope[api.Item[api.Task]], error) {
	return call[api.Item[api.Task]](ctx, c, http.MethodPost, join("todo-lists", listID, "tasks"), titleBody{Title: title})
}

// UpdateTask implements api.Client.
func (c *Client) UpdateTask(ctx context.Context, listID, taskID string, model api.UpdateTaskModel) (api.Envelope[api.Item[api.Task]], error) {
	return call[api.Item[api.Task]](ctx, c, http.MethodPut, join("todo-lists", listID, "tasks", taskID), model)
}

// DeleteTask implements api.Client.
func (c *Client) DeleteTask(ctx context.Context, listID, taskID string) (api.Envelope[api.Empty], error) {
	return call[api.Empty](ctx, c, http.MethodDelete, join("todo-lists", listID, "tasks", taskID), nil)
}

type titleBody struct {
	Title string `json:"title"`
}

// call performs a request whose response body is an envelope.
func call[T any](ctx context.Context, c *Client, method, path string, body any) (api.Envelope[T], error) {
	var env api.Envelope[T]
	if err := c.do(ctx, method, path, body, &env); err != nil {
		return api.Envelope[T]{}, err
	}
	return env, nil
}

// do sends one request and decodes a 2xx JSON body into out.
// Every failure is returned as *api.TransportError.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	op := method + " " + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &api.TransportError{Op: op, Message: "failed to encode request", Err: err}
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.JoinPath(path).String(), reqBody)
	if err != nil {
		return &api.TransportError{Op: op, Message: err.Error(), Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("API-KEY", c.apiKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("api call failed", "op", op, "err", err)
		return wrapError(op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return &api.TransportError{Op: op, StatusCode: resp.StatusCode, Message: "failed to read response", Err: err}
	}
	c.log.Debug("api call", "op", op, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &api.TransportError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    serverMessage(data, resp.StatusCode),
		}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &api.TransportError{Op: op, StatusCode: resp.StatusCode, Message: "invalid response body", Err: err}
	}
	return nil
}

// serverMessage prefers a server-supplied message field and falls back to
// the generic status text.
func serverMessage(body []byte, status int) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return fmt.Sprintf("request failed with status code %d", status)
}

// wrapError turns a failed round trip into a transport error with a user-friendly message.
func wrapError(op string, err error) error {
	msg := err.Error()
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		msg = "request timed out"
	case errors.Is(err, context.Canceled):
		msg = "request cancelled"
	}
	return &api.TransportError{Op: op, Message: msg, Err: err}
}

// join escapes each path segment and joins them with '/'.
func join(elem ...string) string {
	escaped := make([]string, len(elem))
	for i, e := range elem {
		escaped[i] = url.PathEscape(e)
	}
	return strings.Join(escaped, "/")
}
