// Package googletasks implements api.Client using the Google Tasks API.
package googletasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"todosync/internal/api"
	"todosync/internal/config"
)

const (
	// DefaultListID is the special ID for the default list.
	DefaultListID = "@default"

	// PageSize is the number of items requested per page.
	PageSize = 100

	// APITimeout is the timeout for API calls.
	APITimeout = 5 * time.Second

	statusNeedsAction = "needsAction"
	statusCompleted   = "completed"
)

// errNotLoggedIn is returned by connect when no token is stored.
var errNotLoggedIn = errors.New("not logged in (run: todosync login)")

// Options configures a Client.
type Options struct {
	// Config locates oauth_client.json and token.json.
	Config *config.Config

	// Prompt receives the authorization URL during login.
	Prompt io.Writer

	// Logger receives debug traces.
	Logger *slog.Logger

	// HTTPClient and Endpoint bypass the stored token (for testing).
	HTTPClient *http.Client
	Endpoint   string
}

// Client implements api.Client using Google Tasks API.
// The underlying service is created lazily so that login can run before a
// token exists.
type Client struct {
	cfg    *config.Config
	prompt io.Writer
	log    *slog.Logger
	opts   Options

	mu  sync.Mutex
	svc *tasks.Service
}

var _ api.Client = (*Client)(nil)

// New creates a new Google Tasks client.
func New(opts Options) *Client {
	prompt := opts.Prompt
	if prompt == nil {
		prompt = io.Discard
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		cfg:    opts.Config,
		prompt: prompt,
		log:    logger,
		opts:   opts,
	}
}

// connect returns the tasks service, creating it from the stored token on first use.
func (c *Client) connect(ctx context.Context) (*tasks.Service, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.svc != nil {
		return c.svc, nil
	}

	if c.opts.HTTPClient != nil {
		svcOpts := []option.ClientOption{option.WithHTTPClient(c.opts.HTTPClient)}
		if c.opts.Endpoint != "" {
			svcOpts = append(svcOpts, option.WithEndpoint(c.opts.Endpoint))
		}
		svc, err := tasks.NewService(ctx, svcOpts...)
		if err != nil {
			return nil, err
		}
		c.svc = svc
		return svc, nil
	}

	if !c.cfg.HasOAuthClient() {
		return nil, fmt.Errorf("oauth_client.json not found in %s", c.cfg.Dir)
	}
	if !c.cfg.HasToken() {
		return nil, errNotLoggedIn
	}
	oauthConfig, err := loadOAuthConfig(c.cfg)
	if err != nil {
		return nil, err
	}
	token, err := loadToken(c.cfg.TokenPath())
	if err != nil {
		return nil, err
	}

	// The service outlives ctx, so the refreshing token source must not be bound to it.
	httpClient := oauthConfig.Client(context.Background(), token)
	svc, err := tasks.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	c.svc = svc
	return svc, nil
}

func (c *Client) disconnect() {
	c.mu.Lock()
	c.svc = nil
	c.mu.Unlock()
}

// call runs fn against the service with a per-call timeout. Connection
// problems become Error envelopes; API failures become transport errors.
func call[T any](ctx context.Context, c *Client, op string, fn func(ctx context.Context, svc *tasks.Service) (T, error)) (api.Envelope[T], error) {
	svc, err := c.connect(ctx)
	if err != nil {
		c.log.Debug("google tasks unavailable", "op", op, "err", err)
		return api.ErrorEnvelope[T](err.Error()), nil
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	start := time.Now()
	data, err := fn(ctx, svc)
	c.log.Debug("api call", "op", op, "elapsed", time.Since(start), "err", err)
	if err != nil {
		return api.Envelope[T]{}, wrapError(op, err)
	}
	return api.OKEnvelope(data), nil
}

// Me implements api.Client by probing the default list.
func (c *Client) Me(ctx context.Context) (api.Envelope[api.MeData], error) {
	return call(ctx, c, "me", func(ctx context.Context, svc *tasks.Service) (api.MeData, error) {
		if _, err := svc.Tasklists.Get(DefaultListID).Context(ctx).Do(); err != nil {
			return api.MeData{}, err
		}
		return api.MeData{Login: "google"}, nil
	})
}

// Login implements api.Client. Credentials are ignored: when no valid token
// is stored the OAuth browser flow runs and the token is saved.
func (c *Client) Login(ctx context.Context, _ api.LoginParams) (api.Envelope[api.LoginData], error) {
	if c.opts.HTTPClient != nil {
		return api.OKEnvelope(api.LoginData{}), nil
	}
	if !c.cfg.HasOAuthClient() {
		printSetupHelp(c.prompt, c.cfg.Dir)
		return api.ErrorEnvelope[api.LoginData](fmt.Sprintf("oauth_client.json not found in %s", c.cfg.Dir)), nil
	}
	if c.cfg.HasToken() && isTokenValid(ctx, c.cfg) {
		return api.OKEnvelope(api.LoginData{}), nil
	}

	token, err := authorize(ctx, c.cfg, c.prompt)
	if err != nil {
		return api.Envelope[api.LoginData]{}, &api.TransportError{Op: "login", Message: err.Error(), Err: err}
	}
	if err := c.cfg.EnsureDir(); err != nil {
		return api.Envelope[api.LoginData]{}, &api.TransportError{Op: "login", Message: "failed to create config directory", Err: err}
	}
	if err := saveToken(c.cfg.TokenPath(), token); err != nil {
		return api.Envelope[api.LoginData]{}, &api.TransportError{Op: "login", Message: "failed to save token", Err: err}
	}
	c.disconnect()
	return api.OKEnvelope(api.LoginData{}), nil
}

// Logout implements api.Client by removing the stored token.
func (c *Client) Logout(ctx context.Context) (api.Envelope[api.Empty], error) {
	c.disconnect()
	if c.cfg == nil || !c.cfg.HasToken() {
		return api.OKEnvelope(api.Empty{}), nil
	}
	if err := c.cfg.RemoveToken(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return api.Envelope[api.Empty]{}, &api.TransportError{Op: "logout", Message: "failed to remove token", Err: err}
	}
	return api.OKEnvelope(api.Empty{}), nil
}

// GetTodoLists implements api.Client. Lists are returned in API order.
func (c *Client) GetTodoLists(ctx context.Context) (api.Envelope[[]api.TodoList], error) {
	return call(ctx, c, "list lists", func(ctx context.Context, svc *tasks.Service) ([]api.TodoList, error) {
		result := []api.TodoList{}
		err := svc.Tasklists.List().MaxResults(PageSize).Pages(ctx, func(resp *tasks.TaskLists) error {
			for _, l := range resp.Items {
				result = append(result, toTodoList(l, len(result)))
			}
			return nil
		})
		return result, err
	})
}

// CreateTodoList implements api.Client.
func (c *Client) CreateTodoList(ctx context.Context, title string) (api.Envelope[api.Item[api.TodoList]], error) {
	return call(ctx, c, "create list", func(ctx context.Context, svc *tasks.Service) (api.Item[api.TodoList], error) {
		l, err := svc.Tasklists.Insert(&tasks.TaskList{Title: title}).Context(ctx).Do()
		if err != nil {
			return api.Item[api.TodoList]{}, err
		}
		return api.Item[api.TodoList]{Item: toTodoList(l, 0)}, nil
	})
}

// UpdateTodoList implements api.Client.
func (c *Client) UpdateTodoList(ctx context.Context, listID, title string) (api.Envelope[api.Empty], error) {
	return call(ctx, c, "rename list", func(ctx context.Context, svc *tasks.Service) (api.Empty, error) {
		_, err := svc.Tasklists.Patch(listID, &tasks.TaskList{Title: title}).Context(ctx).Do()
		return api.Empty{}, err
	})
}

// DeleteTodoList implements api.Client.
func (c *Client) DeleteTodoList(ctx context.Context, listID string) (api.Envelope[api.Empty], error) {
	return call(ctx, c, "delete list", func(ctx context.Context, svc *tasks.Service) (api.Empty, error) {
		return api.Empty{}, svc.Tasklists.Delete(listID).Context(ctx).Do()
	})
}

// GetTasks implements api.Client. Completed and hidden tasks are included.
func (c *Client) GetTasks(ctx context.Context, listID string) (api.Envelope[[]api.Task], error) {
	return call(ctx, c, "list tasks", func(ctx context.Context, svc *tasks.Service) ([]api.Task, error) {
		result := []api.Task{}
		err := svc.Tasks.List(listID).
			MaxResults(PageSize).
			ShowCompleted(true).
			ShowHidden(true).
			ShowDeleted(false).
			Pages(ctx, func(resp *tasks.Tasks) error {
				for _, t := range resp.Items {
					result = append(result, toTask(listID, t, len(result)))
				}
				return nil
			})
		return result, err
	})
}

// CreateTask implements api.Client.
func (c *Client) CreateTask(ctx context.Context, listID, title string) (api.Envelope[api.Item[api.Task]], error) {
	return call(ctx, c, "create task", func(ctx context.Context, svc *tasks.Service) (api.Item[api.Task], error) {
		t, err := svc.Tasks.Insert(listID, &tasks.Task{Title: title}).Context(ctx).Do()
		if err != nil {
			return api.Item[api.Task]{}, err
		}
		return api.Item[api.Task]{Item: toTask(listID, t, 0)}, nil
	})
}

// UpdateTask implements api.Client. Priority and start date have no Google
// Tasks equivalent and are echoed back unchanged.
func (c *Client) UpdateTask(ctx context.Context, listID, taskID string, model api.UpdateTaskModel) (api.Envelope[api.Item[api.Task]], error) {
	return call(ctx, c, "update task", func(ctx context.Context, svc *tasks.Service) (api.Item[api.Task], error) {
		t, err := svc.Tasks.Patch(listID, taskID, fromModel(model)).Context(ctx).Do()
		if err != nil {
			return api.Item[api.Task]{}, err
		}
		task := toTask(listID, t, 0)
		task.Priority = model.Priority
		task.StartDate = model.StartDate
		return api.Item[api.Task]{Item: task}, nil
	})
}

// DeleteTask implements api.Client.
func (c *Client) DeleteTask(ctx context.Context, listID, taskID string) (api.Envelope[api.Empty], error) {
	return call(ctx, c, "delete task", func(ctx context.Context, svc *tasks.Service) (api.Empty, error) {
		return api.Empty{}, svc.Tasks.Delete(listID, taskID).Context(ctx).Do()
	})
}

func toTodoList(l *tasks.TaskList, order int) api.TodoList {
	return api.TodoList{ID: l.Id, Title: l.Title, AddedDate: l.Updated, Order: order}
}

func toTask(listID string, t *tasks.Task, order int) api.Task {
	status := api.StatusNew
	if t.Status == statusCompleted {
		status = api.StatusCompleted
	}
	return api.Task{
		ID:          t.Id,
		TodoListID:  listID,
		Title:       t.Title,
		Description: t.Notes,
		Status:      status,
		Deadline:    t.Due,
		AddedDate:   t.Updated,
		Order:       order,
	}
}

// fromModel builds a patch that replaces every mapped field, including
// clearing notes and due date.
func fromModel(m api.UpdateTaskModel) *tasks.Task {
	t := &tasks.Task{
		Title:           m.Title,
		Notes:           m.Description,
		Due:             m.Deadline,
		Status:          statusNeedsAction,
		ForceSendFields: []string{"Title", "Notes"},
	}
	if m.Status == api.StatusCompleted {
		t.Status = statusCompleted
	} else {
		t.NullFields = []string{"Completed"}
	}
	if m.Deadline == "" {
		t.NullFields = append(t.NullFields, "Due")
	}
	return t
}

// wrapError turns an API failure into a transport error with a user-friendly message.
func wrapError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &api.TransportError{Op: op, Message: "request timed out", Err: err}
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		msg := gerr.Message
		switch {
		case gerr.Code == http.StatusUnauthorized || gerr.Code == http.StatusForbidden:
			msg = "token expired or revoked (run: todosync login)"
		case msg == "":
			msg = fmt.Sprintf("request failed with status code %d", gerr.Code)
		}
		return &api.TransportError{Op: op, StatusCode: gerr.Code, Message: msg, Err: err}
	}

	return &api.TransportError{Op: op, Message: err.Error(), Err: err}
}
