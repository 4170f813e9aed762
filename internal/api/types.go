// Package api defines the remote todo service contract shared by all backends.
package api

// ResultCode is the application-level outcome of a remote call.
// It is independent of HTTP success: a 200 response can still carry ResultError.
type ResultCode int

const (
	ResultOK      ResultCode = 0
	ResultError   ResultCode = 1
	ResultCaptcha ResultCode = 10
)

// FieldError is a validation error attached to a single input field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// Envelope is the uniform wrapper every remote call returns.
type Envelope[T any] struct {
	ResultCode  ResultCode   `json:"resultCode"`
	Messages    []string     `json:"messages"`
	FieldErrors []FieldError `json:"fieldsErrors"`
	Data        T            `json:"data"`
}

// OK reports whether the envelope carries ResultOK.
func (e Envelope[T]) OK() bool {
	return e.ResultCode == ResultOK
}

// Item is the data shape of create and update responses.
type Item[T any] struct {
	Item T `json:"item"`
}

// Empty is the data shape of calls that return nothing.
type Empty struct{}

// TodoList is a named container of tasks as the server stores it.
type TodoList struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	AddedDate string `json:"addedDate"`
	Order     int    `json:"order"`
}

// TaskStatus is the completion state of a task.
type TaskStatus int

const (
	StatusNew TaskStatus = iota
	StatusInProgress
	StatusCompleted
	StatusDraft
)

// String returns the lowercase status name.
func (s TaskStatus) String() string {
	switch s {
	case StatusNew:
		return "new"
	case StatusInProgress:
		return "inprogress"
	case StatusCompleted:
		return "completed"
	case StatusDraft:
		return "draft"
	default:
		return "unknown"
	}
}

// TaskPriority is the scheduling priority of a task.
type TaskPriority int

const (
	PriorityLow TaskPriority = iota
	PriorityMiddle
	PriorityHigh
	PriorityUrgent
	PriorityLater
)

// Task is a single item within a todo list.
type Task struct {
	ID          string       `json:"id"`
	TodoListID  string       `json:"todoListId"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	StartDate   string       `json:"startDate"`
	Deadline    string       `json:"deadline"`
	AddedDate   string       `json:"addedDate"`
	Order       int          `json:"order"`
}

// UpdateTaskModel is the full payload the update-task call requires.
// The server replaces every field, so callers must carry unchanged values forward.
type UpdateTaskModel struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	StartDate   string       `json:"startDate"`
	Deadline    string       `json:"deadline"`
}

// ModelOf returns the update payload matching t's current fields.
func ModelOf(t Task) UpdateTaskModel {
	return UpdateTaskModel{
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		StartDate:   t.StartDate,
		Deadline:    t.Deadline,
	}
}

// LoginParams are the credentials sent to the login call.
type LoginParams struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
	Captcha    string `json:"captcha,omitempty"`
}

// MeData identifies the authenticated user.
type MeData struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
	Login string `json:"login"`
}

// LoginData is returned by a successful login.
type LoginData struct {
	UserID int `json:"userId"`
}
