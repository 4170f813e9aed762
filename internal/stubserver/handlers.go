package stubserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"todosync/internal/api"
)

// me handles GET /auth/me.
func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.sessionUser(r)
	if !ok {
		writeRejected(w, "You are not authorized")
		return
	}
	s.mu.Lock()
	u := s.userByID(userID)
	s.mu.Unlock()
	writeOK(w, api.MeData{ID: u.id, Email: u.email, Login: u.login})
}

// login handles POST /auth/login.
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var params api.LoginParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeStatus(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	var fieldErrors []api.FieldError
	if strings.TrimSpace(params.Email) == "" {
		fieldErrors = append(fieldErrors, api.FieldError{Field: "email", Error: "Email is required"})
	}
	if params.Password == "" {
		fieldErrors = append(fieldErrors, api.FieldError{Field: "password", Error: "Password is required"})
	}
	if len(fieldErrors) > 0 {
		writeJSON(w, api.Envelope[api.Empty]{
			ResultCode:  api.ResultError,
			Messages:    []string{fieldErrors[0].Error},
			FieldErrors: fieldErrors,
		})
		return
	}

	s.mu.Lock()
	u, ok := s.users[params.Email]
	if !ok || u.password != params.Password {
		s.mu.Unlock()
		writeRejected(w, "Incorrect Email or Password")
		return
	}
	token := newID()
	s.sessions[token] = u.id
	s.mu.Unlock()

	cookie := &http.Cookie{Name: SessionCookie, Value: token, Path: "/", HttpOnly: true}
	if params.RememberMe {
		cookie.MaxAge = 30 * 24 * 60 * 60
	}
	http.SetCookie(w, cookie)
	writeOK(w, api.LoginData{UserID: u.id})
}

// logout handles DELETE /auth/login.
func (s *Server) logout(w http.ResponseWriter, r *http.Request, _ int) {
	if c, err := r.Cookie(SessionCookie); err == nil {
		s.mu.Lock()
		delete(s.sessions, c.Value)
		s.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1})
	writeOK(w, api.Empty{})
}

// getLists handles GET /todo-lists. The body is a bare array.
func (s *Server) getLists(w http.ResponseWriter, _ *http.Request, userID int) {
	s.mu.Lock()
	lists := append([]api.TodoList{}, s.accounts[userID].lists...)
	s.mu.Unlock()
	writeJSON(w, lists)
}

// createList handles POST /todo-lists.
func (s *Server) createList(w http.ResponseWriter, r *http.Request, userID int) {
	title, ok := decodeTitle(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	acc := s.accounts[userID]
	list := api.TodoList{ID: newID(), Title: title, AddedDate: now(), Order: -len(acc.lists)}
	acc.lists = append([]api.TodoList{list}, acc.lists...)
	acc.tasks[list.ID] = nil
	s.mu.Unlock()

	writeOK(w, api.Item[api.TodoList]{Item: list})
}

// updateList handles PUT /todo-lists/{listID}.
func (s *Server) updateList(w http.ResponseWriter, r *http.Request, userID int) {
	title, ok := decodeTitle(w, r)
	if !ok {
		return
	}
	listID := mux.Vars(r)["listID"]

	s.mu.Lock()
	acc := s.accounts[userID]
	i := acc.listIndex(listID)
	if i >= 0 {
		acc.lists[i].Title = title
	}
	s.mu.Unlock()

	if i < 0 {
		writeRejected(w, "Todolist not found")
		return
	}
	writeOK(w, api.Empty{})
}

// deleteList handles DELETE /todo-lists/{listID}.
func (s *Server) deleteList(w http.ResponseWriter, r *http.Request, userID int) {
	listID := mux.Vars(r)["listID"]

	s.mu.Lock()
	acc := s.accounts[userID]
	i := acc.listIndex(listID)
	if i >= 0 {
		acc.lists = append(acc.lists[:i:i], acc.lists[i+1:]...)
		delete(acc.tasks, listID)
	}
	s.mu.Unlock()

	if i < 0 {
		writeRejected(w, "Todolist not found")
		return
	}
	writeOK(w, api.Empty{})
}

// tasksPage mirrors the task listing wire shape.
type tasksPage struct {
	Items      []api.Task `json:"items"`
	TotalCount int        `json:"totalCount"`
	Error      *string    `json:"error"`
}

// getTasks handles GET /todo-lists/{listID}/tasks.
func (s *Server) getTasks(w http.ResponseWriter, r *http.Request, userID int) {
	listID := mux.Vars(r)["listID"]

	s.mu.Lock()
	acc := s.accounts[userID]
	known := acc.listIndex(listID) >= 0
	tasks := append([]api.Task{}, acc.tasks[listID]...)
	s.mu.Unlock()

	if !known {
		msg := "Todolist not found"
		writeJSON(w, tasksPage{Items: []api.Task{}, Error: &msg})
		return
	}
	writeJSON(w, tasksPage{Items: tasks, TotalCount: len(tasks)})
}

// createTask handles POST /todo-lists/{listID}/tasks.
func (s *Server) createTask(w http.ResponseWriter, r *http.Request, userID int) {
	title, ok := decodeTitle(w, r)
	if !ok {
		return
	}
	listID := mux.Vars(r)["listID"]

	s.mu.Lock()
	acc := s.accounts[userID]
	if acc.listIndex(listID) < 0 {
		s.mu.Unlock()
		writeRejected(w, "Todolist not found")
		return
	}
	task := api.Task{ID: newID(), TodoListID: listID, Title: title, AddedDate: now(), Order: -len(acc.tasks[listID])}
	acc.tasks[listID] = append([]api.Task{task}, acc.tasks[listID]...)
	s.mu.Unlock()

	writeOK(w, api.Item[api.Task]{Item: task})
}

// updateTask handles PUT /todo-lists/{listID}/tasks/{taskID}.
func (s *Server) updateTask(w http.ResponseWriter, r *http.Request, userID int) {
	var model api.UpdateTaskModel
	if err := json.NewDecoder(r.Body).Decode(&model); err != nil {
		writeStatus(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if msg := validateTitle(model.Title); msg != "" {
		writeRejected(w, msg)
		return
	}
	vars := mux.Vars(r)

	s.mu.Lock()
	acc := s.accounts[userID]
	tasks := acc.tasks[vars["listID"]]
	i := taskIndex(tasks, vars["taskID"])
	var task api.Task
	if i >= 0 {
		task = tasks[i]
		task.Title = model.Title
		task.Description = model.Description
		task.Status = model.Status
		task.Priority = model.Priority
		task.StartDate = model.StartDate
		task.Deadline = model.Deadline
		tasks[i] = task
	}
	s.mu.Unlock()

	if i < 0 {
		writeRejected(w, "Task not found")
		return
	}
	writeOK(w, api.Item[api.Task]{Item: task})
}

// deleteTask handles DELETE /todo-lists/{listID}/tasks/{taskID}.
func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request, userID int) {
	vars := mux.Vars(r)
	listID := vars["listID"]

	s.mu.Lock()
	acc := s.accounts[userID]
	tasks := acc.tasks[listID]
	i := taskIndex(tasks, vars["taskID"])
	if i >= 0 {
		acc.tasks[listID] = append(tasks[:i:i], tasks[i+1:]...)
	}
	s.mu.Unlock()

	if i < 0 {
		writeRejected(w, "Task not found")
		return
	}
	writeOK(w, api.Empty{})
}

// decodeTitle reads a {"title": ...} body, writing the rejection itself when
// the title is invalid.
func decodeTitle(w http.ResponseWriter, r *http.Request) (string, bool) {
	var body struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeStatus(w, http.StatusBadRequest, "Invalid request payload")
		return "", false
	}
	if msg := validateTitle(body.Title); msg != "" {
		writeRejected(w, msg)
		return "", false
	}
	return body.Title, true
}

func validateTitle(title string) string {
	switch {
	case strings.TrimSpace(title) == "":
		return "The Title field is required."
	case len([]rune(title)) > MaxTitleLength:
		return fmt.Sprintf("The field Title must be a string or array type with a maximum length of '%d'.", MaxTitleLength)
	}
	return ""
}

func (s *Server) userByID(id int) *user {
	for _, u := range s.users {
		if u.id == id {
			return u
		}
	}
	return nil
}

func (a *account) listIndex(id string) int {
	for i, l := range a.lists {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func taskIndex(tasks []api.Task, id string) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
