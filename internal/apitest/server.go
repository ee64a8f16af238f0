// Package apitest provides an in-memory fake of the task API for tests.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/marcus/taskops/internal/models"
)

// Prefix is the API path prefix served by the fake
const Prefix = "/api/v1"

var signingKey = []byte("apitest-secret")

type account struct {
	models.User
	password string
}

// Request records a request received by the fake
type Request struct {
	Method    string
	Path      string
	Query     string
	Auth      string
	RequestID string
}

type failure struct {
	status int
	detail string
}

// Server is a fake task API backed by memory.
type Server struct {
	*httptest.Server

	// TokenTTL controls the exp claim of issued tokens
	TokenTTL time.Duration

	mu         sync.Mutex
	users      map[string]*account
	tasks      []models.Task
	nextUserID int
	nextTaskID int
	requests   []Request
	failNext   []failure
}

// New starts a fake server that is closed when the test ends.
func New(t testing.TB) *Server {
	s := &Server{
		TokenTTL:   30 * time.Minute,
		users:      make(map[string]*account),
		nextUserID: 1,
		nextTaskID: 1,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("POST "+Prefix+"/auth/register", s.handleRegister)
	mux.HandleFunc("POST "+Prefix+"/auth/access-token", s.handleToken)
	mux.HandleFunc("GET "+Prefix+"/tasks/{$}", s.handleListTasks)
	mux.HandleFunc("POST "+Prefix+"/tasks/{$}", s.handleCreateTask)
	mux.HandleFunc("GET "+Prefix+"/tasks/{id}", s.handleGetTask)
	mux.HandleFunc("DELETE "+Prefix+"/tasks/{id}", s.handleDeleteTask)

	s.Server = httptest.NewServer(s.record(mux))
	t.Cleanup(s.Close)
	return s
}

// APIURL returns the base URL including the API prefix
func (s *Server) APIURL() string {
	return s.URL + Prefix
}

// AddUser creates an account directly and returns it
func (s *Server) AddUser(email, password string, superuser bool) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(email, password, superuser, true)
}

// SetActive enables or disables an account
func (s *Server) SetActive(email string, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[email]; ok {
		u.IsActive = active
	}
}

// AddTask stores a task for the given owner and returns it
func (s *Server) AddTask(ownerID int, title, description string) models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	task := models.Task{ID: s.nextTaskID, Title: title, Description: description, OwnerID: ownerID}
	s.nextTaskID++
	s.tasks = append(s.tasks, task)
	return task
}

// Tasks returns a copy of all stored tasks
func (s *Server) Tasks() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Task(nil), s.tasks...)
}

// Requests returns a copy of all recorded requests
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// FailNext makes the next request fail with status and detail.
// Calls queue up in order.
func (s *Server) FailNext(status int, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = append(s.failNext, failure{status: status, detail: detail})
}

// IssueToken returns a signed token for email that expires after ttl
func (s *Server) IssueToken(email string, ttl time.Duration) string {
	claims := jwt.MapClaims{"sub": email, "exp": time.Now().Add(ttl).Unix()}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
	if err != nil {
		panic(fmt.Sprintf("apitest: sign token: %v", err))
	}
	return tok
}

func (s *Server) addUserLocked(email, password string, superuser, active bool) models.User {
	u := &account{
		User: models.User{
			ID:          s.nextUserID,
			Email:       email,
			IsActive:    active,
			IsSuperuser: superuser,
		},
		password: password,
	}
	s.nextUserID++
	s.users[email] = u
	return u.User
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:    r.Method,
			Path:      r.URL.Path,
			Query:     r.URL.RawQuery,
			Auth:      r.Header.Get("Authorization"),
			RequestID: r.Header.Get("X-Request-ID"),
		})
		var fail *failure
		if len(s.failNext) > 0 {
			f := s.failNext[0]
			s.failNext = s.failNext[1:]
			fail = &f
		}
		s.mu.Unlock()

		if fail != nil {
			writeDetail(w, fail.status, fail.detail)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeMissing(w http.ResponseWriter, where string, fields ...string) {
	items := make([]map[string]any, 0, len(fields))
	for _, f := range fields {
		items = append(items, map[string]any{
			"loc":  []any{where, f},
			"msg":  "Field required",
			"type": "missing",
		})
	}
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": items})
}

// currentUser authenticates the request's bearer token.
func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) (*account, bool) {
	auth := r.Header.Get("Authorization")
	raw, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || raw == "" {
		writeDetail(w, http.StatusUnauthorized, "Not authenticated")
		return nil, false
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return signingKey, nil
	})
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return nil, false
	}
	email, _ := claims["sub"].(string)

	s.mu.Lock()
	u, found := s.users[email]
	s.mu.Unlock()
	if !found {
		writeDetail(w, http.StatusNotFound, "User not found")
		return nil, false
	}
	if !u.IsActive {
		writeDetail(w, http.StatusBadRequest, "Inactive user")
		return nil, false
	}
	return u, true
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to Scalable REST API"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in models.NewUser
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}
	var missing []string
	if in.Email == "" {
		missing = append(missing, "email")
	}
	if in.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		writeMissing(w, "body", missing...)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[in.Email]; exists {
		writeDetail(w, http.StatusBadRequest, "The user with this email already exists in the system")
		return
	}
	writeJSON(w, http.StatusOK, s.addUserLocked(in.Email, in.Password, false, true))
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		writeMissing(w, "body", "username", "password")
		return
	}
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusBadRequest, "malformed form")
		return
	}
	email, password := r.PostForm.Get("username"), r.PostForm.Get("password")

	s.mu.Lock()
	u, ok := s.users[email]
	s.mu.Unlock()

	if !ok || u.password != password {
		writeDetail(w, http.StatusBadRequest, "Incorrect email or password")
		return
	}
	if !u.IsActive {
		writeDetail(w, http.StatusBadRequest, "Inactive user")
		return
	}
	writeJSON(w, http.StatusOK, models.Token{
		AccessToken: s.IssueToken(email, s.TokenTTL),
		TokenType:   "bearer",
	})
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	u, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	skip, limit := 0, 100
	if v := r.URL.Query().Get("skip"); v != "" {
		skip, _ = strconv.Atoi(v)
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	visible := []models.Task{}
	for _, t := range s.tasks {
		if u.IsSuperuser || t.OwnerID == u.ID {
			visible = append(visible, t)
		}
	}
	if skip > len(visible) {
		skip = len(visible)
	}
	end := skip + limit
	if end > len(visible) {
		end = len(visible)
	}
	writeJSON(w, http.StatusOK, visible[skip:end])
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	u, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	var in models.TaskInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Title == "" {
		writeMissing(w, "body", "title")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	task := models.Task{ID: s.nextTaskID, Title: in.Title, Description: in.Description, OwnerID: u.ID}
	s.nextTaskID++
	s.tasks = append(s.tasks, task)
	writeJSON(w, http.StatusOK, task)
}

// lookupTask resolves {id} and enforces ownership. It writes the error
// response and returns -1 when the task is not accessible.
func (s *Server) lookupTask(w http.ResponseWriter, r *http.Request, u *account) int {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": []map[string]any{
			{"loc": []any{"path", "id"}, "msg": "Input should be a valid integer", "type": "int_parsing"},
		}})
		return -1
	}
	i := models.FindTask(s.tasks, id)
	if i < 0 {
		writeDetail(w, http.StatusNotFound, "Task not found")
		return -1
	}
	if !u.IsSuperuser && s.tasks[i].OwnerID != u.ID {
		writeDetail(w, http.StatusBadRequest, "Not enough permissions")
		return -1
	}
	return i
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	u, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.lookupTask(w, r, u); i >= 0 {
		writeJSON(w, http.StatusOK, s.tasks[i])
	}
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	u, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.lookupTask(w, r, u)
	if i < 0 {
		return
	}
	task := s.tasks[i]
	s.tasks = models.RemoveTask(s.tasks, task.ID)
	writeJSON(w, http.StatusOK, task)
}
