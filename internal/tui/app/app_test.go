package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/marcus/taskops/internal/apiclient"
	"github.com/marcus/taskops/internal/apitest"
	"github.com/marcus/taskops/internal/models"
	"github.com/marcus/taskops/internal/output"
	"github.com/marcus/taskops/internal/session"
	"github.com/marcus/taskops/internal/tui/keymap"
)

const testPassword = "correct-horse"

type harness struct {
	srv   *apitest.Server
	store *session.Store
	cfg   Config
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	srv := apitest.New(t)
	store := session.NewStore(t.TempDir())
	base := apiclient.New(srv.APIURL(), "")
	return &harness{
		srv:   srv,
		store: store,
		cfg: Config{
			Client:    func(token string) Backend { return base.WithToken(token) },
			Sessions:  store,
			ServerURL: srv.APIURL(),
			PageSize:  2,
			Timeout:   5 * time.Second,
			Markdown:  output.NewPlainMarkdownRenderer(),
			Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		},
	}
}

// loggedIn stores a session for email and returns a dashboard model with
// its initial task list loaded.
func (h *harness) loggedIn(t *testing.T, email string) Model {
	t.Helper()
	token := h.srv.IssueToken(email, time.Hour)
	creds := session.FromToken(h.srv.APIURL(), email, &models.Token{AccessToken: token, TokenType: "bearer"}, time.Now())
	if err := h.store.Save(creds); err != nil {
		t.Fatalf("Save: %v", err)
	}
	m := New(h.cfg)
	if m.Page != PageDashboard {
		t.Fatalf("Page = %v, want dashboard", m.Page)
	}
	return feed(t, m, resultOf[tasksLoadedMsg](t, m.Init()))
}

// collect runs cmd and flattens batches into their messages
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// resultOf runs cmd and returns its message of type T
func resultOf[T any](t *testing.T, cmd tea.Cmd) T {
	t.Helper()
	for _, msg := range collect(cmd) {
		if v, ok := msg.(T); ok {
			return v
		}
	}
	var zero T
	t.Fatalf("no %T produced by command", zero)
	return zero
}

func feed(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func press(t *testing.T, m Model, key string) (Model, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch key {
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "ctrl+c":
		msg = tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestNewWithoutSessionShowsLanding(t *testing.T) {
	h := newHarness(t)
	m := New(h.cfg)

	if m.Page != PageLanding {
		t.Errorf("Page = %v, want landing", m.Page)
	}
	if m.Init() != nil {
		t.Error("landing should not start any command")
	}
	view := ansi.Strip(m.View())
	for _, want := range []string{banner, "Log in", "Register", "Quit"} {
		if !strings.Contains(view, want) {
			t.Errorf("landing view missing %q:\n%s", want, view)
		}
	}
}

func TestNewWithExpiredSessionClearsIt(t *testing.T) {
	h := newHarness(t)
	creds := &session.Credentials{
		AccessToken: "stale",
		Email:       "ops@example.com",
		ExpiresAt:   time.Now().Add(-time.Minute),
	}
	if err := h.store.Save(creds); err != nil {
		t.Fatal(err)
	}

	m := New(h.cfg)
	if m.Page != PageLanding {
		t.Errorf("Page = %v, want landing", m.Page)
	}
	if m.Notice != msgSessionExpired {
		t.Errorf("Notice = %q", m.Notice)
	}
	if stored, _ := h.store.Load(); stored != nil {
		t.Error("expired session should be cleared")
	}
}

func TestLandingNavigation(t *testing.T) {
	h := newHarness(t)
	m := New(h.cfg)

	m, _ = press(t, m, "l")
	if m.Page != PageLogin || m.AuthForm == nil || m.AuthForm.Mode != AuthLogin {
		t.Fatalf("after l: page=%v form=%+v", m.Page, m.AuthForm)
	}
	// Letters typed into the form are not commands
	m, _ = press(t, m, "q")
	if m.Page != PageLogin {
		t.Errorf("q inside form changed page to %v", m.Page)
	}

	m, _ = press(t, m, "esc")
	if m.Page != PageLanding || m.AuthForm != nil {
		t.Errorf("esc should return to landing, page=%v", m.Page)
	}

	m, _ = press(t, m, "r")
	if m.Page != PageRegister || m.AuthForm.Mode != AuthRegister {
		t.Errorf("after r: page=%v", m.Page)
	}

	m, _ = press(t, m, "esc")
	if _, cmd := press(t, m, "q"); cmd == nil {
		t.Error("q on landing should quit")
	}
}

func TestLoginSuccessOpensDashboard(t *testing.T) {
	h := newHarness(t)
	user := h.srv.AddUser("ops@example.com", testPassword, false)
	h.srv.AddTask(user.ID, "First", "")
	h.srv.AddTask(user.ID, "Second", "")
	h.srv.AddTask(user.ID, "Third", "")

	m := New(h.cfg)
	m, _ = press(t, m, "l")
	m.AuthForm.Email = " ops@example.com "
	m.AuthForm.Password = testPassword

	next, cmd := m.submitAuth()
	m = next.(Model)
	if !m.AuthForm.Submitting {
		t.Error("expected submitting state")
	}

	res := resultOf[loginResultMsg](t, cmd)
	if res.err != nil {
		t.Fatalf("login: %v", res.err)
	}
	next, cmd = m.Update(res)
	m = next.(Model)

	if m.Page != PageDashboard || !m.Loading {
		t.Fatalf("page=%v loading=%v", m.Page, m.Loading)
	}
	stored, err := h.store.Load()
	if err != nil || stored == nil {
		t.Fatalf("session not saved: %v", err)
	}
	if stored.Email != "ops@example.com" || stored.ExpiresAt.IsZero() {
		t.Errorf("unexpected stored session: %+v", stored)
	}

	// Page size 2 forces a second page
	m = feed(t, m, resultOf[tasksLoadedMsg](t, cmd))
	if m.Loading || len(m.Tasks) != 3 {
		t.Errorf("loading=%v tasks=%d, want 3", m.Loading, len(m.Tasks))
	}
}

func TestLoginFailureShowsInvalidCredentials(t *testing.T) {
	h := newHarness(t)
	h.srv.AddUser("ops@example.com", testPassword, false)

	m := New(h.cfg)
	m, _ = press(t, m, "l")
	m.AuthForm.Email = "ops@example.com"
	m.AuthForm.Password = "wrong-password"

	_, cmd := m.submitAuth()
	m = feed(t, m, resultOf[loginResultMsg](t, cmd))

	if m.Page != PageLogin {
		t.Errorf("Page = %v, want login", m.Page)
	}
	if m.Err != msgInvalidCreds {
		t.Errorf("Err = %q, want %q", m.Err, msgInvalidCreds)
	}
	if m.AuthForm.Password != "" || m.AuthForm.Email != "ops@example.com" {
		t.Errorf("form should keep email and clear password: %+v", m.AuthForm)
	}
	if stored, _ := h.store.Load(); stored != nil {
		t.Error("failed login must not store a session")
	}
}

func TestLoginValidationBlocksRequest(t *testing.T) {
	h := newHarness(t)
	m := New(h.cfg)
	m, _ = press(t, m, "l")
	m.AuthForm.Email = "not-an-email"
	m.AuthForm.Password = "x"

	next, _ := m.submitAuth()
	m = next.(Model)
	if m.AuthForm.Submitting {
		t.Error("invalid input should not submit")
	}
	if !strings.Contains(m.Err, "email must be a valid email address") {
		t.Errorf("Err = %q", m.Err)
	}
	if n := len(h.srv.Requests()); n != 0 {
		t.Errorf("server saw %d requests, want 0", n)
	}
}

func TestRegisterSuccessReturnsToLogin(t *testing.T) {
	h := newHarness(t)
	m := New(h.cfg)
	m, _ = press(t, m, "r")
	m.AuthForm.Email = "new@example.com"
	m.AuthForm.Password = testPassword

	_, cmd := m.submitAuth()
	m = feed(t, m, resultOf[registerResultMsg](t, cmd))

	if m.Page != PageLogin || m.AuthForm.Mode != AuthLogin {
		t.Fatalf("page=%v", m.Page)
	}
	if m.AuthForm.Email != "new@example.com" || m.AuthForm.Password != "" {
		t.Errorf("login form should be prefilled with the email only: %+v", m.AuthForm)
	}
	if !strings.Contains(m.Notice, "Registration successful") {
		t.Errorf("Notice = %q", m.Notice)
	}
}

func TestRegisterDuplicateShowsDetail(t *testing.T) {
	h := newHarness(t)
	h.srv.AddUser("ops@example.com", testPassword, false)

	m := New(h.cfg)
	m, _ = press(t, m, "r")
	m.AuthForm.Email = "ops@example.com"
	m.AuthForm.Password = testPassword

	_, cmd := m.submitAuth()
	m = feed(t, m, resultOf[registerResultMsg](t, cmd))

	if m.Page != PageRegister {
		t.Errorf("Page = %v, want register", m.Page)
	}
	if m.Err != "The user with this email already exists in the system" {
		t.Errorf("Err = %q", m.Err)
	}
}

func TestRegisterFailureWithoutDetail(t *testing.T) {
	h := newHarness(t)
	m := New(h.cfg)
	m, _ = press(t, m, "r")

	m = feed(t, m, registerResultMsg{email: "a@b.co", err: context.DeadlineExceeded})
	if m.Err != msgRegisterFailed {
		t.Errorf("Err = %q, want %q", m.Err, msgRegisterFailed)
	}
}

func TestRegisterShortPasswordRejectedLocally(t *testing.T) {
	h := newHarness(t)
	m := New(h.cfg)
	m, _ = press(t, m, "r")
	m.AuthForm.Email = "new@example.com"
	m.AuthForm.Password = "short"

	next, _ := m.submitAuth()
	m = next.(Model)
	if !strings.Contains(m.Err, "password must be at least 8 characters") {
		t.Errorf("Err = %q", m.Err)
	}
}

func TestDashboardEmptyList(t *testing.T) {
	h := newHarness(t)
	h.srv.AddUser("ops@example.com", testPassword, false)
	m := h.loggedIn(t, "ops@example.com")

	if view := ansi.Strip(m.View()); !strings.Contains(view, msgNoTasks) {
		t.Errorf("expected %q in view:\n%s", msgNoTasks, view)
	}
}

func TestDashboardRowsTruncated(t *testing.T) {
	h := newHarness(t)
	user := h.srv.AddUser("ops@example.com", testPassword, false)
	h.srv.AddTask(user.ID, strings.Repeat("very long title ", 20), "")
	m := h.loggedIn(t, "ops@example.com")
	m = feed(t, m, tea.WindowSizeMsg{Width: 60, Height: 20})

	for _, line := range strings.Split(m.View(), "\n") {
		if w := ansi.StringWidth(line); w > 60 {
			t.Errorf("line wider than terminal (%d): %q", w, ansi.Strip(line))
		}
	}
}

func TestCreateTaskAppends(t *testing.T) {
	h := newHarness(t)
	user := h.srv.AddUser("ops@example.com", testPassword, false)
	h.srv.AddTask(user.ID, "Existing", "")
	m := h.loggedIn(t, "ops@example.com")

	m, _ = press(t, m, "n")
	if m.TaskForm == nil {
		t.Fatal("n should open the task form")
	}
	m.TaskForm.Title = "  Rotate keys  "
	m.TaskForm.Description = "quarterly"

	_, cmd := m.submitTask()
	m = feed(t, m, resultOf[taskCreatedMsg](t, cmd))

	if m.TaskForm != nil {
		t.Error("form should close after create")
	}
	if len(m.Tasks) != 2 || m.Tasks[1].Title != "Rotate keys" {
		t.Fatalf("tasks = %+v", m.Tasks)
	}
	if m.Cursor != 1 {
		t.Errorf("Cursor = %d, want 1", m.Cursor)
	}
	if m.Notice != "Created #2" {
		t.Errorf("Notice = %q", m.Notice)
	}

	// Next open starts from a blank form
	m, _ = press(t, m, "n")
	if m.TaskForm.Title != "" || m.TaskForm.Description != "" {
		t.Errorf("form not reset: %+v", m.TaskForm)
	}
}

func TestCreateTaskBlankTitle(t *testing.T) {
	h := newHarness(t)
	h.srv.AddUser("ops@example.com", testPassword, false)
	m := h.loggedIn(t, "ops@example.com")
	before := len(h.srv.Requests())

	m, _ = press(t, m, "n")
	m.TaskForm.Title = "   "
	next, _ := m.submitTask()
	m = next.(Model)

	if m.Err != "title cannot be blank" {
		t.Errorf("Err = %q", m.Err)
	}
	if m.TaskForm == nil || m.TaskForm.Submitting {
		t.Error("form should stay open and idle")
	}
	if len(h.srv.Requests()) != before {
		t.Error("blank title must not reach the server")
	}
}

func TestCreateTaskFailureKeepsList(t *testing.T) {
	h := newHarness(t)
	user := h.srv.AddUser("ops@example.com", testPassword, false)
	h.srv.AddTask(user.ID, "Existing", "")
	m := h.loggedIn(t, "ops@example.com")

	m, _ = press(t, m, "n")
	m.TaskForm.Title = "Will fail"
	h.srv.FailNext(500, "boom")

	_, cmd := m.submitTask()
	m = feed(t, m, resultOf[taskCreatedMsg](t, cmd))

	if len(m.Tasks) != 1 {
		t.Errorf("tasks = %d, want 1", len(m.Tasks))
	}
	if !strings.Contains(m.Err, "Create failed") {
		t.Errorf("Err = %q", m.Err)
	}
	if m.TaskForm == nil || m.TaskForm.Title != "Will fail" {
		t.Error("form should stay open with its values")
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	h := newHarness(t)
	user := h.srv.AddUser("ops@example.com", testPassword, false)
	h.srv.AddTask(user.ID, "Keep", "")
	h.srv.AddTask(user.ID, "Drop", "")
	m := h.loggedIn(t, "ops@example.com")

	m, _ = press(t, m, "j")
	m, _ = press(t, m, "d")
	if m.ConfirmDelete == nil || m.ConfirmDelete.Title != "Drop" {
		t.Fatalf("ConfirmDelete = %+v", m.ConfirmDelete)
	}
	if !strings.Contains(ansi.Strip(m.View()), `Delete #2 "Drop"? (y/n)`) {
		t.Error("confirm prompt not shown")
	}

	m, cmd := press(t, m, "n")
	if m.ConfirmDelete != nil || cmd != nil {
		t.Error("n should cancel without a request")
	}

	m, _ = press(t, m, "x")
	m, cmd = press(t, m, "y")
	if !m.Deleting {
		t.Error("expected deleting state")
	}
	m = feed(t, m, resultOf[taskDeletedMsg](t, cmd))

	if len(m.Tasks) != 1 || m.Tasks[0].Title != "Keep" {
		t.Errorf("tasks = %+v", m.Tasks)
	}
	if m.Cursor != 0 {
		t.Errorf("Cursor = %d, want 0", m.Cursor)
	}
	if len(h.srv.Tasks()) != 1 {
		t.Errorf("server tasks = %d, want 1", len(h.srv.Tasks()))
	}
}

func TestDeleteNotFoundDropsLocalRow(t *testing.T) {
	h := newHarness(t)
	user := h.srv.AddUser("ops@example.com", testPassword, false)
	h.srv.AddTask(user.ID, "Ghost", "")
	m := h.loggedIn(t, "ops@example.com")

	h.srv.FailNext(404, "Task not found")
	m, _ = press(t, m, "d")
	_, cmd := press(t, m, "y")
	m = feed(t, m, resultOf[taskDeletedMsg](t, cmd))

	if len(m.Tasks) != 0 {
		t.Errorf("tasks = %+v", m.Tasks)
	}
	if m.Err != "Task #1 not found" {
		t.Errorf("Err = %q", m.Err)
	}
}

func TestUnauthorizedReturnsToLogin(t *testing.T) {
	h := newHarness(t)
	h.srv.AddUser("ops@example.com", testPassword, false)
	m := h.loggedIn(t, "ops@example.com")

	h.srv.FailNext(401, "Could not validate credentials")
	m, cmd := press(t, m, "r")
	m = feed(t, m, resultOf[tasksLoadedMsg](t, cmd))

	if m.Page != PageLogin {
		t.Fatalf("Page = %v, want login", m.Page)
	}
	if m.Err != msgSessionExpired {
		t.Errorf("Err = %q", m.Err)
	}
	if m.AuthForm.Email != "ops@example.com" {
		t.Errorf("login form should keep the email, got %q", m.AuthForm.Email)
	}
	if stored, _ := h.store.Load(); stored != nil {
		t.Error("session should be cleared")
	}
}

func TestLateResultAfterLogoutIgnored(t *testing.T) {
	h := newHarness(t)
	h.srv.AddUser("ops@example.com", testPassword, false)
	m := h.loggedIn(t, "ops@example.com")

	m, _ = press(t, m, "L")
	if m.Page != PageLogin || m.Notice != "Logged out" {
		t.Fatalf("page=%v notice=%q", m.Page, m.Notice)
	}
	m = feed(t, m, tasksLoadedMsg{tasks: []models.Task{{ID: 1, Title: "stale"}}})
	if len(m.Tasks) != 0 {
		t.Error("results for a closed dashboard must be dropped")
	}
}

func TestRefreshFromPreviousAccountDropped(t *testing.T) {
	h := newHarness(t)
	alice := h.srv.AddUser("alice@example.com", testPassword, false)
	bob := h.srv.AddUser("bob@example.com", testPassword, false)
	h.srv.AddTask(alice.ID, "alice-private", "")
	h.srv.AddTask(bob.ID, "bob-task", "")
	m := h.loggedIn(t, "alice@example.com")

	m, refresh := press(t, m, "r")
	staleList := resultOf[tasksLoadedMsg](t, refresh)

	m, _ = press(t, m, "L")
	token := &models.Token{AccessToken: h.srv.IssueToken("bob@example.com", time.Hour), TokenType: "bearer"}
	next, cmd := m.Update(loginResultMsg{email: "bob@example.com", token: token})
	m = next.(Model)
	if m.Page != PageDashboard || !m.Loading {
		t.Fatalf("page=%v loading=%v", m.Page, m.Loading)
	}

	m = feed(t, m, staleList)
	if len(m.Tasks) != 0 || !m.Loading {
		t.Fatalf("previous account's list applied: tasks=%+v loading=%v", m.Tasks, m.Loading)
	}

	m = feed(t, m, resultOf[tasksLoadedMsg](t, cmd))
	if len(m.Tasks) != 1 || m.Tasks[0].Title != "bob-task" || m.Loading {
		t.Errorf("tasks=%+v loading=%v", m.Tasks, m.Loading)
	}
}

func TestRefreshStartedBeforeDeleteDoesNotRestoreRow(t *testing.T) {
	h := newHarness(t)
	user := h.srv.AddUser("ops@example.com", testPassword, false)
	h.srv.AddTask(user.ID, "Keep", "")
	h.srv.AddTask(user.ID, "Drop", "")
	m := h.loggedIn(t, "ops@example.com")

	// Snapshot taken while both rows still exist
	m, refresh := press(t, m, "r")
	staleList := resultOf[tasksLoadedMsg](t, refresh)

	m, _ = press(t, m, "j")
	m, _ = press(t, m, "d")
	m, del := press(t, m, "y")
	next, reload := m.Update(resultOf[taskDeletedMsg](t, del))
	m = next.(Model)
	if reload == nil || !m.Loading {
		t.Fatal("delete during a refresh should start a new fetch")
	}

	m = feed(t, m, staleList)
	if len(m.Tasks) != 1 || m.Tasks[0].Title != "Keep" {
		t.Fatalf("stale refresh restored deleted row: %+v", m.Tasks)
	}

	m = feed(t, m, resultOf[tasksLoadedMsg](t, reload))
	if len(m.Tasks) != 1 || m.Tasks[0].Title != "Keep" || m.Loading {
		t.Errorf("tasks=%+v loading=%v", m.Tasks, m.Loading)
	}
}

func TestCursorMovement(t *testing.T) {
	m := Model{Tasks: []models.Task{{ID: 1}, {ID: 2}, {ID: 3}}}
	steps := []struct {
		cmd  keymap.Command
		want int
	}{
		{keymap.CmdCursorDown, 1},
		{keymap.CmdCursorDown, 2},
		{keymap.CmdCursorDown, 2},
		{keymap.CmdCursorTop, 0},
		{keymap.CmdCursorUp, 0},
		{keymap.CmdCursorBottom, 2},
	}
	for i, s := range steps {
		next, _ := m.executeCommand(s.cmd)
		m = next.(Model)
		if m.Cursor != s.want {
			t.Errorf("step %d (%s): Cursor = %d, want %d", i, s.cmd, m.Cursor, s.want)
		}
	}
}

func TestCursorBottomEmptyList(t *testing.T) {
	next, _ := Model{}.executeCommand(keymap.CmdCursorBottom)
	if c := next.(Model).Cursor; c != 0 {
		t.Errorf("Cursor = %d, want 0", c)
	}
}

func TestDetailViewRendersDescription(t *testing.T) {
	h := newHarness(t)
	user := h.srv.AddUser("ops@example.com", testPassword, false)
	h.srv.AddTask(user.ID, "Audit", "Check **all** hosts")
	m := h.loggedIn(t, "ops@example.com")

	m, _ = press(t, m, "enter")
	if m.Detail == nil {
		t.Fatal("enter should open the detail view")
	}
	view := ansi.Strip(m.View())
	for _, want := range []string{"#1: Audit", "Owner: user", "Check", "hosts"} {
		if !strings.Contains(view, want) {
			t.Errorf("detail view missing %q:\n%s", want, view)
		}
	}

	m, _ = press(t, m, "esc")
	if m.Detail != nil {
		t.Error("esc should close the detail view")
	}
}

func TestHelpToggle(t *testing.T) {
	h := newHarness(t)
	h.srv.AddUser("ops@example.com", testPassword, false)
	m := h.loggedIn(t, "ops@example.com")

	m, _ = press(t, m, "?")
	if !m.ShowHelp || !strings.Contains(ansi.Strip(m.View()), "New task") {
		t.Error("help overlay not shown")
	}
	// q closes help rather than quitting
	m, cmd := press(t, m, "q")
	if m.ShowHelp || cmd != nil {
		t.Error("q should close help")
	}
}

func TestVisibleRange(t *testing.T) {
	tests := []struct {
		total, cursor, height int
		start, end            int
	}{
		{3, 0, 10, 0, 3},
		{20, 0, 5, 0, 5},
		{20, 4, 5, 0, 5},
		{20, 5, 5, 1, 6},
		{20, 19, 5, 15, 20},
	}
	for _, tt := range tests {
		start, end := visibleRange(tt.total, tt.cursor, tt.height)
		if start != tt.start || end != tt.end {
			t.Errorf("visibleRange(%d, %d, %d) = (%d, %d), want (%d, %d)",
				tt.total, tt.cursor, tt.height, start, end, tt.start, tt.end)
		}
	}
}

func TestLoginErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"bad credentials", fmt.Errorf("login: %w", apiclient.ErrInvalidCredentials), msgInvalidCreds},
		{"inactive", apiclient.ErrInactiveUser, "Inactive user"},
		{"transport", context.DeadlineExceeded, "Login failed: context deadline exceeded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := loginErrorMessage(tt.err); got != tt.want {
				t.Errorf("loginErrorMessage = %q, want %q", got, tt.want)
			}
		})
	}
}
