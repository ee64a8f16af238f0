// Package app is the interactive task dashboard: landing, login, register
// and dashboard pages driven by Bubble Tea.
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/taskops/internal/models"
	"github.com/marcus/taskops/internal/output"
	"github.com/marcus/taskops/internal/session"
	"github.com/marcus/taskops/internal/tui/keymap"
)

// Backend is the subset of the API client the dashboard needs.
// *apiclient.Client satisfies it.
type Backend interface {
	Register(ctx context.Context, in models.NewUser) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.Token, error)
	ListAllTasks(ctx context.Context, pageSize int) ([]models.Task, error)
	CreateTask(ctx context.Context, in models.TaskInput) (*models.Task, error)
	DeleteTask(ctx context.Context, id int) (*models.Task, error)
}

// SessionStore persists login state. *session.Store satisfies it.
type SessionStore interface {
	Load() (*session.Credentials, error)
	Save(creds *session.Credentials) error
	Clear() error
}

// Config wires the dashboard to its collaborators
type Config struct {
	// Client returns a backend authenticating with token ("" for none)
	Client    func(token string) Backend
	Sessions  SessionStore
	ServerURL string
	PageSize  int
	Timeout   time.Duration
	Keymap    *keymap.Registry
	Markdown  *output.MarkdownRenderer
	Logger    *slog.Logger
	Now       func() time.Time
}

// Page identifies the active screen
type Page int

const (
	PageLanding Page = iota
	PageLogin
	PageRegister
	PageDashboard
)

func (p Page) String() string {
	switch p {
	case PageLogin:
		return "login"
	case PageRegister:
		return "register"
	case PageDashboard:
		return "dashboard"
	default:
		return "landing"
	}
}

// MinWidth is the narrowest layout the dashboard renders
const MinWidth = 40

// Model is the main Bubble Tea model
type Model struct {
	cfg    Config
	Keymap *keymap.Registry

	Page   Page
	Width  int
	Height int

	Session *session.Credentials

	// Dashboard state
	Tasks         []models.Task
	Cursor        int
	Loading       bool
	Spinner       spinner.Model
	TaskForm      *TaskFormState // non-nil while the create form is open
	ConfirmDelete *models.Task   // task awaiting y/n
	Deleting      bool
	Detail        *models.Task // task shown in the detail viewport
	Viewport      viewport.Model
	ShowHelp      bool

	// Landing/auth state
	AuthForm *AuthFormState

	Notice string
	Err    string

	// Results stamped with an older generation are dropped. session moves on
	// login and logout, list on every fetch and after local list edits.
	sessionGen int
	listGen    int
}

// Messages carrying API results back into Update

type loginResultMsg struct {
	email string
	token *models.Token
	err   error
}

type registerResultMsg struct {
	email string
	err   error
}

type tasksLoadedMsg struct {
	tasks   []models.Task
	err     error
	session int
	list    int
}

type taskCreatedMsg struct {
	task    *models.Task
	err     error
	session int
}

type taskDeletedMsg struct {
	id      int
	err     error
	session int
}

// New creates the model. A valid stored session opens the dashboard
// directly; otherwise the landing page is shown.
func New(cfg Config) Model {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Markdown == nil {
		cfg.Markdown = output.NewFixedMarkdownRenderer(true)
	}
	if cfg.Keymap == nil {
		cfg.Keymap = keymap.NewRegistry()
		keymap.RegisterDefaults(cfg.Keymap)
	}

	m := Model{
		cfg:     cfg,
		Keymap:  cfg.Keymap,
		Page:    PageLanding,
		Spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}

	creds, err := cfg.Sessions.Load()
	switch {
	case err != nil:
		cfg.Logger.Warn("session_load_failed", "err", err)
	case creds == nil:
	case creds.Valid(cfg.Now()):
		m.Session = creds
		m.Page = PageDashboard
		m.Loading = true
	default:
		if err := cfg.Sessions.Clear(); err != nil {
			cfg.Logger.Warn("session_clear_failed", "err", err)
		}
		m.Notice = "Session expired, please log in again"
	}
	return m
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	if m.Page == PageDashboard {
		return tea.Batch(m.Spinner.Tick, m.fetchTasks())
	}
	return nil
}

// Run starts the dashboard in the alternate screen and blocks until exit
func Run(cfg Config) error {
	p := tea.NewProgram(New(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// currentContext returns the keymap context for the current UI state
func (m Model) currentContext() keymap.Context {
	switch {
	case m.ShowHelp:
		return keymap.ContextHelp
	case (m.Page == PageLogin || m.Page == PageRegister) && m.AuthForm != nil:
		return keymap.ContextForm
	case m.Page == PageDashboard && m.TaskForm != nil:
		return keymap.ContextForm
	case m.ConfirmDelete != nil:
		return keymap.ContextConfirm
	case m.Detail != nil:
		return keymap.ContextDetail
	case m.Page == PageDashboard:
		return keymap.ContextDashboard
	default:
		return keymap.ContextLanding
	}
}

// selectedTask returns the task under the cursor, or nil
func (m Model) selectedTask() *models.Task {
	if m.Cursor < 0 || m.Cursor >= len(m.Tasks) {
		return nil
	}
	t := m.Tasks[m.Cursor]
	return &t
}

// clampCursor keeps the cursor within the task list
func (m *Model) clampCursor() {
	if m.Cursor >= len(m.Tasks) {
		m.Cursor = len(m.Tasks) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
}

func (m Model) width() int {
	if m.Width <= 0 {
		return 80
	}
	return m.Width
}

func (m Model) height() int {
	if m.Height <= 0 {
		return 24
	}
	return m.Height
}
