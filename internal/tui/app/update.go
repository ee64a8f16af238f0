package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/marcus/taskops/internal/apiclient"
	"github.com/marcus/taskops/internal/models"
	"github.com/marcus/taskops/internal/session"
	"github.com/marcus/taskops/internal/tui/keymap"
)

const (
	msgSessionExpired = "Session expired, please log in again"
	msgInvalidCreds   = "Invalid credentials"
	msgRegisterFailed = "Registration failed"
	msgNoTasks        = "No tasks found"
)

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		if m.Detail != nil {
			m.openDetail(*m.Detail)
		}
		return m.updateForm(msg)

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case loginResultMsg:
		return m.handleLoginResult(msg)

	case registerResultMsg:
		return m.handleRegisterResult(msg)

	case tasksLoadedMsg:
		return m.handleTasksLoaded(msg)

	case taskCreatedMsg:
		return m.handleTaskCreated(msg)

	case taskDeletedMsg:
		return m.handleTaskDeleted(msg)
	}

	// Everything else (cursor blink, field focus) belongs to the open form
	return m.updateForm(msg)
}

// busy reports whether a request is in flight
func (m Model) busy() bool {
	return m.Loading || m.Deleting ||
		(m.AuthForm != nil && m.AuthForm.Submitting) ||
		(m.TaskForm != nil && m.TaskForm.Submitting)
}

// handleKey dispatches through the keymap; unbound keys go to the open form
// or the detail viewport.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctx := m.currentContext()

	if cmd, found := m.Keymap.Lookup(msg, ctx); found {
		return m.executeCommand(cmd)
	}

	switch ctx {
	case keymap.ContextForm:
		return m.updateForm(msg)
	case keymap.ContextDetail:
		var cmd tea.Cmd
		m.Viewport, cmd = m.Viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

// updateForm forwards msg to whichever huh form is open and submits it once
// the user completes the last field.
func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch {
	case m.AuthForm != nil && (m.Page == PageLogin || m.Page == PageRegister):
		if m.AuthForm.Submitting {
			return m, nil
		}
		form, cmd := m.AuthForm.Form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.AuthForm.Form = f
		}
		if m.AuthForm.Form.State == huh.StateCompleted {
			return m.submitAuth()
		}
		return m, cmd

	case m.Page == PageDashboard && m.TaskForm != nil:
		if m.TaskForm.Submitting {
			return m, nil
		}
		form, cmd := m.TaskForm.Form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.TaskForm.Form = f
		}
		if m.TaskForm.Form.State == huh.StateCompleted {
			return m.submitTask()
		}
		return m, cmd
	}
	return m, nil
}

// executeCommand runs a keymap command
func (m Model) executeCommand(cmd keymap.Command) (tea.Model, tea.Cmd) {
	switch cmd {
	case keymap.CmdQuit:
		return m, tea.Quit

	case keymap.CmdToggleHelp:
		m.ShowHelp = !m.ShowHelp
		return m, nil

	case keymap.CmdOpenLogin:
		return m.openAuth(AuthLogin, "")

	case keymap.CmdOpenRegister:
		return m.openAuth(AuthRegister, "")

	case keymap.CmdFormSubmit:
		if m.TaskForm != nil {
			return m.submitTask()
		}
		if m.AuthForm != nil {
			return m.submitAuth()
		}
		return m, nil

	case keymap.CmdFormCancel:
		if m.TaskForm != nil {
			if !m.TaskForm.Submitting {
				m.TaskForm = nil
				m.Err = ""
			}
			return m, nil
		}
		if m.AuthForm != nil && m.AuthForm.Submitting {
			return m, nil
		}
		m.AuthForm = nil
		m.Page = PageLanding
		m.Err = ""
		return m, nil

	case keymap.CmdCursorDown:
		if m.Cursor < len(m.Tasks)-1 {
			m.Cursor++
		}
		return m, nil

	case keymap.CmdCursorUp:
		if m.Cursor > 0 {
			m.Cursor--
		}
		return m, nil

	case keymap.CmdCursorTop:
		m.Cursor = 0
		return m, nil

	case keymap.CmdCursorBottom:
		m.Cursor = len(m.Tasks) - 1
		m.clampCursor()
		return m, nil

	case keymap.CmdOpenDetails:
		if t := m.selectedTask(); t != nil {
			m.openDetail(*t)
		}
		return m, nil

	case keymap.CmdBack:
		m.Detail = nil
		return m, nil

	case keymap.CmdScrollDown:
		m.Viewport.LineDown(1)
		return m, nil

	case keymap.CmdScrollUp:
		m.Viewport.LineUp(1)
		return m, nil

	case keymap.CmdNewTask:
		if m.Loading {
			return m, nil
		}
		m.TaskForm = NewTaskFormState()
		m.Err = ""
		m.Notice = ""
		return m, m.TaskForm.Form.Init()

	case keymap.CmdDelete:
		if m.Deleting {
			return m, nil
		}
		target := m.Detail
		if target == nil {
			target = m.selectedTask()
		}
		if target != nil {
			t := *target
			m.ConfirmDelete = &t
		}
		return m, nil

	case keymap.CmdConfirm:
		if m.ConfirmDelete == nil {
			return m, nil
		}
		id := m.ConfirmDelete.ID
		m.ConfirmDelete = nil
		m.Deleting = true
		m.Err = ""
		return m, tea.Batch(m.Spinner.Tick, m.deleteTask(id))

	case keymap.CmdCancel:
		m.ConfirmDelete = nil
		return m, nil

	case keymap.CmdRefresh:
		if m.Loading {
			return m, nil
		}
		m.Err = ""
		return m.reload()

	case keymap.CmdLogout:
		m.cfg.Logger.Info("logout", "email", m.sessionEmail())
		m = m.endSession()
		m.Notice = "Logged out"
		return m, m.AuthForm.Form.Init()
	}

	return m, nil
}

func (m Model) openAuth(mode AuthMode, email string) (tea.Model, tea.Cmd) {
	m.Page = PageLogin
	if mode == AuthRegister {
		m.Page = PageRegister
	}
	m.AuthForm = NewAuthFormState(mode, email)
	m.Err = ""
	return m, m.AuthForm.Form.Init()
}

func (m Model) submitAuth() (tea.Model, tea.Cmd) {
	fs := m.AuthForm
	if fs.Submitting {
		return m, nil
	}
	if err := fs.Validate(); err != nil {
		m.Err = err.Error()
		fs.buildForm()
		return m, fs.Form.Init()
	}

	fs.Submitting = true
	m.Err = ""
	m.Notice = ""
	if fs.Mode == AuthRegister {
		return m, tea.Batch(m.Spinner.Tick, m.register(fs.ToNewUser()))
	}
	return m, tea.Batch(m.Spinner.Tick, m.login(strings.TrimSpace(fs.Email), fs.Password))
}

func (m Model) submitTask() (tea.Model, tea.Cmd) {
	fs := m.TaskForm
	if fs.Submitting {
		return m, nil
	}
	in := fs.ToInput()
	if err := validateTask(in); err != nil {
		m.Err = err.Error()
		fs.Rebuild()
		return m, fs.Form.Init()
	}

	fs.Submitting = true
	m.Err = ""
	return m, tea.Batch(m.Spinner.Tick, m.createTask(in))
}

func (m Model) handleLoginResult(msg loginResultMsg) (tea.Model, tea.Cmd) {
	if m.Page != PageLogin || m.AuthForm == nil {
		return m, nil
	}
	m.AuthForm.Submitting = false

	if msg.err != nil {
		m.cfg.Logger.Warn("login_failed", "email", msg.email, "err", msg.err)
		m.Err = loginErrorMessage(msg.err)
		m.AuthForm.Reset()
		return m, m.AuthForm.Form.Init()
	}

	creds := session.FromToken(m.cfg.ServerURL, msg.email, msg.token, m.cfg.Now())
	if err := m.cfg.Sessions.Save(creds); err != nil {
		m.cfg.Logger.Warn("session_save_failed", "err", err)
	}
	m.cfg.Logger.Info("login_success", "email", creds.Email)

	m.Session = creds
	m.sessionGen++
	m.AuthForm = nil
	m.Page = PageDashboard
	m.Tasks = nil
	m.Cursor = 0
	m.Err = ""
	m.Notice = ""
	return m.reload()
}

func (m Model) handleRegisterResult(msg registerResultMsg) (tea.Model, tea.Cmd) {
	if m.Page != PageRegister || m.AuthForm == nil {
		return m, nil
	}
	m.AuthForm.Submitting = false

	if msg.err != nil {
		m.cfg.Logger.Warn("register_failed", "email", msg.email, "err", msg.err)
		m.Err = msgRegisterFailed
		if detail := apiclient.Detail(msg.err); detail != "" {
			m.Err = detail
		}
		m.AuthForm.buildForm()
		return m, m.AuthForm.Form.Init()
	}

	m.cfg.Logger.Info("register_success", "email", msg.email)
	model, cmd := m.openAuth(AuthLogin, msg.email)
	next := model.(Model)
	next.Notice = "Registration successful, please log in"
	return next, cmd
}

func (m Model) handleTasksLoaded(msg tasksLoadedMsg) (tea.Model, tea.Cmd) {
	if m.Page != PageDashboard || msg.session != m.sessionGen || msg.list != m.listGen {
		m.cfg.Logger.Debug("stale_result_dropped", "kind", "tasks")
		return m, nil
	}
	m.Loading = false

	if msg.err != nil {
		if apiclient.IsUnauthorized(msg.err) {
			return m.expireSession()
		}
		m.cfg.Logger.Warn("tasks_load_failed", "err", msg.err)
		m.Err = fmt.Sprintf("Failed to load tasks: %v", msg.err)
		return m, nil
	}

	m.Tasks = msg.tasks
	m.clampCursor()
	m.cfg.Logger.Debug("tasks_loaded", "count", len(msg.tasks))
	return m, nil
}

func (m Model) handleTaskCreated(msg taskCreatedMsg) (tea.Model, tea.Cmd) {
	if m.Page != PageDashboard || msg.session != m.sessionGen {
		m.cfg.Logger.Debug("stale_result_dropped", "kind", "create")
		return m, nil
	}
	if m.TaskForm != nil {
		m.TaskForm.Submitting = false
	}

	if msg.err != nil {
		if apiclient.IsUnauthorized(msg.err) {
			return m.expireSession()
		}
		m.cfg.Logger.Warn("task_create_failed", "err", msg.err)
		m.Err = fmt.Sprintf("Create failed: %v", msg.err)
		if m.TaskForm != nil {
			m.TaskForm.Rebuild()
			return m, m.TaskForm.Form.Init()
		}
		return m, nil
	}

	m.cfg.Logger.Info("task_created", "task_id", msg.task.ID)
	m.Tasks = append(m.Tasks, *msg.task)
	m.Cursor = len(m.Tasks) - 1
	m.TaskForm = nil
	m.Err = ""
	m.Notice = fmt.Sprintf("Created %s", msg.task.Ref())
	return m.reloadIfLoading()
}

func (m Model) handleTaskDeleted(msg taskDeletedMsg) (tea.Model, tea.Cmd) {
	if m.Page != PageDashboard || msg.session != m.sessionGen {
		m.cfg.Logger.Debug("stale_result_dropped", "kind", "delete")
		return m, nil
	}
	m.Deleting = false

	if msg.err != nil {
		if apiclient.IsUnauthorized(msg.err) {
			return m.expireSession()
		}
		m.cfg.Logger.Warn("task_delete_failed", "task_id", msg.id, "err", msg.err)
		if !errors.Is(msg.err, apiclient.ErrNotFound) {
			m.Err = fmt.Sprintf("Delete failed: %v", msg.err)
			return m, nil
		}
		// Already gone on the server
		m.Err = fmt.Sprintf("Task #%d not found", msg.id)
	} else {
		m.cfg.Logger.Info("task_deleted", "task_id", msg.id)
		m.Notice = fmt.Sprintf("Deleted #%d", msg.id)
	}

	m.Tasks = models.RemoveTask(m.Tasks, msg.id)
	if m.Detail != nil && m.Detail.ID == msg.id {
		m.Detail = nil
	}
	m.clampCursor()
	return m.reloadIfLoading()
}

// reloadIfLoading replaces a fetch that started before a local list edit,
// so its older snapshot cannot undo the edit.
func (m Model) reloadIfLoading() (tea.Model, tea.Cmd) {
	if !m.Loading {
		m.listGen++
		return m, nil
	}
	return m.reload()
}

// expireSession drops the stored session after the server rejected the token
func (m Model) expireSession() (tea.Model, tea.Cmd) {
	m.cfg.Logger.Warn("session_rejected", "email", m.sessionEmail())
	m = m.endSession()
	m.Err = msgSessionExpired
	return m, m.AuthForm.Form.Init()
}

// endSession clears the stored session and resets to an empty login page
func (m Model) endSession() Model {
	email := m.sessionEmail()
	if err := m.cfg.Sessions.Clear(); err != nil {
		m.cfg.Logger.Warn("session_clear_failed", "err", err)
	}
	m.Session = nil
	m.sessionGen++
	m.Tasks = nil
	m.Cursor = 0
	m.Loading = false
	m.Deleting = false
	m.TaskForm = nil
	m.ConfirmDelete = nil
	m.Detail = nil
	m.ShowHelp = false
	m.Notice = ""
	m.Err = ""
	m.Page = PageLogin
	m.AuthForm = NewAuthFormState(AuthLogin, email)
	return m
}

func (m Model) sessionEmail() string {
	if m.Session == nil {
		return ""
	}
	return m.Session.Email
}

// loginErrorMessage maps a login failure to the text shown under the form
func loginErrorMessage(err error) string {
	switch {
	case errors.Is(err, apiclient.ErrInvalidCredentials),
		errors.Is(err, apiclient.ErrUnauthorized),
		errors.Is(err, apiclient.ErrValidation):
		return msgInvalidCreds
	case errors.Is(err, apiclient.ErrInactiveUser):
		return "Inactive user"
	default:
		return fmt.Sprintf("Login failed: %v", err)
	}
}
