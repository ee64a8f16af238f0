package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/taskops/internal/models"
)

func (m Model) backend() Backend {
	token := ""
	if m.Session != nil {
		token = m.Session.AccessToken
	}
	return m.cfg.Client(token)
}

func (m Model) login(email, password string) tea.Cmd {
	client := m.cfg.Client("")
	timeout := m.cfg.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		tok, err := client.Login(ctx, email, password)
		return loginResultMsg{email: email, token: tok, err: err}
	}
}

func (m Model) register(in models.NewUser) tea.Cmd {
	client := m.cfg.Client("")
	timeout := m.cfg.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		_, err := client.Register(ctx, in)
		return registerResultMsg{email: in.Email, err: err}
	}
}

func (m Model) fetchTasks() tea.Cmd {
	client := m.backend()
	timeout := m.cfg.Timeout
	pageSize := m.cfg.PageSize
	sessionGen, listGen := m.sessionGen, m.listGen
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		tasks, err := client.ListAllTasks(ctx, pageSize)
		return tasksLoadedMsg{tasks: tasks, err: err, session: sessionGen, list: listGen}
	}
}

func (m Model) createTask(in models.TaskInput) tea.Cmd {
	client := m.backend()
	timeout := m.cfg.Timeout
	gen := m.sessionGen
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		task, err := client.CreateTask(ctx, in)
		return taskCreatedMsg{task: task, err: err, session: gen}
	}
}

func (m Model) deleteTask(id int) tea.Cmd {
	client := m.backend()
	timeout := m.cfg.Timeout
	gen := m.sessionGen
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		_, err := client.DeleteTask(ctx, id)
		return taskDeletedMsg{id: id, err: err, session: gen}
	}
}

// reload starts a fresh fetch. Any fetch already in flight becomes stale.
func (m Model) reload() (Model, tea.Cmd) {
	m.listGen++
	m.Loading = true
	return m, tea.Batch(m.Spinner.Tick, m.fetchTasks())
}
