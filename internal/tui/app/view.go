package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/marcus/taskops/internal/models"
	"github.com/marcus/taskops/internal/output"
	"github.com/marcus/taskops/internal/tui/keymap"
	"github.com/marcus/taskops/internal/validate"
)

const banner = "TASK MANAGER"

// View implements tea.Model
func (m Model) View() string {
	var body string
	switch m.Page {
	case PageLogin, PageRegister:
		body = m.renderAuth()
	case PageDashboard:
		body = m.renderDashboard()
	default:
		body = m.renderLanding()
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderStatus())
}

func (m Model) renderLanding() string {
	var sb strings.Builder
	sb.WriteString(bannerStyle.Render(banner))
	sb.WriteString("\n")
	sb.WriteString("Manage your tasks from the terminal.\n\n")
	sb.WriteString(titleStyle.Render("[l]"))
	sb.WriteString(" Log in    ")
	sb.WriteString(titleStyle.Render("[r]"))
	sb.WriteString(" Register    ")
	sb.WriteString(titleStyle.Render("[q]"))
	sb.WriteString(" Quit\n")
	return sb.String()
}

func (m Model) renderAuth() string {
	heading := "Log in"
	if m.Page == PageRegister {
		heading = "Create an account"
	}

	var sb strings.Builder
	sb.WriteString(bannerStyle.Render(banner))
	sb.WriteString("\n")
	sb.WriteString(panelTitleStyle.Render(heading))
	sb.WriteString("\n\n")
	if m.AuthForm != nil {
		if m.AuthForm.Submitting {
			verb := "Signing in"
			if m.AuthForm.Mode == AuthRegister {
				verb = "Creating account"
			}
			sb.WriteString(fmt.Sprintf("%s %s...\n", m.Spinner.View(), verb))
		} else {
			sb.WriteString(m.AuthForm.Form.View())
			sb.WriteString("\n")
		}
	}
	sb.WriteString(helpStyle.Render("enter: next/submit  ctrl+s: submit  esc: back  ctrl+c: quit"))
	return sb.String()
}

func (m Model) renderDashboard() string {
	if m.ShowHelp {
		return activePanelStyle.Render(m.Keymap.GenerateHelp(keymap.ContextDashboard))
	}

	header := panelTitleStyle.Render("Tasks")
	if email := m.sessionEmail(); email != "" {
		header += " " + subtleStyle.Render(email)
	}
	header += " " + subtleStyle.Render(fmt.Sprintf("(%d)", len(m.Tasks)))

	var content string
	switch {
	case m.Detail != nil:
		content = activePanelStyle.Render(m.Viewport.View())
	case m.TaskForm != nil:
		content = m.renderTaskForm()
	default:
		content = m.renderTaskList()
	}

	parts := []string{header, content}
	if m.ConfirmDelete != nil {
		parts = append(parts, confirmStyle.Render(
			fmt.Sprintf("Delete %s? (y/n)", output.TaskOneLiner(m.ConfirmDelete))))
	}
	hint := ansi.Truncate(m.Keymap.ShortHelp(m.currentContext()), m.width(), "…")
	parts = append(parts, helpStyle.Render(hint))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderTaskForm() string {
	fs := m.TaskForm
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("New task"))
	sb.WriteString("\n\n")
	if fs.Submitting {
		sb.WriteString(fmt.Sprintf("%s Creating task...", m.Spinner.View()))
	} else {
		sb.WriteString(fs.Form.View())
	}
	return activePanelStyle.Render(sb.String())
}

func (m Model) renderTaskList() string {
	if m.Loading && len(m.Tasks) == 0 {
		return panelStyle.Render(fmt.Sprintf("%s Loading tasks...", m.Spinner.View()))
	}
	if len(m.Tasks) == 0 {
		return panelStyle.Render(subtleStyle.Render(msgNoTasks + ". Press n to create one."))
	}

	// Panel border and padding take 4 columns, the cursor marker 2
	rowWidth := m.width() - 6
	if rowWidth < MinWidth-6 {
		rowWidth = MinWidth - 6
	}

	start, end := visibleRange(len(m.Tasks), m.Cursor, m.listHeight())
	rows := make([]string, 0, end-start+1)
	for i := start; i < end; i++ {
		line := output.FormatTaskShort(&m.Tasks[i], rowWidth)
		if i == m.Cursor {
			rows = append(rows, selectedRowStyle.Render("> "+ansi.Strip(line)))
		} else {
			rows = append(rows, "  "+line)
		}
	}
	if m.Loading {
		rows = append(rows, subtleStyle.Render(m.Spinner.View()+" refreshing"))
	}
	return panelStyle.Render(strings.Join(rows, "\n"))
}

// listHeight is the number of task rows that fit on screen
func (m Model) listHeight() int {
	// header, panel border, confirm line, help line, status line
	h := m.height() - 7
	if h < 3 {
		h = 3
	}
	return h
}

// visibleRange returns the [start, end) window of rows that keeps cursor
// on screen.
func visibleRange(total, cursor, height int) (int, int) {
	if total <= height {
		return 0, total
	}
	start := cursor - height + 1
	if start < 0 {
		start = 0
	}
	end := start + height
	if end > total {
		end = total
		start = end - height
	}
	return start, end
}

func (m Model) renderStatus() string {
	switch {
	case m.Err != "":
		return errorStyle.Render(m.Err)
	case m.Notice != "":
		return noticeStyle.Render(m.Notice)
	case m.Deleting:
		return subtleStyle.Render(m.Spinner.View() + " Deleting...")
	}
	return ""
}

// openDetail shows t in the detail viewport, sized to the window
func (m *Model) openDetail(t models.Task) {
	w := m.width() - 4
	h := m.height() - 6
	if h < 3 {
		h = 3
	}
	m.Detail = &t
	m.Viewport = viewport.New(w, h)
	m.Viewport.SetContent(m.renderDetail(&t, w))
}

func (m Model) renderDetail(t *models.Task, width int) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("%s: %s", t.Ref(), t.Title)))
	sb.WriteString("\n")
	sb.WriteString(subtleStyle.Render(fmt.Sprintf("Owner: user %d", t.OwnerID)))
	sb.WriteString("\n\n")

	desc := t.Description
	if strings.TrimSpace(desc) == "" {
		sb.WriteString(subtleStyle.Render("(no description)"))
		return sb.String()
	}
	if rendered, err := m.cfg.Markdown.Render(desc, width); err == nil {
		desc = rendered
	} else {
		m.cfg.Logger.Debug("markdown_render_failed", "err", err)
	}
	sb.WriteString(desc)
	return sb.String()
}

func validateTask(in models.TaskInput) error {
	return validate.Struct(in)
}
