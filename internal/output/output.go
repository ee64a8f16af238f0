// Package output provides styled terminal output helpers (success, error,
// warning, task formatting) using lipgloss.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/marcus/taskops/internal/models"
)

var (
	// Styles
	titleStyle   = lipgloss.NewStyle().Bold(true)
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	refStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("45")).Bold(true)
)

var stdout io.Writer = os.Stdout

// SetOutput redirects all printing helpers to w and returns a func that
// restores the previous writer.
func SetOutput(w io.Writer) (restore func()) {
	prev := stdout
	stdout = w
	return func() { stdout = prev }
}

// Success prints a success message
func Success(format string, args ...interface{}) {
	fmt.Fprintln(stdout, successStyle.Render(fmt.Sprintf(format, args...)))
}

// Error prints an error message
func Error(format string, args ...interface{}) {
	fmt.Fprintln(stdout, errorStyle.Render("ERROR: "+fmt.Sprintf(format, args...)))
}

// Warning prints a warning message
func Warning(format string, args ...interface{}) {
	fmt.Fprintln(stdout, warningStyle.Render("Warning: "+fmt.Sprintf(format, args...)))
}

// Info prints an info message
func Info(format string, args ...interface{}) {
	fmt.Fprintf(stdout, format+"\n", args...)
}

// Line prints s unchanged
func Line(s string) {
	fmt.Fprintln(stdout, s)
}

// JSON outputs data as JSON
func JSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, string(data))
	return nil
}

// Error codes for structured JSON output
const (
	ErrCodeNotFound      = "not_found"
	ErrCodeInvalidInput  = "invalid_input"
	ErrCodeUnauthorized  = "unauthorized"
	ErrCodeForbidden     = "forbidden"
	ErrCodeConflict      = "conflict"
	ErrCodeServerError   = "server_error"
	ErrCodeNetworkError  = "network_error"
	ErrCodeNotLoggedIn   = "not_logged_in"
	ErrCodeFailed        = "failed"
)

// JSONError outputs an error as JSON
func JSONError(code, message string) {
	JSONErrorWithDetails(code, message, nil)
}

// JSONErrorWithDetails outputs an error as JSON with additional context
func JSONErrorWithDetails(code, message string, details map[string]interface{}) {
	errObj := map[string]interface{}{
		"code":    code,
		"message": message,
	}
	if len(details) > 0 {
		errObj["details"] = details
	}
	result := map[string]interface{}{
		"error": errObj,
	}
	data, _ := json.MarshalIndent(result, "", "  ")
	fmt.Fprintln(stdout, string(data))
}

// FormatRef formats a task reference with color
func FormatRef(task *models.Task) string {
	return refStyle.Render(task.Ref())
}

// FirstLine returns the first non-empty line of s
func FirstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

// FormatTaskShort formats a task in short format. Width truncates the
// result when positive.
func FormatTaskShort(task *models.Task, width int) string {
	parts := []string{FormatRef(task), titleStyle.Render(task.Title)}
	if desc := FirstLine(task.Description); desc != "" {
		parts = append(parts, subtleStyle.Render(desc))
	}
	line := strings.Join(parts, "  ")
	if width > 0 {
		line = ansi.Truncate(line, width, "…")
	}
	return line
}

// FormatTaskDeleted formats a deleted task with a [deleted] marker
func FormatTaskDeleted(task *models.Task) string {
	return strings.Join([]string{
		FormatRef(task),
		task.Title,
		errorStyle.Render("[deleted]"),
	}, "  ")
}

// FormatTaskLong formats a task in long format. When renderMarkdown is
// true the description is rendered with Glamour.
func FormatTaskLong(task *models.Task, renderMarkdown bool) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(fmt.Sprintf("%s: %s", task.Ref(), task.Title)))
	sb.WriteString("\n")
	sb.WriteString(subtleStyle.Render(fmt.Sprintf("Owner: user %d", task.OwnerID)))
	sb.WriteString("\n")

	if strings.TrimSpace(task.Description) != "" {
		sb.WriteString("\n")
		sb.WriteString(subtleStyle.Render("Description:"))
		sb.WriteString("\n")
		desc := task.Description
		if renderMarkdown {
			if rendered, err := RenderMarkdown(desc); err == nil && rendered != "" {
				desc = rendered
			}
		}
		sb.WriteString(desc)
		sb.WriteString("\n")
	}

	return sb.String()
}

// TaskOneLiner returns a concise single-line task representation
// Format: `#12 "Title"`
func TaskOneLiner(task *models.Task) string {
	return fmt.Sprintf("%s %q", task.Ref(), task.Title)
}

// SectionHeader returns a formatted section header for CLI output
// e.g., "\nTASKS:\n"
func SectionHeader(title string) string {
	return fmt.Sprintf("\n%s:\n", strings.ToUpper(title))
}
