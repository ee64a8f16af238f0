package output

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	gansi "github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	"golang.org/x/term"
)

const (
	defaultMarkdownWidth = 80
	minMarkdownWidth     = 20
)

// TerminalWidth returns the width of stdout, then $COLUMNS, then fallback.
func TerminalWidth(fallback int) int {
	if fallback <= 0 {
		fallback = defaultMarkdownWidth
	}
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	if n, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && n > 0 {
		return n
	}
	return fallback
}

// MarkdownRenderer renders task descriptions, reusing one Glamour renderer
// per wrap width. Safe for concurrent use.
type MarkdownRenderer struct {
	mu        sync.Mutex
	style     glamour.TermRendererOption
	renderers map[int]*glamour.TermRenderer
}

// NewMarkdownRenderer returns a renderer using the terminal's auto style
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{
		style:     glamour.WithAutoStyle(),
		renderers: make(map[int]*glamour.TermRenderer),
	}
}

// NewFixedMarkdownRenderer returns a renderer with a fixed palette on the
// dark or light base. It never queries the terminal, so it is safe to build
// while a Bubble Tea program owns stdin.
func NewFixedMarkdownRenderer(dark bool) *MarkdownRenderer {
	return &MarkdownRenderer{
		style:     glamour.WithStyles(fixedStyle(dark)),
		renderers: make(map[int]*glamour.TermRenderer),
	}
}

func fixedStyle(dark bool) gansi.StyleConfig {
	cfg := styles.LightStyleConfig
	if dark {
		cfg = styles.DarkStyleConfig
	}
	primary, muted := "212", "241"
	zero := uint(0)

	// The viewport supplies its own padding
	cfg.Document.Margin = &zero
	cfg.H1.Color = nil
	cfg.H1.BackgroundColor = &primary
	cfg.H2.Color = &primary
	cfg.LinkText.Color = &primary
	cfg.BlockQuote.Color = &muted
	cfg.HorizontalRule.Color = &muted
	return cfg
}

// NewPlainMarkdownRenderer returns a renderer that emits no color codes
func NewPlainMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{
		style:     glamour.WithStandardStyle("notty"),
		renderers: make(map[int]*glamour.TermRenderer),
	}
}

// Render wraps text at width. Blank input renders to "".
func (m *MarkdownRenderer) Render(text string, width int) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	if width < minMarkdownWidth {
		width = minMarkdownWidth
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.renderers[width]
	if !ok {
		var err error
		r, err = glamour.NewTermRenderer(m.style, glamour.WithWordWrap(width))
		if err != nil {
			return "", err
		}
		m.renderers[width] = r
	}

	rendered, err := r.Render(text)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(rendered, "\n"), nil
}

var defaultMarkdown = NewMarkdownRenderer()

// RenderMarkdown renders text at the current terminal width.
func RenderMarkdown(text string) (string, error) {
	return defaultMarkdown.Render(text, TerminalWidth(defaultMarkdownWidth))
}
