package keymap

import (
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// A second key must arrive within this window to complete a sequence.
const sequenceTimeout = 500 * time.Millisecond

// Context names the screen state that decides which bindings are live.
type Context string

const (
	ContextGlobal    Context = "global"
	ContextLanding   Context = "landing"
	ContextDashboard Context = "dashboard"
	ContextDetail    Context = "detail"  // task detail viewport
	ContextConfirm   Context = "confirm" // delete y/n prompt
	ContextForm      Context = "form"    // login, register and new task forms
	ContextHelp      Context = "help"
)

// Command is the action a key resolves to. The TUI switches on it.
type Command string

const (
	CmdQuit       Command = "quit"
	CmdToggleHelp Command = "toggle-help"

	CmdOpenLogin    Command = "open-login"
	CmdOpenRegister Command = "open-register"

	CmdCursorDown   Command = "cursor-down"
	CmdCursorUp     Command = "cursor-up"
	CmdCursorTop    Command = "cursor-top"
	CmdCursorBottom Command = "cursor-bottom"
	CmdScrollDown   Command = "scroll-down"
	CmdScrollUp     Command = "scroll-up"
	CmdBack         Command = "back"

	CmdOpenDetails Command = "open-details"
	CmdNewTask     Command = "new-task"
	CmdDelete      Command = "delete"
	CmdRefresh     Command = "refresh"
	CmdLogout      Command = "logout"

	CmdConfirm Command = "confirm"
	CmdCancel  Command = "cancel"

	CmdFormSubmit Command = "form-submit"
	CmdFormCancel Command = "form-cancel"
)

// Binding ties a key, or a space separated pair like "g g", to a command.
type Binding struct {
	Key         string
	Command     Command
	Context     Context
	Description string
}

// table is one context's key -> command index.
type table map[string]Command

func (t table) set(key string, cmd Command, replace bool) {
	if _, exists := t[key]; exists && !replace {
		return
	}
	t[key] = cmd
}

// Registry resolves key presses to commands. User overrides shadow the
// defaults and the active context shadows global.
type Registry struct {
	mu sync.RWMutex

	bindings  map[Context][]Binding // registration order, used for help
	defaults  map[Context]table
	overrides map[Context]table
	prefixes  map[Context]map[string]bool

	pending   string
	pendingAt time.Time
	now       func() time.Time
}

// NewRegistry returns a registry with no bindings.
func NewRegistry() *Registry {
	return &Registry{
		bindings:  make(map[Context][]Binding),
		defaults:  make(map[Context]table),
		overrides: make(map[Context]table),
		prefixes:  make(map[Context]map[string]bool),
		now:       time.Now,
	}
}

func tableFor(tables map[Context]table, ctx Context) table {
	t, ok := tables[ctx]
	if !ok {
		t = make(table)
		tables[ctx] = t
	}
	return t
}

func (r *Registry) notePrefix(ctx Context, key string) {
	first, _, isSeq := strings.Cut(key, " ")
	if !isSeq {
		return
	}
	if r.prefixes[ctx] == nil {
		r.prefixes[ctx] = make(map[string]bool)
	}
	r.prefixes[ctx][first] = true
}

// RegisterBinding adds b. The first binding registered for a key wins.
func (r *Registry) RegisterBinding(b Binding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings[b.Context] = append(r.bindings[b.Context], b)
	tableFor(r.defaults, b.Context).set(b.Key, b.Command, false)
	r.notePrefix(b.Context, b.Key)
}

func (r *Registry) RegisterBindings(bindings []Binding) {
	for _, b := range bindings {
		r.RegisterBinding(b)
	}
}

// SetUserOverride binds key to cmd in ctx, replacing any earlier override.
func (r *Registry) SetUserOverride(ctx Context, key string, cmd Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tableFor(r.overrides, ctx).set(key, cmd, true)
	r.notePrefix(ctx, key)
}

// scopes lists the contexts consulted for ctx, most specific first.
func scopes(ctx Context) []Context {
	if ctx == "" || ctx == ContextGlobal {
		return []Context{ContextGlobal}
	}
	return []Context{ctx, ContextGlobal}
}

// Lookup resolves key in ctx. The first key of a sequence returns false and
// is held until the next call.
func (r *Registry) Lookup(key tea.KeyMsg, ctx Context) (Command, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := KeyToString(key)
	now := r.now()

	if prev := r.pending; prev != "" {
		r.pending = ""
		if now.Sub(r.pendingAt) < sequenceTimeout {
			if cmd, ok := r.resolve(prev+" "+k, ctx); ok {
				return cmd, true
			}
		}
	}

	for _, s := range scopes(ctx) {
		if r.prefixes[s][k] {
			r.pending, r.pendingAt = k, now
			return "", false
		}
	}
	return r.resolve(k, ctx)
}

func (r *Registry) resolve(key string, ctx Context) (Command, bool) {
	ctxs := scopes(ctx)
	for _, tables := range []map[Context]table{r.overrides, r.defaults} {
		for _, s := range ctxs {
			if cmd, ok := tables[s][key]; ok {
				return cmd, true
			}
		}
	}
	return "", false
}

// ResetPending drops a half-typed sequence.
func (r *Registry) ResetPending() {
	r.mu.Lock()
	r.pending = ""
	r.mu.Unlock()
}

// PendingKey returns the held first key of a sequence, if still live.
func (r *Registry) PendingKey() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.pending == "" || r.now().Sub(r.pendingAt) >= sequenceTimeout {
		return ""
	}
	return r.pending
}

// KeyToString renders a key press the way bindings spell it.
func KeyToString(key tea.KeyMsg) string {
	switch key.Type {
	case tea.KeyRunes:
		return string(key.Runes)
	case tea.KeySpace:
		return "space"
	}
	return key.String()
}
