// Package keymap maps keys to dashboard commands per UI context, with
// optional user overrides loaded from keymap.json in the config directory.
package keymap

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Config holds user key binding overrides.
type Config struct {
	// Bindings maps "context:key" to command ID,
	// e.g. {"dashboard:ctrl+n": "new-task"}
	Bindings map[string]string `json:"bindings"`
}

// ConfigPath returns the path of the keymap file inside dir
func ConfigPath(dir string) string {
	return filepath.Join(dir, "keymap.json")
}

// LoadConfig loads overrides from path. A missing file yields an empty config.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read keymap: %w", err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse keymap %s: %w", path, err)
		}
	}
	if cfg.Bindings == nil {
		cfg.Bindings = make(map[string]string)
	}
	return cfg, nil
}

// ApplyConfig installs cfg's overrides on r and returns the entries it
// skipped, sorted: those with no key, an unknown context or an unknown command.
func ApplyConfig(r *Registry, cfg *Config) []string {
	known := knownCommands()

	var skipped []string
	for entry, name := range cfg.Bindings {
		ctx, key := parseBinding(entry)
		cmd := Command(strings.TrimSpace(name))
		if key == "" || !knownContexts[ctx] || !known[cmd] {
			skipped = append(skipped, entry)
			continue
		}
		r.SetUserOverride(ctx, key, cmd)
	}
	sort.Strings(skipped)
	return skipped
}

var knownContexts = map[Context]bool{
	ContextGlobal:    true,
	ContextLanding:   true,
	ContextDashboard: true,
	ContextDetail:    true,
	ContextConfirm:   true,
	ContextForm:      true,
	ContextHelp:      true,
}

func knownCommands() map[Command]bool {
	known := make(map[Command]bool)
	for _, b := range DefaultBindings() {
		known[b.Command] = true
	}
	return known
}

// parseBinding splits "context:key". A bare key belongs to the global context.
func parseBinding(s string) (Context, string) {
	ctx, key, found := strings.Cut(s, ":")
	if !found {
		return ContextGlobal, strings.TrimSpace(s)
	}
	if ctx == "" {
		ctx = string(ContextGlobal)
	}
	return Context(ctx), strings.TrimSpace(key)
}
