package keymap

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestLoadConfigMissing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "keymap.json"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Bindings == nil || len(cfg.Bindings) != 0 {
		t.Errorf("expected empty bindings, got %v", cfg.Bindings)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	path := ConfigPath(t.TempDir())
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestApplyConfig(t *testing.T) {
	path := ConfigPath(t.TempDir())
	data := `{"bindings": {"dashboard:a": "new-task", "ctrl+q": "quit", "dashboard:z": "launch-rockets"}}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	r := newDefaultRegistry()
	skipped := ApplyConfig(r, cfg)
	sort.Strings(skipped)
	if len(skipped) != 1 || skipped[0] != "dashboard:z" {
		t.Errorf("skipped = %v, want [dashboard:z]", skipped)
	}

	if cmd, _ := r.Lookup(runeKey('a'), ContextDashboard); cmd != CmdNewTask {
		t.Errorf("dashboard:a = %q, want new-task", cmd)
	}
	if cmd := r.overrides[ContextGlobal]["ctrl+q"]; cmd != CmdQuit {
		t.Errorf("global override = %q, want quit", cmd)
	}
}

func TestApplyConfigSkipsUnknownContext(t *testing.T) {
	cfg := &Config{Bindings: map[string]string{
		"dashbord:x":    "delete",
		"detail:ctrl+d": "delete",
	}}
	r := newDefaultRegistry()

	skipped := ApplyConfig(r, cfg)
	if len(skipped) != 1 || skipped[0] != "dashbord:x" {
		t.Errorf("skipped = %v, want [dashbord:x]", skipped)
	}
	if _, ok := r.overrides["dashbord"]; ok {
		t.Error("override stored under a misspelled context")
	}
	if cmd := r.overrides[ContextDetail]["ctrl+d"]; cmd != CmdDelete {
		t.Errorf("detail override = %q, want delete", cmd)
	}
}

func TestParseBinding(t *testing.T) {
	tests := []struct {
		in      string
		wantCtx Context
		wantKey string
	}{
		{"dashboard:n", ContextDashboard, "n"},
		{"ctrl+q", ContextGlobal, "ctrl+q"},
		{"form:", ContextForm, ""},
	}
	for _, tt := range tests {
		ctx, key := parseBinding(tt.in)
		if ctx != tt.wantCtx || key != tt.wantKey {
			t.Errorf("parseBinding(%q) = (%q, %q)", tt.in, ctx, key)
		}
	}
}
