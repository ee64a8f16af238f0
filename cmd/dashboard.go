package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/marcus/taskops/internal/output"
	"github.com/marcus/taskops/internal/tui/app"
	"github.com/marcus/taskops/internal/tui/keymap"
	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"ui"},
	Short:   "Open the interactive task dashboard",
	Long: `Open the full-screen dashboard. A stored session opens your task list
directly; otherwise you can log in or register from the landing page.

Key bindings can be overridden in keymap.json in the config directory, e.g.
  {"bindings": {"dashboard:a": "new-task"}}`,
	GroupID:     "tasks",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{fullScreen: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		keys, err := loadKeymap()
		if err != nil {
			return err
		}

		// Ask before Bubble Tea owns stdin
		dark := lipgloss.HasDarkBackground()

		base := current.newClient("")
		return app.Run(app.Config{
			Client:    func(token string) app.Backend { return base.WithToken(token) },
			Sessions:  current.sessions,
			ServerURL: current.settings.APIURL,
			PageSize:  current.settings.PageSize,
			Timeout:   current.settings.Timeout,
			Keymap:    keys,
			Markdown:  output.NewFixedMarkdownRenderer(dark),
			Logger:    current.logger,
			Now:       now,
		})
	},
}

// loadKeymap returns the default bindings with user overrides applied
func loadKeymap() (*keymap.Registry, error) {
	keys := keymap.NewRegistry()
	keymap.RegisterDefaults(keys)

	kc, err := keymap.LoadConfig(keymap.ConfigPath(current.cfg.Dir()))
	if err != nil {
		return nil, err
	}
	if skipped := keymap.ApplyConfig(keys, kc); len(skipped) > 0 {
		output.Warning("ignoring unknown key bindings: %s", strings.Join(skipped, ", "))
		current.logger.Warn("keymap_entries_skipped", "entries", fmt.Sprint(skipped))
	}
	return keys, nil
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
