package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/marcus/taskops/internal/apiclient"
	"github.com/marcus/taskops/internal/config"
	"github.com/marcus/taskops/internal/logging"
	"github.com/marcus/taskops/internal/output"
	"github.com/marcus/taskops/internal/session"
	"github.com/spf13/cobra"
)

var version = "dev"

// SetVersion sets the version string
func SetVersion(v string) {
	version = v
}

// env is the per-invocation state built by the persistent pre-run hook
type env struct {
	cfg      *config.Config
	settings config.Settings
	logger   *slog.Logger
	closeLog func() error
	sessions *session.Store
}

var (
	current *env

	// now is swapped in tests
	now = time.Now
)

var rootCmd = &cobra.Command{
	Use:   "taskops",
	Short: "Command-line client for the task management API",
	Long: `taskops - a terminal client for a task management REST API.

Register and log in, then list, create, inspect and delete your tasks from
the shell, or open the interactive dashboard with "taskops dashboard".`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return teardown()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		report(err)
		_ = teardown()
		os.Exit(1)
	}
}

// report prints err unless the command already rendered it
func report(err error) {
	var shown *shownError
	if errors.As(err, &shown) {
		return
	}
	output.Error("%v", err)
}

// nameWithAliases returns "name, alias1, alias2" if aliases exist, else just "name"
func nameWithAliases(cmd *cobra.Command) string {
	if len(cmd.Aliases) > 0 {
		return cmd.Name() + ", " + strings.Join(cmd.Aliases, ", ")
	}
	return cmd.Name()
}

func init() {
	cobra.AddTemplateFunc("nameWithAliases", nameWithAliases)
	cobra.AddTemplateFunc("add", func(a, b int) int { return a + b })

	// Usage template that shows aliases inline
	usageTemplate := `Usage:{{if .Runnable}}
  {{.UseLine}}{{end}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}{{if gt (len .Aliases) 0}}

Aliases:
  {{.NameAndAliases}}{{end}}{{if .HasExample}}

Examples:
{{.Example}}{{end}}{{if .HasAvailableSubCommands}}{{$cmds := .Commands}}{{if eq (len .Groups) 0}}

Available Commands:{{range $cmds}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad (nameWithAliases .) (add .NamePadding 8)}} {{.Short}}{{end}}{{end}}{{else}}{{range $group := .Groups}}

{{.Title}}{{range $cmds}}{{if (and (eq .GroupID $group.ID) (or .IsAvailableCommand (eq .Name "help")))}}
  {{rpad (nameWithAliases .) (add .NamePadding 8)}} {{.Short}}{{end}}{{end}}{{end}}{{if not .AllChildCommandsHaveGroup}}

Additional Commands:{{range $cmds}}{{if (and (eq .GroupID "") (or .IsAvailableCommand (eq .Name "help")))}}
  {{rpad (nameWithAliases .) (add .NamePadding 8)}} {{.Short}}{{end}}{{end}}{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}

Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableInheritedFlags}}

Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasHelpSubCommands}}

Additional help topics:{{range .Commands}}{{if .IsAdditionalHelpTopicCommand}}
  {{rpad .CommandPath .CommandPathPadding}} {{.Short}}{{end}}{{end}}{{end}}{{if .HasAvailableSubCommands}}

Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`
	rootCmd.SetUsageTemplate(usageTemplate)

	rootCmd.AddGroup(
		&cobra.Group{ID: "tasks", Title: "Task Commands:"},
		&cobra.Group{ID: "account", Title: "Account Commands:"},
		&cobra.Group{ID: "system", Title: "System Commands:"},
	)
	rootCmd.SetHelpCommandGroupID("system")
	rootCmd.SetCompletionCommandGroupID("system")

	rootCmd.PersistentFlags().String("api-url", "", "API base URL (default "+config.DefaultAPIURL+")")
	rootCmd.PersistentFlags().Bool("debug", false, "Log at debug level and mirror logs to stderr (except in the dashboard)")
}

// fullScreen marks commands that take over the terminal. Their logs go to
// the log file only.
const fullScreen = "taskops/fullscreen"

func mirrorLogs(cmd *cobra.Command, debug bool) bool {
	return debug && cmd.Annotations[fullScreen] == ""
}

// setup loads .env, the config file and the logger for this invocation
func setup(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}

	dir, err := config.Dir()
	if err != nil {
		return err
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}
	if err := cfg.BindFlag(config.KeyAPIURL, cmd.Flags().Lookup("api-url")); err != nil {
		return err
	}

	settings := cfg.Settings()
	debug, _ := cmd.Flags().GetBool("debug")
	opts := logging.Options{
		Level:  settings.LogLevel,
		Format: settings.LogFormat,
		File:   settings.LogFile,
		Stderr: mirrorLogs(cmd, debug),
	}
	if debug {
		opts.Level = "debug"
	}
	logger, closeLog, err := logging.Setup(opts)
	if err != nil {
		return err
	}

	current = &env{
		cfg:      cfg,
		settings: settings,
		logger:   logger,
		closeLog: closeLog,
		sessions: session.NewStore(dir),
	}
	logger.Debug("command_start", "command", cmd.CommandPath(), "api_url", settings.APIURL)
	return nil
}

func teardown() error {
	if current == nil || current.closeLog == nil {
		return nil
	}
	err := current.closeLog()
	current.closeLog = nil
	return err
}

// newClient returns an API client for the configured server
func (e *env) newClient(token string) *apiclient.Client {
	return apiclient.New(e.settings.APIURL, token,
		apiclient.WithTimeout(e.settings.Timeout),
		apiclient.WithRateLimit(e.settings.RateLimit),
		apiclient.WithLogger(e.logger),
	)
}

// authedClient returns a client carrying the stored session token
func (e *env) authedClient() (*apiclient.Client, *session.Credentials, error) {
	creds, err := e.sessions.Require(now())
	if err != nil {
		if errors.Is(err, session.ErrExpired) {
			return nil, nil, fmt.Errorf("%w: run 'taskops login' again", err)
		}
		return nil, nil, fmt.Errorf("%w: run 'taskops login' first", err)
	}
	if creds.ServerURL != "" && creds.ServerURL != e.settings.APIURL {
		e.logger.Warn("session_server_mismatch", "session_server", creds.ServerURL, "api_url", e.settings.APIURL)
	}
	return e.newClient(creds.AccessToken), creds, nil
}

// checkAuth drops the stored session when the server rejects its token
func (e *env) checkAuth(err error) error {
	if err == nil || !apiclient.IsUnauthorized(err) {
		return err
	}
	if clearErr := e.sessions.Clear(); clearErr != nil {
		e.logger.Warn("session_clear_failed", "err", clearErr)
	}
	return fmt.Errorf("%w (session cleared, run 'taskops login')", err)
}
