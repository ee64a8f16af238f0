package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/marcus/taskops/internal/models"
	"github.com/marcus/taskops/internal/output"
	"github.com/marcus/taskops/internal/session"
	"github.com/marcus/taskops/internal/validate"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Terminal hooks, swapped in tests
var (
	stdinIsTerminal = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }
	readPassword    = func() ([]byte, error) { return term.ReadPassword(int(os.Stdin.Fd())) }
)

var registerCmd = &cobra.Command{
	Use:   "register <email>",
	Short: "Create an account",
	Long: `Create an account on the task server.

The password is prompted for without echo, or read from standard input with
--password-stdin. Passwords must be at least 8 characters.`,
	Example: `  taskops register ops@example.com
  printf '%s' "$PASSWORD" | taskops register ops@example.com --password-stdin`,
	GroupID: "account",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email := strings.TrimSpace(args[0])
		if err := validate.Var("email", email, "required,email"); err != nil {
			return fail(cmd, err)
		}

		password, err := passwordFor(cmd, true)
		if err != nil {
			return fail(cmd, err)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), current.settings.Timeout)
		defer cancel()

		user, err := current.newClient("").Register(ctx, models.NewUser{Email: email, Password: password})
		if err != nil {
			current.logger.Warn("register_failed", "email", email, "err", err)
			return fail(cmd, fmt.Errorf("register: %w", err))
		}
		current.logger.Info("register_success", "email", user.Email, "user_id", user.ID)

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(user)
		}
		output.Success("Registered %s (user %d)", user.Email, user.ID)
		output.Info("Log in with: taskops login %s", user.Email)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Log in and store an access token",
	Example: `  taskops login ops@example.com
  printf '%s' "$PASSWORD" | taskops login ops@example.com --password-stdin`,
	GroupID: "account",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email := strings.TrimSpace(args[0])
		password, err := passwordFor(cmd, false)
		if err != nil {
			return fail(cmd, err)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), current.settings.Timeout)
		defer cancel()

		tok, err := current.newClient("").Login(ctx, email, password)
		if err != nil {
			current.logger.Warn("login_failed", "email", email, "err", err)
			return fail(cmd, fmt.Errorf("login: %w", err))
		}

		creds := session.FromToken(current.settings.APIURL, email, tok, now())
		if err := current.sessions.Save(creds); err != nil {
			return fail(cmd, err)
		}
		current.logger.Info("login_success", "email", creds.Email)

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(whoamiView(creds))
		}
		output.Success("Logged in as %s", creds.Email)
		if !creds.ExpiresAt.IsZero() {
			output.Info("Session expires %s", creds.ExpiresAt.Local().Format(time.RFC1123))
		}
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:     "logout",
	Short:   "Remove the stored access token",
	GroupID: "account",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, _ := current.sessions.Load()
		if err := current.sessions.Clear(); err != nil {
			return err
		}
		if creds == nil {
			output.Info("Not logged in")
			return nil
		}
		current.logger.Info("logout", "email", creds.Email)
		output.Success("Logged out %s", creds.Email)
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:     "whoami",
	Short:   "Show the logged-in account",
	GroupID: "account",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := current.sessions.Require(now())
		if err != nil {
			return fail(cmd, err)
		}

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(whoamiView(creds))
		}
		output.Info("Email:   %s", creds.Email)
		output.Info("Server:  %s", creds.ServerURL)
		output.Info("Token:   %s", creds.TokenPrefix())
		if creds.ExpiresAt.IsZero() {
			output.Info("Expires: never")
		} else {
			output.Info("Expires: %s (in %s)", creds.ExpiresAt.Local().Format(time.RFC1123),
				creds.ExpiresAt.Sub(now()).Round(time.Second))
		}
		return nil
	},
}

// whoamiView is the JSON shape of a session; it never includes the token
func whoamiView(creds *session.Credentials) map[string]any {
	view := map[string]any{
		"email":      creds.Email,
		"server_url": creds.ServerURL,
		"token_type": creds.TokenType,
	}
	if !creds.ExpiresAt.IsZero() {
		view["expires_at"] = creds.ExpiresAt
	}
	return view
}

// passwordFor reads a password from stdin (--password-stdin) or prompts on
// the terminal. confirm asks twice.
func passwordFor(cmd *cobra.Command, confirm bool) (string, error) {
	if fromStdin, _ := cmd.Flags().GetBool("password-stdin"); fromStdin {
		return readPasswordStdin(cmd.InOrStdin())
	}
	if !stdinIsTerminal() {
		return "", errors.New("stdin is not a terminal; use --password-stdin")
	}

	password, err := promptPassword(cmd, "Password: ")
	if err != nil {
		return "", err
	}
	if confirm {
		again, err := promptPassword(cmd, "Confirm password: ")
		if err != nil {
			return "", err
		}
		if again != password {
			return "", errors.New("passwords do not match")
		}
	}
	return password, nil
}

func promptPassword(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	b, err := readPassword()
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if len(b) == 0 {
		return "", errors.New("password required")
	}
	return string(b), nil
}

// readPasswordStdin reads the first line of r
func readPasswordStdin(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("password required on stdin")
	}
	return password, nil
}

func init() {
	rootCmd.AddCommand(registerCmd, loginCmd, logoutCmd, whoamiCmd)

	for _, c := range []*cobra.Command{registerCmd, loginCmd} {
		c.Flags().Bool("password-stdin", false, "Read the password from stdin")
		c.Flags().Bool("json", false, "JSON output")
	}
	whoamiCmd.Flags().Bool("json", false, "JSON output")
}
