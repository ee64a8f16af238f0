package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/marcus/taskops/internal/output"
	"github.com/marcus/taskops/internal/validate"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:     "show <task-id>",
	Aliases: []string{"get", "view"},
	Short:   "Display a task",
	GroupID: "tasks",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseTaskID(args[0])
		if err != nil {
			return fail(cmd, err)
		}

		client, _, err := current.authedClient()
		if err != nil {
			return fail(cmd, err)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), current.settings.Timeout)
		defer cancel()

		task, err := client.GetTask(ctx, id)
		if err != nil {
			return fail(cmd, current.checkAuth(fmt.Errorf("get task %d: %w", id, err)))
		}

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(task)
		}
		raw, _ := cmd.Flags().GetBool("raw")
		output.Line(output.FormatTaskLong(task, !raw))
		return nil
	},
}

// parseTaskID accepts "12" or "#12"
func parseTaskID(s string) (int, error) {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid task id %q", s)
	}
	if err := validate.Var("id", id, "gt=0"); err != nil {
		return 0, err
	}
	return id, nil
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().Bool("json", false, "JSON output")
	showCmd.Flags().Bool("raw", false, "Print the description without markdown rendering")
}
