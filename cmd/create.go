package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/marcus/taskops/internal/models"
	"github.com/marcus/taskops/internal/output"
	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:     "create <title>",
	Aliases: []string{"add", "new"},
	Short:   "Create a task",
	Example: `  taskops create "Rotate API keys"
  taskops add "Audit hosts" -d "Check **all** production hosts"`,
	GroupID: "tasks",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		desc, _ := cmd.Flags().GetString("description")
		in := models.TaskInput{Title: strings.Join(args, " "), Description: desc}

		client, _, err := current.authedClient()
		if err != nil {
			return fail(cmd, err)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), current.settings.Timeout)
		defer cancel()

		task, err := client.CreateTask(ctx, in)
		if err != nil {
			return fail(cmd, current.checkAuth(fmt.Errorf("create task: %w", err)))
		}
		current.logger.Info("task_created", "task_id", task.ID)

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(task)
		}
		output.Success("Created %s", output.TaskOneLiner(task))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createCmd)

	createCmd.Flags().StringP("description", "d", "", "Task description (markdown)")
	createCmd.Flags().Bool("json", false, "JSON output")
}
