package cmd

import (
	"context"
	"fmt"

	"github.com/marcus/taskops/internal/models"
	"github.com/marcus/taskops/internal/output"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <task-id> [task-id...]",
	Aliases: []string{"rm"},
	Short:   "Delete one or more tasks",
	Long: `Delete tasks by id. Every id is attempted; failures are reported and
the command exits non-zero if any deletion failed.`,
	Example: `  taskops delete 12
  taskops rm 3 4 5`,
	GroupID: "tasks",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOut, _ := cmd.Flags().GetBool("json")

		client, _, err := current.authedClient()
		if err != nil {
			return fail(cmd, err)
		}

		type result struct {
			ID    int          `json:"id"`
			Task  *models.Task `json:"task,omitempty"`
			Error string       `json:"error,omitempty"`
			Code  string       `json:"code,omitempty"`
		}
		var results []result
		failed := 0

		for _, arg := range args {
			id, err := parseTaskID(arg)
			if err != nil {
				failed++
				results = append(results, result{Error: err.Error(), Code: errorCode(err)})
				if !jsonOut {
					output.Error("%v", err)
				}
				continue
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), current.settings.Timeout)
			task, err := client.DeleteTask(ctx, id)
			cancel()
			if err != nil {
				err = current.checkAuth(fmt.Errorf("delete task %d: %w", id, err))
				failed++
				results = append(results, result{ID: id, Error: err.Error(), Code: errorCode(err)})
				if !jsonOut {
					output.Error("%v", err)
				}
				continue
			}

			current.logger.Info("task_deleted", "task_id", task.ID)
			results = append(results, result{ID: id, Task: task})
			if !jsonOut {
				output.Line(output.FormatTaskDeleted(task))
			}
		}

		if failed == 0 {
			if jsonOut {
				return output.JSON(results)
			}
			return nil
		}

		err = fmt.Errorf("%d of %d deletions failed", failed, len(args))
		if !jsonOut {
			return err
		}
		code := ""
		for _, r := range results {
			switch {
			case r.Code == "":
			case code == "":
				code = r.Code
			case code != r.Code:
				code = output.ErrCodeFailed
			}
		}
		output.JSONErrorWithDetails(code, err.Error(), map[string]interface{}{"results": results})
		return &shownError{err: err}
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)

	deleteCmd.Flags().Bool("json", false, "JSON output")
}
