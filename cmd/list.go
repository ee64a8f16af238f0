package cmd

import (
	"context"
	"fmt"

	"github.com/marcus/taskops/internal/apiclient"
	"github.com/marcus/taskops/internal/models"
	"github.com/marcus/taskops/internal/output"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List your tasks",
	Long: `List tasks visible to the logged-in account. Superusers see every task.

By default one page is fetched (tasks.page_size). Use --all to follow pages
until the server runs out.`,
	Example: `  taskops list
  taskops ls --skip 20 --limit 10
  taskops list --all --json`,
	GroupID: "tasks",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		skip, _ := cmd.Flags().GetInt("skip")
		limit, _ := cmd.Flags().GetInt("limit")
		all, _ := cmd.Flags().GetBool("all")
		jsonOut, _ := cmd.Flags().GetBool("json")
		long, _ := cmd.Flags().GetBool("long")

		if err := checkPaging(skip, limit); err != nil {
			return fail(cmd, err)
		}
		if !cmd.Flags().Changed("limit") {
			limit = current.settings.PageSize
		}

		client, _, err := current.authedClient()
		if err != nil {
			return fail(cmd, err)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), current.settings.Timeout)
		defer cancel()

		var tasks []models.Task
		if all {
			tasks, err = client.ListAllTasks(ctx, limit)
		} else {
			tasks, err = client.ListTasks(ctx, apiclient.ListOptions{Skip: skip, Limit: limit})
		}
		if err != nil {
			return fail(cmd, current.checkAuth(fmt.Errorf("list tasks: %w", err)))
		}
		current.logger.Debug("tasks_listed", "count", len(tasks), "skip", skip, "limit", limit, "all", all)

		if jsonOut {
			return output.JSON(tasks)
		}
		if len(tasks) == 0 {
			output.Info("No tasks found")
			return nil
		}

		width := output.TerminalWidth(0)
		for i := range tasks {
			if long {
				output.Line(output.FormatTaskLong(&tasks[i], true))
				continue
			}
			output.Line(output.FormatTaskShort(&tasks[i], width))
		}
		if !all && len(tasks) == limit {
			output.Info("\n(%d shown; more may exist, use --skip %d or --all)", len(tasks), skip+limit)
		}
		return nil
	},
}

func checkPaging(skip, limit int) error {
	if skip < 0 {
		return fmt.Errorf("--skip must be >= 0, got %d", skip)
	}
	if limit < 0 {
		return fmt.Errorf("--limit must be >= 0, got %d", limit)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().Int("skip", 0, "Number of tasks to skip")
	listCmd.Flags().Int("limit", apiclient.DefaultPageSize, "Maximum tasks to return (default from tasks.page_size)")
	listCmd.Flags().Bool("all", false, "Fetch every page")
	listCmd.Flags().Bool("json", false, "JSON output")
	listCmd.Flags().Bool("long", false, "Show descriptions")
}
