package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/marcus/taskops/internal/output"
	"github.com/spf13/cobra"
)

var pingCmd = &cobra.Command{
	Use:     "ping",
	Short:   "Check that the API server is reachable",
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), current.settings.Timeout)
		defer cancel()

		start := time.Now()
		resp, err := current.newClient("").Health(ctx)
		if err != nil {
			return fail(cmd, fmt.Errorf("ping %s: %w", current.settings.APIURL, err))
		}
		elapsed := time.Since(start)

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(map[string]any{
				"message":    resp.Message,
				"api_url":    current.settings.APIURL,
				"latency_ms": elapsed.Milliseconds(),
			})
		}
		output.Success("%s", resp.Message)
		output.Info("%s responded in %s", current.settings.APIURL, elapsed.Round(time.Millisecond))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)

	pingCmd.Flags().Bool("json", false, "JSON output")
}
