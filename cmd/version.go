package cmd

import (
	"github.com/marcus/taskops/internal/output"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:     "version",
	Short:   "Print the taskops version",
	GroupID: "system",
	Args:    cobra.NoArgs,
	// No config or log file needed
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		output.Info("taskops %s", version)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
