package cmd

import (
	"errors"
	"strings"

	"github.com/marcus/taskops/internal/config"
	"github.com/marcus/taskops/internal/output"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage taskops configuration",
	Long: `Read and write settings in config.json in the config directory
($TASKOPS_HOME, default ~/.config/taskops). Environment variables named
TASKOPS_<KEY> (dots become underscores, e.g. TASKOPS_API_URL) override the
file; command-line flags override both.`,
	GroupID: "system",
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if err := current.cfg.Set(key, val); err != nil {
			if errors.Is(err, config.ErrUnknownKey) {
				output.Info("Valid keys: %s", strings.Join(config.Keys(), ", "))
			}
			return err
		}
		current.logger.Info("config_set", "key", key)
		output.Success("Set %s = %s", key, val)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a config value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		val, err := current.cfg.Get(args[0])
		if err != nil {
			return err
		}
		output.Line(val)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all config values",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		keys := config.Keys()
		values := make(map[string]string, len(keys))
		for _, k := range keys {
			v, err := current.cfg.Get(k)
			if err != nil {
				return err
			}
			values[k] = v
		}

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(values)
		}
		output.Line(strings.TrimSpace(output.SectionHeader("settings")))
		for _, k := range keys {
			output.Info("  %-16s %s", k, values[k])
		}
		output.Info("\nConfig dir: %s", current.cfg.Dir())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configSetCmd, configGetCmd, configListCmd)

	configListCmd.Flags().Bool("json", false, "JSON output")
}
