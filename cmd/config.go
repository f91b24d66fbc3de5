package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/magicmove/internal/config"
)

var (
	configForce bool
	configUser  bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
	// Config commands must work while the config file is invalid so it
	// can be repaired.
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the commented default configuration",
	Long: `Write the default configuration with every option documented.

By default the file is written to .magicmove/config.yaml in the current
directory; --user writes ~/.config/magicmove/config.yaml instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := initPath()
		if _, err := os.Stat(path); err == nil && !configForce {
			return fmt.Errorf("%s already exists, use --force to overwrite", path)
		}
		if err := config.WriteDefaultConfig(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set one option, keeping comments",
	Long: `Set a dotted option in the active config file, keeping its comments.

Examples:
  magicmove config set highlight.theme dracula
  magicmove config set animation.duration 750ms
  magicmove config set tracing.enabled true`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := activePath()
		previous, readErr := os.ReadFile(path)
		if err := config.Set(path, args[0], args[1]); err != nil {
			return err
		}

		// Values that would leave the file unusable are rolled back.
		if err := checkConfigFile(path); err != nil {
			if readErr == nil {
				_ = os.WriteFile(path, previous, 0o644)
			} else {
				_ = os.Remove(path)
			}
			return fmt.Errorf("not saved: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s in %s\n", args[0], args[1], path)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the active config file path",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), activePath())
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing file")
	configInitCmd.Flags().BoolVar(&configUser, "user", false, "write the user config instead of the local one")
	configCmd.AddCommand(configInitCmd, configSetCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// checkConfigFile loads path on its own and validates it.
func checkConfigFile(path string) error {
	v := viper.New()
	config.SetDefaults(v)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	_, err := config.Unmarshal(v)
	return err
}

// initPath is where 'config init' writes.
func initPath() string {
	switch {
	case cfgFile != "":
		return cfgFile
	case configUser && config.UserConfigDir() != "":
		return filepath.Join(config.UserConfigDir(), "config.yaml")
	default:
		return config.LocalConfigPath
	}
}

// activePath is the file viper loaded, falling back to the local path.
func activePath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return config.LocalConfigPath
}
