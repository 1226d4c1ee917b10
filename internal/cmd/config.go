package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/opsched/internal/config"
	"github.com/felixgeelhaar/opsched/internal/errors"
	"github.com/felixgeelhaar/opsched/internal/ux"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the opsched configuration",
	Long: `Manage the configuration stored at .opsched/config.yaml.

The configuration holds the scheduler defaults (concurrency, item timeout,
report directory), logging, tracing, the metrics endpoint and the agent bound
to every capability.

Examples:
  # Write the default configuration
  opsched config init

  # Show the effective configuration
  opsched config show

  # Show the configuration file path
  opsched config path`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration",
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the effective configuration",
	Long:  `Display the configuration after defaults and overrides are applied.`,
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the configuration file path",
	RunE:  runConfigPath,
}

var configForce bool

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing configuration")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(configPath); err == nil && !configForce {
		return errors.New(errors.ErrCodeConfigInvalid, fmt.Sprintf("configuration already exists: %s", configPath)).
			WithSuggestion("Pass --force to overwrite it")
	}

	if err := config.Save(config.Default(), configPath); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote default configuration to %s\n", configPath)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	formatter, err := ux.NewFormatter("yaml", &ux.FormatterOptions{Writer: cmd.OutOrStdout()})
	if err != nil {
		return err
	}
	return formatter.Format(cfg)
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	fmt.Fprintln(cmd.OutOrStdout(), configPath)
	return nil
}
