package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/example/focusguard/internal/config"
	"github.com/example/focusguard/internal/wire"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the focusguard configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long: `Write a config file with default values and the given shield targets.

Examples:
  focusguard config init --target news.example.com --target video.example.com
  focusguard config init --force   # overwrite an existing file`,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		targets, _ := cmd.Flags().GetStringSlice("target")
		timezone, _ := cmd.Flags().GetString("timezone")

		path := wire.ConfigPath()
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
		}

		cfg := config.DefaultConfig()
		cfg.Shield.Targets = targets
		cfg.Timezone = timezone
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := config.SaveConfig(path, cfg); err != nil {
			return err
		}

		fmt.Printf("✓ Wrote %s\n", path)
		if len(targets) == 0 {
			fmt.Println("  No shield targets yet: add some under shield.targets before blocking can start")
		}
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := wire.ConfigPath()
		cfg, err := config.LoadConfig(path)
		if err != nil {
			return err
		}
		if cfg.Redis.Password != "" {
			cfg.Redis.Password = "********"
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		fmt.Printf("# %s\n%s", path, data)
		return nil
	},
}

func init() {
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing config file")
	configInitCmd.Flags().StringSliceP("target", "t", nil, "Shield target to block (repeatable)")
	configInitCmd.Flags().String("timezone", "", "IANA timezone for task windows (defaults to the system zone)")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

// ConfigCmd returns the config command
func ConfigCmd() *cobra.Command {
	return configCmd
}
