package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/focusguard/internal/cli"
	"github.com/example/focusguard/internal/version"
	"github.com/example/focusguard/internal/wire"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:     "focusguard",
		Short:   "focusguard - block distractions during scheduled focus windows",
		Version: version.String(),
		Long: `focusguard turns on a distraction shield while a task's focus window is
open. Windows are scheduled as wake triggers so blocking starts and stops
on time, and every command reconciles the shield with today's tasks.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			wire.SetConfigPath(configPath)
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.focusguard/config.yaml)")

	// Add subcommands
	rootCmd.AddCommand(cli.TaskCmd())
	rootCmd.AddCommand(cli.ScheduleCmd())
	rootCmd.AddCommand(cli.ReconcileCmd())
	rootCmd.AddCommand(cli.FireCmd())
	rootCmd.AddCommand(cli.RunCmd())
	rootCmd.AddCommand(cli.StatusCmd())
	rootCmd.AddCommand(cli.AutoCmd())
	rootCmd.AddCommand(cli.ConfigCmd())
	rootCmd.AddCommand(cli.DoctorCmd())

	// Developer tools
	rootCmd.AddCommand(cli.DevCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
