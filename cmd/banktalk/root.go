package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/banktalk/banktalk/internal/cli"
	"github.com/banktalk/banktalk/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "banktalk",
	Short: "BankTalk is a conversational banking assistant",
	Long: `BankTalk calculates EMIs, checks home loan eligibility and answers product
questions from an indexed document corpus. Settings come from an optional YAML
file, a .env file and BANKTALK_* environment variables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging on stderr")
}

// loadConfig reads the configuration and builds the logger for a command.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")

	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	return cfg, cli.NewLogger(cfg.LogLevel, debug), nil
}
