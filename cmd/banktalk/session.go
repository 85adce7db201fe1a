package main

import (
	"github.com/banktalk/banktalk/internal/cli"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage stored sessions",
	Long:  `List, inspect, and remove sessions in the configured store (file or redis; the memory store is empty in a new process).`,
}

func withStorage(fn func(cmd *cobra.Command, s *cli.Storage, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		storage, err := cli.OpenStorage(cfg)
		if err != nil {
			return err
		}
		defer storage.Close()
		return fn(cmd, storage, args)
	}
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all stored sessions",
	RunE: withStorage(func(cmd *cobra.Command, s *cli.Storage, args []string) error {
		return cli.ListSessions(cmd.Context(), s.Store, cmd.OutOrStdout())
	}),
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Print the conversation state of a session",
	Args:  cobra.ExactArgs(1),
	RunE: withStorage(func(cmd *cobra.Command, s *cli.Storage, args []string) error {
		return cli.InspectSession(cmd.Context(), s.Store, args[0], cmd.OutOrStdout())
	}),
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session-id>...",
	Short: "Remove one or more sessions",
	Args:  cobra.MinimumNArgs(1),
	RunE: withStorage(func(cmd *cobra.Command, s *cli.Storage, args []string) error {
		return cli.RemoveSessions(cmd.Context(), s.Store, args, cmd.OutOrStdout())
	}),
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)
}
