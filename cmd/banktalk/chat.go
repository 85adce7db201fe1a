package main

import (
	"os"

	"github.com/banktalk/banktalk/internal/cli"
	"github.com/banktalk/banktalk/internal/presentation/tui"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the assistant in the terminal",
	Long: `Starts an interactive chat. Type 'exit' or 'quit' to leave and 'reset' to
clear the current form. Reuse --session with a file or redis store to continue
a conversation later.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		sessionID, _ := cmd.Flags().GetString("session")
		if sessionID == "" {
			sessionID = uuid.NewString()
		}

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		app, err := cli.NewApp(sigCtx, cfg, logger, nil)
		if err != nil {
			return err
		}
		defer app.Close()

		interactive := term.IsTerminal(int(os.Stdout.Fd()))
		var render tui.Renderer = tui.Plain
		if interactive {
			width, _, err := term.GetSize(int(os.Stdout.Fd()))
			if err != nil {
				width = 0
			}
			render = tui.NewRenderer(width)
		}

		err = cli.RunChat(sigCtx, app.Assistant, cli.ChatOptions{
			SessionID: sessionID,
			In:        os.Stdin,
			Out:       os.Stdout,
			Render:    render,
			Quiet:     !interactive,
		})
		if sig := sigCtx.Signal(); sig != nil {
			logger.Info("Chat interrupted", "signal", sig.String(), "session_id", sessionID)
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringP("session", "s", "", "Session id to create or resume (default: a new uuid)")
}
