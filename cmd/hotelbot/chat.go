package main

import (
	"fmt"
	"os"

	"github.com/aretw0/hotelbot/internal/cli"
	"github.com/aretw0/hotelbot/pkg/runner"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the booking assistant in the terminal",
	Long: `Starts an interactive conversation.

Type /reset to start over and /quit (or Ctrl+C) to leave.
With --json, stdin and stdout carry one JSON object per line.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")
		jsonMode, _ := cmd.Flags().GetBool("json")

		app, err := newApp(cmd, !jsonMode)
		if err != nil {
			return err
		}
		defer app.Close()

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		err = cli.Chat(ctx, app, cli.ChatOptions{
			SessionID: sessionID,
			JSON:      jsonMode,
			In:        os.Stdin,
			Out:       os.Stdout,
		})
		if err != nil {
			return err
		}

		if sig := ctx.Signal(); sig != nil && !jsonMode {
			fmt.Printf("\n>>> Interrupted (%v).\n", sig)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringP("session", "s", runner.DefaultSessionID, "Session ID to resume or start")
	chatCmd.Flags().Bool("json", false, "Use JSON lines on stdin/stdout")
}
