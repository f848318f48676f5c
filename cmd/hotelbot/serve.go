package main

import (
	"github.com/aretw0/hotelbot/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web chat server",
	Long: `Serves the chat page, a JSON API per session and an SSE stream of
conversation updates. Prometheus metrics are exposed on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd, false)
		if err != nil {
			return err
		}
		defer app.Close()

		if cmd.Flags().Changed("addr") {
			app.Config.Server.Addr, _ = cmd.Flags().GetString("addr")
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		return cli.Serve(ctx, app, app.Config.Server.Addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on")
}
