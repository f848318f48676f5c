package main

import (
	"fmt"
	"os"

	"github.com/aretw0/hotelbot/internal/cli"
	"github.com/aretw0/hotelbot/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hotelbot",
	Short: "hotelbot is a chat client for a hotel booking assistant",
	Long: `hotelbot talks to a hotel booking service and walks you from a search,
through picking a hotel, to a confirmed booking.

Run it as a terminal chat, a web chat, or an MCP server for AI agents.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file (default: ./"+config.DefaultFile+" if present)")
	rootCmd.PersistentFlags().String("backend", "", "Base URL of the booking service")
	rootCmd.PersistentFlags().String("store", "", "Conversation store: memory, file or redis")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging to stderr")
}

// loadConfig reads the config file and environment, then applies flags that were set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Backend.URL, _ = flags.GetString("backend")
	}
	if flags.Changed("store") {
		cfg.Store.Kind, _ = flags.GetString("store")
	}
	if flags.Changed("debug") {
		cfg.Debug, _ = flags.GetBool("debug")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newApp loads the configuration and builds the application for cmd.
func newApp(cmd *cobra.Command, interactive bool) (*cli.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return cli.NewApp(cfg, cli.NewLogger(cfg, interactive))
}
