package main

import (
	"fmt"

	"github.com/aretw0/hotelbot"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of hotelbot",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "hotelbot version %s\n", hotelbot.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
