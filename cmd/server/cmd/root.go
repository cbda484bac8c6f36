package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "secretkey-server",
	Short: "SecretKey backend",
	Long: `Development backend of the SecretKey credential manager.
It stores per-user platform credentials and serves them over HTTP/JSON.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
