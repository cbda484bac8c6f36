package cmd

import (
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/secretkey/internal/server"
	"github.com/dmitrijs2005/secretkey/internal/server/config"
	"github.com/spf13/cobra"
)

var (
	configPath  string
	serverFlags *config.Flags
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		serverFlags.Apply(cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger, err := server.NewLogger(cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
		defer stop()

		app, err := server.NewApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		return app.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&configPath, "config", "c", "", "JSON config file")
	serverFlags = config.BindFlags(serveCmd.Flags())
	rootCmd.AddCommand(serveCmd)
}
