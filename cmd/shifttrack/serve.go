package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"shifttrack/internal/shared/logger"
	"shifttrack/internal/shift/bootstrap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP service",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer log.Close()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log.Info(logger.Entry{
			Action:  "shifttrack_starting",
			Message: "starting shifttrack " + Version,
			Additional: map[string]any{
				"commit":     Commit,
				"build_time": BuildTime,
			},
		})
		return bootstrap.Run(ctx, cfg, log)
	},
}
