package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iliyamo/telehealth-core/internal/config"
	"github.com/iliyamo/telehealth-core/internal/logs"
	"github.com/iliyamo/telehealth-core/internal/queue"
)

func newConsumeCommand() *cobra.Command {
	var logPath string
	cmd := &cobra.Command{
		Use:   "consume-escalations",
		Short: "Append prescription escalation events from RabbitMQ to an audit log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			log := logs.New(cfg)
			if cfg.AMQPURL == "" {
				return errors.New("RABBITMQ_URL is not set")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			c := &queue.EscalationConsumer{URL: cfg.AMQPURL, LogPath: logPath, Log: log}
			log.Info("escalation consumer started", slog.String("queue", queue.EscalationQueue), slog.String("log", logPath))
			if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			log.Info("escalation consumer stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&logPath, "log", "logs/escalation.log", "audit log file")
	return cmd
}
