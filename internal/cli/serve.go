package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lensboard/lensboard/internal/api"
	"github.com/lensboard/lensboard/internal/config"
	"github.com/lensboard/lensboard/internal/ingest"
	"github.com/lensboard/lensboard/internal/notify"
	"github.com/lensboard/lensboard/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server, event ingest, and re-check schedulers",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	printHeader("🌐 Lensboard Serve")

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Config error: %v\n", err)
		os.Exit(1)
	}

	logger := slog.Default()

	st, err := store.Open(cfg.DBPath(), logger)
	if err != nil {
		fmt.Printf("Store error: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notifier := notify.New(cfg.Notify.Slack, logger)
	if notifier.Enabled() {
		logger.Info("slack digests enabled", "channel", cfg.Notify.Slack.Channel)
	}

	fleet := newRecheckFleet(cfg, st, nil, notifier, logger)
	go func() {
		if err := fleet.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("recheck fleet stopped", "error", err)
		}
	}()

	if cfg.Ingest.Enabled {
		consumer := ingest.NewKafkaConsumer(cfg.Ingest.Brokers, cfg.Ingest.ConsumerGroup, cfg.Ingest.Topic, logger)
		runner := ingest.NewRunner(consumer, st, logger)
		go func() {
			defer consumer.Close()
			if err := runner.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Error("ingest stopped", "error", err)
			}
		}()
		logger.Info("ingest started", "brokers", cfg.Ingest.Brokers, "topic", cfg.Ingest.Topic)
	}

	srv := api.New(st, cfg, fleet.InFlight, logger)
	if err := srv.Run(ctx, api.Addr(cfg.Gateway)); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Printf("Server error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Shutdown complete")
}
