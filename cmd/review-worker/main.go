package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/cucharaita/storefront/internal/config"
	"github.com/cucharaita/storefront/internal/events"
	"github.com/cucharaita/storefront/internal/opinions"
	"github.com/cucharaita/storefront/internal/store/sqlstore"
	"github.com/cucharaita/storefront/pkg/logger"
)

func main() {
	envFile := flag.String("config", ".env", "optional env file")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		logger.L().Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.New(os.Stdout, "review-worker", cfg.Env, cfg.LogLevel)
	logger.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dsn := cfg.PostgresDSN()
	if cfg.DBDriver == "sqlite" {
		dsn = cfg.SQLitePath
	}
	store, err := sqlstore.Open(ctx, cfg.DBDriver, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer store.Close()
	if err := store.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	reader := events.NewReader(cfg.OrdersTopic, cfg.ReviewGroup, cfg.Brokers()...)
	retryable := func(err error) bool {
		return events.Transient(err) || sqlstore.IsTransient(err)
	}
	consumer := events.NewConsumer(reader, opinions.NewService(store), retryable)
	defer consumer.Close()

	log.Info().
		Strs("brokers", cfg.Brokers()).
		Str("topic", cfg.OrdersTopic).
		Str("group", cfg.ReviewGroup).
		Msg("review worker started")

	consumer.Run(ctx)
	log.Info().Msg("review worker stopped")
}
