package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	config "github.com/webchecker/backend/internal/config/api"
	intoutbox "github.com/webchecker/backend/internal/outbox"
	"github.com/webchecker/backend/internal/obs/retry"
	"github.com/webchecker/backend/internal/repository/kafka"
	pg "github.com/webchecker/backend/internal/repository/postgres"
)

func main() {
	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		panic(err)
	}

	logger, err := initLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting api", zap.String("env", cfg.App.Env), zap.String("ver", cfg.App.Version))

	otelShutdown, err := initOTel(rootCtx, cfg, logger)
	if err != nil {
		logger.Fatal("otel init", zap.Error(err))
	}
	defer func() { _ = otelShutdown(rootCtx) }()

	db, err := initDB(rootCtx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	var producer *kafka.Producer
	if cfg.Kafka.Enable {
		producer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic).WithLogger(logger)
		defer func() { _ = producer.Close() }()

		events := kafka.NewMonitorEventsKafka(producer)
		runner := intoutbox.NewOutboxRunner(
			logger,
			pg.NewOutboxRepo(db),
			intoutbox.MakeGlobalOutboxHandler(events, retry.DefaultKafkaPolicy(logger)),
			cfg.Outbox.Workers,
			cfg.Outbox.BatchSize,
			cfg.Outbox.WaitTime,
			cfg.Outbox.InProgressTTL,
		)
		runner.Start(rootCtx)
	}

	httpSrv := buildHTTPServer(cfg, logger, db)

	httpErrCh := make(chan error, 1)
	go func() {
		logger.Info("http listening", zap.String("addr", cfg.Server.HTTPAddr))
		httpErrCh <- httpSrv.ListenAndServe()
	}()

	select {
	case <-rootCtx.Done():
		logger.Info("shutdown signal")
	case err := <-httpErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve", zap.Error(err))
		}
	}

	shCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()
	_ = httpSrv.Shutdown(shCtx)

	time.Sleep(100 * time.Millisecond)
	logger.Info("bye")
}
