package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spacesedan/tonecheck/config"
	"github.com/spacesedan/tonecheck/internal/clients"
	"github.com/spacesedan/tonecheck/internal/clients/kafka_client"
	"github.com/spacesedan/tonecheck/internal/db"
	"github.com/spacesedan/tonecheck/internal/logging"
	"github.com/spacesedan/tonecheck/internal/monitoring"
	"github.com/spacesedan/tonecheck/internal/tallies"
	"github.com/spacesedan/tonecheck/internal/web"
)

const SHUTDOWN_TIMEOUT = 10 * time.Second

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)
	cfg := config.Load()
	logging.InitLogger(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps := web.Dependencies{
		Analyzer: clients.NewLanguageClient(cfg.Language),
		Health:   map[string]*atomic.Bool{},
	}

	if cfg.Valkey.Enabled() {
		vc, err := clients.NewValkeyClient(cfg.Valkey)
		if err != nil {
			slog.Warn("Valkey unavailable, rate limiting disabled", slog.String("error", err.Error()))
		} else {
			defer vc.Close()
			deps.RateLimiter = clients.NewRateLimiter(vc, cfg.RateLimit)

			healthy := &atomic.Bool{}
			healthy.Store(true)
			deps.Health["valkey"] = healthy
			go monitoring.MonitorHealth(ctx, "valkey", vc, healthy)
		}
	}

	if cfg.KafkaBroker != "" {
		publisher, err := kafka_client.NewTonePublisher(kafka_client.GetKafkaConfig(cfg))
		if err != nil {
			slog.Warn("Kafka unavailable, tone events will not be published", slog.String("error", err.Error()))
		} else {
			// deferred Close flushes while HandleDeliveryReports keeps draining
			defer publisher.Close()
			go publisher.HandleDeliveryReports()
			deps.Observers = append(deps.Observers, publisher)
		}
	}

	recorderDone := make(chan struct{})
	if cfg.Tallies.Enabled() {
		dynamo, err := clients.NewDynamoDBClient(ctx, cfg.Tallies)
		if err != nil {
			slog.Warn("DynamoDB unavailable, tallies disabled", slog.String("error", err.Error()))
			close(recorderDone)
		} else {
			store := db.NewTallyStore(dynamo, cfg.Tallies.TableName)
			recorder := tallies.NewRecorder(store)
			go func() {
				recorder.Run(ctx)
				close(recorderDone)
			}()
			deps.Observers = append(deps.Observers, recorder)
			deps.Tallies = store
		}
	} else {
		close(recorderDone)
	}

	server := web.New(cfg, deps)
	go func() {
		if err := server.Run(); err != nil {
			slog.Error("Server stopped", slog.String("error", err.Error()))
			cancel()
		}
	}()

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-stopChan:
	case <-ctx.Done():
	}
	slog.Info("Shutting down tonecheck gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), SHUTDOWN_TIMEOUT)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Failed to shut down server", slog.String("error", err.Error()))
	}

	cancel()
	<-recorderDone
}
