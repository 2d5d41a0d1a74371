package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/seembe/seembe/internal/config"
	"github.com/seembe/seembe/internal/db"
	"github.com/seembe/seembe/internal/notifications"
	"github.com/seembe/seembe/internal/observability"
	"github.com/seembe/seembe/internal/queue/redisclient"
	"github.com/seembe/seembe/internal/reminders"
	"github.com/seembe/seembe/internal/repo/postgres"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)

	defer stop()

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	// either binary may start first; schema setup is idempotent
	startupCtx, cancelStartup := config.WithTimeout(30 * time.Second)

	if err := db.EnsureSchema(startupCtx, pool); err != nil {
		cancelStartup()
		log.Error("schema setup failed", "err", err)
		os.Exit(1)
	}

	cancelStartup()

	redis := redisclient.New(redisclient.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	defer func() {
		if err := redis.Close(); err != nil {
			log.Error("redis close failed", "err", err)
		}
	}()

	if err := redis.Ping(ctx); err != nil {
		log.Error("redis connect failed", "err", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	eventsRepo := postgres.NewEventsRepo(pool)
	notifier := notifications.NewLogNotifier(log)

	w := reminders.New(reminders.Config{
		PollInterval: cfg.ReminderPollInterval,
		BatchSize:    cfg.ReminderBatchSize,
	}, eventsRepo, redis, notifier, prom, log)

	// health and metrics ride a small side listener
	var shuttingDown atomic.Bool

	mux := http.NewServeMux()
	mux.Handle("/", reminders.HealthHandler(pool, shuttingDown.Load))
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	healthSrv := &http.Server{
		Addr:              ":9091",
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := healthSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("health listener failed", "err", err)
		}
	}()

	log.Info("reminder worker starting",
		"poll_interval", cfg.ReminderPollInterval.String(),
		"batch_size", cfg.ReminderBatchSize,
	)

	if err := w.Run(ctx); err != nil {
		log.Error("worker stopped with error", "err", err)
	}

	shuttingDown.Store(true)

	shutdownCtx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	if err := healthSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("health listener shutdown failed", "err", err)
	}

	log.Info("worker shutdown complete")
}
