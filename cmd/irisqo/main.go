package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/irisqo/irisqo/config"
	"github.com/irisqo/irisqo/internal/health"
	"github.com/irisqo/irisqo/internal/infrastructure/postgres"
	"github.com/irisqo/irisqo/internal/instance"
	ctxlog "github.com/irisqo/irisqo/internal/log"
	"github.com/irisqo/irisqo/internal/metrics"
	"github.com/irisqo/irisqo/internal/scheduler"
	httptransport "github.com/irisqo/irisqo/internal/transport/http"
	"github.com/irisqo/irisqo/internal/transport/http/handler"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	instanceID := instance.NewID()
	logger = logger.With("instance_id", instanceID)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, instanceID)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	queueRepo := postgres.NewQueueRepository(pool)
	instanceRepo := postgres.NewInstanceRepository(pool)
	scheduleRepo := postgres.NewScheduleRepository(pool)
	resultRepo := postgres.NewResultRepository(pool)
	historyRepo := postgres.NewHistoryRepository(pool)

	metrics.Register()
	checker := health.NewChecker(pool, logger, prometheus.DefaultRegisterer)

	runner := scheduler.NewRunner(instanceID, queueRepo, scheduleRepo, scheduler.NewExecutor(), logger)
	workerPool := scheduler.NewPool(
		instanceID,
		queueRepo,
		runner,
		cfg.Workers,
		cfg.Prefetch,
		time.Duration(cfg.WorkerPollInterval)*time.Millisecond,
		logger,
	)
	sched := scheduler.New(instanceID, queueRepo, instanceRepo, logger)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		workerPool.Start(ctx)
	}()
	if cfg.SchedulerEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sched.Start(ctx)
		}()
	}

	srv := http.Server{
		Addr: ":" + cfg.Port,
		Handler: httptransport.NewRouter(
			logger,
			checker,
			handler.NewIngestHandler(instanceID, queueRepo, uint32(cfg.JobTimeout), logger),
			handler.NewJobHandler(queueRepo, historyRepo, logger),
			handler.NewResultHandler(resultRepo, logger),
			handler.NewScheduleHandler(scheduleRepo, logger),
			handler.NewInstanceHandler(instanceRepo, logger),
		),
	}

	metricsSrv := metrics.NewServer(":" + cfg.MetricsPort)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}

	// Wait for in-flight jobs and the final instance-kill to finish.
	wg.Wait()
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
