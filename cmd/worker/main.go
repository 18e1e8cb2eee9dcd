package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/vitalcare/vitalcare/internal/app"
	"github.com/vitalcare/vitalcare/internal/menu"
	"github.com/vitalcare/vitalcare/internal/platform/cache"
	"github.com/vitalcare/vitalcare/internal/shared"
	"github.com/vitalcare/vitalcare/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	permCache := menu.NewPermissionCache(redisClient, cfg.PermissionCacheTTL)
	history := shared.NewNavigationHistory(redisClient, cfg.NavHistoryLimit, cfg.NavHistoryTTL)

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: redisOpts,
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskAuthzCacheSweep, Handler: jobs.AuthzCacheSweepHandler(permCache, logger)},
			{Type: jobs.TaskNavHistoryTrim, Handler: jobs.NavHistoryTrimHandler(history, logger)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "*/15 * * * *", Task: jobs.NewAuthzCacheSweepTask()},
			{Spec: "0 3 * * *", Task: jobs.NewNavHistoryTrimTask()},
		},
	})
	if err != nil {
		logger.Error("configure worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting worker")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker shut down")
}
