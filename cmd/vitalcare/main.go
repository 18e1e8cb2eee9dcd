package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vitalcare/vitalcare/internal/app"
	"github.com/vitalcare/vitalcare/internal/auth"
	"github.com/vitalcare/vitalcare/internal/gate"
	"github.com/vitalcare/vitalcare/internal/menu"
	"github.com/vitalcare/vitalcare/internal/observability"
	"github.com/vitalcare/vitalcare/internal/platform/cache"
	"github.com/vitalcare/vitalcare/internal/policy"
	"github.com/vitalcare/vitalcare/internal/shared"
	"github.com/vitalcare/vitalcare/internal/view"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret, cfg.IsProduction())

	reader := auth.NewReader(cfg.JWTSecret, logger)
	engine := policy.NewEngine(policy.DefaultTable(), policy.DefaultPublicRoutes())

	identity := auth.NewAPIClient(cfg.ClinicAPIURL)
	authService := auth.NewService(identity, reader)
	authHandler := auth.NewHandler(logger, authService, templates, csrfManager, policy.LandingFor, cfg.IsProduction())

	menuClient := menu.NewClient(cfg.ClinicAPIURL, cfg.PermissionFetchTimeout, logger)
	permCache := menu.NewPermissionCache(redisClient, cfg.PermissionCacheTTL)
	history := shared.NewNavigationHistory(redisClient, cfg.NavHistoryLimit, cfg.NavHistoryTTL)

	checker := gate.NewChecker(engine, menuClient, permCache, cfg.PermissionFetchTimeout, logger, metrics)
	edgeGate := &gate.Edge{
		Reader:  reader,
		Engine:  engine,
		Logger:  logger,
		Metrics: metrics,
		History: history,
	}
	gateHandler := gate.NewHandler(logger, checker, menuClient, history, metrics)

	router := app.NewRouter(app.RouterParams{
		Logger:      logger,
		Config:      cfg,
		Templates:   templates,
		CSRFManager: csrfManager,
		AuthHandler: authHandler,
		GateHandler: gateHandler,
		Checker:     checker,
		Menus:       menuClient,
		EdgeGate:    edgeGate,
		Metrics:     metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
