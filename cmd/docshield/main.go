package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/docshield/docshield/internal/app"
	"github.com/docshield/docshield/internal/auth"
	"github.com/docshield/docshield/internal/documents"
	"github.com/docshield/docshield/internal/observability"
	"github.com/docshield/docshield/internal/platform/cache"
	"github.com/docshield/docshield/internal/platform/db"
	"github.com/docshield/docshield/internal/users"
	"github.com/docshield/docshield/jobs"
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	// Separate pool under the restricted role; rows on documents are
	// only visible through the RLS policy here.
	rlsPool, err := db.New(ctx, cfg.PGRLSDSN)
	if err != nil {
		logger.Error("connect postgres (rls role)", slog.Any("error", err))
		os.Exit(1)
	}
	defer rlsPool.Close()

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

	events := jobs.NewSink(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := events.Close(); err != nil {
			logger.Warn("event sink close", slog.Any("error", err))
		}
	}()

	denylist := auth.NewDenylist(redisClient)
	tokens := auth.NewTokenService(cfg.TokenSecret, cfg.TokenTTL, denylist)

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo)
	authMiddleware := auth.NewMiddleware(tokens, authService, logger, events)
	authHandler := auth.NewHandler(logger, authService, tokens)

	metrics := observability.NewMetrics()

	documentsRepo := documents.NewRepository(pool)
	documentsService := documents.NewService(documentsRepo, logger, events)
	documentsRLS := documents.NewRLSRepository(rlsPool, logger)
	documentsHandler := documents.NewHandler(logger, documentsService, documentsRLS, authMiddleware, metrics)

	usersService := users.NewService(users.NewRepository(pool))
	usersHandler := users.NewHandler(logger, usersService, authMiddleware)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		AuthHandler:      authHandler,
		DocumentsHandler: documentsHandler,
		UsersHandler:     usersHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("http server", slog.Any("error", err))
		os.Exit(1)
	}
}
