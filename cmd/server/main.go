package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/creatorhub/session-gateway/internal/api"
	"github.com/creatorhub/session-gateway/internal/core/domain"
	"github.com/creatorhub/session-gateway/internal/core/service"
	"github.com/creatorhub/session-gateway/internal/infrastructure/config"
	mongodb "github.com/creatorhub/session-gateway/internal/infrastructure/db/mongo"
	redisdb "github.com/creatorhub/session-gateway/internal/infrastructure/db/redis"
	"github.com/creatorhub/session-gateway/internal/infrastructure/upstream"
	"github.com/creatorhub/session-gateway/internal/query"
	"github.com/creatorhub/session-gateway/pkg/logger"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Service: "session-gateway",
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env == "development",
	})

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	// --- Infrastructure ---
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongodb disconnect failed")
		}
	}()

	// --- Session resolution stack ---
	upstreamClient := upstream.NewClient(upstream.Config{
		BaseURL: cfg.Upstream.BaseURL,
		Timeout: cfg.Upstream.Timeout,
	}, log)

	queries := query.NewStore(query.Options{
		TTL:         cfg.Session.QueryTTL,
		NegativeTTL: cfg.Session.NegativeTTL,
		Terminal:    domain.IsTerminal,
		Values:      redisdb.NewQueryStore(rdb),
	})

	notificationRepo := mongodb.NewNotificationRepository(db)
	if err := notificationRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure notification indexes")
	}

	resolver := service.NewSessionService(upstreamClient, queries, cfg.Session.ResolveBudget, log)
	notifications := service.NewNotificationService(notificationRepo, log)

	e := api.NewRouter(api.Deps{
		Resolver:      resolver,
		Notifications: notifications,
		Upstream:      upstreamClient,
		Mongo:         db,
		Redis:         rdb,
		JWTSecret:     cfg.JWTSecret,
		LoginRoute:    cfg.LoginRoute,
		Logger:        log,
	})

	// --- Serve with graceful shutdown ---
	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(":" + cfg.Port)
	}()

	log.Info().Str("port", cfg.Port).Str("upstream", cfg.Upstream.BaseURL).Msg("session gateway started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped unexpectedly")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
