package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/wyclub/member-system/internal/api"
	"github.com/wyclub/member-system/internal/core/service"
	mongodb "github.com/wyclub/member-system/internal/infrastructure/db/mongo"
	redisdb "github.com/wyclub/member-system/internal/infrastructure/db/redis"
	"github.com/wyclub/member-system/internal/infrastructure/provider/local"
	"github.com/wyclub/member-system/internal/infrastructure/queue"
	"github.com/wyclub/member-system/internal/pkg/config"
	"github.com/wyclub/member-system/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env == "development",
		Service: "member-system",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Infrastructure ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongodb disconnect")
		}
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("redis close")
		}
	}()

	// --- Core services ---
	profileRepo := mongodb.NewProfileRepository(db)
	profiles := service.NewProfileService(profileRepo, logger.Component("profiles"))

	reconciler := service.NewReconciler(profiles, service.Options{
		CacheTTL:       cfg.Auth.CacheTTL,
		DebounceWindow: cfg.Auth.DebounceWindow,
		SettleDelay:    cfg.Auth.SettleDelay,
		RetryBackoff:   cfg.Auth.RetryBackoff,
		MaxRetries:     cfg.Auth.MaxRetries,
		FetchTimeout:   cfg.Auth.FetchTimeout,
	}, logger.Component("reconciler"))

	provider := local.New(logger.Component("provider"))
	throttle := redisdb.NewResendThrottle(rdb, cfg.Auth.ResendCooldown)
	accounts := service.NewAccountService(
		provider,
		reconciler,
		profiles,
		throttle,
		cfg.JWTSecret,
		cfg.Auth.TokenTTL,
		logger.Component("accounts"),
	)

	statsCache := redisdb.NewStatsCache(rdb, cfg.Auth.StatsCacheTTL)
	stats := service.NewStatsService(profileRepo, statsCache, logger.Component("stats"))

	// --- Event fan-in ---
	dispatcher := queue.NewDispatcher(cfg.Auth.EventWorkers, reconciler, logger.Component("dispatcher"))
	dispatcher.Start(ctx)
	go dispatcher.Pump(ctx, provider.Events())

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		DB:         db,
		RDB:        rdb,
		Accounts:   accounts,
		Reconciler: reconciler,
		Stats:      stats,
		Dispatcher: dispatcher,
		JWTSecret:  cfg.JWTSecret,
		Log:        log,
	})

	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}
