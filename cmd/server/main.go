package main

import (
	"context"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/jerseyhub/gallery-system/internal/api"
	"github.com/jerseyhub/gallery-system/internal/api/handler"
	"github.com/jerseyhub/gallery-system/internal/core/service"
	"github.com/jerseyhub/gallery-system/internal/infrastructure/config"
	"github.com/jerseyhub/gallery-system/internal/infrastructure/db/mongo"
	"github.com/jerseyhub/gallery-system/internal/infrastructure/db/redis"
	"github.com/jerseyhub/gallery-system/internal/infrastructure/imaging"
	"github.com/jerseyhub/gallery-system/internal/infrastructure/queue"
	"github.com/jerseyhub/gallery-system/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load(slog.Default())

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Stores ---
	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connect failed")
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	rdb, err := redis.Connect(ctx, redis.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connect failed")
	}
	defer func() { _ = rdb.Close() }()

	userRepo := mongo.NewUserRepository(db)
	designRepo := mongo.NewDesignRepository(db)
	requestRepo := mongo.NewDeleteRequestRepository(db)
	auditRepo := mongo.NewAuditRepository(db)

	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("user indexes failed")
	}
	if err := designRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("design indexes failed")
	}

	// --- Activity pipeline ---
	publisher := queue.NewAMQPPublisher(cfg.AMQP.URL, log)
	defer publisher.Close()

	recorder := queue.NewRecorder(auditRepo, publisher, log)
	dispatcher := queue.NewDispatcher(0, recorder, log)
	dispatcher.Start(ctx)

	consumer := queue.NewActivityConsumer(cfg.AMQP.URL, log)
	go consumer.Run(ctx)

	// --- Services ---
	sessions := service.NewSessionManager(0, log)
	go sessions.Run(ctx)

	points := service.NewPointsLedger(userRepo, dispatcher, log)
	lock := redis.NewDownloadLock(rdb)
	downloads := service.NewDownloads(designRepo, points, lock, sessions, dispatcher, log)

	auth := service.NewAuthService(userRepo, sessions, downloads, service.AdminCredentials{
		Username: cfg.Admin.Username,
		Password: cfg.Admin.Password,
	}, cfg.JWTSecret, 24*time.Hour, log)

	cache := service.NewCatalogCache()
	catalog := service.NewCatalog(cache, designRepo, requestRepo, imaging.NewTranscoder(), dispatcher, cfg.Image.MaxWidth, cfg.Image.Quality, log)
	moderation := service.NewModeration(designRepo, requestRepo, points, dispatcher, log)
	adminConsole := service.NewAdminConsole(userRepo, dispatcher, log)

	// --- Live catalog feed ---
	feed := handler.NewFeedHub(log)
	watcher := mongo.NewCatalogWatcher(designRepo, db, log, cache, feed)
	go watcher.Run(ctx)

	// --- HTTP server ---
	e := api.NewRouter(api.Dependencies{
		Auth:       auth,
		Catalog:    catalog,
		Downloads:  downloads,
		Moderation: moderation,
		Admin:      adminConsole,
		Points:     points,
		Feed:       feed,
		Mongo:      db,
		Redis:      rdb,
		Broker:     publisher,
		JWTSecret:  cfg.JWTSecret,
		Log:        log,
	})

	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
