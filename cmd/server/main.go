package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"anoa.com/studyhub/internal/bootstrap"
	"anoa.com/studyhub/internal/config"
	"anoa.com/studyhub/internal/server"
	"anoa.com/studyhub/pkg/database"
	"anoa.com/studyhub/pkg/logger"
	"anoa.com/studyhub/pkg/storage"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zapLog, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zapLog.Sync() }()
	zap.ReplaceGlobals(zapLog)

	db, err := database.Connect(cfg.DatabaseURL, zapLog)
	if err != nil {
		zapLog.Fatal("failed to connect database", zap.Error(err))
	}
	if err := bootstrap.Migrate(db); err != nil {
		zapLog.Fatal("migration failed", zap.Error(err))
	}
	if err := bootstrap.SeedAdmins(db, cfg.AdminExternalIDs, zapLog); err != nil {
		zapLog.Fatal("failed to seed admins", zap.Error(err))
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL, zapLog)
		if err != nil {
			zapLog.Warn("redis unavailable, view dedupe and realtime notifications disabled", zap.Error(err))
			redisClient = nil
		} else {
			defer func() { _ = redisClient.Close() }()
		}
	}

	var meiliClient meilisearch.ServiceManager
	if cfg.MeiliSearchHost != "" {
		meiliClient = meilisearch.New(cfg.MeiliSearchHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	}

	var fileStorage storage.FileStorage
	if cfg.CloudinaryURL != "" || cfg.CloudinaryCloudName != "" {
		fileStorage, err = storage.NewCloudinaryStorage(storage.Options{
			CloudinaryURL: cfg.CloudinaryURL,
			CloudName:     cfg.CloudinaryCloudName,
			MaxRetries:    cfg.UploadMaxRetries,
		}, zapLog)
		if err != nil {
			zapLog.Warn("cloudinary unavailable, uploads disabled", zap.Error(err))
			fileStorage = nil
		}
	}

	srv := server.NewServer(server.Deps{
		Config:  cfg,
		DB:      db,
		Redis:   redisClient,
		Meili:   meiliClient,
		Storage: fileStorage,
		Log:     zapLog,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx, ":"+cfg.Port); err != nil {
		zapLog.Fatal("server exited with error", zap.Error(err))
	}
}
