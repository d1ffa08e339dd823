package main

import (
	"context"
	"log"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/tastemap/catalog-api/internal/config"
	"github.com/tastemap/catalog-api/internal/logger"
	"github.com/tastemap/catalog-api/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	zlog := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer zlog.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	clientOptions := options.Client().ApplyURI(cfg.MongoURI).SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		zlog.Fatal("mongodb connection failed", zap.Error(err))
	}

	app := server.New(cfg, client, zlog)
	if err := app.Run(); err != nil {
		zlog.Fatal("server exited", zap.Error(err))
	}
}
