package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/anonto42/quartfeed/internal/cache"
	"github.com/anonto42/quartfeed/internal/router"
	"github.com/anonto42/quartfeed/pkg/config"
	"github.com/anonto42/quartfeed/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Must("error", "production").Fatal("Invalid configuration", zap.Error(err))
	}

	log := logger.Must(cfg.LogLevel, cfg.Env)
	defer func() { _ = log.Sync() }()

	// Initialize database connections
	db, err := config.InitDB(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize databases", zap.Error(err))
	}
	defer db.CloseDB()

	// Session store: Redis when configured, in-process otherwise
	store, err := cache.New(cache.Config{
		RedisAddr:       cfg.RedisAddr,
		RedisPassword:   cfg.RedisPassword,
		RedisDB:         cfg.RedisDB,
		LocalGCInterval: cfg.CacheGCInterval,
	})
	if err != nil {
		log.Fatal("Failed to initialize session store", zap.Error(err))
	}
	defer store.Close()

	// Create Echo instance
	e, err := router.NewEcho(log)
	if err != nil {
		log.Fatal("Failed to create server", zap.Error(err))
	}

	// Setup routes and dependencies
	if err := router.SetupFeedRoutes(e, cfg, db.SQL, store, log); err != nil {
		log.Fatal("Failed to set up routes", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := router.Serve(ctx, e, cfg.Addr(), log); err != nil {
		log.Error("Server stopped", zap.Error(err))
	}
}
