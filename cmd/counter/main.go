package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/anonto42/quartfeed/internal/router"
	"github.com/anonto42/quartfeed/pkg/config"
	"github.com/anonto42/quartfeed/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Must("error", "production").Fatal("Invalid configuration", zap.Error(err))
	}
	log := logger.Must(cfg.LogLevel, cfg.Env)
	defer func() { _ = log.Sync() }()

	db, err := config.InitDB(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize databases", zap.Error(err))
	}
	defer db.CloseDB()

	counterRepo, err := router.NewCounterRepository(cfg, db)
	if err != nil {
		log.Fatal("Failed to initialize counter store", zap.Error(err))
	}

	e, err := router.NewEcho(log)
	if err != nil {
		log.Fatal("Failed to create server", zap.Error(err))
	}
	router.SetupCounterRoutes(e, counterRepo)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := router.Serve(ctx, e, cfg.Addr(), log); err != nil {
		log.Error("Server stopped", zap.Error(err))
	}
}
