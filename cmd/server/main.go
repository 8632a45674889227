package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/facturapro/facturapro/internal/auth"
	"github.com/facturapro/facturapro/internal/config"
	"github.com/facturapro/facturapro/internal/db"
	"github.com/facturapro/facturapro/internal/server"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	auth.SetSecret(cfg.SessionSecret)

	dbConn, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		logger.Error("failed to connect to database", "err", err)
		os.Exit(1)
	}

	if *migrateOnlyFlag {
		if err := migrateSchema(cfg, dbConn); err != nil {
			logger.Error("migration failed", "err", err)
			os.Exit(1)
		}
		logger.Info("migrations completed")
		return
	}
	if *seedOnlyFlag {
		if err := db.Seed(dbConn); err != nil {
			logger.Error("seeding failed", "err", err)
			os.Exit(1)
		}
		logger.Info("seeding completed")
		return
	}

	if cfg.Migrations {
		if err := db.RunSQLMigrations(cfg.DatabaseDSN); err != nil {
			logger.Error("migration failed", "err", err)
			os.Exit(1)
		}
	} else if err := db.AutoMigrate(dbConn); err != nil {
		logger.Error("automigrate failed", "err", err)
		os.Exit(1)
	}
	if cfg.SeedDemo {
		if err := db.Seed(dbConn); err != nil {
			logger.Error("seeding failed", "err", err)
			os.Exit(1)
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      server.New(dbConn, logger),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("error during shutdown", "err", err)
	}
	logger.Info("server stopped")
}

// migrateSchema applies SQL migrations when enabled, AutoMigrate otherwise.
func migrateSchema(cfg *config.Config, conn *gorm.DB) error {
	if cfg.Migrations {
		return db.RunSQLMigrations(cfg.DatabaseDSN)
	}
	return db.AutoMigrate(conn)
}
