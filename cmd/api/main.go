package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"unitalent/talent-center/internal/bootstrap"
	"unitalent/talent-center/internal/config"
	"unitalent/talent-center/internal/handlers"
	"unitalent/talent-center/internal/logger"
	"unitalent/talent-center/internal/secrets"
	"unitalent/talent-center/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zapLog, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer zapLog.Sync()
	zapLog.Info("✅ Config loaded successfully", zap.String("env", cfg.Server.Env))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c, err := bootstrap.New(ctx, cfg, zapLog, prometheus.DefaultRegisterer)
	if err != nil {
		zapLog.Fatal("❌ Failed to initialize services", zap.Error(err))
	}
	defer c.Close()

	adminKey, err := secrets.Load(secrets.Source{
		Name:     "ADMIN_API_KEY",
		Value:    cfg.Auth.AdminAPIKey,
		File:     cfg.Auth.AdminAPIKeyFile,
		Optional: true,
	})
	if err != nil {
		zapLog.Fatal("❌ Failed to load admin API key", zap.Error(err))
	}
	if adminKey == "" {
		zapLog.Warn("⚠️ ADMIN_API_KEY is not set, admin routes are disabled")
	}

	// Initialize worker
	var queue handlers.IndexQueue
	var worker services.IndexWorker
	if c.Indexer != nil {
		worker = services.NewIndexWorker(c.Students, c.Indexer, services.WorkerOptions{
			Concurrency:  cfg.Worker.Concurrency,
			QueueSize:    cfg.Worker.QueueSize,
			PollInterval: cfg.Worker.PollInterval,
		}, zapLog, c.Metrics)
		worker.Start(ctx)
		queue = worker
		zapLog.Info("✅ Index worker started", zap.Int("concurrency", cfg.Worker.Concurrency))
	}

	// Initialize Handlers
	app := handlers.NewApp(handlers.Deps{
		Score:         handlers.NewScoreHandler(c.Flow, c.Scorer),
		Students:      handlers.NewStudentHandler(c.Students, c.Scorer, c.Storage, queue, zapLog),
		Portfolio:     handlers.NewPortfolioHandler(c.Students, c.Portfolio, c.Scorer, c.Storage, c.PDF, queue, zapLog),
		Search:        handlers.NewSearchHandler(c.Search),
		Organizations: handlers.NewOrganizationHandler(c.Organizations),
		News:          handlers.NewNewsHandler(c.News),
		StudentOrgs:   handlers.NewStudentOrganizationHandler(c.StudentOrgs),
		AdminAPIKey:   adminKey,
		Gatherer:      prometheus.DefaultGatherer,
		BodyLimit:     handlers.BodyLimitFor(cfg.Storage.MaxFileSize),
		AccessLog:     true,
	})
	zapLog.Info("✅ Handlers initialized")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		zapLog.Info("🛑 Shutting down server...")
		cancel()
		if worker != nil {
			worker.Stop()
		}
		if err := app.Shutdown(); err != nil {
			zapLog.Error("❌ Server forced to shutdown", zap.Error(err))
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	zapLog.Info("🚀 Server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		zapLog.Fatal("❌ Failed to start server", zap.Error(err))
	}
}
