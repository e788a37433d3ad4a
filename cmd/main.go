package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"yurcoinbot/internal/bot"
	"yurcoinbot/internal/catalog"
	"yurcoinbot/internal/config"
	"yurcoinbot/internal/cooldown"
	"yurcoinbot/internal/handlers"
	"yurcoinbot/internal/ledger"
	"yurcoinbot/internal/logger"
	"yurcoinbot/internal/metrics"
	"yurcoinbot/internal/service"
	"yurcoinbot/internal/storage"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	// Ensure data directory exists (./data by default)
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		zlog.Fatal("failed to create data dir", zap.String("dir", cfg.DataDir), zap.Error(err))
	}

	images := catalog.New(cfg.DataDir, config.ImageListFile)
	if n, err := images.Bootstrap(); err != nil {
		zlog.Warn("image manifest bootstrap failed", zap.Error(err))
	} else if n > 0 {
		zlog.Info("image manifest generated", zap.String("path", images.ManifestPath()), zap.Int("images", n))
	}

	zlog.Info("initializing journal", zap.String("path", cfg.DatabasePath))
	if err := storage.InitDB(cfg.DatabasePath); err != nil {
		zlog.Fatal("failed to initialize journal", zap.Error(err))
	}
	defer storage.CloseDB()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	balances := ledger.Load(cfg.Path(config.BalancesFile), zlog.Named("ledger"))
	draws := service.NewDrawService(
		cooldown.NewGuard(cooldown.DefaultWindow),
		service.NewSelector(images, nil),
		balances,
		zlog.Named("draws"),
	)
	draws.SetJournal(service.StorageJournal{})
	draws.SetMetrics(metrics.New(reg))

	// Prune old journal rows in the background
	journalWorker := service.NewJournalWorker(cfg.JournalRetention, service.DefaultPruneInterval)
	journalWorker.Start()
	defer journalWorker.Stop()

	b, err := bot.New(cfg.Token, draws)
	if err != nil {
		zlog.Fatal("failed to create bot", zap.Error(err))
	}
	go b.Start()
	defer b.Stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           handlers.NewRouter(balances, reg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		zlog.Info("server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		zlog.Warn("server shutdown failed", zap.Error(err))
	}
}
