package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"bookreel/internal/config"
	"bookreel/internal/export"
	"bookreel/internal/httpapi"
	"bookreel/internal/logger"
	"bookreel/internal/pipeline"
	"bookreel/internal/render"
	"bookreel/internal/script"
	"bookreel/internal/stock"
	"bookreel/internal/storyboard"
	"bookreel/internal/voice"
)

func main() {
	// Plain log until zap is up. The .env file is local dev only.
	_ = godotenv.Load()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zl, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogFormat})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zl.Sync()

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		zl.Fatal("create output dir", zap.String("dir", cfg.OutputDir), zap.Error(err))
	}

	scripts := script.New(cfg, zl)
	voices := voice.New(cfg, zl)
	assets := stock.New(cfg, zl)
	assembler := render.New(cfg, zl)
	videos := pipeline.New(cfg, scripts, voices, assets, assembler, zl)
	packages := export.New(storyboard.New(cfg, zl), zl)

	handler := httpapi.NewHandler(cfg, scripts, voices, videos, packages, zl)
	router := httpapi.NewRouter(handler, zl)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		zl.Info("http server listening",
			zap.String("addr", srv.Addr),
			zap.String("output_dir", cfg.OutputDir))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zl.Fatal("http server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zl.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zl.Fatal("server shutdown", zap.Error(err))
	}
	zl.Info("server stopped")
}
