package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"bookreel/internal/config"
	"bookreel/internal/logger"
	"bookreel/internal/pipeline"
	"bookreel/internal/render"
	"bookreel/internal/script"
	"bookreel/internal/stock"
	"bookreel/internal/types"
	"bookreel/internal/voice"
)

// Runs the full render path once from flags, without the HTTP server.
func main() {
	title := flag.String("title", "", "book or topic title (required)")
	description := flag.String("description", "", "one or two sentences on the angle")
	tone := flag.String("tone", string(types.ToneMotivational), "Motivational, Emotional, Educational, Aggressive or Calm")
	duration := flag.Int("duration", 30, "target length in seconds: 30, 45 or 60")
	flag.Parse()

	if *title == "" {
		flag.Usage()
		os.Exit(2)
	}

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

	videos := pipeline.New(cfg,
		script.New(cfg, zl),
		voice.New(cfg, zl),
		stock.New(cfg, zl),
		render.New(cfg, zl),
		zl)

	brief := types.GenerationRequest{
		Title:       *title,
		Description: *description,
		Tone:        types.Tone(*tone),
		Duration:    *duration,
	}

	result, err := videos.GenerateVideo(context.Background(), brief)
	if err != nil {
		var failure *pipeline.Failure
		if errors.As(err, &failure) && failure.Suggestion != "" {
			zl.Error("run failed",
				zap.String("step", failure.Step),
				zap.String("code", failure.Code),
				zap.String("suggestion", failure.Suggestion))
		}
		zl.Fatal("video generation failed", zap.Error(err))
	}

	zl.Info("video ready",
		zap.String("job_id", result.JobID),
		zap.String("video", result.Artifact.Path),
		zap.String("thumbnail", result.Artifact.ThumbnailPath),
		zap.Float64("duration_sec", result.Artifact.DurationSec),
		zap.Int64("size_bytes", result.Artifact.SizeBytes))
}
