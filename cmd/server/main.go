package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/acadlabs/bibliometer/docs"
	"github.com/acadlabs/bibliometer/internal/analysis"
	"github.com/acadlabs/bibliometer/internal/api"
	"github.com/acadlabs/bibliometer/internal/auth"
	"github.com/acadlabs/bibliometer/internal/cache"
	"github.com/acadlabs/bibliometer/internal/config"
	"github.com/acadlabs/bibliometer/internal/database"
	"github.com/acadlabs/bibliometer/internal/monitoring"
	"github.com/acadlabs/bibliometer/internal/predictor"
	"github.com/acadlabs/bibliometer/internal/ratelimit"
)

// @title Bibliometer API
// @version 1.0
// @description Thesis quality analysis service.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger := monitoring.NewLogger(slog.LevelInfo)
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := database.NewDB(cfg.DataDir)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	repo := database.NewRepository(db)
	analyzer := analysis.NewAnalyzer(cfg.ModelColumns)
	mlClient := predictor.NewClient(cfg.MLServiceURL, cfg.ModelColumns)
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)

	metrics := monitoring.NewMetrics()
	responseCache := cache.NewCache(5 * time.Minute)

	redisClient := ratelimit.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer redisClient.Close()
	limiter := ratelimit.NewLimiter(redisClient, ratelimit.Config{
		AnalyzePerMinute: cfg.AnalyzePerMinute,
	})

	handler := api.NewHandler(cfg, repo, analyzer, mlClient, tokens, metrics, responseCache, limiter)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server listening", "port", cfg.Port, "ml_service", cfg.MLServiceURL != "")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Forced shutdown", "error", err)
	}
}
