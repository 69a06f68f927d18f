package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tonecheck-backend/internal/config"
	"tonecheck-backend/internal/database"
	"tonecheck-backend/internal/handlers"
	"tonecheck-backend/internal/logging"
	"tonecheck-backend/internal/middleware"
	"tonecheck-backend/internal/router"
	"tonecheck-backend/internal/services"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogVerbose, cfg.Env)
	log.Info("Starting Email Tone Checker relay")

	// ──── Step 2: Initialize Gemini Client ────
	toneService, err := services.NewToneService(cfg.GeminiAPIKey, cfg.GeminiModel, log)
	if err != nil {
		log.Fatalf("Gemini client initialization failed: %v", err)
	}
	defer toneService.Close()
	log.WithField("model", cfg.GeminiModel).Info("Gemini client initialized")

	// ──── Step 3: Rate Limiter ────
	var limiter middleware.Limiter
	switch {
	case cfg.RateLimitPerMinute <= 0:
		log.Info("Rate limiting disabled")
	case cfg.RedisURL != "":
		redisClient, err := database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Redis connection failed: %v", err)
		}
		defer redisClient.Close()
		limiter = middleware.NewRedisLimiter(redisClient, cfg.RateLimitPerMinute, time.Minute)
		log.WithField("per_minute", cfg.RateLimitPerMinute).Info("Redis rate limiter enabled")
	default:
		memLimiter := middleware.NewMemoryLimiter(cfg.RateLimitPerMinute, time.Minute)
		defer memLimiter.Stop()
		limiter = memLimiter
		log.WithField("per_minute", cfg.RateLimitPerMinute).Info("In-memory rate limiter enabled")
	}

	// ──── Step 4: Start HTTP Server ────
	analyzeHandler := handlers.NewAnalyzeHandler(toneService, log)
	r := router.New(analyzeHandler, limiter, cfg.RelayPath, log)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("Shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Infof("Relay ready on http://localhost:%s%s", cfg.Port, cfg.RelayPath)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
