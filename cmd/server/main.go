package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/netpong/netpong/internal/factory"
	"github.com/netpong/netpong/internal/server"
	"github.com/netpong/netpong/internal/services/leaderboard"
	redisstorage "github.com/netpong/netpong/internal/storage/redis"
)

const shutdownGrace = 30 * time.Second

func main() {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	passphrase := os.Getenv("NETPONG_PASSPHRASE")
	if passphrase == "" {
		logger.Error("NETPONG_PASSPHRASE is required")
		os.Exit(1)
	}

	// Build factory config from environment
	cfg := factory.Config{
		Passphrase:  passphrase,
		Logger:      logger,
		StorageType: os.Getenv("STORAGE_TYPE"),
	}

	// Configure Redis if storage type is redis
	if cfg.StorageType == factory.StorageTypeRedis {
		redisURL := os.Getenv("REDIS_URL")
		if redisURL == "" {
			logger.Error("REDIS_URL required when STORAGE_TYPE=redis")
			os.Exit(1)
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		cfg.RedisConfig = &redisCfg
	}

	app, err := factory.New(cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer app.Close()

	// The three listeners: auth and game channels over TCP, the
	// leaderboard over HTTP.
	authServer := server.NewTCP("auth", envOr("AUTH_ADDR", ":8081"), app.AuthHandler.HandleConn, logger)
	gameServer := server.NewTCP("game", envOr("GAME_ADDR", ":8080"), app.Matchmaker.HandleConn, logger)

	httpConfig := server.DefaultHTTPConfig()
	httpConfig.Addr = envOr("HTTP_ADDR", ":8082")
	httpServer := server.NewHTTP(
		leaderboard.NewRouter(app.LeaderboardService, logger),
		httpConfig,
		logger,
	)

	if err := authServer.Listen(); err != nil {
		logger.Error("auth listener failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := gameServer.Listen(); err != nil {
		logger.Error("game listener failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Sweep expired session tokens in the background
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				app.TokenService.CleanExpired()
			}
		}
	}()

	errCh := make(chan error, 3)
	go func() { errCh <- authServer.Serve(ctx) }()
	go func() { errCh <- gameServer.Serve(ctx) }()
	go func() { errCh <- httpServer.Start() }()

	logger.Info("server started",
		slog.String("auth_addr", authServer.Addr().String()),
		slog.String("game_addr", gameServer.Addr().String()),
		slog.String("http_addr", httpServer.Addr()),
	)

	// Wait for shutdown or the first listener error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", slog.String("error", err.Error()))
	}
	if err := gameServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("game shutdown error", slog.String("error", err.Error()))
	}
	if err := authServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("auth shutdown error", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
