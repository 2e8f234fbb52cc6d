package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mcoot/music-roulette/internal/api"
	"github.com/mcoot/music-roulette/internal/factory"
	"github.com/mcoot/music-roulette/internal/middleware"
	redisstorage "github.com/mcoot/music-roulette/internal/storage/redis"
	"github.com/mcoot/music-roulette/internal/web/ws"
)

// How often idle SSE hubs and rate limiter entries are swept
const cleanupInterval = time.Minute

func main() {
	// A missing .env file is fine; real environment wins
	_ = godotenv.Load()

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(os.Getenv("LOG_LEVEL")),
	}))
	slog.SetDefault(logger)

	origins := splitList(getEnvOrDefault("CORS_ORIGIN", "http://localhost:5173"))

	socketCfg := ws.DefaultConfig()
	socketCfg.AllowedOrigins = origins

	// Build factory config from environment
	cfg := factory.Config{
		Logger:         logger,
		StorageType:    os.Getenv("STORAGE_TYPE"),
		PublishEvents:  os.Getenv("PUBLISH_EVENTS") == "true",
		SocketConfig:   socketCfg,
		RuntimeMetrics: true,
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
		if ttl := os.Getenv("ROOM_TTL"); ttl != "" {
			d, err := time.ParseDuration(ttl)
			if err != nil {
				logger.Error("invalid ROOM_TTL", slog.String("error", err.Error()))
				os.Exit(1)
			}
			redisCfg.RoomTTL = d
		}
		cfg.RedisConfig = &redisCfg
	}

	// Create application factory
	app, err := factory.New(cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("failed to close application", slog.String("error", err.Error()))
		}
	}()

	var limiter *middleware.RateLimiter
	if perMinute := getEnvInt(logger, "RATE_LIMIT_PER_MINUTE", 120); perMinute > 0 {
		limiter = middleware.NewRateLimiter(perMinute)
	}

	// Create API router
	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		RoomController: app.RoomController,
		HubManager:     app.HubManager,
		Notifier:       app.Notifier,
		SocketHandler:  app.SocketHub,
		Metrics:        app.Metrics,
		AllowedOrigins: origins,
		RateLimiter:    limiter,
	})

	// Create server
	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = os.Getenv("HOST")
	serverConfig.Port = getEnvInt(logger, "PORT", 4000)
	server := api.NewServer(router, serverConfig, logger)

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

	go runCleanup(ctx, app, limiter)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", storageName(cfg.StorageType)))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		// Streams and sockets never finish on their own
		app.HubManager.Close()
		app.SocketHub.CloseAll()
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}

// runCleanup periodically drops idle SSE hubs and rate limiter entries
func runCleanup(ctx context.Context, app *factory.App, limiter *middleware.RateLimiter) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			app.HubManager.CleanupEmptyHubs()
			if limiter != nil {
				limiter.Prune()
			}
		}
	}
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(logger *slog.Logger, key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		logger.Warn("ignoring invalid integer setting",
			slog.String("key", key),
			slog.String("value", val))
		return defaultVal
	}
	return n
}

func storageName(t string) string {
	if t == "" {
		return factory.StorageTypeMemory
	}
	return t
}
