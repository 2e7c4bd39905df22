// Package main is the entrypoint for the scanlink API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"

	"github.com/scanlink/scanlink/internal/cache"
	"github.com/scanlink/scanlink/internal/config"
	"github.com/scanlink/scanlink/internal/handler"
	"github.com/scanlink/scanlink/internal/metrics"
	"github.com/scanlink/scanlink/internal/registry"
	"github.com/scanlink/scanlink/internal/repository"
	"github.com/scanlink/scanlink/internal/scanlog"
	"github.com/scanlink/scanlink/internal/server"
	"github.com/scanlink/scanlink/internal/service"
)

func main() {
	ctx := context.Background()

	// Local development convenience; production sets real env vars.
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	var cacheClient *cache.Cache
	if cfg.RedisURL != "" {
		cacheClient, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			os.Exit(1)
		}
		defer cacheClient.Close()
		logger.Info("connected to Redis")
	} else {
		logger.Info("resolution cache disabled")
	}

	metricsRecorder := metrics.NewInMemory()
	reg := registry.New(repo, logger)
	scans := scanlog.New(repo, logger, metricsRecorder, cfg.ScanLogTimeout)

	creationService := service.NewCreationService(reg, cacheClient, cfg.BaseURL, logger, metricsRecorder)
	resolutionService := service.NewResolutionService(reg, cacheClient, scans, logger, metricsRecorder)

	var cacheChecker handler.HealthChecker
	if cacheClient != nil {
		cacheChecker = cacheClient
	}

	router := handler.NewRouter(handler.RouterConfig{
		Create:      handler.NewCreateHandler(creationService, logger),
		Manage:      handler.NewManageHandler(creationService, logger),
		Resolve:     handler.NewResolveHandler(resolutionService, logger),
		Health:      handler.NewHealthHandler(repo, cacheChecker),
		Metrics:     handler.NewMetricsHandler(metricsRecorder),
		Logger:      logger,
		MaxBodySize: cfg.MaxRequestBodySize,
	})

	srv := server.New(
		router,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	// Give in-flight scan writes a chance to land before exit.
	srv.OnShutdown("scanlog", scans.Drain)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"base_url", cfg.BaseURL,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
