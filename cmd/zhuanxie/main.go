// main.go
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/izzddalfk/zhuanxie/internal/transcriber/adapters/audiostore"
	"github.com/izzddalfk/zhuanxie/internal/transcriber/adapters/catalog"
	"github.com/izzddalfk/zhuanxie/internal/transcriber/adapters/metricscollector"
	"github.com/izzddalfk/zhuanxie/internal/transcriber/adapters/ratelimiter"
	"github.com/izzddalfk/zhuanxie/internal/transcriber/adapters/recognizer"
	"github.com/izzddalfk/zhuanxie/internal/transcriber/config"
	"github.com/izzddalfk/zhuanxie/internal/transcriber/core"
	"github.com/izzddalfk/zhuanxie/internal/transcriber/presentation/rest"
)

func main() {
	// Setup context
	ctx := context.Background()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup logger
	logger := setupLogger(cfg.ApplicationConfig.LogLevel)

	// Initialize dependencies
	deps, err := initializeDependencies(cfg.ApplicationConfig, logger)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to initialize dependencies", "error", err)
		os.Exit(1)
	}

	// Start server (this blocks until shutdown)
	err = run(ctx, cfg, deps, logger)
	deps.Cleanup(ctx, logger)
	if err != nil {
		logger.ErrorContext(ctx, "Server error", "error", err)
		os.Exit(1)
	}

	logger.InfoContext(ctx, "Application shutdown completed")
}

// run builds the service and the HTTP server and serves until shutdown.
// The caller owns deps and cleans them up whatever run returns.
func run(ctx context.Context, cfg *config.Configs, deps *Dependencies, logger *slog.Logger) error {
	service, err := core.NewService(core.ServiceConfig{
		LiveRecognizer:     deps.LiveRecognizer,
		FallbackRecognizer: deps.FallbackRecognizer,
		AudioStore:         deps.AudioStore,
		Catalog:            deps.Catalog,
		MetricsCollector:   deps.MetricsCollector,
		Logger:             logger,
		DefaultLanguage:    cfg.ApplicationConfig.DefaultLanguage,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize transcription service: %w", err)
	}
	service.CheckCapability(ctx)

	// Throttle upload and produce per client
	var limiter core.RateLimiter
	if cfg.ServerConfig.RateLimitPerMinute > 0 {
		rl := ratelimiter.NewRateLimiter(cfg.ServerConfig.RateLimitPerMinute, logger)
		defer rl.Close()
		limiter = rl
	}

	httpServer, err := rest.NewServer(rest.ServerConfig{
		TranscriptionService: service,
		RunStats:             deps.MetricsCollector,
		RateLimiter:          limiter,
		Logger:               logger,
		Addr:                 cfg.ServerConfig.Address(),
		ReadTimeout:          cfg.ServerConfig.ReadTimeoutDuration(),
		WriteTimeout:         cfg.ServerConfig.WriteTimeoutDuration(),
	})
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	logger.InfoContext(ctx, "Starting transcription service",
		"version", core.AppVersion,
		"port", cfg.ServerConfig.Port,
		"data_dir", cfg.ApplicationConfig.DataDir,
	)

	return httpServer.Start(ctx)
}

// Dependencies holds all initialized dependencies
type Dependencies struct {
	LiveRecognizer     core.Recognizer
	FallbackRecognizer core.Recognizer
	AudioStore         *audiostore.LocalStore
	Catalog            *catalog.Catalog
	MetricsCollector   *metricscollector.MetricsCollector
}

// Cleanup removes stored audio and closes the metrics database. Missing
// dependencies are skipped so a partial initialization can be cleaned up.
func (d *Dependencies) Cleanup(ctx context.Context, logger *slog.Logger) {
	if d.AudioStore != nil {
		if err := d.AudioStore.Close(); err != nil {
			logger.WarnContext(ctx, "Failed to clean up audio store", "error", err)
		}
	}
	if d.MetricsCollector != nil {
		if err := d.MetricsCollector.Close(); err != nil {
			logger.WarnContext(ctx, "Failed to close metrics collector", "error", err)
		}
	}
}

// setupLogger creates and configures the logger
func setupLogger(logLevel string) *slog.Logger {
	var level slog.Level
	switch logLevel {
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	// Use JSON handler
	logger := slog.New(slog.NewJSONHandler(os.Stdout, opts))
	slog.SetDefault(logger)

	return logger
}

// initializeDependencies initializes all external dependencies
func initializeDependencies(cfg config.ApplicationConfig, logger *slog.Logger) (*Dependencies, error) {
	languageCatalog, err := catalog.LoadCatalog(cfg.CatalogPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	deps := &Dependencies{
		FallbackRecognizer: recognizer.NewDemoRecognizer(languageCatalog.DemoSentences(), cfg.DemoDelayDuration()),
		Catalog:            languageCatalog,
	}

	deps.AudioStore, err = audiostore.NewLocalStore(audiostore.LocalStoreConfig{
		BasePath:    cfg.DataDir,
		MaxFileSize: core.MaxAudioFileSize,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audio store: %w", err)
	}

	deps.MetricsCollector, err = metricscollector.NewMetricsCollector(cfg.MetricsDBPath, logger)
	if err != nil {
		deps.Cleanup(context.Background(), logger)
		return nil, fmt.Errorf("failed to initialize metrics collector: %w", err)
	}

	// live recognition is only attempted when an executable is configured
	if cfg.RecognizerCommand != "" {
		live, err := recognizer.NewCommandRecognizer(recognizer.CommandRecognizerConfig{
			ExecutablePath: cfg.RecognizerCommand,
			DefaultModel:   cfg.DefaultModel,
			Timeout:        cfg.RecognizerTimeoutDuration(),
			Logger:         logger,
		})
		if err != nil {
			deps.Cleanup(context.Background(), logger)
			return nil, fmt.Errorf("failed to initialize recognizer: %w", err)
		}
		deps.LiveRecognizer = live
	}

	return deps, nil
}
