package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pawsense/internal/api"
	breedlookup "pawsense/internal/breeds/breed-lookup"
	"pawsense/internal/chat/generator"
	"pawsense/internal/chat/pipeline"
	referencecatalog "pawsense/internal/chat/reference-catalog"
	streamorchestrator "pawsense/internal/chat/stream-orchestrator"
	"pawsense/internal/common/config"
	"pawsense/internal/common/database"
	"pawsense/internal/common/logger"
	"pawsense/internal/common/observability"
	"pawsense/pkg/lexicon"
)

const serviceName = "pawsense-api"

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.NewWithOptions(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog).With(map[string]interface{}{
		"service": serviceName,
		"version": cfg.App.Version,
	})

	zapLog.Info("Starting PawSense API...", zap.String("environment", cfg.App.Environment))

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	spanProcessor, err := observability.SpanProcessorFor(cfg.Tracing.Exporter, log.With(map[string]interface{}{"component": "tracing"}))
	if err != nil {
		zapLog.Fatal("tracing setup failed", zap.Error(err))
	}
	obs := observability.New(serviceName,
		observability.WithSpanProcessor(spanProcessor),
		observability.WithSampleRatio(cfg.Tracing.SampleRatio),
	)
	defer obs.Shutdown()
	zapLog.Info("Tracing configured",
		zap.String("exporter", cfg.Tracing.Exporter),
		zap.Float64("sampleRatio", cfg.Tracing.SampleRatio),
	)

	lex, err := lexicon.Load(cfg.Lexicon.Path)
	if err != nil {
		zapLog.Fatal("lexicon load failed", zap.String("path", cfg.Lexicon.Path), zap.Error(err))
	}
	zapLog.Info("Lexicon loaded",
		zap.String("version", lex.Version),
		zap.Int("domainTerms", len(lex.Domain)),
		zap.Int("medicalTerms", len(lex.Medical)),
		zap.Int("trainingTerms", len(lex.Training)),
		zap.Int("emergencyTerms", len(lex.Emergency)),
	)

	// --- Generation backend, built once and shared by every request ---
	gen, genErr := generator.New(generator.Config{
		Provider:      cfg.Generation.Provider,
		APIKey:        cfg.Generation.APIKey,
		Model:         cfg.Generation.Model,
		BaseURL:       cfg.Generation.BaseURL,
		MaxTokens:     cfg.Generation.MaxTokens,
		HeaderTimeout: config.GetDuration(cfg.Generation.HeaderTimeout),
	})
	if genErr != nil {
		zapLog.Warn("generation backend unavailable, chat requests will fail until fixed",
			zap.String("provider", cfg.Generation.Provider),
			zap.Error(genErr),
		)
	} else {
		zapLog.Info("Generation backend ready", zap.String("provider", gen.Name()))
	}

	// --- Optional Redis cache for breed lookups ---
	var redis *database.RedisClient
	if cfg.Database.Redis.Enabled {
		ctx := context.Background()
		err = retryWithBackoff(func() error {
			var err error
			redis, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redis.Ping(ctx)
		}, 5, time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Warn("redis unavailable, breed lookups will not be cached", zap.Error(err))
			if redis != nil {
				_ = redis.Close()
			}
			redis = nil
		} else {
			defer redis.Close()
			zapLog.Info("Redis connected successfully")
		}
	}

	catalog := referencecatalog.New(lex)

	orchestrator := streamorchestrator.New(
		streamorchestrator.Config{
			MaxAttempts:    cfg.Generation.MaxAttempts,
			BaseDelay:      config.GetDuration(cfg.Generation.BaseDelay),
			MaxJitter:      config.GetDuration(cfg.Generation.MaxJitter),
			ReferenceCount: cfg.Generation.ReferenceCount,
		},
		streamorchestrator.Deps{
			Generator:     gen,
			InitErr:       genErr,
			Catalog:       catalog,
			Messages:      lex.Messages,
			Logger:        logger.Component(log, "stream-orchestrator"),
			Observability: obs,
		},
	)

	chatPipeline := pipeline.New(
		pipeline.Config{EmergencyReferenceCount: cfg.Generation.EmergencyReferenceCount},
		lex,
		orchestrator,
		logger.Component(log, "pipeline"),
		obs,
	)

	var cache breedlookup.Cache
	if redis != nil {
		cache = redis
	}
	breeds := breedlookup.NewClient(breedlookup.Config{
		BaseURL:  cfg.Breeds.BaseURL,
		APIKey:   cfg.Breeds.APIKey,
		Timeout:  config.GetDuration(cfg.Breeds.Timeout),
		CacheTTL: config.GetDuration(cfg.Breeds.CacheTTL),
	}, nil, cache, logger.Component(log, "breed-lookup"))

	checks := map[string]api.ReadinessCheck{
		"generation": func(ctx context.Context) error { return orchestrator.Ready() },
	}
	if redis != nil {
		checks["redis"] = redis.Ping
	}

	httpLog := logger.Component(log, "http")
	router := api.NewRouter(
		api.RouterConfig{APIPrefix: cfg.Server.APIPrefix, AllowedOrigins: cfg.Server.AllowedOrigins},
		api.NewChatHandler(chatPipeline, breeds, httpLog),
		api.NewHealthHandler(serviceName, cfg.App.Version, checks),
		httpLog,
	)

	// Streams can run for minutes, so only header reads are bounded.
	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: config.GetDuration(cfg.Server.ReadHeaderTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", srv.Addr), zap.String("apiPrefix", cfg.Server.APIPrefix))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining connections...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server shutdown failed", zap.Error(err))
	}

	zapLog.Info("PawSense API stopped")
}
