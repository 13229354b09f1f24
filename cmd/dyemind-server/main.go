// cmd/dyemind-server/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"dyemind/internal/common/cache"
	"dyemind/internal/common/config"
	"dyemind/internal/common/logger"
	"dyemind/internal/common/observability"
	"dyemind/internal/inference"
	"dyemind/internal/lookup/pubchem"
	"dyemind/internal/lookup/pubmed"
	"dyemind/internal/lookup/wikipedia"
	"dyemind/internal/orchestrator"
	"dyemind/internal/report/assembler"
	"dyemind/internal/report/generator"
	"dyemind/internal/server"
	"dyemind/pkg/catalog"
)

// retryWithBackoff retries an operation with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err = operation(); err == nil {
			if attempt > 1 {
				log.Info(fmt.Sprintf("%s succeeded after retry", operationName),
					zap.Int("attempt", attempt))
			}
			return nil
		}

		log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
			zap.Int("attempt", attempt),
			zap.Int("maxRetries", maxRetries),
			zap.Duration("nextRetryIn", delay),
			zap.Error(err))

		if attempt < maxRetries {
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	// Bootstrap logger until the configured one is available
	zapLog := logger.New("info", "console")
	defer func() {
		_ = zapLog.Sync()
	}()

	zapLog.Info("Starting DyeMind server...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("Failed to load configuration", zap.Error(err))
	}

	if cfg.Logging.Level != "info" || cfg.Logging.Format != "console" {
		_ = zapLog.Sync()
		zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	log := logger.NewZapAdapter(zapLog)

	// Observability
	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	// Lookup cache
	ctx := context.Background()

	var cacheStore cache.Cache
	switch cfg.Cache.Backend {
	case "redis":
		var redisCache *cache.Redis
		err = retryWithBackoff(func() error {
			var rerr error
			redisCache, rerr = cache.NewRedis(cfg.Cache.Redis)
			if rerr != nil {
				return rerr
			}
			return redisCache.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("Redis unavailable after retries", zap.Error(err))
		}
		cacheStore = redisCache
		zapLog.Info("Redis cache connected", zap.String("address", cfg.Cache.Redis.Address))
	case "memory":
		cacheStore = cache.NewMemory()
		zapLog.Info("In-memory lookup cache initialized")
	default:
		zapLog.Info("Lookup cache disabled")
	}
	if cacheStore != nil {
		defer cacheStore.Close()
	}

	// Source lookup clients
	chemistry := pubchem.NewClient(&pubchem.Config{
		BaseURL:  cfg.Sources.PubChem.BaseURL,
		Timeout:  config.GetDuration(cfg.Sources.PubChem.Timeout),
		CacheTTL: config.GetDuration(cfg.Cache.TTL),
	}, cacheStore, &pubchemLoggerAdapter{log})

	literature := pubmed.NewClient(&pubmed.Config{
		BaseURL:    cfg.Sources.PubMed.BaseURL,
		Timeout:    config.GetDuration(cfg.Sources.PubMed.Timeout),
		MaxResults: cfg.Sources.PubMed.MaxResults,
		CacheTTL:   config.GetDuration(cfg.Cache.TTL),
	}, cacheStore, &pubmedLoggerAdapter{log})

	encyclopedia := wikipedia.NewClient(&wikipedia.Config{
		BaseURL:  cfg.Sources.Wikipedia.BaseURL,
		Timeout:  config.GetDuration(cfg.Sources.Wikipedia.Timeout),
		CacheTTL: config.GetDuration(cfg.Cache.TTL),
	}, cacheStore, &wikipediaLoggerAdapter{log})

	// Inference pipeline
	inferenceClient := inference.NewClient(&inference.Config{
		BaseURL:           cfg.Inference.BaseURL,
		Model:             cfg.Inference.Model,
		APIKey:            cfg.Inference.APIKey,
		Timeout:           config.GetDuration(cfg.Inference.Timeout),
		RequestsPerMinute: cfg.Inference.RequestsPerMinute,
		Burst:             cfg.Inference.Burst,
	}, &inferenceLoggerAdapter{log})

	reportGenerator := generator.NewGenerator(&generator.Config{
		MaxAttempts:  cfg.Inference.MaxAttempts,
		RetryDelay:   config.GetDuration(cfg.Inference.RetryDelay),
		MaxNewTokens: cfg.Inference.MaxNewTokens,
		Temperature:  cfg.Inference.Temperature,
	}, inferenceClient, &generatorLoggerAdapter{log})

	orch := orchestrator.NewOrchestrator(
		chemistry,
		literature,
		encyclopedia,
		reportGenerator,
		&assembler.Config{
			MaxAbstracts:     cfg.Report.MaxAbstracts,
			AbstractMaxChars: cfg.Report.AbstractMaxChars,
		},
		obs,
		&orchestratorLoggerAdapter{log},
	)

	// HTTP server
	sourceCatalog := catalog.Default()
	if path := os.Getenv("SOURCE_CATALOG_PATH"); path != "" {
		sourceCatalog, err = catalog.LoadCatalog(path)
		if err != nil {
			zapLog.Fatal("Failed to load source catalog", zap.Error(err), zap.String("path", path))
		}
		zapLog.Info("Source catalog loaded from file", zap.String("path", path))
	}

	apiHandler := server.NewHandler(orch, sourceCatalog, &serverLoggerAdapter{log})

	mux := http.NewServeMux()
	apiHandler.Register(mux)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status": "ready",
		})
	})

	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      mux,
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	zapLog.Info("DyeMind server started successfully",
		zap.String("environment", cfg.App.Environment),
		zap.String("model", cfg.Inference.Model))

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error during server shutdown", zap.Error(err))
	}

	zapLog.Info("DyeMind server stopped gracefully")
}

// Logger adapters for pipeline packages that declare their own Logger interfaces

type pubchemLoggerAdapter struct {
	logger.Logger
}

func (a *pubchemLoggerAdapter) With(fields map[string]interface{}) pubchem.Logger {
	return &pubchemLoggerAdapter{a.Logger.With(fields)}
}

type pubmedLoggerAdapter struct {
	logger.Logger
}

func (a *pubmedLoggerAdapter) With(fields map[string]interface{}) pubmed.Logger {
	return &pubmedLoggerAdapter{a.Logger.With(fields)}
}

type wikipediaLoggerAdapter struct {
	logger.Logger
}

func (a *wikipediaLoggerAdapter) With(fields map[string]interface{}) wikipedia.Logger {
	return &wikipediaLoggerAdapter{a.Logger.With(fields)}
}

type inferenceLoggerAdapter struct {
	logger.Logger
}

func (a *inferenceLoggerAdapter) With(fields map[string]interface{}) inference.Logger {
	return &inferenceLoggerAdapter{a.Logger.With(fields)}
}

type generatorLoggerAdapter struct {
	logger.Logger
}

func (a *generatorLoggerAdapter) With(fields map[string]interface{}) generator.Logger {
	return &generatorLoggerAdapter{a.Logger.With(fields)}
}

type orchestratorLoggerAdapter struct {
	logger.Logger
}

func (a *orchestratorLoggerAdapter) With(fields map[string]interface{}) orchestrator.Logger {
	return &orchestratorLoggerAdapter{a.Logger.With(fields)}
}

type serverLoggerAdapter struct {
	logger.Logger
}

func (a *serverLoggerAdapter) With(fields map[string]interface{}) server.Logger {
	return &serverLoggerAdapter{a.Logger.With(fields)}
}
