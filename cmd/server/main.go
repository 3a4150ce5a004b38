// Package main is the entrypoint for the NutriScope API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sagarpatil/nutriscope/internal/ai"
	"github.com/sagarpatil/nutriscope/internal/analyzer"
	"github.com/sagarpatil/nutriscope/internal/api"
	"github.com/sagarpatil/nutriscope/internal/api/handler"
	mw "github.com/sagarpatil/nutriscope/internal/api/middleware"
	"github.com/sagarpatil/nutriscope/internal/cache"
	"github.com/sagarpatil/nutriscope/internal/config"
	"github.com/sagarpatil/nutriscope/internal/contract"
	"github.com/sagarpatil/nutriscope/internal/dispatch"
	"github.com/sagarpatil/nutriscope/internal/nutrients"
	"github.com/sagarpatil/nutriscope/internal/queue"
	"github.com/sagarpatil/nutriscope/internal/store"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	// 1. Load config, failing fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.Info("config loaded", "ai_provider", cfg.AI.Provider, "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to the database. A missing or unreachable database is not
	// fatal: the failover store keeps the service answering from memory.
	var primary store.Store
	if cfg.Database.URL == "" {
		logger.Warn("DATABASE_URL not set, running on the in-memory store only")
	} else {
		pool, err := store.Connect(ctx, cfg.Database)
		if err != nil {
			logger.Warn("database unreachable, running on the in-memory store only", "error", err)
		} else {
			defer pool.Close()
			if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}
			logger.Info("database connected, migrations applied")
			primary = store.NewPostgresStore(pool)
		}
	}
	jobStore := store.NewFailoverStore(primary, store.NewMemoryStore(), logger)

	// 3. Create the Redis cache. Optional as well: without it the cache is
	// a no-op and rate limiting fails open.
	var jobCache cache.Cache = cache.NewNoopCache()
	var cachePinger handler.Pinger
	if cfg.Redis.URL == "" {
		logger.Warn("REDIS_URL not set, caching and rate limiting disabled")
	} else {
		redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("create redis cache: %w", err)
		}
		defer redisCache.Close()
		if err := redisCache.Ping(ctx); err != nil {
			logger.Warn("redis unreachable, caching and rate limiting disabled", "error", err)
		} else {
			logger.Info("redis connected")
			jobCache = redisCache
			cachePinger = redisCache
		}
	}

	// 4. Create the AI provider and the contract engine around it
	provider, err := ai.NewProvider(cfg.AI)
	if err != nil {
		return fmt.Errorf("create AI provider: %w", err)
	}
	logger.Info("AI provider initialized", "provider", provider.Name())

	catalog, err := nutrients.Load()
	if err != nil {
		return fmt.Errorf("load nutrient catalog: %w", err)
	}
	validator := contract.NewValidator(catalog)
	engine := contract.NewEngine(validator, contract.NewRepairer(cfg.Contract.MaxDropBytes), logger)
	analysis := analyzer.New(provider, engine, validator, catalog, cfg.AI.CompletionTimeout, logger)

	// 5. Wire the job pipeline: dispatcher, queue workers, inline fallback
	dispatcher := dispatch.New(jobStore, analysis, logger)
	inline := queue.NewInlineRunner(dispatcher, logger)

	var enqueuer queue.Enqueuer = inline
	if cfg.Redis.URL != "" {
		q, err := queue.New(cfg.Redis.URL, cfg.Jobs.Concurrency, dispatcher, logger)
		if err != nil {
			return fmt.Errorf("create queue: %w", err)
		}
		q.Start()
		defer q.Shutdown()
		logger.Info("queue workers started", "concurrency", cfg.Jobs.Concurrency)

		if cfg.Jobs.InlineFallback {
			enqueuer = queue.NewFailoverEnqueuer(q, inline, logger)
		} else {
			enqueuer = q
		}
	} else {
		logger.Warn("no queue configured, jobs run inline")
	}

	// 6. Build router with dependencies
	deps := api.Dependencies{
		Logger:    logger,
		RateLimit: mw.NewRateLimit(jobCache, cfg.API.RateLimitPerMinute),

		HealthHandler: handler.NewHealthHandler(storePinger(primary), cachePinger, handler.HealthInfo{
			Provider:       provider.Name(),
			CatalogVersion: catalog.Version,
		}),
		AnalyzeFoodHandler: handler.NewAnalyzeFoodHandler(analysis, jobCache, logger),
		CreateJobHandler:   handler.NewCreateJobHandler(jobStore, enqueuer, logger),
		GetJobHandler:      handler.NewGetJobHandler(jobStore, jobCache, logger),
		ListJobsHandler:    handler.NewListJobsHandler(jobStore, logger),
	}

	router := api.NewRouter(deps)

	// 7. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}

// storePinger hides a nil primary from the health handler, which treats a nil
// Pinger as a disabled component.
func storePinger(s store.Store) handler.Pinger {
	if s == nil {
		return nil
	}
	return s
}
