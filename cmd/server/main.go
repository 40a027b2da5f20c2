package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"mailguard/internal/hooks"
	hookshandler "mailguard/internal/hooks/handler"
	"mailguard/internal/platform/config"
	"mailguard/internal/platform/httpserver"
	"mailguard/internal/platform/logger"
	"mailguard/internal/platform/metrics"
	"mailguard/internal/platform/postgres"
	"mailguard/internal/platform/redis"
	"mailguard/internal/reputation"
	reputationmetrics "mailguard/internal/reputation/metrics"
	"mailguard/internal/settings"
	settingshandler "mailguard/internal/settings/handler"
	"mailguard/internal/settings/store"
	httptransport "mailguard/internal/transport/http"
)

// main wires dependencies, exposes the HTTP router, and keeps the server
// lifecycle small. Business logic lives in the internal service packages.
func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Format, cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	if cfg.UsesDevAdminToken() {
		log.Warn("ADMIN_TOKEN not set, admin endpoints use the development token")
	}
	if cfg.HookSecret == "" {
		log.Warn("HOOK_SECRET not set, hook endpoints accept unauthenticated calls")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(reg)

	settingsStore, closer, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := closer.Close(); err != nil {
			log.Warn("failed to close settings backend", "error", err)
		}
	}()

	checker := reputation.New(
		reputation.WithBaseURL(cfg.Reputation.BaseURL),
		reputation.WithTimeout(cfg.Reputation.Timeout),
		reputation.WithLogger(log),
		reputation.WithMetrics(reputationmetrics.New(reg)),
	)
	settingsSvc := settings.New(settingsStore, checker, settings.WithLogger(log))
	guard, err := hooks.New(settingsSvc, checker,
		hooks.WithLogger(log),
		hooks.WithMetrics(appMetrics),
		hooks.WithBlockOnUnknown(cfg.Reputation.UnknownPolicy == config.UnknownPolicyBlock),
	)
	if err != nil {
		return err
	}

	router := httptransport.NewRouter(settingsSvc,
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		hookshandler.New(guard, cfg.HookSecret, log, appMetrics),
		settingshandler.New(settingsSvc, cfg.AdminToken, log, appMetrics),
	)
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting mailguard",
			"addr", cfg.Addr,
			"settings_backend", cfg.Settings.Backend,
			"unknown_error_policy", cfg.Reputation.UnknownPolicy,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// openStore returns the configured settings backend and whatever must be closed
// on shutdown.
func openStore(ctx context.Context, cfg config.Server, log *slog.Logger) (settings.Store, io.Closer, error) {
	switch cfg.Settings.Backend {
	case config.BackendPostgres:
		db, err := postgres.Open(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		pgStore := store.NewPostgres(db)
		if err := pgStore.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		log.Info("settings stored in postgres")
		return pgStore, db, nil
	case config.BackendRedis:
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		log.Info("settings stored in redis", "key", store.RedisKey)
		return store.NewRedis(client.Client), client, nil
	default:
		log.Warn("settings stored in memory, changes are lost on restart")
		return store.NewInMemory(), io.NopCloser(nil), nil
	}
}
