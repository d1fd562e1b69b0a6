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

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/replayguard/internal/config"
	healthctrl "github.com/dropDatabas3/replayguard/internal/http/controllers/health"
	verifyctrl "github.com/dropDatabas3/replayguard/internal/http/controllers/verify"
	"github.com/dropDatabas3/replayguard/internal/http/router"
	"github.com/dropDatabas3/replayguard/internal/metrics"
	"github.com/dropDatabas3/replayguard/internal/observability/logger"
	"github.com/dropDatabas3/replayguard/internal/rate"
	"github.com/dropDatabas3/replayguard/internal/registry"
	"github.com/dropDatabas3/replayguard/internal/verify"
)

// version se sobreescribe en build: -ldflags "-X main.version=..."
var version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	// .env es opcional
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: "verifier",
		Version:     version,
	})
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Error("verifier stopped with error", logger.Err(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	log.Info("verifier stopped")
	_ = logger.Sync()
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.L()

	store, err := registry.New(registry.Config{
		Backend:         cfg.Registry.Backend,
		Window:          cfg.Verify.FreshnessWindow,
		Margin:          cfg.Registry.Margin,
		CleanupInterval: cfg.Registry.CleanupInterval,
	})
	if err != nil {
		return err
	}
	defer store.Close()

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	if err := metrics.RegisterRegistrySize(prometheus.DefaultRegisterer, store.Len); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	var limiter rate.Limiter
	if cfg.Rate.Enabled {
		l, closeLimiter, err := rate.New(rate.Config{
			Backend:     cfg.Rate.Backend,
			Limit:       cfg.Rate.Limit,
			Window:      cfg.Rate.Window,
			RedisAddr:   cfg.Rate.Redis.Addr,
			RedisDB:     cfg.Rate.Redis.DB,
			RedisPrefix: cfg.Rate.Redis.Prefix,
		})
		if err != nil {
			return err
		}
		defer func() { _ = closeLimiter() }()
		limiter = l
	}

	pipeline := verify.NewPipeline(store, verify.WithWindow(cfg.Verify.FreshnessWindow))

	handler := router.New(router.Deps{
		Verify:      verifyctrl.NewVerifyController(pipeline, cfg.Server.MaxBodyBytes),
		Health:      healthctrl.NewHealthController(store, limiter != nil, version),
		Metrics:     promhttp.Handler(),
		RateLimiter: limiter,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("verifier listening",
			logger.String("addr", cfg.Server.Addr),
			logger.String("registry", cfg.Registry.Backend),
			logger.String("freshness_window", cfg.Verify.FreshnessWindow.String()),
			logger.Any("rate_limit", cfg.Rate.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shCtx)
	})
	return g.Wait()
}
