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

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/suppliers-api/internal/apikey"
	"github.com/odyssey-erp/suppliers-api/internal/app"
	"github.com/odyssey-erp/suppliers-api/internal/i18n"
	"github.com/odyssey-erp/suppliers-api/internal/observability"
	"github.com/odyssey-erp/suppliers-api/internal/platform/cache"
	"github.com/odyssey-erp/suppliers-api/internal/platform/db"
	"github.com/odyssey-erp/suppliers-api/internal/suppliers"
	"github.com/odyssey-erp/suppliers-api/internal/suppliers/gormstore"
	"github.com/odyssey-erp/suppliers-api/jobs"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		ServiceName:  "suppliers-api",
		Environment:  cfg.AppEnv,
		Endpoint:     cfg.OTLPEndpoint,
		Insecure:     cfg.OTLPInsecure,
		SamplingRate: cfg.OTelSamplingRate,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("tracing shutdown", slog.Any("error", err))
		}
	}()

	messages, err := i18n.New(cfg.AppLocale)
	if err != nil {
		return err
	}
	auth, err := apikey.NewValidator(cfg.APIKey, cfg.APIKeyHash)
	if err != nil {
		return err
	}

	store, checks, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	logger.Info("supplier store ready", slog.String("driver", cfg.DBDriver))

	var metrics *observability.Metrics
	if cfg.MetricsEnabled {
		metrics = observability.NewMetrics()
	}

	params := suppliers.HandlerParams{
		Logger:   logger,
		Store:    store,
		Auth:     auth,
		Messages: messages,
		BasePath: cfg.APIBasePath,
	}
	if metrics != nil {
		params.Metrics = metrics
	}

	var jobHandler *jobs.Handler
	if cfg.QueueEnabled() {
		redisClient, err := cache.New(ctx, cfg.RedisAddr)
		if err != nil {
			return err
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
		checks = append(checks, app.ReadinessCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return cache.Ping(ctx, redisClient) },
		})

		redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
		client, err := jobs.NewClient(redisOpts)
		if err != nil {
			return err
		}
		defer func() {
			if err := client.Close(); err != nil {
				logger.Warn("asynq client close", slog.Any("error", err))
			}
		}()
		params.Events = client

		inspector := asynq.NewInspector(redisOpts)
		defer func() { _ = inspector.Close() }()
		jobHandler = jobs.NewHandler(inspector, logger)
	} else {
		logger.Info("REDIS_ADDR not set, supplier audit events are not queued")
	}

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		Suppliers:       suppliers.NewHandler(params),
		JobHandler:      jobHandler,
		Metrics:         metrics,
		ReadinessChecks: checks,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("base_path", cfg.APIBasePath))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// openStore connects the configured backend. The native pgx store serves
// "postgres"; every other driver goes through gorm.
func openStore(ctx context.Context, cfg *app.Config) (suppliers.Store, []app.ReadinessCheck, func(), error) {
	if cfg.DBDriver == db.DriverPostgres {
		pool, err := db.New(ctx, cfg.DBDSN, int32(cfg.DBMaxConns))
		if err != nil {
			return nil, nil, nil, err
		}
		checks := []app.ReadinessCheck{{Name: "database", Check: pool.Ping}}
		return suppliers.NewPGStore(pool), checks, pool.Close, nil
	}

	gdb, err := db.OpenGorm(ctx, cfg.DBDriver, cfg.DBDSN, cfg.DBMaxConns)
	if err != nil {
		return nil, nil, nil, err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, nil, nil, err
	}
	if db.AutoMigrates(cfg.DBDriver) {
		if err := gormstore.Migrate(ctx, gdb); err != nil {
			_ = sqlDB.Close()
			return nil, nil, nil, err
		}
	}
	checks := []app.ReadinessCheck{{Name: "database", Check: sqlDB.PingContext}}
	return gormstore.New(gdb), checks, func() { _ = sqlDB.Close() }, nil
}
