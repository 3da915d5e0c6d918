// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-chi/chi/v5"

	"github.com/buttuura/getcash/internal/admin"
	"github.com/buttuura/getcash/internal/auth"
	"github.com/buttuura/getcash/internal/config"
	"github.com/buttuura/getcash/internal/core"
	"github.com/buttuura/getcash/internal/health"
	"github.com/buttuura/getcash/internal/metrics"
	"github.com/buttuura/getcash/internal/middleware"
	"github.com/buttuura/getcash/internal/server"
	"github.com/buttuura/getcash/internal/task"
	"github.com/buttuura/getcash/internal/user"
	"github.com/buttuura/getcash/internal/wallet"
)

const (
	drainDelay     = 5 * time.Second
	connectTimeout = 30 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := connect(ctx, "database", func() (*core.Database, error) {
		return core.NewDatabase(ctx, cfg.Database)
	})
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if cfg.Database.AutoMigrate {
		if err := core.Migrate(ctx, db.DB); err != nil {
			return err
		}
		logger.Info("schema migrations applied")
	}

	redis, err := connect(ctx, "redis", func() (*core.Redis, error) {
		return core.NewRedis(ctx, cfg.Redis)
	})
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "HS256",
		"access_token_expire", cfg.JWT.AccessTokenExpire,
	)

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo)
	userHandler := user.NewHandler(userSvc)

	if err := userSvc.EnsureAdmin(ctx, cfg.Admin); err != nil {
		return err
	}

	blacklist := auth.NewRedisBlacklist(redis.Client, cfg.Redis.KeyPrefix)
	authSvc := auth.NewService(jwtManager, userSvc, blacklist)
	authHandler := auth.NewHandler(authSvc)

	taskRepo := task.NewRepository(db.DB)
	taskSvc := task.NewService(taskRepo)
	taskHandler := task.NewHandler(taskSvc)

	var appMetrics *metrics.Metrics
	var observer wallet.Observer
	if cfg.Metrics.Enabled {
		appMetrics = metrics.New(cfg.Metrics.Namespace)
		observer = appMetrics
	}

	walletRepo := wallet.NewRepository(db.DB)
	walletSvc := wallet.NewService(walletRepo, userSvc, taskSvc, cfg.Rewards, observer)
	walletHandler := wallet.NewHandler(walletSvc)

	adminSvc := admin.NewService(admin.NewRepository(db.DB))
	adminHandler := admin.NewHandler(admin.HandlerConfig{
		Service:    adminSvc,
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
	})

	healthHandler := health.NewHandler(health.Config{
		DB:          db,
		Redis:       redis,
		Counts:      adminSvc.MetricCounts,
		Environment: cfg.App.Environment,
		Version:     cfg.App.Version,
	})

	if appMetrics != nil {
		err := appMetrics.Register(
			metrics.NewEntityCollector(cfg.Metrics.Namespace, adminSvc.MetricCounts),
		)
		if err != nil {
			return err
		}
	}

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Tracing)
	router.Use(middleware.Logger(logger))
	if appMetrics != nil {
		router.Use(middleware.Metrics(appMetrics))
	}
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			KeyPrefix: redis.Key(),
			FailOpen:  true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))
	router.Use(middleware.MaxBody(cfg.Server.MaxBodyBytes))

	healthHandler.RegisterRoutes(router)

	authenticator := middleware.Authenticator(authSvc)
	adminOnly := middleware.RequireAdmin
	withdrawalLimit := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit:     middleware.PerMinute(cfg.RateLimit.WithdrawalsPerMin, 1),
		KeyFunc:   middleware.KeyByUserAndEndpoint,
		KeyPrefix: redis.Key(),
		FailOpen:  true,
	}).Handler

	router.Route("/api", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authenticator)

		userHandler.RegisterRoutes(r, authenticator)
		userHandler.RegisterAdminRoutes(r, authenticator, adminOnly)

		taskHandler.RegisterRoutes(r, authenticator)
		taskHandler.RegisterAdminRoutes(r, authenticator, adminOnly)

		walletHandler.RegisterRoutes(r, authenticator, withdrawalLimit)
		adminHandler.RegisterRoutes(r, authenticator, adminOnly)

		healthHandler.RegisterStatusRoute(r)
		if appMetrics != nil {
			r.Handle("/metrics", appMetrics.Handler())
		}
	})

	healthHandler.SetReady(true)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

// connect retries dial with exponential backoff until connectTimeout, so
// the API can start alongside its dependencies in compose.
func connect[T any](ctx context.Context, name string, dial func() (T, error)) (T, error) {
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = connectTimeout

	var out T
	err := backoff.RetryNotify(
		func() error {
			v, err := dial()
			if err != nil {
				return err
			}
			out = v
			return nil
		},
		backoff.WithContext(policy, ctx),
		func(err error, wait time.Duration) {
			slog.Warn("dependency not ready", "name", name, "retry_in", wait, "error", err)
		},
	)
	return out, err
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
