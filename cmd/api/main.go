// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/carterperez-dev/jeddrive/internal/admin"
	"github.com/carterperez-dev/jeddrive/internal/advisor"
	"github.com/carterperez-dev/jeddrive/internal/auth"
	"github.com/carterperez-dev/jeddrive/internal/config"
	"github.com/carterperez-dev/jeddrive/internal/core"
	"github.com/carterperez-dev/jeddrive/internal/coupon"
	"github.com/carterperez-dev/jeddrive/internal/domain"
	"github.com/carterperez-dev/jeddrive/internal/events"
	"github.com/carterperez-dev/jeddrive/internal/health"
	"github.com/carterperez-dev/jeddrive/internal/kv"
	"github.com/carterperez-dev/jeddrive/internal/middleware"
	"github.com/carterperez-dev/jeddrive/internal/notification"
	"github.com/carterperez-dev/jeddrive/internal/order"
	"github.com/carterperez-dev/jeddrive/internal/provider"
	"github.com/carterperez-dev/jeddrive/internal/server"
	"github.com/carterperez-dev/jeddrive/internal/settings"
	"github.com/carterperez-dev/jeddrive/internal/signup"
	"github.com/carterperez-dev/jeddrive/internal/store"
	"github.com/carterperez-dev/jeddrive/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	if _, err := os.Stat(*configPath); errors.Is(err, fs.ErrNotExist) {
		*configPath = ""
	}

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
		"store_backend", cfg.Store.Backend,
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

	var (
		db    *core.Database
		redis *core.Redis
	)

	if cfg.Store.Backend == config.BackendPostgres {
		db, err = core.NewDatabase(ctx, cfg.Database)
		if err != nil {
			return err
		}
		if err := kv.Migrate(db.DB); err != nil {
			return err
		}
		logger.Info("database connected",
			"max_open_conns", cfg.Database.MaxOpenConns,
			"max_idle_conns", cfg.Database.MaxIdleConns,
		)
	}

	if cfg.Redis.URL != "" {
		redis, err = core.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		logger.Info("redis connected",
			"pool_size", cfg.Redis.PoolSize,
		)
	}

	backend, err := openBackend(cfg, db, redis)
	if err != nil {
		return err
	}

	var seedHash string
	if cfg.Seed.Password != "" {
		seedHash, err = core.HashPassword(cfg.Seed.Password)
		if err != nil {
			return fmt.Errorf("hash seed password: %w", err)
		}
	}

	st, err := store.Open(ctx, backend, store.Options{
		Seed:         cfg.Store.Seed,
		PasswordHash: seedHash,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	if err := ensureSigningKeys(cfg); err != nil {
		return err
	}

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.GetKeyID(),
	)

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.RabbitMQ.URL != "" {
		rabbit, rabbitErr := events.NewRabbitPublisher(
			cfg.RabbitMQ.URL,
			cfg.RabbitMQ.Exchange,
			cfg.App.Name,
			logger,
		)
		if rabbitErr != nil {
			logger.Warn("event publishing disabled", "error", rabbitErr)
		} else {
			publisher = rabbit
		}
	}

	hub := notification.NewHub(logger)
	go hub.Run(ctx)
	st.Subscribe(hub.OnAction)

	notificationSvc := notification.NewService(st)

	userSvc := user.NewService(user.NewRepository(st))
	userHandler := user.NewHandler(userSvc)

	authSvc := auth.NewService(auth.NewRepository(backend), jwtManager, userSvc)
	authHandler := auth.NewHandler(authSvc)

	couponSvc := coupon.NewService(st, cfg.Coupons.EnforceLimits)
	couponHandler := coupon.NewHandler(couponSvc)

	providerSvc := provider.NewService(st, publisher, notificationSvc, provider.Options{
		CompletionFee:      cfg.Pricing.CompletionFee,
		SettleOnSync:       cfg.Pricing.SettleOnSync,
		HideOverLimit:      cfg.Catalog.HideOverLimit,
		DefaultCreditLimit: cfg.Pricing.CreditLimit(),
	}, logger)
	providerHandler := provider.NewHandler(providerSvc)

	orderSvc := order.NewService(st, couponSvc, publisher, notificationSvc, order.Options{
		Pricing: domain.PricingRules{
			PremiumDiscount: cfg.Pricing.PremiumDiscount,
			CommissionRate:  cfg.Pricing.CommissionRate,
		},
		HideOverLimit: cfg.Catalog.HideOverLimit,
	}, logger)
	orderHandler := order.NewHandler(orderSvc, providerSvc)

	signupSvc := signup.NewService(st, publisher, notificationSvc, cfg.Pricing.CreditLimit(), logger)
	signupHandler := signup.NewHandler(signupSvc)

	settingsSvc := settings.NewService(st)
	settingsHandler := settings.NewHandler(settingsSvc)

	advisorSvc, err := advisor.NewService(ctx, cfg.Advisor, settingsSvc, logger)
	if err != nil {
		return err
	}
	if !advisorSvc.Configured() {
		logger.Warn("advisor API key not set, replies will be fallbacks")
	}
	advisorHandler := advisor.NewHandler(advisorSvc)

	notificationHandler := notification.NewHandler(
		notificationSvc,
		hub,
		jwtManager,
		cfg.CORS.AllowedOrigins,
	)

	checks := []health.Check{{Name: "store", Checker: st}}
	if redis != nil {
		checks = append(checks, health.Check{Name: "redis", Checker: redis})
	}
	if db != nil {
		checks = append(checks, health.Check{Name: "database", Checker: db})
	}
	healthHandler := health.NewHandler(checks...)

	adminCfg := admin.HandlerConfig{
		BackendPing: st.Ping,
		LiveClients: hub.Clients,
	}
	if db != nil {
		adminCfg.DBStats = db.Stats
	}
	if redis != nil {
		adminCfg.RedisStats = redis.PoolStats
	}
	adminHandler := admin.NewHandler(admin.NewService(st, logger), adminCfg)

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(redis.ClientOrNil(), middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())

	tiered := middleware.TieredRateLimiter(redis.ClientOrNil(), middleware.DefaultTiers)
	verify := middleware.Authenticator(jwtManager)
	authenticator := func(next http.Handler) http.Handler {
		return verify(tiered(next))
	}
	optionalAuth := middleware.OptionalAuth(jwtManager)
	adminOnly := middleware.RequireAdmin
	providerOnly := middleware.RequireProvider

	advisorLimiter := middleware.NewRateLimiter(redis.ClientOrNil(), middleware.RateLimitConfig{
		Limit:    middleware.PerMinute(10, 3),
		KeyFunc:  middleware.KeyByUserAndEndpoint,
		FailOpen: true,
	}).Handler

	router.Route("/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authenticator)

		r.Post("/users", authHandler.Register)

		userHandler.RegisterRoutes(r, authenticator)
		userHandler.RegisterAdminRoutes(r, authenticator, adminOnly)

		providerHandler.RegisterRoutes(r, authenticator, providerOnly)
		providerHandler.RegisterAdminRoutes(r, authenticator, adminOnly)

		orderHandler.RegisterRoutes(r, authenticator, optionalAuth)
		orderHandler.RegisterAdminRoutes(r, authenticator, adminOnly)

		couponHandler.RegisterRoutes(r, authenticator, adminOnly)

		signupHandler.RegisterRoutes(r)
		signupHandler.RegisterAdminRoutes(r, authenticator, adminOnly)

		settingsHandler.RegisterRoutes(r, authenticator)
		settingsHandler.RegisterAdminRoutes(r, authenticator, adminOnly)

		notificationHandler.RegisterRoutes(r, authenticator, adminOnly)

		advisorHandler.RegisterRoutes(r, authenticator, advisorLimiter)

		adminHandler.RegisterRoutes(r, authenticator, adminOnly)
	})

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

	if err := publisher.Close(); err != nil {
		logger.Error("event publisher close error", "error", err)
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

func openBackend(cfg *config.Config, db *core.Database, redis *core.Redis) (kv.Store, error) {
	switch cfg.Store.Backend {
	case config.BackendRedis:
		if redis == nil {
			return nil, errors.New("redis store backend requires REDIS_URL")
		}
		return kv.NewRedisStore(redis.Client, cfg.Store.KeyPrefix), nil
	case config.BackendPostgres:
		return kv.NewPostgresStore(db.DB, cfg.Store.KeyPrefix), nil
	default:
		return kv.NewMemoryStore(), nil
	}
}

// ensureSigningKeys writes a fresh ES256 key pair in development when none
// exists yet.
func ensureSigningKeys(cfg *config.Config) error {
	if _, err := os.Stat(cfg.JWT.PrivateKeyPath); err == nil || !cfg.IsDevelopment() {
		return nil
	}

	slog.Warn("generating development signing keys",
		"private_key_path", cfg.JWT.PrivateKeyPath,
	)
	for _, path := range []string{cfg.JWT.PrivateKeyPath, cfg.JWT.PublicKeyPath} {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return fmt.Errorf("create key directory: %w", err)
		}
	}
	return auth.GenerateKeyPair(cfg.JWT.PrivateKeyPath, cfg.JWT.PublicKeyPath)
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
