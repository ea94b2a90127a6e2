package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/pennywise-app/gateguard/pkg/common"
	"github.com/pennywise-app/gateguard/pkg/config"
	"github.com/pennywise-app/gateguard/pkg/guards"
	"github.com/pennywise-app/gateguard/pkg/guards/contenttype"
	"github.com/pennywise-app/gateguard/pkg/guards/ratelimit"
	"github.com/pennywise-app/gateguard/pkg/guards/schema"
	"github.com/pennywise-app/gateguard/pkg/guards/sizelimit"
	infraLogger "github.com/pennywise-app/gateguard/pkg/infra/logger"
	"github.com/pennywise-app/gateguard/pkg/middleware"
	"github.com/pennywise-app/gateguard/pkg/server"
	"github.com/pennywise-app/gateguard/pkg/types"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	logger := infraLogger.NewLogger()

	if err := config.Load("./config"); err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	cfg := config.GetConfig()

	store, err := buildStore(cfg)
	if err != nil {
		logger.Fatalf("failed to initialize rate limit store: %v", err)
	}

	sweepInterval, err := time.ParseDuration(cfg.RateLimit.SweepInterval)
	if err != nil {
		logger.Fatalf("invalid sweep interval: %v", err)
	}
	sweeper := ratelimit.NewSweeper(store, sweepInterval, logger)
	sweeper.Start()

	srv := server.New(cfg, logger)
	srv.Router.Use(middleware.NewPanicRecoverMiddleware(logger).Middleware())
	srv.Router.Use(middleware.NewRequestIDMiddleware(logger).Middleware())

	if err := registerRoutes(srv.Router, cfg, store, logger); err != nil {
		logger.Fatalf("failed to register routes: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(srv.Run)
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		sweeper.Stop()
		return srv.Shutdown()
	})

	if err := g.Wait(); err != nil {
		logger.WithError(err).Error("server exited with error")
	}
}

func buildStore(cfg *config.Config) (ratelimit.Store, error) {
	if cfg.RateLimit.Store != "redis" {
		return ratelimit.NewMemoryStore(nil), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return ratelimit.NewRedisStore(client, nil), nil
}

// registerRoutes wires the admission chains in front of the finance API
// handlers: boundary checks first, then the rate limiter, then schema
// validation, so malformed requests never consume quota and over-quota
// callers never trigger parsing.
func registerRoutes(app *fiber.App, cfg *config.Config, store ratelimit.Store, logger *logrus.Logger) error {
	env := cfg.Server.Environment

	boundary := func(c *guards.Chain) error {
		if err := c.Use(sizelimit.NewSizeLimitGuard(logger), types.GuardConfig{
			Enabled: true,
			Settings: map[string]interface{}{
				"max_bytes": cfg.Guards.MaxBodyBytes,
			},
		}); err != nil {
			return err
		}
		return c.Use(contenttype.NewContentTypeGuard(logger), types.GuardConfig{
			Enabled: true,
			Settings: map[string]interface{}{
				"allowed_types": cfg.Guards.AllowedContentTypes,
			},
		})
	}

	limiter := func(c *guards.Chain, tier string) error {
		return c.Use(ratelimit.NewRateLimitGuard(store, env, logger, nil), types.GuardConfig{
			Enabled:  true,
			Settings: tierSettings(tier, cfg),
		})
	}

	// Auth-like endpoint: strict tier, body schema.
	loginChain := guards.NewChain(logger)
	if err := boundary(loginChain); err != nil {
		return err
	}
	if err := limiter(loginChain, "strict"); err != nil {
		return err
	}
	if err := loginChain.Use(
		schema.NewBodyGuard(func() interface{} { return &types.LoginRequest{} }, logger),
		types.GuardConfig{Enabled: true},
	); err != nil {
		return err
	}
	app.Post("/api/auth/login",
		middleware.NewAdmissionMiddleware(loginChain, logger).Middleware(),
		acceptedHandler(common.ValidatedBodyKey),
	)

	// Write endpoints: standard tier.
	incomeChain := guards.NewChain(logger)
	if err := boundary(incomeChain); err != nil {
		return err
	}
	if err := limiter(incomeChain, "standard"); err != nil {
		return err
	}
	if err := incomeChain.Use(
		schema.NewBodyGuard(func() interface{} { return &types.CreateIncomeRequest{} }, logger),
		types.GuardConfig{Enabled: true},
	); err != nil {
		return err
	}
	app.Post("/api/incomes",
		middleware.NewAdmissionMiddleware(incomeChain, logger).Middleware(),
		acceptedHandler(common.ValidatedBodyKey),
	)

	billChain := guards.NewChain(logger)
	if err := boundary(billChain); err != nil {
		return err
	}
	if err := limiter(billChain, "standard"); err != nil {
		return err
	}
	if err := billChain.Use(
		schema.NewBodyGuard(func() interface{} { return &types.CreateBillRequest{} }, logger),
		types.GuardConfig{Enabled: true},
	); err != nil {
		return err
	}
	app.Post("/api/bills",
		middleware.NewAdmissionMiddleware(billChain, logger).Middleware(),
		acceptedHandler(common.ValidatedBodyKey),
	)

	// Read-heavy endpoint: lenient tier, query schema, no body checks.
	listChain := guards.NewChain(logger)
	if err := limiter(listChain, "lenient"); err != nil {
		return err
	}
	if err := listChain.Use(
		schema.NewQueryGuard(func() interface{} { return &types.ListQuery{} }, logger),
		types.GuardConfig{Enabled: true},
	); err != nil {
		return err
	}
	app.Get("/api/incomes",
		middleware.NewAdmissionMiddleware(listChain, logger).Middleware(),
		acceptedHandler(common.ValidatedQueryKey),
	)

	return nil
}

// tierSettings builds the limiter settings for a named tier, applying any
// per-tier overrides from configuration.
func tierSettings(tier string, cfg *config.Config) map[string]interface{} {
	settings := map[string]interface{}{
		"tier":                   tier,
		"bypass_loopback_in_dev": true,
	}
	if override, ok := cfg.RateLimit.Tiers[tier]; ok {
		settings["max_requests"] = override.MaxRequests
		settings["window"] = override.Window
	}
	return settings
}

// acceptedHandler stands in for the finance API's business handlers: it
// echoes the validated payload so the admission pipeline can be exercised
// end to end without the persistence layer.
func acceptedHandler(localsKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "accepted",
			"data":   c.Locals(localsKey),
		})
	}
}
