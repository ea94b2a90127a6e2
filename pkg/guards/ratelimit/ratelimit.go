package ratelimit

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"

	"github.com/pennywise-app/gateguard/pkg/common"
	"github.com/pennywise-app/gateguard/pkg/guards"
	"github.com/pennywise-app/gateguard/pkg/infra/prometheus"
	"github.com/pennywise-app/gateguard/pkg/types"
)

const GuardName = "rate_limiter"

// Policy is the immutable decision input of one limiter: a fixed window
// counter of MaxRequests per Window.
type Policy struct {
	MaxRequests         int
	Window              time.Duration
	StatusCode          int
	Message             string
	BypassLoopbackInDev bool
}

// Tier presets. All three run the same algorithm; they only differ in how
// much traffic a single key may produce per window.
func StrictPolicy() Policy {
	return Policy{
		MaxRequests: 10,
		Window:      15 * time.Minute,
		StatusCode:  http.StatusTooManyRequests,
		Message:     "Too many attempts, please try again later",
	}
}

func StandardPolicy() Policy {
	return Policy{
		MaxRequests: 100,
		Window:      15 * time.Minute,
		StatusCode:  http.StatusTooManyRequests,
		Message:     "Too many requests, please try again later",
	}
}

func LenientPolicy() Policy {
	return Policy{
		MaxRequests: 200,
		Window:      15 * time.Minute,
		StatusCode:  http.StatusTooManyRequests,
		Message:     "Too many requests, please try again later",
	}
}

// Config is the guard's settings block. Either name a tier or spell the
// policy out; explicit fields override the tier preset.
type Config struct {
	Tier                string `mapstructure:"tier"`
	MaxRequests         int    `mapstructure:"max_requests"`
	Window              string `mapstructure:"window"`
	StatusCode          int    `mapstructure:"status_code"`
	Message             string `mapstructure:"message"`
	BypassLoopbackInDev bool   `mapstructure:"bypass_loopback_in_dev"`
}

type Opts struct {
	TimeProvider func() time.Time
	KeyFunc      KeyFunc
}

type RateLimitGuard struct {
	store       Store
	environment string
	logger      *logrus.Logger
	nowFn       func() time.Time
	keyFn       KeyFunc
}

func NewRateLimitGuard(store Store, environment string, logger *logrus.Logger, opts *Opts) guards.Guard {
	nowFn := time.Now
	keyFn := KeyFunc(ClientKey)
	if opts != nil {
		if opts.TimeProvider != nil {
			nowFn = opts.TimeProvider
		}
		if opts.KeyFunc != nil {
			keyFn = opts.KeyFunc
		}
	}
	return &RateLimitGuard{
		store:       store,
		environment: environment,
		logger:      logger,
		nowFn:       nowFn,
		keyFn:       keyFn,
	}
}

func (g *RateLimitGuard) Name() string {
	return GuardName
}

func (g *RateLimitGuard) ValidateConfig(cfg types.GuardConfig) error {
	var config Config
	if err := mapstructure.Decode(cfg.Settings, &config); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	if _, err := policyFromConfig(config); err != nil {
		return err
	}
	return nil
}

func (g *RateLimitGuard) Execute(
	ctx context.Context,
	cfg types.GuardConfig,
	req *types.RequestContext,
) *types.GuardResult {
	var config Config
	if err := mapstructure.Decode(cfg.Settings, &config); err != nil {
		g.logger.WithError(err).Error("rate limiter config decode failed")
		return types.Block(http.StatusInternalServerError, map[string]interface{}{
			"error": "Internal validation error",
		})
	}
	policy, err := policyFromConfig(config)
	if err != nil {
		g.logger.WithError(err).Error("rate limiter config invalid")
		return types.Block(http.StatusInternalServerError, map[string]interface{}{
			"error": "Internal validation error",
		})
	}

	key := g.keyFn(req)

	// Local-testing escape hatch. Never applies outside development.
	if policy.BypassLoopbackInDev && g.environment == common.EnvDevelopment && isLoopback(key) {
		return nil
	}

	rec, err := g.store.Incr(ctx, key, policy.Window)
	if err != nil {
		// Store trouble (a redis hiccup) must not take the API down with
		// it; admit and leave a trace.
		g.logger.WithError(err).WithField("key", key).Warn("rate limit store unavailable, admitting request")
		return nil
	}

	if rec.Count > policy.MaxRequests {
		now := g.nowFn()
		retryAfter := int(math.Ceil(rec.ResetTime.Sub(now).Seconds()))
		if retryAfter < 1 {
			retryAfter = 1
		}

		prometheus.RateLimitExceededTotal.Inc()
		g.logger.WithFields(logrus.Fields{
			"key":   key,
			"count": rec.Count,
			"limit": policy.MaxRequests,
		}).Warn("rate limit exceeded")

		return types.Block(policy.StatusCode, map[string]interface{}{
			"error":      policy.Message,
			"retryAfter": retryAfter,
		}).
			WithHeader("Retry-After", strconv.Itoa(retryAfter)).
			WithHeader("X-RateLimit-Limit", strconv.Itoa(policy.MaxRequests)).
			WithHeader("X-RateLimit-Remaining", "0").
			WithHeader("X-RateLimit-Reset", strconv.FormatInt(rec.ResetTime.Unix(), 10))
	}

	return nil
}

func policyFromConfig(config Config) (Policy, error) {
	var policy Policy
	switch config.Tier {
	case "":
		policy = StandardPolicy()
		if config.MaxRequests <= 0 {
			return Policy{}, fmt.Errorf("rate limiter requires a tier or a positive max_requests")
		}
	case "strict":
		policy = StrictPolicy()
	case "standard":
		policy = StandardPolicy()
	case "lenient":
		policy = LenientPolicy()
	default:
		return Policy{}, fmt.Errorf("unknown rate limit tier %q", config.Tier)
	}

	if config.MaxRequests > 0 {
		policy.MaxRequests = config.MaxRequests
	}
	if config.Window != "" {
		window, err := time.ParseDuration(config.Window)
		if err != nil {
			return Policy{}, fmt.Errorf("invalid window format: %w", err)
		}
		if window <= 0 {
			return Policy{}, fmt.Errorf("window must be positive")
		}
		policy.Window = window
	}
	if config.StatusCode != 0 {
		if config.StatusCode < 400 || config.StatusCode > 599 {
			return Policy{}, fmt.Errorf("status_code must be a 4xx or 5xx code")
		}
		policy.StatusCode = config.StatusCode
	}
	if config.Message != "" {
		policy.Message = config.Message
	}
	policy.BypassLoopbackInDev = config.BypassLoopbackInDev

	return policy, nil
}
