package sizelimit

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"

	"github.com/pennywise-app/gateguard/pkg/guards"
	"github.com/pennywise-app/gateguard/pkg/types"
)

const GuardName = "size_limiter"

// Config limits the declared request size. The guard reads Content-Length
// only; it never buffers the body, so an unannounced oversized body is the
// server's body-limit problem, not this guard's.
type Config struct {
	MaxBytes int64 `mapstructure:"max_bytes"`
}

type SizeLimitGuard struct {
	logger *logrus.Logger
}

func NewSizeLimitGuard(logger *logrus.Logger) guards.Guard {
	return &SizeLimitGuard{logger: logger}
}

func (g *SizeLimitGuard) Name() string {
	return GuardName
}

func (g *SizeLimitGuard) ValidateConfig(cfg types.GuardConfig) error {
	var config Config
	if err := mapstructure.Decode(cfg.Settings, &config); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	if config.MaxBytes <= 0 {
		return fmt.Errorf("max_bytes must be greater than 0")
	}
	return nil
}

func (g *SizeLimitGuard) Execute(
	ctx context.Context,
	cfg types.GuardConfig,
	req *types.RequestContext,
) *types.GuardResult {
	var config Config
	if err := mapstructure.Decode(cfg.Settings, &config); err != nil {
		g.logger.WithError(err).Error("size limiter config decode failed")
		return types.Block(http.StatusInternalServerError, map[string]interface{}{
			"error": "Internal validation error",
		})
	}

	declared := req.Header("Content-Length")
	if declared == "" {
		return nil
	}
	length, err := strconv.ParseInt(declared, 10, 64)
	if err != nil {
		return nil
	}

	if length > config.MaxBytes {
		g.logger.WithFields(logrus.Fields{
			"content_length": length,
			"max_bytes":      config.MaxBytes,
			"path":           req.Path,
		}).Warn("request size limit exceeded")

		return types.Block(http.StatusRequestEntityTooLarge, map[string]interface{}{
			"error":   "Request payload too large",
			"maxSize": fmt.Sprintf("%dKB", config.MaxBytes/1024),
		})
	}

	return nil
}
