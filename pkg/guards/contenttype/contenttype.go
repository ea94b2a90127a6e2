package contenttype

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"

	"github.com/pennywise-app/gateguard/pkg/guards"
	"github.com/pennywise-app/gateguard/pkg/types"
)

const GuardName = "content_type"

// Config lists acceptable media types. Matching is by substring so that
// "application/json" accepts "application/json; charset=utf-8".
type Config struct {
	AllowedTypes []string `mapstructure:"allowed_types"`
}

type ContentTypeGuard struct {
	logger *logrus.Logger
}

func NewContentTypeGuard(logger *logrus.Logger) guards.Guard {
	return &ContentTypeGuard{logger: logger}
}

func (g *ContentTypeGuard) Name() string {
	return GuardName
}

func (g *ContentTypeGuard) ValidateConfig(cfg types.GuardConfig) error {
	var config Config
	if err := mapstructure.Decode(cfg.Settings, &config); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	if len(config.AllowedTypes) == 0 {
		return fmt.Errorf("allowed_types must not be empty")
	}
	return nil
}

func (g *ContentTypeGuard) Execute(
	ctx context.Context,
	cfg types.GuardConfig,
	req *types.RequestContext,
) *types.GuardResult {
	var config Config
	if err := mapstructure.Decode(cfg.Settings, &config); err != nil {
		g.logger.WithError(err).Error("content type guard config decode failed")
		return types.Block(http.StatusInternalServerError, map[string]interface{}{
			"error": "Internal validation error",
		})
	}

	declared := req.Header("Content-Type")
	if declared != "" {
		for _, allowed := range config.AllowedTypes {
			if strings.Contains(declared, allowed) {
				return nil
			}
		}
	}

	g.logger.WithFields(logrus.Fields{
		"content_type": declared,
		"path":         req.Path,
	}).Warn("unsupported content type")

	return types.Block(http.StatusUnsupportedMediaType, map[string]interface{}{
		"error":        "Unsupported content type",
		"allowedTypes": config.AllowedTypes,
	})
}
