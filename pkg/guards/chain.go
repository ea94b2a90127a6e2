package guards

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/pennywise-app/gateguard/pkg/infra/prometheus"
	"github.com/pennywise-app/gateguard/pkg/types"
)

// Chain runs an ordered list of guards and returns the first blocking
// result. Cheap boundary checks should be registered before the rate
// limiter, and the rate limiter before schema validation, so that malformed
// requests do not consume quota and over-quota callers do not trigger
// parsing work. The ordering is the caller's choice; the chain only
// guarantees strict in-order execution and first-block-wins.
type Chain struct {
	logger  *logrus.Logger
	entries []chainEntry
}

type chainEntry struct {
	guard Guard
	cfg   types.GuardConfig
}

func NewChain(logger *logrus.Logger) *Chain {
	return &Chain{logger: logger}
}

// Use appends a guard to the chain after validating its configuration.
func (c *Chain) Use(g Guard, cfg types.GuardConfig) error {
	if g == nil {
		return fmt.Errorf("guard must not be nil")
	}
	if cfg.Name == "" {
		cfg.Name = g.Name()
	}
	if err := g.ValidateConfig(cfg); err != nil {
		return fmt.Errorf("invalid config for guard %s: %w", g.Name(), err)
	}
	c.entries = append(c.entries, chainEntry{guard: g, cfg: cfg})
	return nil
}

// Execute runs every enabled guard in order. It returns nil only if all
// guards passed.
func (c *Chain) Execute(ctx context.Context, req *types.RequestContext) *types.GuardResult {
	for _, e := range c.entries {
		if !e.cfg.Enabled {
			continue
		}
		result := c.runGuard(ctx, e, req)
		if result != nil {
			prometheus.AdmissionDecisionsTotal.WithLabelValues(e.guard.Name(), "blocked").Inc()
			return result
		}
		prometheus.AdmissionDecisionsTotal.WithLabelValues(e.guard.Name(), "admitted").Inc()
	}
	return nil
}

// runGuard isolates a single guard execution so that a panic inside one
// guard cannot cross the pipeline boundary. The recovered value is logged
// and the caller sees a stable 500 body with no internals.
func (c *Chain) runGuard(ctx context.Context, e chainEntry, req *types.RequestContext) (result *types.GuardResult) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.WithFields(logrus.Fields{
				"guard": e.guard.Name(),
				"path":  req.Path,
				"error": r,
			}).Error("guard panic recovered")
			result = types.Block(500, map[string]interface{}{
				"error": "Internal validation error",
			})
		}
	}()
	return e.guard.Execute(ctx, e.cfg, req)
}
