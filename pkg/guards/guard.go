package guards

import (
	"context"

	"github.com/pennywise-app/gateguard/pkg/types"
)

// Guard is a single admission check. Execute returns nil to let the request
// continue, or a *types.GuardResult describing the response to send instead.
// Guards never report failure through errors or panics; anything unexpected
// that escapes one is converted by the Chain into a generic 500.
type Guard interface {
	Name() string
	// ValidateConfig is called once at chain-assembly time, before any
	// request is served.
	ValidateConfig(cfg types.GuardConfig) error
	Execute(ctx context.Context, cfg types.GuardConfig, req *types.RequestContext) *types.GuardResult
}
