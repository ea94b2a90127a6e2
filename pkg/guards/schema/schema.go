package schema

import (
	"context"
	"fmt"
	"net/http"
	"reflect"

	"github.com/sirupsen/logrus"

	"github.com/pennywise-app/gateguard/pkg/common"
	"github.com/pennywise-app/gateguard/pkg/guards"
	"github.com/pennywise-app/gateguard/pkg/types"
	"github.com/pennywise-app/gateguard/pkg/validation"
)

const GuardName = "schema_validator"

// Source names which part of the request a guard instance validates.
type Source string

const (
	SourceBody  Source = "body"
	SourceQuery Source = "query"
)

// SchemaGuard validates the request body or query against a declared schema
// struct. On success the decoded value is stored in the request metadata
// under common.ValidatedBodyKey / common.ValidatedQueryKey, which is where
// route handlers pick it up.
type SchemaGuard struct {
	source    Source
	newTarget func() interface{}
	logger    *logrus.Logger
}

// NewBodyGuard validates the JSON body. newTarget must return a fresh
// pointer to the schema struct on every call.
func NewBodyGuard(newTarget func() interface{}, logger *logrus.Logger) guards.Guard {
	return &SchemaGuard{source: SourceBody, newTarget: newTarget, logger: logger}
}

// NewQueryGuard validates the query string with per-field type decoding.
func NewQueryGuard(newTarget func() interface{}, logger *logrus.Logger) guards.Guard {
	return &SchemaGuard{source: SourceQuery, newTarget: newTarget, logger: logger}
}

func (g *SchemaGuard) Name() string {
	return GuardName + ":" + string(g.source)
}

func (g *SchemaGuard) ValidateConfig(cfg types.GuardConfig) error {
	if g.newTarget == nil {
		return fmt.Errorf("schema guard requires a target factory")
	}
	if reflect.ValueOf(g.newTarget()).Kind() != reflect.Ptr {
		return fmt.Errorf("schema target factory must return a pointer")
	}
	return nil
}

func (g *SchemaGuard) Execute(
	ctx context.Context,
	cfg types.GuardConfig,
	req *types.RequestContext,
) *types.GuardResult {
	dst := g.newTarget()

	var out validation.Outcome
	var metaKey string
	switch g.source {
	case SourceQuery:
		out = validation.ValidateQuery(req.Query, dst)
		metaKey = common.ValidatedQueryKey
	default:
		out = validation.ValidateBody(req.Body, dst)
		metaKey = common.ValidatedBodyKey
	}

	switch {
	case out.OK:
		if req.Metadata == nil {
			req.Metadata = make(map[string]interface{})
		}
		req.Metadata[metaKey] = dst
		return nil

	case out.Internal:
		g.logger.WithField("path", req.Path).Error("schema validation internal failure")
		return types.Block(http.StatusInternalServerError, map[string]interface{}{
			"error": "Internal validation error",
		})

	case out.Malformed:
		return types.Block(http.StatusBadRequest, map[string]interface{}{
			"error": "Invalid JSON in request body",
		})

	default:
		return types.Block(http.StatusBadRequest, map[string]interface{}{
			"error":   "Validation failed",
			"details": out.Errors,
		})
	}
}
