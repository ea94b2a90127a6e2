package contenttype_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pennywise-app/gateguard/pkg/guards/contenttype"
	"github.com/pennywise-app/gateguard/pkg/types"
)

func typeConfig(allowed ...string) types.GuardConfig {
	return types.GuardConfig{
		Enabled:  true,
		Settings: map[string]interface{}{"allowed_types": allowed},
	}
}

func requestWithContentType(ct string) *types.RequestContext {
	headers := map[string][]string{}
	if ct != "" {
		headers["Content-Type"] = []string{ct}
	}
	return &types.RequestContext{Headers: headers}
}

func TestContentTypeGuard_BlocksUnsupportedType(t *testing.T) {
	guard := contenttype.NewContentTypeGuard(logrus.New())

	result := guard.Execute(context.Background(), typeConfig("application/json"), requestWithContentType("text/plain"))
	require.NotNil(t, result)
	assert.Equal(t, http.StatusUnsupportedMediaType, result.StatusCode)
	assert.Equal(t, []string{"application/json"}, result.Body["allowedTypes"])
}

func TestContentTypeGuard_BlocksMissingType(t *testing.T) {
	guard := contenttype.NewContentTypeGuard(logrus.New())

	result := guard.Execute(context.Background(), typeConfig("application/json"), requestWithContentType(""))
	require.NotNil(t, result)
	assert.Equal(t, http.StatusUnsupportedMediaType, result.StatusCode)
}

func TestContentTypeGuard_SubstringMatchAcceptsCharsetSuffix(t *testing.T) {
	guard := contenttype.NewContentTypeGuard(logrus.New())

	result := guard.Execute(
		context.Background(),
		typeConfig("application/json"),
		requestWithContentType("application/json; charset=utf-8"),
	)
	assert.Nil(t, result)
}

func TestContentTypeGuard_ValidateConfig(t *testing.T) {
	guard := contenttype.NewContentTypeGuard(logrus.New())

	assert.NoError(t, guard.ValidateConfig(typeConfig("application/json")))
	assert.Error(t, guard.ValidateConfig(types.GuardConfig{Settings: map[string]interface{}{}}))
}
