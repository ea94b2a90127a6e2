package validation_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pennywise-app/gateguard/pkg/validation"
)

func TestIsValidEmail(t *testing.T) {
	assert.True(t, validation.IsValidEmail("user@example.com"))
	assert.False(t, validation.IsValidEmail(""))
	assert.False(t, validation.IsValidEmail("not-an-email"))
	assert.False(t, validation.IsValidEmail("user@"))
}

func TestIsValidUUID(t *testing.T) {
	assert.True(t, validation.IsValidUUID("f47ac10b-58cc-4372-a567-0e02b2c3d479"))
	// v1 UUID: correct shape, wrong version.
	assert.False(t, validation.IsValidUUID("f47ac10b-58cc-1372-a567-0e02b2c3d479"))
	assert.False(t, validation.IsValidUUID("not-a-uuid"))
	assert.False(t, validation.IsValidUUID(""))
}

func TestIsValidDate(t *testing.T) {
	assert.True(t, validation.IsValidDate("2026-08-29"))
	assert.True(t, validation.IsValidDate("2026-08-29T10:30:00Z"))
	assert.True(t, validation.IsValidDate("2026-08-29 10:30:00"))
	assert.False(t, validation.IsValidDate("29/08/2026"))
	assert.False(t, validation.IsValidDate("2026-13-40"))
}

func TestInRange(t *testing.T) {
	assert.True(t, validation.InRange(5, 1, 10))
	assert.True(t, validation.InRange(1, 1, 10))
	assert.True(t, validation.InRange(10, 1, 10))
	assert.False(t, validation.InRange(0.5, 1, 10))
	assert.False(t, validation.InRange(11, 1, 10))
}

func TestIsValidCurrencyAmount(t *testing.T) {
	assert.True(t, validation.IsValidCurrencyAmount(19.99))
	assert.True(t, validation.IsValidCurrencyAmount(0))
	assert.True(t, validation.IsValidCurrencyAmount(-42.50))
	assert.False(t, validation.IsValidCurrencyAmount(19.999))
	assert.False(t, validation.IsValidCurrencyAmount(math.NaN()))
	assert.False(t, validation.IsValidCurrencyAmount(math.Inf(1)))
}

func TestValidatePagination(t *testing.T) {
	tests := []struct {
		name        string
		page, limit string
		want        validation.Pagination
	}{
		{"defaults", "", "", validation.Pagination{Page: 1, Limit: 10, Offset: 0}},
		{"clamps low page and high limit", "0", "500", validation.Pagination{Page: 1, Limit: 100, Offset: 0}},
		{"non-numeric falls back", "abc", "abc", validation.Pagination{Page: 1, Limit: 10, Offset: 0}},
		{"offset follows page", "3", "20", validation.Pagination{Page: 3, Limit: 20, Offset: 40}},
		{"limit floor", "2", "-5", validation.Pagination{Page: 2, Limit: 1, Offset: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, validation.ValidatePagination(tt.page, tt.limit))
		})
	}
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "scriptalert(1)/script", validation.SanitizeString("<script>alert(1)</script>"))
	assert.Equal(t, "alert(1)", validation.SanitizeString("javascript:alert(1)"))
	assert.Equal(t, "img src=x alert(1)", validation.SanitizeString(`<img src=x onerror="alert(1)">`))
	assert.Equal(t, "plain text", validation.SanitizeString("  plain text  "))
	assert.NotContains(t, validation.SanitizeString(`a"b'c<d>e`), `<`)
}
