package validation

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Standalone field validators usable without a declared schema.

func IsValidEmail(s string) bool {
	return s != "" && validate.Var(s, "email") == nil
}

// IsValidUUID accepts canonical v4 UUIDs only.
func IsValidUUID(s string) bool {
	u, err := uuid.Parse(s)
	if err != nil {
		return false
	}
	return u.Version() == 4 && u.Variant() == uuid.RFC4122
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
}

func IsValidDate(s string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func InRange(value, min, max float64) bool {
	return value >= min && value <= max
}

// IsValidCurrencyAmount accepts finite amounts with at most two decimal
// places.
func IsValidCurrencyAmount(v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	cents := v * 100
	return math.Abs(cents-math.Round(cents)) < 1e-6
}

type Pagination struct {
	Page   int `json:"page"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ValidatePagination always returns a usable result, whatever the input:
// non-numeric or absent values fall back to defaults (page 1, limit 10),
// numeric values are clamped to page >= 1 and 1 <= limit <= 100.
func ValidatePagination(page, limit string) Pagination {
	p := 1
	if n, err := strconv.Atoi(strings.TrimSpace(page)); err == nil {
		p = n
	}
	if p < 1 {
		p = 1
	}

	l := 10
	if n, err := strconv.Atoi(strings.TrimSpace(limit)); err == nil {
		l = n
	}
	if l < 1 {
		l = 1
	}
	if l > 100 {
		l = 100
	}

	return Pagination{Page: p, Limit: l, Offset: (p - 1) * l}
}
