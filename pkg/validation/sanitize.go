package validation

import (
	"regexp"
	"strings"
)

var (
	jsSchemeRe   = regexp.MustCompile(`(?i)^\s*javascript:`)
	eventAttrRe  = regexp.MustCompile(`(?i)\bon\w+\s*=`)
	angleQuoteRe = regexp.MustCompile(`[<>"']`)
)

// SanitizeString strips angle brackets, quotes, a javascript: prefix and
// inline event-handler patterns from free-text input. This is a denylist
// transform at the input boundary: it is not equivalent to context-aware
// output encoding, and rendering layers must still encode for their
// context. It exists so that obviously hostile markup never reaches
// storage, nothing more.
func SanitizeString(s string) string {
	s = strings.TrimSpace(s)
	s = jsSchemeRe.ReplaceAllString(s, "")
	s = eventAttrRe.ReplaceAllString(s, "")
	s = angleQuoteRe.ReplaceAllString(s, "")
	return s
}
