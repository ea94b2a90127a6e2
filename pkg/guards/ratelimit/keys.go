package ratelimit

import (
	"net"
	"strings"

	"github.com/pennywise-app/gateguard/pkg/types"
)

// UnknownKey is the sentinel used when no address can be resolved at all.
const UnknownKey = "unknown"

// KeyFunc derives the identifier a counter is keyed by. Custom resolvers
// (API keys, user ids) can be supplied per guard.
type KeyFunc func(req *types.RequestContext) string

// ClientKey is the default resolver: first hop of X-Forwarded-For, then
// X-Real-IP, then the transport peer address, then UnknownKey. It never
// fails. Clients behind the same NAT share a key; that is a documented
// limitation of address-based keying, not something this layer can fix.
func ClientKey(req *types.RequestContext) string {
	if fwd := req.Header("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if ip := req.Header("X-Real-IP"); ip != "" {
		return ip
	}
	if req.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(req.RemoteAddr); err == nil {
			return host
		}
		return req.RemoteAddr
	}
	return UnknownKey
}

// isLoopback reports whether a resolved key denotes local traffic. The
// unknown sentinel counts as local: it only ever occurs in direct,
// transport-less test invocations.
func isLoopback(key string) bool {
	if key == UnknownKey || key == "localhost" {
		return true
	}
	if ip := net.ParseIP(key); ip != nil {
		return ip.IsLoopback()
	}
	return false
}
