package types

import (
	"context"
	"net/http"
	"net/url"
)

// RequestContext carries the parts of an inbound request the admission
// pipeline is allowed to look at. Guards treat it as read-only except for
// Metadata, which is how the schema guard hands validated data to the
// route handler.
type RequestContext struct {
	Context    context.Context
	Headers    map[string][]string
	Method     string
	Path       string
	Query      url.Values
	Body       []byte
	RemoteAddr string
	Metadata   map[string]interface{}
}

// Header returns the first value of the named header, or "" if absent.
// Lookup is canonical-form insensitive.
func (r *RequestContext) Header(name string) string {
	if vals, ok := r.Headers[name]; ok && len(vals) > 0 {
		return vals[0]
	}
	if vals, ok := r.Headers[http.CanonicalHeaderKey(name)]; ok && len(vals) > 0 {
		return vals[0]
	}
	return ""
}
