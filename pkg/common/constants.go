package common

const (
	// Environment values. The loopback bypass of the rate limiter is only
	// honored under EnvDevelopment and is inert everywhere else.
	EnvDevelopment = "development"
	EnvProduction  = "production"

	RequestIDHeader = "X-Request-Id"
)

// RequestIDKey is the fiber locals key the request id middleware stores the
// id under.
const RequestIDKey = "request_id"

// Metadata keys under which the schema guard stores decoded payloads for
// the route handler.
const (
	ValidatedBodyKey  = "validated_body"
	ValidatedQueryKey = "validated_query"
)
