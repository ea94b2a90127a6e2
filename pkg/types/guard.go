package types

// GuardConfig represents the configuration for a guard in a chain.
type GuardConfig struct {
	Name     string                 `json:"name"`
	Enabled  bool                   `json:"enabled"`
	Settings map[string]interface{} `json:"settings"`
}

// GuardResult is the terminal outcome of a guard that decided to block a
// request. A nil *GuardResult means "continue": the request may proceed to
// the next guard and, ultimately, to the route handler.
type GuardResult struct {
	StatusCode int
	Body       map[string]interface{}
	Headers    map[string][]string
}

// Block builds a terminal result with the given status and JSON body.
func Block(statusCode int, body map[string]interface{}) *GuardResult {
	return &GuardResult{
		StatusCode: statusCode,
		Body:       body,
		Headers:    make(map[string][]string),
	}
}

// WithHeader adds a response header to the result and returns it.
func (r *GuardResult) WithHeader(key, value string) *GuardResult {
	if r.Headers == nil {
		r.Headers = make(map[string][]string)
	}
	r.Headers[key] = append(r.Headers[key], value)
	return r
}

// FieldError describes a single schema violation. Field is a dotted path
// into the request payload ("" for payload-level failures such as
// unparseable JSON).
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
