package baseapi

import "net/http"

// Payload is the body of a PUT/POST/DELETE request before auth injection.
type Payload map[string]any

// Middleware wraps request execution for cross-cutting concerns. It receives
// the outgoing request and the next element of the chain.
type Middleware func(req *http.Request, next RoundTripper) (*http.Response, error)

// RoundTripper executes a single HTTP transaction.
type RoundTripper interface {
	RoundTrip(*http.Request) (*http.Response, error)
}

// RoundTripperFunc adapts a function to the RoundTripper interface.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Unmarshaler decodes response bodies. The default uses encoding/json;
// supply StrictUnmarshaler or an implementation of your own for
// schema-checked decoding.
type Unmarshaler interface {
	Unmarshal(data []byte, v any) error
}

// Limiter gates calls on the client side. Allow reports whether one call may
// proceed now; implementations must not block.
type Limiter interface {
	Allow() bool
}

// LimiterKeyFunc derives the registry key for a request when per-endpoint
// rate limiting is configured.
type LimiterKeyFunc func(*http.Request) string

// Option represents a configuration option
type Option func(*Client)
