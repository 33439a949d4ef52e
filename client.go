package baseapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/emo-eth/baseapi/internal/singleflight"
)

// Client is a base API client that layers signature-keyed memoization, status
// classification, auth parameter injection, rate limiting, circuit breaking,
// middleware and metrics around the standard net/http Client. It is safe for
// concurrent use.
//
// The base URL and rate limit status code are fixed at construction. Auth
// parameters and the cache TTL may be swapped at runtime; everything else is
// immutable once New returns.
type Client struct {
	baseURL         string
	rateLimitStatus int
	httpClient      *http.Client
	middleware      []Middleware

	mu       sync.RWMutex // guards auth and cacheTTL
	auth     Params
	cacheTTL time.Duration

	memo      Cache
	ttlPolicy TTLPolicy
	keyFunc   KeyFunc
	dedup     bool
	group     *singleflight.Group

	rateLimiter     Limiter
	limiterRegistry *RateLimiterRegistry
	circuitBreaker  *CircuitBreaker

	unmarshaler Unmarshaler
	metrics     *MetricsCollector
	logger      Logger
	debug       *DebugConfig

	validationError error
}

// New constructs a Client for the API rooted at baseURL using the provided
// functional options. A best effort validation is performed; errors surface
// on first use and through IsValid / ValidationError.
func New(baseURL string, options ...Option) *Client {
	client := &Client{
		baseURL:         baseURL,
		rateLimitStatus: http.StatusForbidden,
		httpClient:      &http.Client{},
		middleware:      []Middleware{},
		cacheTTL:        TTLForever,
		memo:            NewInMemoryCache(),
		keyFunc:         DefaultKeyFunc,
		unmarshaler:     jsonUnmarshaler{},
		debug:           DefaultDebugConfig(),
	}

	for _, option := range options {
		option(client)
	}

	if client.dedup {
		client.group = singleflight.New()
	}

	if err := client.ValidateConfiguration(); err != nil {
		client.validationError = err
	}

	return client
}

// Get performs a GET against the API and returns the decoded JSON response.
// pathQuery is appended to the base URL as-is: it must carry its own "?" when
// it has query parameters, typically pre-rendered through Params.Encode. The
// current auth parameters are rendered after it, falsy values included.
func (c *Client) Get(ctx context.Context, pathQuery string) (any, error) {
	raw, err := c.call(ctx, http.MethodGet, pathQuery, nil)
	if err != nil {
		return nil, err
	}
	return c.decodeAny(raw)
}

// GetCached is Get through the memoization layer, keyed by the query string.
// A fresh cached result short-circuits the network entirely.
func (c *Client) GetCached(ctx context.Context, pathQuery string) (any, error) {
	return Memoize(ctx, c, CallKey{Method: "Get", Args: []any{pathQuery}}, func() (any, error) {
		return c.Get(ctx, pathQuery)
	})
}

// Put performs a PUT with payload encoded as a JSON body. Auth parameters are
// merged into a copy of the payload and win on key collisions; the caller's
// map is never modified.
func (c *Client) Put(ctx context.Context, pathQuery string, payload Payload) (any, error) {
	raw, err := c.call(ctx, http.MethodPut, pathQuery, payload)
	if err != nil {
		return nil, err
	}
	return c.decodeAny(raw)
}

// Post performs a POST with payload encoded as a JSON body, with the same
// auth merge semantics as Put.
func (c *Client) Post(ctx context.Context, pathQuery string, payload Payload) (any, error) {
	raw, err := c.call(ctx, http.MethodPost, pathQuery, payload)
	if err != nil {
		return nil, err
	}
	return c.decodeAny(raw)
}

// Delete performs a DELETE with payload encoded as a JSON body, with the same
// auth merge semantics as Put.
func (c *Client) Delete(ctx context.Context, pathQuery string, payload Payload) (any, error) {
	raw, err := c.call(ctx, http.MethodDelete, pathQuery, payload)
	if err != nil {
		return nil, err
	}
	return c.decodeAny(raw)
}

// Do executes a prepared *http.Request through the reliability pipeline: rate
// limiting, circuit breaking, middleware and metrics. It applies none of the
// protocol conventions, so no auth injection, no status classification, no
// memoization. Most callers want the verb methods instead.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.validationError != nil {
		return nil, c.validationError
	}
	return c.do(req, c.newRequestID())
}

// call builds and executes one protocol request: compose the URL, attach
// auth, run the reliability pipeline, then classify the response. On success
// the raw body is returned for the caller to decode.
func (c *Client) call(ctx context.Context, method, pathQuery string, payload Payload) ([]byte, error) {
	if c.validationError != nil {
		return nil, c.validationError
	}

	requestID := c.newRequestID()

	url := c.baseURL + pathQuery
	var body io.Reader
	if method == http.MethodGet {
		url += c.authSuffix()
	} else {
		encoded, err := json.Marshal(c.mergeAuth(payload))
		if err != nil {
			return nil, fmt.Errorf("baseapi: encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	// No URL-encoding happens here or anywhere below: pathQuery and auth
	// values reach the wire byte for byte.
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("baseapi: build %s request: %w", method, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.do(req, requestID)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("baseapi: read response body: %w", err)
	}

	finalURL := url
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	if err := c.classify(resp.StatusCode, raw, finalURL, method, requestID); err != nil {
		c.recordClassified(err, method, getEndpointFromRequest(req))
		if c.debug != nil && c.debug.Enabled && c.debug.LogRequests && c.logger != nil {
			c.logger.Warn("Response rejected", "requestID", requestID, "statusCode", resp.StatusCode, "error", err.Error())
		}
		return nil, err
	}

	return raw, nil
}

// do runs one request through the reliability pipeline. Transport errors
// propagate unchanged; the client never retries.
func (c *Client) do(req *http.Request, requestID string) (*http.Response, error) {
	start := time.Now()
	endpoint := getEndpointFromRequest(req)

	if c.debug != nil && c.debug.Enabled && c.debug.LogRequests && c.logger != nil {
		c.logger.Debug("Starting request", "requestID", requestID, "method", req.Method, "url", req.URL.String(), "endpoint", endpoint)
	}

	if c.metrics != nil {
		c.metrics.RecordRequestStart(req.Method, endpoint)
	}

	if allowed, limiterName := c.allow(req); !allowed {
		if c.debug != nil && c.debug.Enabled && c.debug.LogRateLimit && c.logger != nil {
			c.logger.Warn("Rate limit exceeded", "requestID", requestID, "limiter", limiterName, "endpoint", endpoint)
		}
		if c.metrics != nil {
			c.metrics.RecordRequestEnd(req.Method, endpoint)
			c.metrics.RecordError(string(ErrorTypeRateLimit), req.Method, endpoint)
		}
		return nil, &ClientError{
			Type:      ErrorTypeRateLimit,
			Message:   "client-side rate limit exceeded",
			Method:    req.Method,
			URL:       req.URL.String(),
			RequestID: requestID,
			Timestamp: time.Now(),
			Cause:     ErrRateLimitExceeded,
		}
	}

	if rl, ok := c.rateLimiter.(*RateLimiter); ok && c.metrics != nil {
		c.metrics.RecordRateLimiterTokens("default", rl.Tokens())
	}

	if c.circuitBreaker != nil && !c.circuitBreaker.Allow() {
		if c.debug != nil && c.debug.Enabled && c.debug.LogCircuit && c.logger != nil {
			c.logger.Warn("Circuit breaker open", "requestID", requestID, "endpoint", endpoint, "state", c.circuitBreaker.State())
		}
		if c.metrics != nil {
			c.metrics.RecordRequestEnd(req.Method, endpoint)
			c.metrics.RecordError(string(ErrorTypeCircuitOpen), req.Method, endpoint)
		}
		return nil, &ClientError{
			Type:      ErrorTypeCircuitOpen,
			Message:   "circuit breaker is open",
			Method:    req.Method,
			URL:       req.URL.String(),
			RequestID: requestID,
			Timestamp: time.Now(),
			Cause:     ErrCircuitOpen,
		}
	}

	resp, err := c.executeMiddleware(req)

	if c.circuitBreaker != nil {
		if err != nil || (resp != nil && resp.StatusCode >= 500) {
			c.circuitBreaker.RecordFailure()
		} else {
			c.circuitBreaker.RecordSuccess()
		}
		if c.metrics != nil {
			c.metrics.RecordCircuitBreakerState("default", c.circuitBreaker.State())
		}
	}

	if c.metrics != nil {
		c.metrics.RecordRequestEnd(req.Method, endpoint)
		statusCode := 0
		if resp != nil {
			statusCode = resp.StatusCode
		}
		c.metrics.RecordRequest(req.Method, endpoint, statusCode, time.Since(start))
	}

	if err != nil {
		if c.debug != nil && c.debug.Enabled && c.debug.LogRequests && c.logger != nil {
			c.logger.Warn("Request failed", "requestID", requestID, "error", err.Error())
		}
		return nil, err
	}

	if c.debug != nil && c.debug.Enabled && c.debug.LogRequests && c.logger != nil {
		c.logger.Debug("Request completed", "requestID", requestID, "statusCode", resp.StatusCode, "duration", time.Since(start))
	}

	return resp, nil
}

// classify applies the status decision table to a completed response. A nil
// return means the body may be used; anything else is the classified error.
//
// The table is evaluated in order: any 2xx must carry a body, the configured
// rate limit status wins over everything else including 401 regardless of
// what the body says, a 401 is an auth failure only when its body carries
// error_msg, and every remaining status is unhandled. Malformed responses
// surface as plain errors outside the ClientError taxonomy.
func (c *Client) classify(statusCode int, body []byte, url, method, requestID string) error {
	switch {
	case statusCode >= 200 && statusCode < 300:
		if len(body) == 0 {
			return fmt.Errorf("baseapi: status %d with empty body: %w", statusCode, ErrEmptyResponse)
		}
		return nil

	case statusCode == c.rateLimitStatus:
		return &ClientError{
			Type:       ErrorTypeRateLimit,
			Message:    fmt.Sprintf("%d error/rate limit encountered", statusCode),
			StatusCode: statusCode,
			URL:        url,
			Method:     method,
			RequestID:  requestID,
			Timestamp:  time.Now(),
			Cause:      ErrRateLimited,
		}

	case statusCode == http.StatusUnauthorized:
		// Always decoded with encoding/json, not the configured Unmarshaler:
		// 401 bodies may carry fields beyond error_msg.
		var probe struct {
			ErrorMsg *string `json:"error_msg"`
		}
		if err := json.Unmarshal(body, &probe); err != nil {
			return fmt.Errorf("baseapi: decode 401 response body: %w", err)
		}
		if probe.ErrorMsg == nil {
			return fmt.Errorf("baseapi: 401 response body missing error_msg")
		}
		return &ClientError{
			Type:       ErrorTypeAuth,
			Message:    *probe.ErrorMsg,
			StatusCode: statusCode,
			URL:        url,
			Method:     method,
			RequestID:  requestID,
			Timestamp:  time.Now(),
			Cause:      ErrAuthFailed,
		}

	default:
		return &ClientError{
			Type:       ErrorTypeUnhandled,
			Message:    fmt.Sprintf("status code unhandled: %d for URL %s", statusCode, url),
			StatusCode: statusCode,
			URL:        url,
			Method:     method,
			RequestID:  requestID,
			Timestamp:  time.Now(),
			Cause:      ErrUnhandledStatus,
		}
	}
}

func (c *Client) executeMiddleware(req *http.Request) (*http.Response, error) {
	if len(c.middleware) == 0 {
		return c.httpClient.Do(req)
	}

	current := RoundTripperFunc(c.httpClient.Do)

	for i := len(c.middleware) - 1; i >= 0; i-- {
		middleware := c.middleware[i]
		next := current
		current = RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			return middleware(r, next)
		})
	}

	return current.RoundTrip(req)
}

func (c *Client) decodeAny(raw []byte) (any, error) {
	var v any
	if err := c.decodeInto(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func (c *Client) recordClassified(err error, method, endpoint string) {
	if c.metrics == nil {
		return
	}
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		c.metrics.RecordError(string(clientErr.Type), method, endpoint)
		return
	}
	c.metrics.RecordError("Malformed", method, endpoint)
}

// allow consults the client-side limiters: the per-endpoint registry first,
// then the default limiter. Absent both, every call proceeds.
func (c *Client) allow(req *http.Request) (bool, string) {
	if c.limiterRegistry != nil {
		return c.limiterRegistry.Allow(req)
	}
	if c.rateLimiter != nil {
		return c.rateLimiter.Allow(), "default"
	}
	return true, ""
}

// SetAuth replaces the auth parameter set wholesale. The new set applies to
// calls that begin after it returns; in-flight calls keep whatever they
// already rendered. Cached entries are not invalidated.
func (c *Client) SetAuth(auth Params) {
	copied := make(Params, len(auth))
	copy(copied, auth)
	c.mu.Lock()
	c.auth = copied
	c.mu.Unlock()
}

// Auth returns a copy of the current auth parameter set.
func (c *Client) Auth() Params {
	c.mu.RLock()
	defer c.mu.RUnlock()
	copied := make(Params, len(c.auth))
	copy(copied, c.auth)
	return copied
}

// authSuffix renders the current auth parameters for a GET query string.
// Unlike caller parameters, auth values are rendered even when falsy.
func (c *Client) authSuffix() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.auth.encodeAll()
}

// mergeAuth copies payload and overlays the auth parameters on top.
func (c *Client) mergeAuth(payload Payload) Payload {
	c.mu.RLock()
	defer c.mu.RUnlock()
	merged := make(Payload, len(payload)+len(c.auth))
	for k, v := range payload {
		merged[k] = v
	}
	for _, f := range c.auth {
		merged[f.Key] = f.Value
	}
	return merged
}

// SetCacheTTL changes the memoization TTL. It takes effect immediately,
// including for entries cached before the change: freshness is judged at
// read time against the TTL current at that moment.
func (c *Client) SetCacheTTL(ttl time.Duration) {
	c.mu.Lock()
	c.cacheTTL = ttl
	c.mu.Unlock()
}

// CacheTTL returns the TTL currently used for freshness decisions.
func (c *Client) CacheTTL() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cacheTTL
}

// BaseURL returns the immutable API root this client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// RateLimitStatus returns the status code classified as rate limiting.
func (c *Client) RateLimitStatus() int {
	return c.rateLimitStatus
}

// IsValid reports whether configuration validation passed at construction.
func (c *Client) IsValid() bool {
	return c.validationError == nil
}

// ValidationError returns the configuration validation error, if any.
func (c *Client) ValidationError() error {
	return c.validationError
}

func (c *Client) newRequestID() string {
	if c.debug != nil && c.debug.Enabled && c.debug.RequestIDGen != nil {
		return c.debug.RequestIDGen()
	}
	return ""
}

func getEndpointFromRequest(req *http.Request) string {
	if req.URL == nil {
		return "unknown"
	}

	host := req.URL.Host
	path := req.URL.Path

	var builder strings.Builder
	builder.WriteString(host)

	if path != "" && path != "/" {
		builder.WriteString(path)
	} else {
		builder.WriteByte('/')
	}

	return builder.String()
}
