package baseapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WithRateLimitStatus sets the status code classified as rate limiting
func WithRateLimitStatus(code int) Option {
	return func(c *Client) {
		c.rateLimitStatus = code
	}
}

// WithCacheTTL sets the memoization TTL (use TTLForever to never expire)
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.cacheTTL = ttl
	}
}

// WithAuth sets the initial auth parameter set
func WithAuth(auth Params) Option {
	return func(c *Client) {
		copied := make(Params, len(auth))
		copy(copied, auth)
		c.auth = copied
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the request timeout on the underlying HTTP client
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if c.httpClient != nil {
			c.httpClient.Timeout = d
		}
	}
}

// WithCache sets a custom cache implementation for memoized results
func WithCache(cache Cache) Option {
	return func(c *Client) {
		c.memo = cache
	}
}

// WithTTLPolicy sets a custom freshness policy, replacing the fixed TTL
func WithTTLPolicy(policy TTLPolicy) Option {
	return func(c *Client) {
		c.ttlPolicy = policy
	}
}

// WithKeyFunc sets a custom cache key serialization
func WithKeyFunc(fn KeyFunc) Option {
	return func(c *Client) {
		c.keyFunc = fn
	}
}

// WithDeduplication collapses concurrent memoized calls with the same key
// into a single execution
func WithDeduplication() Option {
	return func(c *Client) {
		c.dedup = true
	}
}

// WithRateLimiter sets a client-side token bucket rate limiter
func WithRateLimiter(maxTokens int, refillRate time.Duration) Option {
	return func(c *Client) {
		c.rateLimiter = NewRateLimiter(maxTokens, refillRate)
	}
}

// WithLimiter sets a custom client-side rate limiter implementation
func WithLimiter(limiter Limiter) Option {
	return func(c *Client) {
		c.rateLimiter = limiter
	}
}

// WithRateLimiterRegistry sets a per-endpoint rate limiter registry, which
// takes precedence over the default limiter
func WithRateLimiterRegistry(registry *RateLimiterRegistry) Option {
	return func(c *Client) {
		c.limiterRegistry = registry
	}
}

// WithCircuitBreaker sets the circuit breaker configuration
func WithCircuitBreaker(config CircuitBreakerConfig) Option {
	return func(c *Client) {
		c.circuitBreaker = NewCircuitBreaker(config)
	}
}

// WithMiddleware adds middleware to the client
func WithMiddleware(middleware ...Middleware) Option {
	return func(c *Client) {
		c.middleware = append(c.middleware, middleware...)
	}
}

// WithMetrics enables Prometheus metrics collection
func WithMetrics() Option {
	return func(c *Client) {
		c.metrics = NewMetricsCollector()
	}
}

// WithMetricsCollector sets a custom metrics collector
func WithMetricsCollector(collector *MetricsCollector) Option {
	return func(c *Client) {
		c.metrics = collector
	}
}

// WithMetricsRegistry enables metrics collection on the given registerer
func WithMetricsRegistry(registry prometheus.Registerer) Option {
	return func(c *Client) {
		c.metrics = NewMetricsCollectorWithRegistry(registry)
	}
}

// WithDebug enables debug logging with default configuration
func WithDebug() Option {
	return func(c *Client) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.Enabled = true
	}
}

// WithDebugConfig sets custom debug configuration
func WithDebugConfig(config *DebugConfig) Option {
	return func(c *Client) {
		c.debug = config
	}
}

// WithLogger sets a custom logger for debug output
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithSimpleLogger enables debug logging with a simple console logger
func WithSimpleLogger() Option {
	return func(c *Client) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.Enabled = true
		c.logger = NewSimpleLogger()
	}
}

// WithRequestIDGenerator sets a custom function for generating request IDs
func WithRequestIDGenerator(gen func() string) Option {
	return func(c *Client) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.RequestIDGen = gen
	}
}

// WithUnmarshaler sets the decoder used for response bodies
func WithUnmarshaler(u Unmarshaler) Option {
	return func(c *Client) {
		c.unmarshaler = u
	}
}

// ValidateConfiguration validates the client configuration and returns an error if invalid
func (c *Client) ValidateConfiguration() error {
	var issues []string

	issues = append(issues, c.validateEndpointConfig()...)
	issues = append(issues, c.validateHTTPClientConfig()...)
	issues = append(issues, c.validateMiddlewareConfig()...)
	issues = append(issues, c.validateCacheConfig()...)
	issues = append(issues, c.validateRateLimiterConfig()...)
	issues = append(issues, c.validateCircuitBreakerConfig()...)
	issues = append(issues, c.validateDebugConfig()...)

	if len(issues) > 0 {
		return &ClientError{
			Type:    ErrorTypeValidation,
			Message: "configuration validation failed",
			Cause:   fmt.Errorf("validation errors: %v", issues),
		}
	}

	return nil
}

// validateEndpointConfig validates the base URL and classification settings
func (c *Client) validateEndpointConfig() []string {
	var issues []string

	if c.baseURL == "" {
		issues = append(issues, "base URL cannot be empty")
	}

	if c.rateLimitStatus < 100 || c.rateLimitStatus > 599 {
		issues = append(issues, "rateLimitStatus must be a valid HTTP status code")
	}

	return issues
}

// validateHTTPClientConfig validates HTTP client configuration
func (c *Client) validateHTTPClientConfig() []string {
	var issues []string

	if c.httpClient == nil {
		issues = append(issues, "HTTP client cannot be nil")
	}

	return issues
}

// validateMiddlewareConfig validates middleware configuration
func (c *Client) validateMiddlewareConfig() []string {
	var issues []string

	for i, middleware := range c.middleware {
		if middleware == nil {
			issues = append(issues, fmt.Sprintf("middleware[%d] cannot be nil", i))
		}
	}

	return issues
}

// validateCacheConfig validates memoization configuration. Any TTL is legal:
// a non-positive TTL simply disables reuse.
func (c *Client) validateCacheConfig() []string {
	var issues []string

	if c.memo == nil {
		issues = append(issues, "cache cannot be nil")
	}

	if c.keyFunc == nil {
		issues = append(issues, "cache key function cannot be nil")
	}

	if c.unmarshaler == nil {
		issues = append(issues, "unmarshaler cannot be nil")
	}

	return issues
}

// validateRateLimiterConfig validates rate limiter configuration
func (c *Client) validateRateLimiterConfig() []string {
	var issues []string

	if rl, ok := c.rateLimiter.(*RateLimiter); ok {
		if rl.maxTokens <= 0 {
			issues = append(issues, "rateLimiter maxTokens must be positive")
		}
		if rl.refillRate <= 0 {
			issues = append(issues, "rateLimiter refillRate must be positive")
		}
	}

	return issues
}

// validateCircuitBreakerConfig validates circuit breaker configuration
func (c *Client) validateCircuitBreakerConfig() []string {
	var issues []string

	if c.circuitBreaker != nil {
		if c.circuitBreaker.config.FailureThreshold <= 0 {
			issues = append(issues, "circuitBreaker FailureThreshold must be positive")
		}
		if c.circuitBreaker.config.RecoveryTimeout <= 0 {
			issues = append(issues, "circuitBreaker RecoveryTimeout must be positive")
		}
		if c.circuitBreaker.config.SuccessThreshold <= 0 {
			issues = append(issues, "circuitBreaker SuccessThreshold must be positive")
		}
	}

	return issues
}

// validateDebugConfig validates debug configuration
func (c *Client) validateDebugConfig() []string {
	var issues []string

	if c.debug != nil && c.debug.Enabled {
		if c.debug.RequestIDGen == nil {
			issues = append(issues, "debug RequestIDGen must be set when debug is enabled")
		}
		if c.logger == nil {
			issues = append(issues, "logger must be set when debug is enabled")
		}
	}

	return issues
}
