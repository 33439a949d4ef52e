// Package baseapi is a foundation for building clients against RESTful HTTP
// APIs. Concrete clients embed *Client, supply endpoint paths and argument
// lists, and get the plumbing for free:
//
//   - Authentication parameter injection (query string on GET, body on writes)
//   - Status-code-driven error classification (rate limit / auth / unhandled)
//   - JSON decoding, untyped or into caller-supplied structs
//   - Time-bounded memoization of call results keyed by call signature
//   - Pluggable cache stores (sharded in-memory by default, Redis optional)
//   - Optional request deduplication, client-side rate limiting, circuit breaker
//   - Middleware chain for cross-cutting concerns (tracing, extra headers, etc.)
//   - Prometheus metrics and lightweight structured debug logging
//
// Design goals:
//   - Small surface area: functional options configure everything
//   - Faithful wire behavior: query strings are raw key=value& concatenation,
//     never re-encoded
//   - Safe concurrent use of a single *Client instance
//   - Nothing is caught or retried internally; every failure surfaces to the caller
//
// Typical usage:
//
//	client := baseapi.New("https://api.example.com/v1/",
//	    baseapi.WithAuth(baseapi.Params{{Key: "token", Value: "abc"}}),
//	    baseapi.WithCacheTTL(5*time.Minute),
//	    baseapi.WithRateLimitStatus(429),
//	)
//	markets, err := client.Get(ctx, "markets?"+baseapi.Params{{Key: "limit", Value: 50}}.Encode())
//
// Endpoint methods memoize through the generic wrapper:
//
//	func (s *StatsAPI) TopArtists(ctx context.Context, limit int) ([]Artist, error) {
//	    key := baseapi.CallKey{Method: "TopArtists", Args: []any{limit}}
//	    return baseapi.Memoize(ctx, s.Client, key, func() ([]Artist, error) {
//	        var out []Artist
//	        err := s.GetJSON(ctx, "artists/top?"+baseapi.Param("limit", limit), &out)
//	        return out, err
//	    })
//	}
//
// The library avoids opinionated logging: provide a Logger (e.g. via
// WithSimpleLogger or NewZerologLogger) and enable debug flags selectively
// (WithDebug / WithDebugConfig) for insight without noise.
package baseapi
