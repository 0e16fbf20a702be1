package httpadapter

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/PabloGalante/eco-agent/internal/observability"
)

// withRequestLogging moves chi's request id into the context logger and
// logs every request.
func withRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ctx := r.Context()
		if reqID := middleware.GetReqID(ctx); reqID != "" {
			ctx = observability.WithRequestID(ctx, reqID)
			r = r.WithContext(ctx)
		}

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		observability.LoggerFromContext(ctx).Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// withCORS adds CORS headers to allow calls from the web front-end.
func withCORS(origins []string) func(http.Handler) http.Handler {
	allowAll := len(origins) == 0
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			switch {
			case allowAll:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case allowed[origin]:
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// callerIdleTTL is how long a caller may stay silent before its bucket is
// dropped. It must exceed the one minute a bucket takes to refill.
const callerIdleTTL = 2 * time.Minute

type caller struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a token bucket per caller key (user id or client IP).
type RateLimiter struct {
	mu        sync.Mutex
	callers   map[string]*caller
	limit     rate.Limit
	burst     int
	now       func() time.Time
	lastSweep time.Time
}

// NewRateLimiter allows perMinute requests per caller. perMinute <= 0
// disables limiting.
func NewRateLimiter(perMinute int) *RateLimiter {
	if perMinute <= 0 {
		return &RateLimiter{limit: rate.Inf}
	}
	return &RateLimiter{
		callers: make(map[string]*caller),
		limit:   rate.Limit(float64(perMinute) / 60.0),
		burst:   perMinute,
		now:     time.Now,
	}
}

// Allow reports whether the caller still has a token.
func (rl *RateLimiter) Allow(key string) bool {
	if rl == nil || rl.limit == rate.Inf {
		return true
	}

	rl.mu.Lock()
	now := rl.now()
	if now.Sub(rl.lastSweep) >= callerIdleTTL {
		rl.sweep(now)
	}
	c, ok := rl.callers[key]
	if !ok {
		c = &caller{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.callers[key] = c
	}
	c.lastSeen = now
	allowed := c.limiter.AllowN(now, 1)
	rl.mu.Unlock()

	return allowed
}

// sweep drops callers idle for longer than callerIdleTTL. rl.mu must be held.
func (rl *RateLimiter) sweep(now time.Time) {
	for key, c := range rl.callers {
		if now.Sub(c.lastSeen) > callerIdleTTL {
			delete(rl.callers, key)
		}
	}
	rl.lastSweep = now
}

// clientKey identifies anonymous callers by IP.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// withIPRateLimit rejects callers over their budget with 429.
func withIPRateLimit(rl *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.Allow("ip:" + clientKey(r)) {
				tooManyRequests(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
