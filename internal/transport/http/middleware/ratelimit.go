package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/baechuer/homi/internal/logger"
	"github.com/baechuer/homi/internal/metrics"
	"github.com/baechuer/homi/internal/ratelimit"
)

type RateLimitedFunc func(http.ResponseWriter, *http.Request, ratelimit.Decision, string)

// RateLimitByIP consumes one point of policy per request, keyed by client IP.
// All routes wrapped with the same policy share one counter per IP.
// A limiter error lets the request through.
func RateLimitByIP(limiter ratelimit.Limiter, policy ratelimit.Policy, reject RateLimitedFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			d, err := limiter.Allow(r.Context(), policy, "ip:"+clientIP(r))
			if err != nil {
				logger.WithCtx(r.Context()).Warn().Err(err).Str("policy", policy.Name).Msg("rate limiter failed; allowing")
				next.ServeHTTP(w, r)
				return
			}
			if !d.Allowed {
				metrics.RecordRateLimited(policy.Name)
				reject(w, r, d, policy.Name)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP reads RemoteAddr; chi's RealIP rewrites it when proxy headers are trusted.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}
