package ratelimit

import (
	"net/http"
	"strconv"
	"time"

	"expedientes/internal/platform/middleware"
	"expedientes/pkg/domerrors"
	"expedientes/pkg/httputil"
)

// Middleware enforces rule on every request through it, keyed by client IP.
// Quota headers are set on allowed and denied responses alike.
func Middleware(limiter *Limiter, rule Rule) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := middleware.GetClientIP(r.Context())
			if ip == "" {
				ip = middleware.ClientIPFromRequest(r)
			}

			res := limiter.Check(r.Context(), rule, ip)

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			if !res.ResetAt.IsZero() {
				h.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))
			}

			if !res.Allowed {
				retry := int(res.RetryAfter(time.Now()).Seconds()) + 1
				h.Set("Retry-After", strconv.Itoa(retry))
				httputil.WriteError(w, domerrors.New(domerrors.CodeRateLimited, rule.Message))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
