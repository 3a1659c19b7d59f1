// Package ratelimit applies fixed-window per-client request quotas.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Rule is one named quota.
type Rule struct {
	Name    string
	Limit   int
	Window  time.Duration
	Message string
}

// The quotas applied by the router, keyed by client IP.
var (
	RuleLogin = Rule{
		Name:    "login",
		Limit:   5,
		Window:  15 * time.Minute,
		Message: "Demasiados intentos de login. Intente de nuevo más tarde",
	}
	RuleExport = Rule{
		Name:    "export",
		Limit:   10,
		Window:  time.Minute,
		Message: "Demasiadas exportaciones. Intente de nuevo más tarde",
	}
	RuleAPI = Rule{
		Name:    "api",
		Limit:   100,
		Window:  time.Minute,
		Message: "Demasiadas peticiones. Intente de nuevo más tarde",
	}
)

// Result is the outcome of one quota check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter is the wait the client should observe before retrying.
func (r Result) RetryAfter(now time.Time) time.Duration {
	d := r.ResetAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// Store counts hits per key within a fixed window. Incr returns the
// post-increment count and the moment the window resets; the
// increment-and-read must be atomic.
type Store interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int64, resetAt time.Time, err error)
}

// Limiter evaluates rules against a Store. Store failures fail open: an
// unreachable counter backend degrades protection, never availability.
type Limiter struct {
	store    Store
	logger   *slog.Logger
	disabled bool
}

// NewLimiter creates a limiter. disabled short-circuits every check to
// allowed, for tests and local development.
func NewLimiter(store Store, logger *slog.Logger, disabled bool) *Limiter {
	return &Limiter{store: store, logger: logger, disabled: disabled}
}

// Check consumes one unit of the client's quota under rule.
func (l *Limiter) Check(ctx context.Context, rule Rule, clientIP string) Result {
	if l.disabled {
		return Result{Allowed: true, Limit: rule.Limit, Remaining: rule.Limit}
	}

	key := fmt.Sprintf("ratelimit:%s:%s", rule.Name, clientIP)
	count, resetAt, err := l.store.Incr(ctx, key, rule.Window)
	if err != nil {
		l.logger.WarnContext(ctx, "rate limit store unavailable, failing open",
			"rule", rule.Name, "error", err)
		return Result{Allowed: true, Limit: rule.Limit, Remaining: rule.Limit}
	}

	remaining := rule.Limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Allowed:   count <= int64(rule.Limit),
		Limit:     rule.Limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
}
