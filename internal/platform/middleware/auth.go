package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"expedientes/internal/authz"
	"expedientes/internal/token"
	"expedientes/pkg/domerrors"
	"expedientes/pkg/httputil"
)

// TokenValidator validates a bearer token and returns its claims.
type TokenValidator interface {
	Validate(tokenString string) (*token.Claims, error)
}

type contextKeyPrincipal struct{}

// GetPrincipal retrieves the authenticated caller from the context. The zero
// Principal (ID 0, empty role) means the request was not authenticated.
func GetPrincipal(ctx context.Context) authz.Principal {
	if p, ok := ctx.Value(contextKeyPrincipal{}).(authz.Principal); ok {
		return p
	}
	return authz.Principal{}
}

// WithPrincipal injects an authenticated caller into a context. For service
// and handler tests that bypass the HTTP middleware chain.
func WithPrincipal(ctx context.Context, p authz.Principal) context.Context {
	return context.WithValue(ctx, contextKeyPrincipal{}, p)
}

// RequireAuth validates the Authorization bearer token and threads the caller
// identity through the request context. Missing and invalid tokens are both
// answered 401 with the uniform envelope.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || raw == "" {
				logger.WarnContext(ctx, "unauthorized - missing token",
					"request_id", GetRequestID(ctx),
				)
				httputil.WriteError(w, domerrors.New(domerrors.CodeUnauthorized, "Token requerido"))
				return
			}

			claims, err := validator.Validate(raw)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized - invalid token",
					"request_id", GetRequestID(ctx),
					"error", err.Error(),
				)
				httputil.WriteError(w, err)
				return
			}

			principal := authz.Principal{
				ID:       claims.UserID,
				Username: claims.Username,
				Rol:      authz.Role(claims.Rol),
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(ctx, principal)))
		})
	}
}
