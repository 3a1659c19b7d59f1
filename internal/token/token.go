// Package token issues and validates the signed session tokens carrying
// identity and role claims.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"expedientes/internal/authz"
	"expedientes/pkg/domerrors"
)

// Claims are the application claims embedded in every access token.
type Claims struct {
	UserID   int64  `json:"id"`
	Username string `json:"username"`
	Rol      string `json:"rol"`
	jwt.RegisteredClaims
}

// Service signs and validates tokens. Tokens are stateless: a password change
// does not invalidate already-issued tokens, they simply expire.
type Service struct {
	signingKey []byte
	ttl        time.Duration
}

// New creates a token service with the given HS256 secret and expiry window.
func New(secret string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Service{signingKey: []byte(secret), ttl: ttl}
}

// Issue signs a token for the given identity.
func (s *Service) Issue(userID int64, username string, rol authz.Role) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   userID,
		Username: username,
		Rol:      string(rol),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
}

// Validate parses and verifies a token, returning its claims. All failure
// modes map to an unauthorized domain error.
func (s *Service) Validate(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domerrors.New(domerrors.CodeUnauthorized, "Token expirado")
		}
		return nil, domerrors.New(domerrors.CodeUnauthorized, "Token inválido")
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, domerrors.New(domerrors.CodeUnauthorized, "Token inválido")
	}
	if !authz.Role(claims.Rol).IsValid() {
		return nil, domerrors.New(domerrors.CodeUnauthorized, "Token inválido")
	}
	return claims, nil
}
