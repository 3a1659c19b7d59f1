// Package auth implements the login flow: credential verification plus token
// issuance.
package auth

import (
	"context"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"expedientes/internal/token"
	"expedientes/internal/usuario"
	"expedientes/pkg/domerrors"
)

// CredentialStore looks up login credentials by username. Implemented by the
// usuario stores; lookups behave as if deactivated accounts do not exist.
type CredentialStore interface {
	GetByUsername(ctx context.Context, username string) (*usuario.Credenciales, error)
}

// Service verifies credentials and issues tokens.
type Service struct {
	store  CredentialStore
	tokens *token.Service
	logger *slog.Logger
}

// NewService creates the login service.
func NewService(store CredentialStore, tokens *token.Service, logger *slog.Logger) *Service {
	return &Service{store: store, tokens: tokens, logger: logger}
}

// LoginResult carries the issued token and the public view of the account.
type LoginResult struct {
	Token string          `json:"token"`
	User  usuario.Usuario `json:"user"`
}

// Login verifies a username/password pair. Unknown username and wrong
// password fail identically, in the response and in the log line, so neither
// channel reveals which usernames exist.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, domerrors.New(domerrors.CodeValidation, "username y password son requeridos")
	}

	cred, err := s.store.GetByUsername(ctx, username)
	if err == nil {
		err = bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password))
	}
	if err != nil {
		s.logger.WarnContext(ctx, "login failed")
		return nil, domerrors.New(domerrors.CodeUnauthorized, "Credenciales inválidas")
	}

	tok, err := s.tokens.Issue(cred.ID, cred.Username, cred.Rol)
	if err != nil {
		return nil, domerrors.Wrap(err, domerrors.CodeInternal, "no se pudo iniciar sesión")
	}

	s.logger.InfoContext(ctx, "login ok", "usuario_id", cred.ID, "rol", cred.Rol)
	return &LoginResult{Token: tok, User: cred.Usuario}, nil
}
