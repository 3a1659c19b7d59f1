package auth

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"expedientes/internal/authz"
	"expedientes/internal/token"
	"expedientes/internal/usuario"
	"expedientes/pkg/domerrors"
)

func newLoginFixture(t *testing.T) (*Service, *usuario.MemoryStore, *bytes.Buffer) {
	t.Helper()
	store := usuario.NewMemoryStore()
	var logBuf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logBuf, nil))
	tokens := token.New("test-secret", time.Hour)
	return NewService(store, tokens, logger), store, &logBuf
}

func seed(t *testing.T, store *usuario.MemoryStore, username, password string) *usuario.Usuario {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u, err := store.Crear(context.Background(), username, string(hash), string(authz.RoleTecnico))
	require.NoError(t, err)
	return u
}

func TestLoginOK(t *testing.T) {
	svc, store, _ := newLoginFixture(t)
	u := seed(t, store, "tecnico1", "password123")

	res, err := svc.Login(context.Background(), "tecnico1", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, u.ID, res.User.ID)
	assert.Equal(t, "tecnico1", res.User.Username)
	assert.Equal(t, authz.RoleTecnico, res.User.Rol)
}

func TestLoginMissingFields(t *testing.T) {
	svc, _, _ := newLoginFixture(t)

	_, err := svc.Login(context.Background(), "", "password123")
	require.Error(t, err)
	assert.True(t, domerrors.Is(err, domerrors.CodeValidation))

	_, err = svc.Login(context.Background(), "tecnico1", "")
	require.Error(t, err)
	assert.True(t, domerrors.Is(err, domerrors.CodeValidation))
}

func TestLoginFailureIsIndistinguishable(t *testing.T) {
	svc, store, logBuf := newLoginFixture(t)
	seed(t, store, "tecnico1", "password123")

	_, errUnknown := svc.Login(context.Background(), "nadie", "password123")
	unknownLog := logBuf.String()
	logBuf.Reset()
	_, errWrongPass := svc.Login(context.Background(), "tecnico1", "incorrecta")
	wrongPassLog := logBuf.String()

	require.Error(t, errUnknown)
	require.Error(t, errWrongPass)
	assert.True(t, domerrors.Is(errUnknown, domerrors.CodeUnauthorized))
	assert.True(t, domerrors.Is(errWrongPass, domerrors.CodeUnauthorized))

	// Same client-facing message for both failure modes.
	assert.Equal(t, errUnknown.Error(), errWrongPass.Error())
	assert.Contains(t, errUnknown.Error(), "Credenciales inválidas")

	// The log lines must not distinguish the failure modes either.
	assert.Contains(t, unknownLog, "login failed")
	assert.Contains(t, wrongPassLog, "login failed")
	assert.NotContains(t, unknownLog, "nadie")
	assert.NotContains(t, wrongPassLog, "tecnico1")
}

func TestLoginDeactivatedAccount(t *testing.T) {
	svc, store, _ := newLoginFixture(t)
	u := seed(t, store, "tecnico1", "password123")
	require.NoError(t, store.ToggleActivo(context.Background(), u.ID, false))

	_, err := svc.Login(context.Background(), "tecnico1", "password123")
	require.Error(t, err)
	assert.True(t, domerrors.Is(err, domerrors.CodeUnauthorized))
	assert.Contains(t, err.Error(), "Credenciales inválidas")
}

func TestLoginTokenIsValid(t *testing.T) {
	svc, store, _ := newLoginFixture(t)
	u := seed(t, store, "tecnico1", "password123")

	res, err := svc.Login(context.Background(), "tecnico1", "password123")
	require.NoError(t, err)

	claims, err := token.New("test-secret", time.Hour).Validate(res.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, "tecnico", claims.Rol)
}
