package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expedientes/internal/authz"
	"expedientes/pkg/domerrors"
)

func TestIssueAndValidate(t *testing.T) {
	svc := New("test-secret", time.Hour)

	tok, err := svc.Issue(7, "tecnico1", authz.RoleTecnico)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := svc.Validate(tok)
	require.NoError(t, err)
	assert.EqualValues(t, 7, claims.UserID)
	assert.Equal(t, "tecnico1", claims.Username)
	assert.Equal(t, "tecnico", claims.Rol)
	assert.NotEmpty(t, claims.ID, "jti must be set")
}

func TestValidateExpired(t *testing.T) {
	svc := New("test-secret", -time.Minute)

	tok, err := svc.Issue(1, "tecnico1", authz.RoleTecnico)
	require.NoError(t, err)

	_, err = svc.Validate(tok)
	require.Error(t, err)
	assert.True(t, domerrors.Is(err, domerrors.CodeUnauthorized))
}

func TestValidateWrongKey(t *testing.T) {
	issuer := New("secret-a", time.Hour)
	verifier := New("secret-b", time.Hour)

	tok, err := issuer.Issue(1, "tecnico1", authz.RoleTecnico)
	require.NoError(t, err)

	_, err = verifier.Validate(tok)
	require.Error(t, err)
	assert.True(t, domerrors.Is(err, domerrors.CodeUnauthorized))
}

func TestValidateGarbage(t *testing.T) {
	svc := New("test-secret", time.Hour)
	_, err := svc.Validate("not.a.token")
	require.Error(t, err)
	assert.True(t, domerrors.Is(err, domerrors.CodeUnauthorized))
}

func TestValidateRejectsUnknownRole(t *testing.T) {
	svc := New("test-secret", time.Hour)
	tok, err := svc.Issue(1, "ghost", authz.Role("auditor"))
	require.NoError(t, err)

	_, err = svc.Validate(tok)
	require.Error(t, err)
	assert.True(t, domerrors.Is(err, domerrors.CodeUnauthorized))
}
