package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expedientes/pkg/domerrors"
)

func TestPolicyTable(t *testing.T) {
	cases := []struct {
		op          Operation
		tecnico     bool
		coordinador bool
	}{
		{OpListExpedientes, true, true},
		{OpReadExpediente, true, true},
		{OpCreateExpediente, true, false},
		{OpUpdateExpediente, true, false},
		{OpChangeStatus, false, true},
		{OpToggleActiveExpediente, true, true},
		{OpExportExpedientes, true, true},
		{OpListIndicios, true, true},
		{OpCreateIndicio, true, false},
		{OpUpdateIndicio, true, false},
		{OpToggleActiveIndicio, true, true},
		{OpCreateUser, false, true},
		{OpListUsers, false, true},
		{OpChangePassword, true, true},
		{OpToggleActiveUser, false, true},
	}

	require.Len(t, cases, len(Operations()), "policy table and test table must cover the same operations")

	for _, tc := range cases {
		t.Run(string(tc.op), func(t *testing.T) {
			assert.Equal(t, tc.tecnico, Allowed(RoleTecnico, tc.op), "tecnico")
			assert.Equal(t, tc.coordinador, Allowed(RoleCoordinador, tc.op), "coordinador")
		})
	}
}

func TestAuthorizeDeniesUnknownRole(t *testing.T) {
	for _, op := range Operations() {
		assert.False(t, Allowed(Role("auditor"), op), "unknown role must be denied for %s", op)
	}
}

func TestAuthorizeReturnsForbidden(t *testing.T) {
	err := Authorize(RoleTecnico, OpChangeStatus)
	require.Error(t, err)
	assert.True(t, domerrors.Is(err, domerrors.CodeForbidden))
	assert.NoError(t, Authorize(RoleCoordinador, OpChangeStatus))
}

func TestRequiresOwnership(t *testing.T) {
	assert.True(t, RequiresOwnership(RoleTecnico, OpUpdateExpediente))
	assert.True(t, RequiresOwnership(RoleTecnico, OpCreateIndicio))
	assert.True(t, RequiresOwnership(RoleTecnico, OpToggleActiveExpediente))
	assert.False(t, RequiresOwnership(RoleTecnico, OpCreateExpediente))
	// Coordinators are never ownership-scoped.
	assert.False(t, RequiresOwnership(RoleCoordinador, OpListExpedientes))
	assert.False(t, RequiresOwnership(RoleCoordinador, OpToggleActiveExpediente))
}
