// Package authz is the central role policy engine. Every permission decision
// in the system goes through the table below; handlers and services never
// compare role strings on their own.
package authz

import "expedientes/pkg/domerrors"

// Role is one of the two workflow roles.
type Role string

const (
	RoleTecnico     Role = "tecnico"
	RoleCoordinador Role = "coordinador"
)

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	return r == RoleTecnico || r == RoleCoordinador
}

// Principal is the authenticated caller, as carried in the request context.
type Principal struct {
	ID       int64
	Username string
	Rol      Role
}

// Operation is one entry of the closed operation set.
type Operation string

const (
	OpListExpedientes        Operation = "list-expedientes"
	OpReadExpediente         Operation = "read-expediente"
	OpCreateExpediente       Operation = "create-expediente"
	OpUpdateExpediente       Operation = "update-expediente"
	OpChangeStatus           Operation = "change-status"
	OpToggleActiveExpediente Operation = "toggle-active-expediente"
	OpExportExpedientes      Operation = "export-expedientes"
	OpListIndicios           Operation = "list-indicios"
	OpCreateIndicio          Operation = "create-indicio"
	OpUpdateIndicio          Operation = "update-indicio"
	OpToggleActiveIndicio    Operation = "toggle-active-indicio"
	OpCreateUser             Operation = "create-user"
	OpListUsers              Operation = "list-users"
	OpChangePassword         Operation = "change-password"
	OpToggleActiveUser       Operation = "toggle-active-user"
)

type decision struct {
	tecnico     bool
	coordinador bool
	// ownership marks operations a technician may only perform on records they
	// own (directly or through the parent expediente). The owner check itself
	// runs in the service against the same persistence snapshot as the write.
	ownership bool
}

// policy is the single source of truth. Adding a role or operation is a
// one-place change here.
var policy = map[Operation]decision{
	OpListExpedientes:        {tecnico: true, coordinador: true, ownership: true},
	OpReadExpediente:         {tecnico: true, coordinador: true, ownership: true},
	OpCreateExpediente:       {tecnico: true},
	OpUpdateExpediente:       {tecnico: true, ownership: true},
	OpChangeStatus:           {coordinador: true},
	OpToggleActiveExpediente: {tecnico: true, coordinador: true, ownership: true},
	OpExportExpedientes:      {tecnico: true, coordinador: true, ownership: true},
	OpListIndicios:           {tecnico: true, coordinador: true, ownership: true},
	OpCreateIndicio:          {tecnico: true, ownership: true},
	OpUpdateIndicio:          {tecnico: true, ownership: true},
	OpToggleActiveIndicio:    {tecnico: true, coordinador: true, ownership: true},
	OpCreateUser:             {coordinador: true},
	OpListUsers:              {coordinador: true},
	OpChangePassword:         {tecnico: true, coordinador: true},
	OpToggleActiveUser:       {coordinador: true},
}

// Allowed reports the raw table decision for (role, operation).
func Allowed(role Role, op Operation) bool {
	d, ok := policy[op]
	if !ok {
		return false
	}
	switch role {
	case RoleTecnico:
		return d.tecnico
	case RoleCoordinador:
		return d.coordinador
	default:
		return false
	}
}

// Authorize returns a forbidden domain error when (role, operation) is denied.
func Authorize(role Role, op Operation) error {
	if !Allowed(role, op) {
		return domerrors.New(domerrors.CodeForbidden, "Rol no autorizado")
	}
	return nil
}

// RequiresOwnership reports whether a technician-role caller must additionally
// own the record (coordinators are exempt where the table allows them at all).
func RequiresOwnership(role Role, op Operation) bool {
	if role != RoleTecnico {
		return false
	}
	d, ok := policy[op]
	return ok && d.ownership
}

// Operations returns the closed operation set, for exhaustive tests.
func Operations() []Operation {
	ops := make([]Operation, 0, len(policy))
	for op := range policy {
		ops = append(ops, op)
	}
	return ops
}
