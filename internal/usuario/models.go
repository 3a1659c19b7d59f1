package usuario

import (
	"time"

	"expedientes/internal/authz"
)

// Usuario is an account. Accounts are never hard-deleted, only deactivated.
type Usuario struct {
	ID            int64      `json:"id" db:"id"`
	Username      string     `json:"username" db:"username"`
	Rol           authz.Role `json:"rol" db:"rol"`
	Activo        bool       `json:"activo" db:"activo"`
	FechaCreacion time.Time  `json:"fecha_creacion" db:"fecha_creacion"`
}

// Credenciales couples an account with its stored password hash. It never
// leaves the service layer.
type Credenciales struct {
	Usuario
	PasswordHash string `json:"-" db:"password_hash"`
}

// CrearInput is the payload for creating an account.
type CrearInput struct {
	Username string     `json:"username"`
	Password string     `json:"password"`
	Rol      authz.Role `json:"rol"`
}
