package usuario

import "context"

// Store is the persistence contract for accounts. Implementations translate
// backend facts into sentinel errors (sentinel.ErrNotFound,
// sentinel.ErrConflict); the service maps those to domain errors.
type Store interface {
	Crear(ctx context.Context, username, passwordHash string, rol string) (*Usuario, error)
	GetByUsername(ctx context.Context, username string) (*Credenciales, error)
	GetByID(ctx context.Context, id int64) (*Credenciales, error)
	Listar(ctx context.Context, page, pageSize int) ([]Usuario, int64, error)
	ActualizarPassword(ctx context.Context, id int64, passwordHash string) error
	ToggleActivo(ctx context.Context, id int64, activo bool) error
}
