package indicio

import "context"

// Store is the persistence contract for evidence items. Unknown ids surface
// as sentinel.ErrNotFound.
type Store interface {
	ListarPorExpediente(ctx context.Context, expedienteID int64) ([]Indicio, error)
	Obtener(ctx context.Context, id int64) (*Indicio, error)
	Crear(ctx context.Context, expedienteID int64, in CrearInput, creadoPor int64) (*Indicio, error)
	Actualizar(ctx context.Context, id int64, in ActualizarInput, modificadoPor int64) error
	ToggleActivo(ctx context.Context, id int64, activo bool, modificadoPor int64) error
}
