package expediente

import "context"

// Owner is the resolved ownership fact for a case file.
type Owner struct {
	TecnicoID int64
	Activo    bool
}

// Store is the persistence contract for case files. Mutations carry the acting
// technician id so the backend re-verifies ownership in the same statement as
// the write; implementations surface refusals as sentinel.ErrNotOwner and
// unknown ids as sentinel.ErrNotFound.
type Store interface {
	Listar(ctx context.Context, params ListParams) ([]Expediente, int64, error)
	Obtener(ctx context.Context, id int64) (*Expediente, error)
	Crear(ctx context.Context, in CrearInput, tecnicoID int64) (*Expediente, error)
	Actualizar(ctx context.Context, id int64, in ActualizarInput, tecnicoID int64) error
	CambiarEstado(ctx context.Context, id int64, estado Estado, aprobadorID int64, justificacion *string) error
	ToggleActivo(ctx context.Context, id int64, activo bool, modificadoPor int64) error
	ResolveOwner(ctx context.Context, id int64) (*Owner, error)
}
