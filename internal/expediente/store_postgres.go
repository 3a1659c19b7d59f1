package expediente

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"expedientes/pkg/sentinel"
)

// PostgresStore executes the expediente stored procedures. Each procedure is
// an opaque external contract (name + typed parameters + typed rows); business
// rules live in the service, but mutating procedures re-verify ownership and
// state server-side in the same statement as the write, closing the
// check-then-act window.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore creates a stored-procedure-backed case-file store.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type expedienteListRow struct {
	Expediente
	Total int64 `db:"total"`
}

func (s *PostgresStore) Listar(ctx context.Context, params ListParams) ([]Expediente, int64, error) {
	var rows []expedienteListRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, codigo, titulo, descripcion, estado, tecnico_id, tecnico_username,
		        aprobador_id, aprobador_username, justificacion, activo,
		        fecha_creacion, fecha_estado, total
		   FROM sp_expedientes_listar($1, $2, $3, $4, $5, $6, $7, $8)`,
		params.Page, params.PageSize,
		nullString(params.Q), nullString(params.Codigo), nullString(params.Estado),
		params.TecnicoID, params.FechaInicio, params.FechaFin)
	if err != nil {
		return nil, 0, fmt.Errorf("sp_expedientes_listar: %w", err)
	}

	expedientes := make([]Expediente, len(rows))
	var total int64
	for i, row := range rows {
		expedientes[i] = row.Expediente
		total = row.Total
	}
	return expedientes, total, nil
}

func (s *PostgresStore) Obtener(ctx context.Context, id int64) (*Expediente, error) {
	var e Expediente
	err := s.db.GetContext(ctx, &e,
		`SELECT id, codigo, titulo, descripcion, estado, tecnico_id, tecnico_username,
		        aprobador_id, aprobador_username, justificacion, activo,
		        fecha_creacion, fecha_estado
		   FROM sp_expedientes_obtener($1)`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("sp_expedientes_obtener: %w", err)
	}
	return &e, nil
}

func (s *PostgresStore) Crear(ctx context.Context, in CrearInput, tecnicoID int64) (*Expediente, error) {
	var e Expediente
	err := s.db.GetContext(ctx, &e,
		`SELECT id, codigo, titulo, descripcion, estado, tecnico_id, tecnico_username,
		        aprobador_id, aprobador_username, justificacion, activo,
		        fecha_creacion, fecha_estado
		   FROM sp_expedientes_crear($1, $2, $3, $4)`,
		in.Codigo, in.Titulo, in.Descripcion, tecnicoID)
	if err != nil {
		if isDuplicate(err) {
			return nil, sentinel.ErrConflict
		}
		return nil, fmt.Errorf("sp_expedientes_crear: %w", err)
	}
	return &e, nil
}

func (s *PostgresStore) Actualizar(ctx context.Context, id int64, in ActualizarInput, tecnicoID int64) error {
	var updated int
	err := s.db.GetContext(ctx, &updated,
		`SELECT updated FROM sp_expedientes_actualizar($1, $2, $3, $4, $5)`,
		id, in.Titulo, in.Descripcion, tecnicoID, tecnicoID)
	if err != nil {
		return fmt.Errorf("sp_expedientes_actualizar: %w", err)
	}
	if updated == 0 {
		// The procedure refuses both unknown ids and foreign ownership with
		// updated=0; the service already distinguished them via ResolveOwner.
		return sentinel.ErrNotOwner
	}
	return nil
}

func (s *PostgresStore) CambiarEstado(ctx context.Context, id int64, estado Estado, aprobadorID int64, justificacion *string) error {
	var updated int
	err := s.db.GetContext(ctx, &updated,
		`SELECT updated FROM sp_expedientes_cambiar_estado($1, $2, $3, $4)`,
		id, string(estado), aprobadorID, justificacion)
	if err != nil {
		return fmt.Errorf("sp_expedientes_cambiar_estado: %w", err)
	}
	if updated == 0 {
		return sentinel.ErrInvalidState
	}
	return nil
}

func (s *PostgresStore) ToggleActivo(ctx context.Context, id int64, activo bool, modificadoPor int64) error {
	var updated int
	err := s.db.GetContext(ctx, &updated,
		`SELECT updated FROM sp_expedientes_activar($1, $2, $3)`,
		id, activo, modificadoPor)
	if err != nil {
		return fmt.Errorf("sp_expedientes_activar: %w", err)
	}
	if updated == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ResolveOwner(ctx context.Context, id int64) (*Owner, error) {
	var owner Owner
	err := s.db.QueryRowxContext(ctx,
		`SELECT tecnico_id, activo FROM sp_expedientes_obtener($1)`, id).
		Scan(&owner.TecnicoID, &owner.Activo)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("sp_expedientes_obtener: %w", err)
	}
	return &owner, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func isDuplicate(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "23505" {
			return true
		}
		msg := strings.ToLower(pqErr.Message)
		return strings.Contains(msg, "duplicado") || strings.Contains(msg, "duplicate")
	}
	return false
}
