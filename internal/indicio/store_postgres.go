package indicio

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"expedientes/pkg/sentinel"
)

// PostgresStore executes the indicio stored procedures.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore creates a stored-procedure-backed evidence store.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) ListarPorExpediente(ctx context.Context, expedienteID int64) ([]Indicio, error) {
	indicios := make([]Indicio, 0)
	err := s.db.SelectContext(ctx, &indicios,
		`SELECT id, expediente_id, descripcion, peso, color, tamano, activo, fecha_creacion
		   FROM sp_indicios_listar_por_expediente($1)`, expedienteID)
	if err != nil {
		return nil, fmt.Errorf("sp_indicios_listar_por_expediente: %w", err)
	}
	return indicios, nil
}

func (s *PostgresStore) Obtener(ctx context.Context, id int64) (*Indicio, error) {
	var i Indicio
	err := s.db.GetContext(ctx, &i,
		`SELECT id, expediente_id, descripcion, peso, color, tamano, activo, fecha_creacion
		   FROM sp_indicios_obtener($1)`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("sp_indicios_obtener: %w", err)
	}
	return &i, nil
}

func (s *PostgresStore) Crear(ctx context.Context, expedienteID int64, in CrearInput, creadoPor int64) (*Indicio, error) {
	var i Indicio
	err := s.db.GetContext(ctx, &i,
		`SELECT id, expediente_id, descripcion, peso, color, tamano, activo, fecha_creacion
		   FROM sp_indicios_crear($1, $2, $3, $4, $5, $6)`,
		expedienteID, in.Descripcion, in.Peso, in.Color, in.Tamano, creadoPor)
	if err != nil {
		return nil, fmt.Errorf("sp_indicios_crear: %w", err)
	}
	return &i, nil
}

func (s *PostgresStore) Actualizar(ctx context.Context, id int64, in ActualizarInput, modificadoPor int64) error {
	var updated int
	err := s.db.GetContext(ctx, &updated,
		`SELECT updated FROM sp_indicios_actualizar($1, $2, $3, $4, $5, $6)`,
		id, in.Descripcion, in.Peso, in.Color, in.Tamano, modificadoPor)
	if err != nil {
		return fmt.Errorf("sp_indicios_actualizar: %w", err)
	}
	if updated == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ToggleActivo(ctx context.Context, id int64, activo bool, modificadoPor int64) error {
	var updated int
	err := s.db.GetContext(ctx, &updated,
		`SELECT updated FROM sp_indicios_activar($1, $2, $3)`,
		id, activo, modificadoPor)
	if err != nil {
		return fmt.Errorf("sp_indicios_activar: %w", err)
	}
	if updated == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
