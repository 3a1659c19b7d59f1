package usuario

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

// PostgresStore executes the usuario stored procedures. The procedures are an
// opaque external contract: name plus typed parameters in, typed rows out.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore creates a stored-procedure-backed account store.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Crear(ctx context.Context, username, passwordHash string, rol string) (*Usuario, error) {
	var u Usuario
	err := s.db.GetContext(ctx, &u,
		`SELECT id, username, rol, activo, fecha_creacion FROM sp_usuarios_crear($1, $2, $3)`,
		username, passwordHash, rol)
	if err != nil {
		if isDuplicate(err) {
			return nil, sentinel.ErrConflict
		}
		return nil, fmt.Errorf("sp_usuarios_crear: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) GetByUsername(ctx context.Context, username string) (*Credenciales, error) {
	var c Credenciales
	err := s.db.GetContext(ctx, &c,
		`SELECT id, username, rol, activo, fecha_creacion, password_hash FROM sp_usuarios_login($1)`,
		username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("sp_usuarios_login: %w", err)
	}
	return &c, nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id int64) (*Credenciales, error) {
	var c Credenciales
	err := s.db.GetContext(ctx, &c,
		`SELECT id, username, rol, activo, fecha_creacion, password_hash FROM sp_usuarios_obtener($1)`,
		id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("sp_usuarios_obtener: %w", err)
	}
	return &c, nil
}

type usuarioListRow struct {
	Usuario
	Total int64 `db:"total"`
}

func (s *PostgresStore) Listar(ctx context.Context, page, pageSize int) ([]Usuario, int64, error) {
	var rows []usuarioListRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, username, rol, activo, fecha_creacion, total FROM sp_usuarios_listar($1, $2)`,
		page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("sp_usuarios_listar: %w", err)
	}

	usuarios := make([]Usuario, len(rows))
	var total int64
	for i, row := range rows {
		usuarios[i] = row.Usuario
		total = row.Total
	}
	return usuarios, total, nil
}

func (s *PostgresStore) ActualizarPassword(ctx context.Context, id int64, passwordHash string) error {
	var updated int
	err := s.db.GetContext(ctx, &updated,
		`SELECT updated FROM sp_usuarios_actualizar_password($1, $2)`,
		id, passwordHash)
	if err != nil {
		return fmt.Errorf("sp_usuarios_actualizar_password: %w", err)
	}
	if updated == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ToggleActivo(ctx context.Context, id int64, activo bool) error {
	var updated int
	err := s.db.GetContext(ctx, &updated,
		`SELECT updated FROM sp_usuarios_activar($1, $2)`,
		id, activo)
	if err != nil {
		return fmt.Errorf("sp_usuarios_activar: %w", err)
	}
	if updated == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// isDuplicate recognizes a unique-key violation, either raised directly by
// PostgreSQL (23505) or re-raised by the procedure with a duplicate marker.
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
