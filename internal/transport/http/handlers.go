package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"expedientes/internal/auth"
	"expedientes/internal/authz"
	"expedientes/internal/expediente"
	"expedientes/internal/indicio"
	"expedientes/internal/pagination"
	"expedientes/internal/usuario"
	"expedientes/pkg/domerrors"
)

// The handler-side service contracts. Handlers depend on these, not on the
// concrete services, so tests can substitute stubs.
type (
	AuthService interface {
		Login(ctx context.Context, username, password string) (*auth.LoginResult, error)
	}

	ExpedienteService interface {
		Listar(ctx context.Context, p authz.Principal, page pagination.Page, f pagination.Filtros) (*expediente.ListResult, error)
		Obtener(ctx context.Context, p authz.Principal, id int64) (*expediente.Expediente, error)
		Crear(ctx context.Context, p authz.Principal, in expediente.CrearInput) (*expediente.Expediente, error)
		Actualizar(ctx context.Context, p authz.Principal, id int64, in expediente.ActualizarInput) error
		CambiarEstado(ctx context.Context, p authz.Principal, id int64, cambio expediente.CambioEstado) (*expediente.Expediente, error)
		ToggleActivo(ctx context.Context, p authz.Principal, id int64, activo bool) error
		ListarExport(ctx context.Context, p authz.Principal, f pagination.Filtros) ([]expediente.Expediente, error)
	}

	IndicioService interface {
		ListarPorExpediente(ctx context.Context, p authz.Principal, expedienteID int64) ([]indicio.Indicio, error)
		Crear(ctx context.Context, p authz.Principal, expedienteID int64, in indicio.CrearInput) (*indicio.Indicio, error)
		Actualizar(ctx context.Context, p authz.Principal, id int64, in indicio.ActualizarInput) error
		ToggleActivo(ctx context.Context, p authz.Principal, id int64, activo bool) error
	}

	UsuarioService interface {
		Crear(ctx context.Context, p authz.Principal, in usuario.CrearInput) (*usuario.Usuario, error)
		Listar(ctx context.Context, p authz.Principal, page pagination.Page) (*usuario.ListResult, error)
		CambiarPassword(ctx context.Context, p authz.Principal, id int64, passwordActual, passwordNueva string) error
		ToggleActivo(ctx context.Context, p authz.Principal, id int64, activo bool) error
	}
)

// idParam parses the {id} route parameter.
func idParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domerrors.New(domerrors.CodeValidation, "id inválido")
	}
	return id, nil
}

// decodeJSON decodes the request body into v.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domerrors.New(domerrors.CodeValidation, "JSON inválido")
	}
	return nil
}

// activoBody is the shared toggle payload; the field is required, not
// defaulted, so an empty body cannot silently deactivate a record.
type activoBody struct {
	Activo *bool `json:"activo"`
}

func decodeActivo(r *http.Request) (bool, error) {
	var body activoBody
	if err := decodeJSON(r, &body); err != nil {
		return false, err
	}
	if body.Activo == nil {
		return false, domerrors.New(domerrors.CodeValidation, "activo es requerido")
	}
	return *body.Activo, nil
}
