package expediente

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"expedientes/internal/authz"
	"expedientes/internal/pagination"
	"expedientes/pkg/domerrors"
	"expedientes/pkg/sentinel"
)

const (
	maxCodigo      = 50
	maxTitulo      = 255
	maxDescripcion = 4000
	exportPageSize = 10000
)

// Service enforces the case-file business rules: role scoping on reads,
// ownership on writes, and the status state machine. Every rule is checked
// here and re-verified by the stored procedure at the point of mutation.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService creates the case-file service.
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// ListResult is a page of case files.
type ListResult struct {
	Expedientes []Expediente
	Total       int64
}

// Listar returns a page of case files. Technicians are force-scoped to their
// own records; coordinators see everything unless they filter by tecnicoId.
func (s *Service) Listar(ctx context.Context, p authz.Principal, page pagination.Page, f pagination.Filtros) (*ListResult, error) {
	if err := authz.Authorize(p.Rol, authz.OpListExpedientes); err != nil {
		return nil, err
	}

	params := listParams(page.Page, page.PageSize, f)
	if authz.RequiresOwnership(p.Rol, authz.OpListExpedientes) {
		params.TecnicoID = &p.ID
	}

	expedientes, total, err := s.store.Listar(ctx, params)
	if err != nil {
		return nil, domerrors.Wrap(err, domerrors.CodeInternal, "no se pudo listar expedientes")
	}
	return &ListResult{Expedientes: expedientes, Total: total}, nil
}

// Obtener fetches one case file, applying the same visibility scoping as
// Listar.
func (s *Service) Obtener(ctx context.Context, p authz.Principal, id int64) (*Expediente, error) {
	if err := authz.Authorize(p.Rol, authz.OpReadExpediente); err != nil {
		return nil, err
	}

	e, err := s.store.Obtener(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, domerrors.New(domerrors.CodeNotFound, "Expediente no encontrado")
		}
		return nil, domerrors.Wrap(err, domerrors.CodeInternal, "no se pudo obtener el expediente")
	}
	if authz.RequiresOwnership(p.Rol, authz.OpReadExpediente) && e.TecnicoID != p.ID {
		return nil, domerrors.New(domerrors.CodeForbidden, "Solo el dueño puede acceder al expediente")
	}
	return e, nil
}

// Crear registers a new case file owned by the calling technician. Ownership
// never changes afterwards.
func (s *Service) Crear(ctx context.Context, p authz.Principal, in CrearInput) (*Expediente, error) {
	if err := authz.Authorize(p.Rol, authz.OpCreateExpediente); err != nil {
		return nil, err
	}

	in.Codigo = strings.TrimSpace(in.Codigo)
	in.Titulo = strings.TrimSpace(in.Titulo)
	in.Descripcion = strings.TrimSpace(in.Descripcion)
	if in.Codigo == "" || in.Descripcion == "" {
		return nil, domerrors.New(domerrors.CodeValidation, "codigo y descripcion son obligatorios")
	}
	if len(in.Codigo) > maxCodigo || len(in.Titulo) > maxTitulo || len(in.Descripcion) > maxDescripcion {
		return nil, domerrors.New(domerrors.CodeValidation, "codigo, titulo o descripcion exceden la longitud permitida")
	}

	e, err := s.store.Crear(ctx, in, p.ID)
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, domerrors.New(domerrors.CodeConflict, "El código de expediente ya existe")
		}
		return nil, domerrors.Wrap(err, domerrors.CodeInternal, "no se pudo crear el expediente")
	}

	s.logger.InfoContext(ctx, "expediente creado", "expediente_id", e.ID, "codigo", e.Codigo, "tecnico_id", p.ID)
	return e, nil
}

// Actualizar updates the content fields. Only the owning technician may do
// this; the stored procedure re-checks ownership when writing.
func (s *Service) Actualizar(ctx context.Context, p authz.Principal, id int64, in ActualizarInput) error {
	if err := authz.Authorize(p.Rol, authz.OpUpdateExpediente); err != nil {
		return err
	}

	in.Titulo = strings.TrimSpace(in.Titulo)
	in.Descripcion = strings.TrimSpace(in.Descripcion)
	if in.Titulo == "" || in.Descripcion == "" {
		return domerrors.New(domerrors.CodeValidation, "titulo y descripcion son obligatorios")
	}
	if len(in.Titulo) > maxTitulo || len(in.Descripcion) > maxDescripcion {
		return domerrors.New(domerrors.CodeValidation, "titulo o descripcion exceden la longitud permitida")
	}

	if err := s.checkOwnership(ctx, p, authz.OpUpdateExpediente, id); err != nil {
		return err
	}

	if err := s.store.Actualizar(ctx, id, in, p.ID); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return domerrors.New(domerrors.CodeNotFound, "Expediente no encontrado")
		case errors.Is(err, sentinel.ErrNotOwner):
			return domerrors.New(domerrors.CodeForbidden, "Solo el dueño puede modificar el expediente")
		default:
			return domerrors.Wrap(err, domerrors.CodeInternal, "no se pudo actualizar el expediente")
		}
	}

	s.logger.InfoContext(ctx, "expediente actualizado", "expediente_id", id, "tecnico_id", p.ID)
	return nil
}

// CambiarEstado runs a workflow transition. Coordinator only; the approver id
// and status timestamp are recorded atomically with the status write.
func (s *Service) CambiarEstado(ctx context.Context, p authz.Principal, id int64, cambio CambioEstado) (*Expediente, error) {
	if err := authz.Authorize(p.Rol, authz.OpChangeStatus); err != nil {
		return nil, err
	}

	actual, err := s.store.Obtener(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, domerrors.New(domerrors.CodeNotFound, "Expediente no encontrado")
		}
		return nil, domerrors.Wrap(err, domerrors.CodeInternal, "no se pudo cambiar el estado")
	}

	if err := ValidarTransicion(actual.Estado, cambio.Estado, cambio.Justificacion); err != nil {
		return nil, err
	}

	var justificacion *string
	if cambio.Estado == EstadoRechazado {
		j := strings.TrimSpace(cambio.Justificacion)
		justificacion = &j
	}

	if err := s.store.CambiarEstado(ctx, id, cambio.Estado, p.ID, justificacion); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, domerrors.New(domerrors.CodeNotFound, "Expediente no encontrado")
		case errors.Is(err, sentinel.ErrInvalidState):
			// Lost a race with another coordinator; the procedure refused.
			return nil, domerrors.New(domerrors.CodeValidation, "No se pudo cambiar el estado")
		default:
			return nil, domerrors.Wrap(err, domerrors.CodeInternal, "no se pudo cambiar el estado")
		}
	}

	s.logger.InfoContext(ctx, "estado cambiado",
		"expediente_id", id, "estado", cambio.Estado, "aprobador_id", p.ID)

	e, err := s.store.Obtener(ctx, id)
	if err != nil {
		return nil, domerrors.Wrap(err, domerrors.CodeInternal, "no se pudo obtener el expediente")
	}
	return e, nil
}

// ToggleActivo soft-deletes or restores a case file. Technicians may only
// toggle their own; coordinators any. Idempotent.
func (s *Service) ToggleActivo(ctx context.Context, p authz.Principal, id int64, activo bool) error {
	if err := authz.Authorize(p.Rol, authz.OpToggleActiveExpediente); err != nil {
		return err
	}
	if err := s.checkOwnership(ctx, p, authz.OpToggleActiveExpediente, id); err != nil {
		return err
	}

	if err := s.store.ToggleActivo(ctx, id, activo, p.ID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return domerrors.New(domerrors.CodeNotFound, "Expediente no encontrado")
		}
		return domerrors.Wrap(err, domerrors.CodeInternal, "No se pudo actualizar activo")
	}

	s.logger.InfoContext(ctx, "expediente activo cambiado", "expediente_id", id, "activo", activo, "modificado_por", p.ID)
	return nil
}

// ListarExport returns the full role-scoped result set for spreadsheet
// export, ignoring pagination.
func (s *Service) ListarExport(ctx context.Context, p authz.Principal, f pagination.Filtros) ([]Expediente, error) {
	if err := authz.Authorize(p.Rol, authz.OpExportExpedientes); err != nil {
		return nil, err
	}

	params := listParams(1, exportPageSize, f)
	if authz.RequiresOwnership(p.Rol, authz.OpExportExpedientes) {
		params.TecnicoID = &p.ID
	}

	expedientes, _, err := s.store.Listar(ctx, params)
	if err != nil {
		return nil, domerrors.Wrap(err, domerrors.CodeInternal, "no se pudo exportar expedientes")
	}
	return expedientes, nil
}

// ResolveOwner exposes ownership facts for modules that hang off a case file
// (indicios resolve their permissions through the parent).
func (s *Service) ResolveOwner(ctx context.Context, id int64) (*Owner, error) {
	return s.store.ResolveOwner(ctx, id)
}

// checkOwnership denies technicians acting on case files they do not own.
// The subsequent mutation re-verifies against the same backend state.
func (s *Service) checkOwnership(ctx context.Context, p authz.Principal, op authz.Operation, id int64) error {
	if !authz.RequiresOwnership(p.Rol, op) {
		return nil
	}
	owner, err := s.store.ResolveOwner(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return domerrors.New(domerrors.CodeNotFound, "Expediente no encontrado")
		}
		return domerrors.Wrap(err, domerrors.CodeInternal, "no se pudo verificar el expediente")
	}
	if owner.TecnicoID != p.ID {
		return domerrors.New(domerrors.CodeForbidden, "Solo el dueño puede modificar el expediente")
	}
	return nil
}

func listParams(page, pageSize int, f pagination.Filtros) ListParams {
	return ListParams{
		Page:        page,
		PageSize:    pageSize,
		Q:           f.Q,
		Codigo:      f.Codigo,
		Estado:      f.Estado,
		TecnicoID:   f.TecnicoID,
		FechaInicio: f.FechaInicio,
		FechaFin:    f.FechaFin,
	}
}
