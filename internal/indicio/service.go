package indicio

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"expedientes/internal/authz"
	"expedientes/internal/expediente"
	"expedientes/pkg/domerrors"
	"expedientes/pkg/sentinel"
)

const maxDescripcion = 4000

// ParentResolver resolves ownership of the parent case file. Evidence items
// carry no owner of their own; every permission decision flows through the
// expediente they belong to.
type ParentResolver interface {
	ResolveOwner(ctx context.Context, expedienteID int64) (*expediente.Owner, error)
}

// Service enforces the evidence business rules: transitively through the
// parent case file for ownership, and locally for content validation.
type Service struct {
	store   Store
	parents ParentResolver
	logger  *slog.Logger
}

// NewService creates the evidence service.
func NewService(store Store, parents ParentResolver, logger *slog.Logger) *Service {
	return &Service{store: store, parents: parents, logger: logger}
}

// ListarPorExpediente returns the evidence items of one case file, with the
// same visibility scoping as the parent.
func (s *Service) ListarPorExpediente(ctx context.Context, p authz.Principal, expedienteID int64) ([]Indicio, error) {
	if err := authz.Authorize(p.Rol, authz.OpListIndicios); err != nil {
		return nil, err
	}
	if _, err := s.checkParent(ctx, p, authz.OpListIndicios, expedienteID); err != nil {
		return nil, err
	}

	indicios, err := s.store.ListarPorExpediente(ctx, expedienteID)
	if err != nil {
		return nil, domerrors.Wrap(err, domerrors.CodeInternal, "no se pudo listar indicios")
	}
	return indicios, nil
}

// Crear attaches a new evidence item to an active case file owned by the
// calling technician.
func (s *Service) Crear(ctx context.Context, p authz.Principal, expedienteID int64, in CrearInput) (*Indicio, error) {
	if err := authz.Authorize(p.Rol, authz.OpCreateIndicio); err != nil {
		return nil, err
	}
	if err := validar(&in.Descripcion, in.Peso); err != nil {
		return nil, err
	}

	owner, err := s.checkParent(ctx, p, authz.OpCreateIndicio, expedienteID)
	if err != nil {
		return nil, err
	}
	if !owner.Activo {
		return nil, domerrors.New(domerrors.CodeValidation, "El expediente no está activo")
	}

	i, err := s.store.Crear(ctx, expedienteID, in, p.ID)
	if err != nil {
		return nil, domerrors.Wrap(err, domerrors.CodeInternal, "no se pudo crear el indicio")
	}

	s.logger.InfoContext(ctx, "indicio creado", "indicio_id", i.ID, "expediente_id", expedienteID, "tecnico_id", p.ID)
	return i, nil
}

// Actualizar replaces the content fields of an evidence item, subject to the
// same parent checks as Crear.
func (s *Service) Actualizar(ctx context.Context, p authz.Principal, id int64, in ActualizarInput) error {
	if err := authz.Authorize(p.Rol, authz.OpUpdateIndicio); err != nil {
		return err
	}
	if err := validar(&in.Descripcion, in.Peso); err != nil {
		return err
	}

	existing, err := s.obtener(ctx, id)
	if err != nil {
		return err
	}
	owner, err := s.checkParent(ctx, p, authz.OpUpdateIndicio, existing.ExpedienteID)
	if err != nil {
		return err
	}
	if !owner.Activo {
		return domerrors.New(domerrors.CodeValidation, "El expediente no está activo")
	}

	if err := s.store.Actualizar(ctx, id, in, p.ID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return domerrors.New(domerrors.CodeNotFound, "Indicio no encontrado")
		}
		return domerrors.Wrap(err, domerrors.CodeInternal, "no se pudo actualizar el indicio")
	}

	s.logger.InfoContext(ctx, "indicio actualizado", "indicio_id", id, "tecnico_id", p.ID)
	return nil
}

// ToggleActivo soft-deletes or restores an evidence item. Same policy as the
// parent toggle: owning technician or any coordinator. Idempotent.
func (s *Service) ToggleActivo(ctx context.Context, p authz.Principal, id int64, activo bool) error {
	if err := authz.Authorize(p.Rol, authz.OpToggleActiveIndicio); err != nil {
		return err
	}

	existing, err := s.obtener(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.checkParent(ctx, p, authz.OpToggleActiveIndicio, existing.ExpedienteID); err != nil {
		return err
	}

	if err := s.store.ToggleActivo(ctx, id, activo, p.ID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return domerrors.New(domerrors.CodeNotFound, "Indicio no encontrado")
		}
		return domerrors.Wrap(err, domerrors.CodeInternal, "No se pudo actualizar activo")
	}

	s.logger.InfoContext(ctx, "indicio activo cambiado", "indicio_id", id, "activo", activo, "modificado_por", p.ID)
	return nil
}

func (s *Service) obtener(ctx context.Context, id int64) (*Indicio, error) {
	i, err := s.store.Obtener(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, domerrors.New(domerrors.CodeNotFound, "Indicio no encontrado")
		}
		return nil, domerrors.Wrap(err, domerrors.CodeInternal, "no se pudo obtener el indicio")
	}
	return i, nil
}

// checkParent resolves the parent case file and applies the technician
// ownership rule for op. Coordinators pass wherever the policy table allows
// them at all.
func (s *Service) checkParent(ctx context.Context, p authz.Principal, op authz.Operation, expedienteID int64) (*expediente.Owner, error) {
	owner, err := s.parents.ResolveOwner(ctx, expedienteID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, domerrors.New(domerrors.CodeNotFound, "Expediente no encontrado")
		}
		return nil, domerrors.Wrap(err, domerrors.CodeInternal, "no se pudo verificar el expediente")
	}
	if authz.RequiresOwnership(p.Rol, op) && owner.TecnicoID != p.ID {
		return nil, domerrors.New(domerrors.CodeForbidden, "Solo el dueño del expediente puede acceder a sus indicios")
	}
	return owner, nil
}

func validar(descripcion *string, peso *float64) error {
	*descripcion = strings.TrimSpace(*descripcion)
	if *descripcion == "" {
		return domerrors.New(domerrors.CodeValidation, "descripcion es obligatoria")
	}
	if len(*descripcion) > maxDescripcion {
		return domerrors.New(domerrors.CodeValidation, "descripcion excede la longitud permitida")
	}
	if peso != nil && *peso < 0 {
		return domerrors.New(domerrors.CodeValidation, "peso debe ser mayor o igual a cero")
	}
	return nil
}
