package usuario

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"expedientes/internal/authz"
	"expedientes/internal/pagination"
	"expedientes/pkg/domerrors"
	"expedientes/pkg/sentinel"
)

// Service implements account management: creation and listing are
// coordinator-only, password changes require current-password proof unless a
// coordinator performs them.
type Service struct {
	store      Store
	bcryptCost int
	logger     *slog.Logger
}

// NewService creates the account service.
func NewService(store Store, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{store: store, bcryptCost: bcryptCost, logger: logger}
}

// ListResult is a page of accounts.
type ListResult struct {
	Usuarios []Usuario
	Total    int64
}

// Crear registers a new account. Coordinator only.
func (s *Service) Crear(ctx context.Context, p authz.Principal, in CrearInput) (*Usuario, error) {
	if err := authz.Authorize(p.Rol, authz.OpCreateUser); err != nil {
		return nil, err
	}

	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" || in.Password == "" || in.Rol == "" {
		return nil, domerrors.New(domerrors.CodeValidation, "username, password y rol son requeridos")
	}
	if len(in.Username) < 3 {
		return nil, domerrors.New(domerrors.CodeValidation, "El username debe tener al menos 3 caracteres")
	}
	if len(in.Password) < 6 {
		return nil, domerrors.New(domerrors.CodeValidation, "La contraseña debe tener al menos 6 caracteres")
	}
	if !in.Rol.IsValid() {
		return nil, domerrors.New(domerrors.CodeValidation, "rol debe ser tecnico o coordinador")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, domerrors.Wrap(err, domerrors.CodeInternal, "no se pudo crear el usuario")
	}

	u, err := s.store.Crear(ctx, in.Username, string(hash), string(in.Rol))
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, domerrors.New(domerrors.CodeConflict, "El username ya existe")
		}
		return nil, domerrors.Wrap(err, domerrors.CodeInternal, "no se pudo crear el usuario")
	}

	s.logger.InfoContext(ctx, "usuario creado", "usuario_id", u.ID, "rol", u.Rol, "creado_por", p.ID)
	return u, nil
}

// Listar returns a page of accounts. Coordinator only.
func (s *Service) Listar(ctx context.Context, p authz.Principal, page pagination.Page) (*ListResult, error) {
	if err := authz.Authorize(p.Rol, authz.OpListUsers); err != nil {
		return nil, err
	}

	usuarios, total, err := s.store.Listar(ctx, page.Page, page.PageSize)
	if err != nil {
		return nil, domerrors.Wrap(err, domerrors.CodeInternal, "no se pudo listar usuarios")
	}
	return &ListResult{Usuarios: usuarios, Total: total}, nil
}

// CambiarPassword updates an account password. A caller changing their own
// password must prove knowledge of the current one; coordinators change any
// password without proof. Already-issued tokens stay valid until expiry.
func (s *Service) CambiarPassword(ctx context.Context, p authz.Principal, id int64, passwordActual, passwordNueva string) error {
	if err := authz.Authorize(p.Rol, authz.OpChangePassword); err != nil {
		return err
	}
	if p.ID != id && p.Rol != authz.RoleCoordinador {
		return domerrors.New(domerrors.CodeForbidden, "No autorizado")
	}
	if passwordNueva == "" {
		return domerrors.New(domerrors.CodeValidation, "passwordNueva es requerida")
	}
	if len(passwordNueva) < 6 {
		return domerrors.New(domerrors.CodeValidation, "La contraseña nueva debe tener al menos 6 caracteres")
	}

	cred, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return domerrors.New(domerrors.CodeNotFound, "Usuario no encontrado")
		}
		return domerrors.Wrap(err, domerrors.CodeInternal, "no se pudo actualizar la contraseña")
	}

	if p.Rol != authz.RoleCoordinador {
		if passwordActual == "" {
			return domerrors.New(domerrors.CodeValidation, "La contraseña actual es requerida cuando cambias tu propia contraseña")
		}
		if bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(passwordActual)) != nil {
			return domerrors.New(domerrors.CodeUnauthorized, "Contraseña actual incorrecta")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(passwordNueva), s.bcryptCost)
	if err != nil {
		return domerrors.Wrap(err, domerrors.CodeInternal, "no se pudo actualizar la contraseña")
	}

	if err := s.store.ActualizarPassword(ctx, id, string(hash)); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return domerrors.New(domerrors.CodeNotFound, "Usuario no encontrado")
		}
		return domerrors.Wrap(err, domerrors.CodeInternal, "no se pudo actualizar la contraseña")
	}

	s.logger.InfoContext(ctx, "contraseña actualizada", "usuario_id", id, "cambiado_por", p.ID)
	return nil
}

// ToggleActivo activates or deactivates an account. Coordinator only;
// idempotent by design.
func (s *Service) ToggleActivo(ctx context.Context, p authz.Principal, id int64, activo bool) error {
	if err := authz.Authorize(p.Rol, authz.OpToggleActiveUser); err != nil {
		return err
	}

	if err := s.store.ToggleActivo(ctx, id, activo); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return domerrors.New(domerrors.CodeNotFound, "Usuario no encontrado")
		}
		return domerrors.Wrap(err, domerrors.CodeInternal, "No se pudo actualizar el estado del usuario")
	}

	s.logger.InfoContext(ctx, "usuario activo cambiado", "usuario_id", id, "activo", activo, "cambiado_por", p.ID)
	return nil
}
