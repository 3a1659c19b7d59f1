package http

import (
	"net/http"

	"expedientes/internal/pagination"
	"expedientes/internal/platform/middleware"
	"expedientes/internal/usuario"
	"expedientes/pkg/httputil"
)

type usuariosHandler struct {
	svc UsuarioService
}

func (h *usuariosHandler) Create(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())

	var in usuario.CrearInput
	if err := decodeJSON(r, &in); err != nil {
		httputil.WriteError(w, err)
		return
	}

	u, err := h.svc.Crear(r.Context(), p, in)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusCreated, u)
}

func (h *usuariosHandler) List(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	page := pagination.Normalize(r.URL.Query())

	res, err := h.svc.Listar(r.Context(), p, page)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WritePage(w, page.Page, page.PageSize, res.Total, res.Usuarios)
}

type passwordRequest struct {
	PasswordActual string `json:"passwordActual"`
	PasswordNueva  string `json:"passwordNueva"`
}

func (h *usuariosHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	id, err := idParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req passwordRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.svc.CambiarPassword(r.Context(), p, id, req.PasswordActual, req.PasswordNueva); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, map[string]string{"message": "Contraseña actualizada"})
}

func (h *usuariosHandler) ToggleActive(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	id, err := idParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	activo, err := decodeActivo(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.svc.ToggleActivo(r.Context(), p, id, activo); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, map[string]any{"id": id, "activo": activo})
}
