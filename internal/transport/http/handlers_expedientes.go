package http

import (
	"net/http"

	"expedientes/internal/expediente"
	"expedientes/internal/pagination"
	"expedientes/internal/platform/middleware"
	"expedientes/pkg/httputil"
)

type expedientesHandler struct {
	svc ExpedienteService
}

func (h *expedientesHandler) List(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	page := pagination.Normalize(r.URL.Query())
	filtros := pagination.NormalizeFiltros(r.URL.Query())

	res, err := h.svc.Listar(r.Context(), p, page, filtros)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WritePage(w, page.Page, page.PageSize, res.Total, res.Expedientes)
}

func (h *expedientesHandler) Get(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	id, err := idParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	e, err := h.svc.Obtener(r.Context(), p, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, e)
}

func (h *expedientesHandler) Create(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())

	var in expediente.CrearInput
	if err := decodeJSON(r, &in); err != nil {
		httputil.WriteError(w, err)
		return
	}

	e, err := h.svc.Crear(r.Context(), p, in)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusCreated, e)
}

func (h *expedientesHandler) Update(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	id, err := idParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var in expediente.ActualizarInput
	if err := decodeJSON(r, &in); err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.svc.Actualizar(r.Context(), p, id, in); err != nil {
		httputil.WriteError(w, err)
		return
	}

	e, err := h.svc.Obtener(r.Context(), p, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, e)
}

func (h *expedientesHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	id, err := idParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var cambio expediente.CambioEstado
	if err := decodeJSON(r, &cambio); err != nil {
		httputil.WriteError(w, err)
		return
	}

	e, err := h.svc.CambiarEstado(r.Context(), p, id, cambio)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, e)
}

func (h *expedientesHandler) ToggleActive(w http.ResponseWriter, r *http.Request) {
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
