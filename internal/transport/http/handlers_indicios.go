package http

import (
	"net/http"

	"expedientes/internal/indicio"
	"expedientes/internal/platform/middleware"
	"expedientes/pkg/httputil"
)

type indiciosHandler struct {
	svc IndicioService
}

func (h *indiciosHandler) List(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	expedienteID, err := idParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	indicios, err := h.svc.ListarPorExpediente(r.Context(), p, expedienteID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, indicios)
}

func (h *indiciosHandler) Create(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	expedienteID, err := idParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var in indicio.CrearInput
	if err := decodeJSON(r, &in); err != nil {
		httputil.WriteError(w, err)
		return
	}

	i, err := h.svc.Crear(r.Context(), p, expedienteID, in)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusCreated, i)
}

func (h *indiciosHandler) Update(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	id, err := idParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var in indicio.ActualizarInput
	if err := decodeJSON(r, &in); err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.svc.Actualizar(r.Context(), p, id, in); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, map[string]any{"id": id})
}

func (h *indiciosHandler) ToggleActive(w http.ResponseWriter, r *http.Request) {
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
