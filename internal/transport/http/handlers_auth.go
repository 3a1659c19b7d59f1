package http

import (
	"net/http"

	"expedientes/internal/platform/metrics"
	"expedientes/pkg/httputil"
)

type authHandler struct {
	svc     AuthService
	metrics *metrics.Metrics
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *authHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	res, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.metrics.IncLogin("failed")
		httputil.WriteError(w, err)
		return
	}

	h.metrics.IncLogin("ok")
	httputil.WriteSuccess(w, http.StatusOK, res)
}
