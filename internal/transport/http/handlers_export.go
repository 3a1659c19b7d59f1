package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"expedientes/internal/export"
	"expedientes/internal/pagination"
	"expedientes/internal/platform/metrics"
	"expedientes/internal/platform/middleware"
	"expedientes/pkg/httputil"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type exportHandler struct {
	expedientes ExpedienteService
	indicios    IndicioService
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

func (h *exportHandler) List(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	filtros := pagination.NormalizeFiltros(r.URL.Query())

	expedientes, err := h.expedientes.ListarExport(r.Context(), p, filtros)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	buf, err := export.ListWorkbook(expedientes)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "export failed", "error", err)
		httputil.WriteError(w, err)
		return
	}

	h.metrics.IncExport()
	writeAttachment(w, export.ListFilename(time.Now()), buf.Bytes())
}

func (h *exportHandler) Detail(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	id, err := idParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	e, err := h.expedientes.Obtener(r.Context(), p, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	indicios, err := h.indicios.ListarPorExpediente(r.Context(), p, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	buf, err := export.DetailWorkbook(e, indicios)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "export failed", "expediente_id", id, "error", err)
		httputil.WriteError(w, err)
		return
	}

	h.metrics.IncExport()
	writeAttachment(w, export.DetailFilename(id, time.Now()), buf.Bytes())
}

func writeAttachment(w http.ResponseWriter, filename string, body []byte) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", fmt.Sprint(len(body)))
	_, _ = w.Write(body)
}
