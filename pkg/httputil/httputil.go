// Package httputil centralizes the response envelope. Every endpoint answers
// either {"success":true,"data":...} or {"success":false,"error":...,"details":...},
// with details populated only outside production mode.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"expedientes/pkg/domerrors"
)

// exposeDetails gates the details field and internal error messages. Set once
// at startup; defaults to the safe production behavior.
var exposeDetails = false

// ExposeDetails enables diagnostic detail in error envelopes. Call from main
// when the environment is not production.
func ExposeDetails(enabled bool) {
	exposeDetails = enabled
}

type successEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type errorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// PagedData is the canonical paged payload carried inside a success envelope.
type PagedData struct {
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Total    int64 `json:"total"`
	Data     any   `json:"data"`
}

// WriteJSON writes v as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteSuccess wraps data in the success envelope.
func WriteSuccess(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, successEnvelope{Success: true, Data: data})
}

// WritePage wraps a paged result in the success envelope.
func WritePage(w http.ResponseWriter, page, pageSize int, total int64, items any) {
	WriteSuccess(w, http.StatusOK, PagedData{Page: page, PageSize: pageSize, Total: total, Data: items})
}

// WriteError translates err into the error envelope. Internal errors never leak
// their message; other codes carry the client-safe message the service chose.
func WriteError(w http.ResponseWriter, err error) {
	code := domerrors.CodeOf(err)
	message := "Error interno del servidor"
	var details any

	var de *domerrors.Error
	if errors.As(err, &de) {
		if code != domerrors.CodeInternal {
			message = de.Message
		}
		if exposeDetails {
			if de.Details != nil {
				details = de.Details
			} else if code == domerrors.CodeInternal {
				details = de.Error()
			}
		}
	}

	WriteJSON(w, domerrors.ToHTTPStatus(code), errorEnvelope{
		Success: false,
		Error:   message,
		Details: details,
	})
}
