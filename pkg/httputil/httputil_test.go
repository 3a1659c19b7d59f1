package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"expedientes/pkg/domerrors"
)

func TestWriteError(t *testing.T) {
	t.Run("internal error hides message in production mode", func(t *testing.T) {
		ExposeDetails(false)
		w := httptest.NewRecorder()
		WriteError(w, domerrors.Wrap(assertErr, domerrors.CodeInternal, "db exploded"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}

		var body map[string]any
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "Error interno del servidor" {
			t.Fatalf("expected sanitized message, got %q", body["error"])
		}
		if _, ok := body["details"]; ok {
			t.Fatalf("expected details to be omitted in production mode")
		}
	})

	t.Run("validation error includes message", func(t *testing.T) {
		ExposeDetails(false)
		w := httptest.NewRecorder()
		WriteError(w, domerrors.New(domerrors.CodeValidation, "codigo es obligatorio"))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}

		var body map[string]any
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["success"] != false {
			t.Fatalf("expected success=false, got %v", body["success"])
		}
		if body["error"] != "codigo es obligatorio" {
			t.Fatalf("expected validation message, got %q", body["error"])
		}
	})

	t.Run("internal error exposes cause outside production", func(t *testing.T) {
		ExposeDetails(true)
		defer ExposeDetails(false)
		w := httptest.NewRecorder()
		WriteError(w, domerrors.Wrap(assertErr, domerrors.CodeInternal, "db exploded"))

		var body map[string]any
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["details"] == nil {
			t.Fatalf("expected details outside production mode")
		}
	})

	t.Run("non-domain error maps to internal", func(t *testing.T) {
		ExposeDetails(false)
		w := httptest.NewRecorder()
		WriteError(w, assertErr)

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status 500, got %d", w.Code)
		}
	})
}

func TestWritePage(t *testing.T) {
	w := httptest.NewRecorder()
	WritePage(w, 2, 5, 42, []string{"a"})

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Page     int   `json:"page"`
			PageSize int   `json:"pageSize"`
			Total    int64 `json:"total"`
		} `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !body.Success || body.Data.Page != 2 || body.Data.PageSize != 5 || body.Data.Total != 42 {
		t.Fatalf("unexpected paged envelope: %+v", body)
	}
}

var assertErr = errConstant("boom")

type errConstant string

func (e errConstant) Error() string { return string(e) }
