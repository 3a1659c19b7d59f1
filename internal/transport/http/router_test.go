package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"expedientes/internal/auth"
	"expedientes/internal/expediente"
	"expedientes/internal/indicio"
	"expedientes/internal/platform/metrics"
	"expedientes/internal/ratelimit"
	"expedientes/internal/token"
	"expedientes/internal/usuario"
)

type testServer struct {
	handler http.Handler
	tokens  *token.Service
}

type testServerOptions struct {
	limiter *ratelimit.Limiter
}

func newTestServer(t *testing.T, opts testServerOptions) *testServer {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	usuarios := usuario.NewMemoryStore()
	seed := func(username, password, rol string) {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		require.NoError(t, err)
		_, err = usuarios.Crear(ctx, username, string(hash), rol)
		require.NoError(t, err)
	}
	seed("tecnico1", "password123", "tecnico")
	seed("tecnico2", "password456", "tecnico")
	seed("coordinador1", "password789", "coordinador")

	expedientes := expediente.NewMemoryStore()
	expedientes.SetUsername(1, "tecnico1")
	expedientes.SetUsername(2, "tecnico2")
	expedientes.SetUsername(3, "coordinador1")

	tokens := token.New("test-secret", 0)
	expSvc := expediente.NewService(expedientes, logger)

	limiter := opts.limiter
	if limiter == nil {
		limiter = ratelimit.NewLimiter(ratelimit.NewMemoryStore(), logger, true)
	}

	reg := prometheus.NewRegistry()
	handler := NewRouter(Deps{
		Logger:      logger,
		Metrics:     metrics.New(reg),
		Gatherer:    reg,
		Tokens:      tokens,
		Limiter:     limiter,
		Auth:        auth.NewService(usuarios, tokens, logger),
		Expedientes: expSvc,
		Indicios:    indicio.NewService(indicio.NewMemoryStore(), expSvc, logger),
		Usuarios:    usuario.NewService(usuarios, bcrypt.MinCost, logger),
	})
	return &testServer{handler: handler, tokens: tokens}
}

func (s *testServer) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "10.0.0.1:55001"
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var envelope struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NotEmpty(t, envelope.Data.Token)
	return envelope.Data.Token
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.True(t, envelope.Success)
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.False(t, envelope.Success)
	return envelope.Error
}

func TestWorkflowEndToEnd(t *testing.T) {
	srv := newTestServer(t, testServerOptions{})

	tecnico1 := srv.login(t, "tecnico1", "password123")
	tecnico2 := srv.login(t, "tecnico2", "password456")
	coordinador := srv.login(t, "coordinador1", "password789")

	// Create with minimal payload.
	rec := srv.do(t, http.MethodPost, "/expedientes", tecnico1, map[string]string{
		"codigo":      "EXP-1",
		"descripcion": "d",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created expediente.Expediente
	decodeData(t, rec, &created)
	require.NotZero(t, created.ID)

	// Fetch it back.
	rec = srv.do(t, http.MethodGet, fmt.Sprintf("/expedientes/%d", created.ID), tecnico1, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var fetched expediente.Expediente
	decodeData(t, rec, &fetched)
	assert.Equal(t, created.ID, fetched.ID)

	// A different technician cannot edit it.
	rec = srv.do(t, http.MethodPut, fmt.Sprintf("/expedientes/%d", created.ID), tecnico2, map[string]string{
		"titulo":      "ajeno",
		"descripcion": "ajeno",
	})
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, errorMessage(t, rec), "dueño")

	// A technician cannot approve.
	rec = srv.do(t, http.MethodPatch, fmt.Sprintf("/expedientes/%d/estado", created.ID), tecnico1, map[string]string{
		"estado": "aprobado",
	})
	require.Equal(t, http.StatusForbidden, rec.Code)

	// The coordinator can.
	rec = srv.do(t, http.MethodPatch, fmt.Sprintf("/expedientes/%d/estado", created.ID), coordinador, map[string]string{
		"estado": "aprobado",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var approved expediente.Expediente
	decodeData(t, rec, &approved)
	assert.Equal(t, expediente.EstadoAprobado, approved.Estado)
	require.NotNil(t, approved.AprobadorID)
	assert.EqualValues(t, 3, *approved.AprobadorID)
}

func TestLoginFailures(t *testing.T) {
	srv := newTestServer(t, testServerOptions{})

	rec := srv.do(t, http.MethodPost, "/auth/login", "", map[string]string{"username": "tecnico1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "tecnico1",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Credenciales inválidas", errorMessage(t, rec))

	rec = srv.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "nadie",
		"password": "password123",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Credenciales inválidas", errorMessage(t, rec))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv := newTestServer(t, testServerOptions{})

	for _, path := range []string{"/expedientes", "/usuarios", "/expedientes/export"} {
		rec := srv.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := srv.do(t, http.MethodGet, "/expedientes", "no-es-un-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListPaginationAliases(t *testing.T) {
	srv := newTestServer(t, testServerOptions{})
	tecnico1 := srv.login(t, "tecnico1", "password123")

	for i := 1; i <= 7; i++ {
		rec := srv.do(t, http.MethodPost, "/expedientes", tecnico1, map[string]string{
			"codigo":      fmt.Sprintf("EXP-%03d", i),
			"descripcion": "d",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := srv.do(t, http.MethodGet, "/expedientes?pagina=2&tamanoPagina=5", tecnico1, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data struct {
			Page     int               `json:"page"`
			PageSize int               `json:"pageSize"`
			Total    int64             `json:"total"`
			Data     []json.RawMessage `json:"data"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, 2, envelope.Data.Page)
	assert.Equal(t, 5, envelope.Data.PageSize)
	assert.EqualValues(t, 7, envelope.Data.Total)
	assert.Len(t, envelope.Data.Data, 2)
}

func TestIndiciosNestedFlow(t *testing.T) {
	srv := newTestServer(t, testServerOptions{})
	tecnico1 := srv.login(t, "tecnico1", "password123")

	rec := srv.do(t, http.MethodPost, "/expedientes", tecnico1, map[string]string{
		"codigo":      "EXP-1",
		"descripcion": "d",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var e expediente.Expediente
	decodeData(t, rec, &e)

	rec = srv.do(t, http.MethodPost, fmt.Sprintf("/expedientes/%d/indicios", e.ID), tecnico1, map[string]any{
		"descripcion": "arma blanca",
		"peso":        1.5,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var ind indicio.Indicio
	decodeData(t, rec, &ind)
	assert.Equal(t, e.ID, ind.ExpedienteID)

	rec = srv.do(t, http.MethodGet, fmt.Sprintf("/expedientes/%d/indicios", e.ID), tecnico1, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var indicios []indicio.Indicio
	decodeData(t, rec, &indicios)
	assert.Len(t, indicios, 1)

	rec = srv.do(t, http.MethodPatch, fmt.Sprintf("/indicios/%d/activo", ind.ID), tecnico1, map[string]bool{"activo": false})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUsuariosCoordinatorOnly(t *testing.T) {
	srv := newTestServer(t, testServerOptions{})
	tecnico1 := srv.login(t, "tecnico1", "password123")
	coordinador := srv.login(t, "coordinador1", "password789")

	payload := map[string]string{"username": "nuevo1", "password": "secreto9", "rol": "tecnico"}

	rec := srv.do(t, http.MethodPost, "/usuarios", tecnico1, payload)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = srv.do(t, http.MethodPost, "/usuarios", coordinador, payload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var u usuario.Usuario
	decodeData(t, rec, &u)
	assert.Equal(t, "nuevo1", u.Username)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = srv.do(t, http.MethodPost, "/usuarios", coordinador, payload)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = srv.do(t, http.MethodGet, "/usuarios", coordinador, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = srv.do(t, http.MethodGet, "/usuarios", tecnico1, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestChangePasswordSelfProof(t *testing.T) {
	srv := newTestServer(t, testServerOptions{})
	tecnico1 := srv.login(t, "tecnico1", "password123")

	rec := srv.do(t, http.MethodPatch, "/usuarios/1/password", tecnico1, map[string]string{
		"passwordNueva": "nuevopass",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodPatch, "/usuarios/1/password", tecnico1, map[string]string{
		"passwordActual": "equivocada",
		"passwordNueva":  "nuevopass",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Contraseña actual incorrecta", errorMessage(t, rec))

	rec = srv.do(t, http.MethodPatch, "/usuarios/1/password", tecnico1, map[string]string{
		"passwordActual": "password123",
		"passwordNueva":  "nuevopass",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// The new password works on the next login.
	srv.login(t, "tecnico1", "nuevopass")
}

func TestExportListing(t *testing.T) {
	srv := newTestServer(t, testServerOptions{})
	tecnico1 := srv.login(t, "tecnico1", "password123")

	rec := srv.do(t, http.MethodPost, "/expedientes", tecnico1, map[string]string{
		"codigo":      "EXP-1",
		"descripcion": "d",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = srv.do(t, http.MethodGet, "/expedientes/export", tecnico1, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "expedientes_")
	assert.NotZero(t, rec.Body.Len())
}

func TestExportRateLimited(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), logger, false)
	srv := newTestServer(t, testServerOptions{limiter: limiter})
	tecnico1 := srv.login(t, "tecnico1", "password123")

	var denied int
	for i := 0; i < 11; i++ {
		rec := srv.do(t, http.MethodGet, "/expedientes/export", tecnico1, nil)
		if rec.Code == http.StatusTooManyRequests {
			denied++
			assert.Contains(t, errorMessage(t, rec), "Demasiadas exportaciones")
		}
	}
	assert.GreaterOrEqual(t, denied, 1)
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t, testServerOptions{})

	rec := srv.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var health struct {
		Status   string `json:"status"`
		Database string `json:"database"`
	}
	decodeData(t, rec, &health)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "memoria", health.Database)

	rec = srv.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "http_requests_total"))
}

func TestInvalidIDParam(t *testing.T) {
	srv := newTestServer(t, testServerOptions{})
	tecnico1 := srv.login(t, "tecnico1", "password123")

	rec := srv.do(t, http.MethodGet, "/expedientes/abc", tecnico1, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodGet, "/expedientes/999", tecnico1, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
