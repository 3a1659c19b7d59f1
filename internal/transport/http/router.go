// Package http wires the REST surface: routing, middleware order and the
// translation between requests and the domain services.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"expedientes/internal/platform/metrics"
	"expedientes/internal/platform/middleware"
	"expedientes/internal/ratelimit"
)

// Deps are the collaborators the router needs. Gatherer may be nil, in which
// case /metrics serves the default Prometheus registry.
type Deps struct {
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	Tokens      middleware.TokenValidator
	Limiter     *ratelimit.Limiter
	Auth        AuthService
	Expedientes ExpedienteService
	Indicios    IndicioService
	Usuarios    UsuarioService
	DB          Pinger
}

// NewRouter assembles the full HTTP surface.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.Metrics(d.Metrics))

	authH := &authHandler{svc: d.Auth, metrics: d.Metrics}
	expH := &expedientesHandler{svc: d.Expedientes}
	indH := &indiciosHandler{svc: d.Indicios}
	usrH := &usuariosHandler{svc: d.Usuarios}
	expoH := &exportHandler{expedientes: d.Expedientes, indicios: d.Indicios, metrics: d.Metrics, logger: d.Logger}
	healthH := &healthHandler{db: d.DB, metrics: d.Metrics, started: time.Now()}

	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// Operational endpoints sit outside the API quota.
	r.Get("/health", healthH.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(ratelimit.Middleware(d.Limiter, ratelimit.RuleLogin))
		r.Post("/auth/login", authH.Login)
	})

	r.Group(func(r chi.Router) {
		r.Use(ratelimit.Middleware(d.Limiter, ratelimit.RuleAPI))
		r.Use(middleware.RequireAuth(d.Tokens, d.Logger))

		r.Route("/expedientes", func(r chi.Router) {
			r.Get("/", expH.List)
			r.Post("/", expH.Create)

			r.Group(func(r chi.Router) {
				r.Use(ratelimit.Middleware(d.Limiter, ratelimit.RuleExport))
				r.Get("/export", expoH.List)
				r.Get("/{id}/export", expoH.Detail)
			})

			r.Get("/{id}", expH.Get)
			r.Put("/{id}", expH.Update)
			r.Patch("/{id}/estado", expH.ChangeStatus)
			r.Patch("/{id}/activo", expH.ToggleActive)

			r.Get("/{id}/indicios", indH.List)
			r.Post("/{id}/indicios", indH.Create)
		})

		r.Route("/indicios", func(r chi.Router) {
			r.Put("/{id}", indH.Update)
			r.Patch("/{id}/activo", indH.ToggleActive)
		})

		r.Route("/usuarios", func(r chi.Router) {
			r.Get("/", usrH.List)
			r.Post("/", usrH.Create)
			r.Patch("/{id}/password", usrH.ChangePassword)
			r.Patch("/{id}/activo", usrH.ToggleActive)
		})
	})

	return r
}
