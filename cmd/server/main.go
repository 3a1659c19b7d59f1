package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"expedientes/internal/auth"
	"expedientes/internal/expediente"
	"expedientes/internal/indicio"
	"expedientes/internal/platform/config"
	"expedientes/internal/platform/httpserver"
	"expedientes/internal/platform/logger"
	"expedientes/internal/platform/metrics"
	"expedientes/internal/platform/postgres"
	"expedientes/internal/platform/redis"
	"expedientes/internal/ratelimit"
	"expedientes/internal/token"
	transporthttp "expedientes/internal/transport/http"
	"expedientes/internal/usuario"
	"expedientes/pkg/httputil"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)
	httputil.ExposeDetails(!cfg.Production())

	m := metrics.New(prometheus.DefaultRegisterer)
	tokens := token.New(cfg.JWTSecret, cfg.JWTExpires)

	var (
		usuarioStore    usuario.Store
		expedienteStore expediente.Store
		indicioStore    indicio.Store
		pinger          transporthttp.Pinger
	)
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer db.Close()

		usuarioStore = usuario.NewPostgresStore(db.DB)
		expedienteStore = expediente.NewPostgresStore(db.DB)
		indicioStore = indicio.NewPostgresStore(db.DB)
		pinger = db
		log.Info("using postgres stores")
	} else {
		memUsuarios := usuario.NewMemoryStore()
		memExpedientes := expediente.NewMemoryStore()
		usuarioStore = memUsuarios
		expedienteStore = memExpedientes
		indicioStore = indicio.NewMemoryStore()
		log.Warn("DATABASE_URL not set, using in-memory stores")

		if !cfg.Production() {
			if err := seedDevAccounts(memUsuarios, memExpedientes, cfg.BcryptCost); err != nil {
				return fmt.Errorf("seed dev accounts: %w", err)
			}
			log.Info("seeded dev accounts", "usernames", []string{"admin", "tecnico1"})
		}
	}

	var limitStore ratelimit.Store = ratelimit.NewMemoryStore()
	rdb, err := redis.New(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if rdb != nil {
		defer rdb.Close()
		limitStore = ratelimit.NewRedisStore(rdb.Client)
		log.Info("rate limit counters in redis")
	}
	limiter := ratelimit.NewLimiter(limitStore, log, cfg.RateLimitDisabled)

	expedienteSvc := expediente.NewService(expedienteStore, log)
	router := transporthttp.NewRouter(transporthttp.Deps{
		Logger:      log,
		Metrics:     m,
		Tokens:      tokens,
		Limiter:     limiter,
		Auth:        auth.NewService(usuarioStore, tokens, log),
		Expedientes: expedienteSvc,
		Indicios:    indicio.NewService(indicioStore, expedienteSvc, log),
		Usuarios:    usuario.NewService(usuarioStore, cfg.BcryptCost, log),
		DB:          pinger,
	})

	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}

// seedDevAccounts makes a fresh in-memory instance usable without a database:
// one coordinator, one technician, one open case file.
func seedDevAccounts(usuarios *usuario.MemoryStore, expedientes *expediente.MemoryStore, bcryptCost int) error {
	ctx := context.Background()
	seed := []struct {
		username, password, rol string
	}{
		{"admin", "admin123", "coordinador"},
		{"tecnico1", "password123", "tecnico"},
	}
	for _, s := range seed {
		hash, err := bcrypt.GenerateFromPassword([]byte(s.password), bcryptCost)
		if err != nil {
			return err
		}
		u, err := usuarios.Crear(ctx, s.username, string(hash), s.rol)
		if err != nil {
			return err
		}
		expedientes.SetUsername(u.ID, u.Username)
		if s.rol == "tecnico" {
			if _, err := expedientes.Crear(ctx, expediente.CrearInput{
				Codigo:      "EXP-DEMO-001",
				Titulo:      "Expediente de demostración",
				Descripcion: "Creado automáticamente en modo desarrollo",
			}, u.ID); err != nil {
				return err
			}
		}
	}
	return nil
}
