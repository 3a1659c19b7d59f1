package expediente

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"expedientes/pkg/sentinel"
)

// MemoryStore is the in-memory Store used by tests and database-less dev
// mode. It reproduces the stored procedures' observable behavior, including
// the ownership re-check on mutation.
type MemoryStore struct {
	mu        sync.RWMutex
	byID      map[int64]*Expediente
	usernames map[int64]string // tecnico id -> username, for denormalized rows
	nextID    int64
}

// NewMemoryStore creates an empty in-memory case-file store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:      make(map[int64]*Expediente),
		usernames: make(map[int64]string),
		nextID:    1,
	}
}

// SetUsername registers the username shown in denormalized listing rows.
func (s *MemoryStore) SetUsername(id int64, username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usernames[id] = username
}

func (s *MemoryStore) Listar(ctx context.Context, params ListParams) ([]Expediente, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]Expediente, 0)
	for _, e := range s.byID {
		if !matches(e, params) {
			continue
		}
		matched = append(matched, *e)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := int64(len(matched))
	start := (params.Page - 1) * params.PageSize
	if start >= len(matched) {
		return []Expediente{}, total, nil
	}
	end := start + params.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func matches(e *Expediente, p ListParams) bool {
	if p.TecnicoID != nil && e.TecnicoID != *p.TecnicoID {
		return false
	}
	if p.Estado != "" && string(e.Estado) != p.Estado {
		return false
	}
	if p.Codigo != "" && e.Codigo != p.Codigo {
		return false
	}
	if p.Q != "" {
		q := strings.ToLower(p.Q)
		if !strings.Contains(strings.ToLower(e.Codigo), q) &&
			!strings.Contains(strings.ToLower(e.Titulo), q) &&
			!strings.Contains(strings.ToLower(e.Descripcion), q) {
			return false
		}
	}
	if p.FechaInicio != nil && e.FechaCreacion.Before(*p.FechaInicio) {
		return false
	}
	if p.FechaFin != nil && e.FechaCreacion.After(p.FechaFin.Add(24*time.Hour)) {
		return false
	}
	return true
}

func (s *MemoryStore) Obtener(ctx context.Context, id int64) (*Expediente, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *e
	return &clone, nil
}

func (s *MemoryStore) Crear(ctx context.Context, in CrearInput, tecnicoID int64) (*Expediente, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.byID {
		if e.Codigo == in.Codigo {
			return nil, sentinel.ErrConflict
		}
	}

	e := &Expediente{
		ID:              s.nextID,
		Codigo:          in.Codigo,
		Titulo:          in.Titulo,
		Descripcion:     in.Descripcion,
		Estado:          EstadoAbierto,
		TecnicoID:       tecnicoID,
		TecnicoUsername: s.usernames[tecnicoID],
		Activo:          true,
		FechaCreacion:   time.Now().UTC(),
	}
	s.byID[e.ID] = e
	s.nextID++

	clone := *e
	return &clone, nil
}

func (s *MemoryStore) Actualizar(ctx context.Context, id int64, in ActualizarInput, tecnicoID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.byID[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	if e.TecnicoID != tecnicoID {
		return sentinel.ErrNotOwner
	}
	e.Titulo = in.Titulo
	e.Descripcion = in.Descripcion
	return nil
}

func (s *MemoryStore) CambiarEstado(ctx context.Context, id int64, estado Estado, aprobadorID int64, justificacion *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.byID[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	if e.Estado.Terminal() {
		return sentinel.ErrInvalidState
	}
	now := time.Now().UTC()
	e.Estado = estado
	e.AprobadorID = &aprobadorID
	if username, ok := s.usernames[aprobadorID]; ok {
		e.AprobadorUsername = &username
	}
	e.Justificacion = justificacion
	e.FechaEstado = &now
	return nil
}

func (s *MemoryStore) ToggleActivo(ctx context.Context, id int64, activo bool, modificadoPor int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.byID[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	e.Activo = activo
	return nil
}

func (s *MemoryStore) ResolveOwner(ctx context.Context, id int64) (*Owner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &Owner{TecnicoID: e.TecnicoID, Activo: e.Activo}, nil
}
