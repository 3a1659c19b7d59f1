package indicio

import (
	"context"
	"sort"
	"sync"
	"time"

	"expedientes/pkg/sentinel"
)

// MemoryStore is the in-memory Store used by tests and database-less dev mode.
type MemoryStore struct {
	mu     sync.RWMutex
	byID   map[int64]*Indicio
	nextID int64
}

// NewMemoryStore creates an empty in-memory evidence store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[int64]*Indicio), nextID: 1}
}

func (s *MemoryStore) ListarPorExpediente(ctx context.Context, expedienteID int64) ([]Indicio, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Indicio, 0)
	for _, i := range s.byID {
		if i.ExpedienteID == expedienteID {
			out = append(out, *i)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func (s *MemoryStore) Obtener(ctx context.Context, id int64) (*Indicio, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *i
	return &clone, nil
}

func (s *MemoryStore) Crear(ctx context.Context, expedienteID int64, in CrearInput, creadoPor int64) (*Indicio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := &Indicio{
		ID:            s.nextID,
		ExpedienteID:  expedienteID,
		Descripcion:   in.Descripcion,
		Peso:          in.Peso,
		Color:         in.Color,
		Tamano:        in.Tamano,
		Activo:        true,
		FechaCreacion: time.Now().UTC(),
	}
	s.byID[i.ID] = i
	s.nextID++

	clone := *i
	return &clone, nil
}

func (s *MemoryStore) Actualizar(ctx context.Context, id int64, in ActualizarInput, modificadoPor int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.byID[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	i.Descripcion = in.Descripcion
	i.Peso = in.Peso
	i.Color = in.Color
	i.Tamano = in.Tamano
	return nil
}

func (s *MemoryStore) ToggleActivo(ctx context.Context, id int64, activo bool, modificadoPor int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.byID[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	i.Activo = activo
	return nil
}
