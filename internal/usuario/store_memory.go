package usuario

import (
	"context"
	"sort"
	"sync"
	"time"

	"expedientes/internal/authz"
	"expedientes/pkg/sentinel"
)

// MemoryStore is the in-memory Store used by tests and database-less dev mode.
type MemoryStore struct {
	mu     sync.RWMutex
	byID   map[int64]*Credenciales
	nextID int64
}

// NewMemoryStore creates an empty in-memory account store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[int64]*Credenciales), nextID: 1}
}

func (s *MemoryStore) Crear(ctx context.Context, username, passwordHash string, rol string) (*Usuario, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.byID {
		if c.Username == username {
			return nil, sentinel.ErrConflict
		}
	}

	c := &Credenciales{
		Usuario: Usuario{
			ID:            s.nextID,
			Username:      username,
			Rol:           authz.Role(rol),
			Activo:        true,
			FechaCreacion: time.Now().UTC(),
		},
		PasswordHash: passwordHash,
	}
	s.byID[c.ID] = c
	s.nextID++

	u := c.Usuario
	return &u, nil
}

func (s *MemoryStore) GetByUsername(ctx context.Context, username string) (*Credenciales, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.byID {
		// Deactivated accounts cannot log in; the lookup behaves as if they
		// do not exist, same as the stored procedure.
		if c.Username == username && c.Activo {
			clone := *c
			return &clone, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *MemoryStore) GetByID(ctx context.Context, id int64) (*Credenciales, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *c
	return &clone, nil
}

func (s *MemoryStore) Listar(ctx context.Context, page, pageSize int) ([]Usuario, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]Usuario, 0, len(s.byID))
	for _, c := range s.byID {
		all = append(all, c.Usuario)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	total := int64(len(all))
	start := (page - 1) * pageSize
	if start >= len(all) {
		return []Usuario{}, total, nil
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (s *MemoryStore) ActualizarPassword(ctx context.Context, id int64, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.byID[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	c.PasswordHash = passwordHash
	return nil
}

func (s *MemoryStore) ToggleActivo(ctx context.Context, id int64, activo bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.byID[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	c.Activo = activo
	return nil
}
