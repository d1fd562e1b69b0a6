package registry

import (
	"context"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// DefaultCleanupInterval es la frecuencia del janitor si no se configura otra.
const DefaultCleanupInterval = time.Minute

// WindowStore es un registro con expiración: cada id vive ttl desde que se registró.
// Usa Add de go-cache, que hace el chequeo y la inserción bajo el mismo lock.
type WindowStore struct {
	c      *gocache.Cache
	ttl    time.Duration
	closed atomic.Bool
}

// NewWindow crea un WindowStore cuyas entradas expiran a los ttl.
func NewWindow(ttl, cleanupInterval time.Duration) *WindowStore {
	if cleanupInterval <= 0 {
		cleanupInterval = DefaultCleanupInterval
	}
	return &WindowStore{
		c:   gocache.New(ttl, cleanupInterval),
		ttl: ttl,
	}
}

func (s *WindowStore) CheckAndRecord(_ context.Context, id string) (bool, error) {
	if id == "" {
		return false, ErrEmptyID
	}
	if s.closed.Load() {
		return false, ErrClosed
	}
	// Add falla solo si la key existe y no venció.
	if err := s.c.Add(id, struct{}{}, s.ttl); err != nil {
		return false, nil
	}
	return true, nil
}

// TTL devuelve el tiempo de vida de cada entrada.
func (s *WindowStore) TTL() time.Duration { return s.ttl }

func (s *WindowStore) Len() int { return s.c.ItemCount() }

// DeleteExpired purga las entradas vencidas sin esperar al janitor.
func (s *WindowStore) DeleteExpired() { s.c.DeleteExpired() }

func (s *WindowStore) Ping(context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}
	return nil
}

func (s *WindowStore) Close() error {
	if s.closed.CompareAndSwap(false, true) {
		s.c.Flush()
	}
	return nil
}
