package rate

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryLimiter es el mismo fixed window que RedisLimiter pero en proceso.
type MemoryLimiter struct {
	c      *gocache.Cache
	max    int64
	window time.Duration
	now    func() time.Time
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		c:      gocache.New(window, 2*window),
		max:    int64(max),
		window: window,
		now:    time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	now := l.now().UTC()
	winStart := now.Truncate(l.window)
	k := fmt.Sprintf("%s:%d", key, winStart.Unix())

	// Add no pisa un contador existente; el error (ya existe) se ignora.
	_ = l.c.Add(k, int64(0), l.window)
	hits, err := l.c.IncrementInt64(k, 1)
	if err != nil {
		// La entrada venció entre Add e Increment: arrancar de nuevo la ventana.
		l.c.Set(k, int64(1), l.window)
		hits = 1
	}

	ttl := winStart.Add(l.window).Sub(now)
	return decide(hits, l.max, ttl, l.window), nil
}
