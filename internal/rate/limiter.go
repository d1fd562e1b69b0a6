// Package rate implementa el rate limiting fixed-window que protege el endpoint de
// verificación (por defecto 10 requests por minuto por IP).
package rate

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

type Result struct {
	Allowed     bool
	Remaining   int64
	RetryAfter  time.Duration
	WindowTTL   time.Duration
	CurrentHits int64
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// Config elige y configura el backend.
type Config struct {
	Backend string // "memory" (default) | "redis"
	Limit   int
	Window  time.Duration

	RedisAddr   string
	RedisDB     int
	RedisPrefix string
}

// New crea un Limiter según cfg. El cliente redis (si aplica) se cierra con el closer devuelto.
func New(cfg Config) (Limiter, func() error, error) {
	if cfg.Limit <= 0 || cfg.Window <= 0 {
		return nil, nil, fmt.Errorf("rate: limit and window must be positive (limit=%d window=%s)", cfg.Limit, cfg.Window)
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "memory", "":
		return NewMemoryLimiter(cfg.Limit, cfg.Window), func() error { return nil }, nil
	case "redis":
		client := rdb.NewClient(&rdb.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("rate: redis ping failed: %w", err)
		}
		return NewRedisLimiter(client, cfg.RedisPrefix, cfg.Limit, cfg.Window), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("rate: unknown backend %q", cfg.Backend)
	}
}

// RedisLimiter: fixed window sencillo (INCR + EXPIRE). Comparte el límite entre instancias.
type RedisLimiter struct {
	Client *rdb.Client
	Prefix string
	Max    int64
	Window time.Duration
}

func NewRedisLimiter(client *rdb.Client, prefix string, max int, window time.Duration) *RedisLimiter {
	if prefix == "" {
		prefix = "rl:"
	}
	return &RedisLimiter{
		Client: client,
		Prefix: prefix,
		Max:    int64(max),
		Window: window,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	winStart := time.Now().UTC().Truncate(l.Window)
	redisKey := fmt.Sprintf("%s%s:%d", l.Prefix, strings.ReplaceAll(key, " ", "_"), winStart.Unix())

	pipe := l.Client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	ttl := pipe.TTL(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, err
	}

	// set expiry on first hit
	if incr.Val() == 1 {
		_ = l.Client.Expire(ctx, redisKey, l.Window).Err()
		ttl = l.Client.TTL(ctx, redisKey)
	}

	return decide(incr.Val(), l.Max, ttl.Val(), l.Window), nil
}

// decide arma el Result a partir del contador de la ventana actual.
func decide(hits, max int64, ttl, window time.Duration) Result {
	remaining := max - hits
	if remaining < 0 {
		remaining = 0
	}
	res := Result{
		Allowed:     hits <= max,
		Remaining:   remaining,
		CurrentHits: hits,
		WindowTTL:   ttl,
	}
	if !res.Allowed {
		// Retry after: resto de la ventana
		res.RetryAfter = ttl
		if res.RetryAfter <= 0 {
			res.RetryAfter = time.Duration(math.Ceil(window.Seconds())) * time.Second
		}
	}
	return res
}
