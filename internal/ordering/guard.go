package ordering

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Guard admits one in-flight submission per key.
type Guard interface {
	Acquire(ctx context.Context, key string) (release func(), ok bool)
}

type LocalGuard struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewLocalGuard() *LocalGuard {
	return &LocalGuard{inFlight: make(map[string]struct{})}
}

func (g *LocalGuard) Acquire(_ context.Context, key string) (func(), bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.inFlight[key]; busy {
		return func() {}, false
	}
	g.inFlight[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.inFlight, key)
			g.mu.Unlock()
		})
	}, true
}

// Locker is the shared lock store behind RedisGuard.
type Locker interface {
	AcquireLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, token string) error
}

// RedisGuard shares the in-flight guard across instances. When the lock
// store is unreachable it degrades to the in-process guard.
type RedisGuard struct {
	Locker   Locker
	TTL      time.Duration
	Fallback *LocalGuard
	Logger   *zap.Logger
}

func NewRedisGuard(locker Locker, ttl time.Duration, logger *zap.Logger) *RedisGuard {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisGuard{Locker: locker, TTL: ttl, Fallback: NewLocalGuard(), Logger: logger}
}

func (g *RedisGuard) Acquire(ctx context.Context, key string) (func(), bool) {
	token := uuid.NewString()
	lockKey := "order-submit:" + key
	ok, err := g.Locker.AcquireLock(ctx, lockKey, token, g.TTL)
	if err != nil {
		if g.Logger != nil {
			g.Logger.Warn("submission guard unavailable; using local guard", zap.Error(err))
		}
		return g.Fallback.Acquire(ctx, key)
	}
	if !ok {
		return func() {}, false
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := g.Locker.ReleaseLock(releaseCtx, lockKey, token); err != nil && g.Logger != nil {
				g.Logger.Warn("submission guard release failed", zap.Error(err))
			}
		})
	}, true
}
