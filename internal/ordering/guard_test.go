package ordering

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestLocalGuard(t *testing.T) {
	g := NewLocalGuard()
	release, ok := g.Acquire(context.Background(), "k")
	if !ok {
		t.Fatalf("expected first acquire to succeed")
	}
	if _, ok := g.Acquire(context.Background(), "k"); ok {
		t.Fatalf("expected second acquire to fail")
	}
	if _, ok := g.Acquire(context.Background(), "other"); !ok {
		t.Fatalf("expected independent key to succeed")
	}
	release()
	release()
	if _, ok := g.Acquire(context.Background(), "k"); !ok {
		t.Fatalf("expected acquire after release to succeed")
	}
}

type fakeLocker struct {
	mu   sync.Mutex
	held map[string]string
	err  error
	ttl  time.Duration
}

func (f *fakeLocker) AcquireLock(_ context.Context, key, token string, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	if _, busy := f.held[key]; busy {
		return false, nil
	}
	f.held[key] = token
	f.ttl = ttl
	return true, nil
}

func (f *fakeLocker) ReleaseLock(_ context.Context, key, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.held[key] == token {
		delete(f.held, key)
	}
	return nil
}

func TestRedisGuard(t *testing.T) {
	locker := &fakeLocker{held: make(map[string]string)}
	g := NewRedisGuard(locker, 0, nil)

	release, ok := g.Acquire(context.Background(), "session:a")
	if !ok {
		t.Fatalf("expected acquire to succeed")
	}
	if locker.ttl != 30*time.Second {
		t.Fatalf("expected default ttl, got %s", locker.ttl)
	}
	if _, ok := g.Acquire(context.Background(), "session:a"); ok {
		t.Fatalf("expected duplicate to be rejected")
	}
	release()
	if len(locker.held) != 0 {
		t.Fatalf("expected lock released, got %v", locker.held)
	}
}

func TestRedisGuardFallsBackToLocal(t *testing.T) {
	locker := &fakeLocker{held: make(map[string]string), err: errors.New("dial tcp: refused")}
	g := NewRedisGuard(locker, time.Second, nil)

	release, ok := g.Acquire(context.Background(), "k")
	if !ok {
		t.Fatalf("expected local fallback to admit first call")
	}
	if _, ok := g.Acquire(context.Background(), "k"); ok {
		t.Fatalf("expected local fallback to reject duplicate")
	}
	release()
}
