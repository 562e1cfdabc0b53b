package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionLocker serializes grading for a single session. Acquire returns
// false when another grader already holds the lock; callers treat that as
// a conflict rather than waiting.
type SessionLocker interface {
	Acquire(ctx context.Context, sessionID uint, ttl time.Duration) (bool, error)
	Release(ctx context.Context, sessionID uint) error
}

func lockKey(sessionID uint) string {
	return fmt.Sprintf("grading:lock:%d", sessionID)
}

type redisSessionLock struct {
	client *redis.Client
}

func NewRedisSessionLock(client *redis.Client) SessionLocker {
	return &redisSessionLock{client: client}
}

func (l *redisSessionLock) Acquire(ctx context.Context, sessionID uint, ttl time.Duration) (bool, error) {
	return l.client.SetNX(ctx, lockKey(sessionID), "1", ttl).Result()
}

func (l *redisSessionLock) Release(ctx context.Context, sessionID uint) error {
	return l.client.Del(ctx, lockKey(sessionID)).Err()
}

// localSessionLock is an in-process fallback for single-instance
// deployments and tests.
type localSessionLock struct {
	mu   sync.Mutex
	held map[uint]time.Time
}

func NewLocalSessionLock() SessionLocker {
	return &localSessionLock{held: make(map[uint]time.Time)}
}

func (l *localSessionLock) Acquire(_ context.Context, sessionID uint, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if expiry, ok := l.held[sessionID]; ok && time.Now().Before(expiry) {
		return false, nil
	}
	l.held[sessionID] = time.Now().Add(ttl)
	return true, nil
}

func (l *localSessionLock) Release(_ context.Context, sessionID uint) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, sessionID)
	return nil
}
