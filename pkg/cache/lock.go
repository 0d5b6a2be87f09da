package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultLockTTL = 10 * time.Minute

// releaseScript deletes the key only while it still holds our owner token,
// so a lock that expired and was re-acquired elsewhere is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// lockStore is the subset of Redis the lock needs.
type lockStore interface {
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	CompareAndDelete(ctx context.Context, key, value string) (bool, error)
}

// Lock is a best-effort distributed mutex built on SET NX + TTL. It keeps a
// run exclusive across worker replicas; it is not a fencing token.
type Lock struct {
	store lockStore
	key   string
	ttl   time.Duration
	owner string
}

// NewLock returns a Lock on key. A non-positive ttl falls back to 10 minutes.
func NewLock(r *RedisClient, key string, ttl time.Duration) (*Lock, error) {
	if r == nil {
		return nil, errors.New("redis client required for lock")
	}
	return newLock(redisLockStore{client: r.Client()}, key, ttl)
}

func newLock(store lockStore, key string, ttl time.Duration) (*Lock, error) {
	if key == "" {
		return nil, errors.New("lock key is required")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &Lock{store: store, key: key, ttl: ttl}, nil
}

// Acquire tries to own the lock for the configured TTL. It reports false
// without error when another owner holds it.
func (l *Lock) Acquire(ctx context.Context) (bool, error) {
	owner := uuid.NewString()
	ok, err := l.store.SetNX(ctx, l.key, owner, l.ttl)
	if err != nil {
		return false, fmt.Errorf("lock %s: setnx: %w", l.key, err)
	}
	if ok {
		l.owner = owner
	}
	return ok, nil
}

// Release frees the lock if this Lock still owns it.
func (l *Lock) Release(ctx context.Context) error {
	if l.owner == "" {
		return nil
	}
	if _, err := l.store.CompareAndDelete(ctx, l.key, l.owner); err != nil {
		return fmt.Errorf("lock %s: release: %w", l.key, err)
	}
	l.owner = ""
	return nil
}

type redisLockStore struct{ client *redis.Client }

func (s redisLockStore) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, key, value, ttl).Result()
}

func (s redisLockStore) CompareAndDelete(ctx context.Context, key, value string) (bool, error) {
	n, err := releaseScript.Run(ctx, s.client, []string{key}, value).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
