package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/ruleflow/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

var (
	// ErrLockAcquire is returned when the lock cannot be acquired.
	ErrLockAcquire = errors.New("failed to acquire distributed lock")
)

// unlockScript deletes the key only if it still holds our token.
var unlockScript = backend.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// Locker implements ports.DistributedLocker using Redis.
// Keys live under <prefix>lock:, apart from the store's data and index keys.
type Locker struct {
	client   *backend.Client
	prefix   string
	interval time.Duration
}

// NewLocker creates a new Redis locker.
func NewLocker(client *backend.Client, prefix string) *Locker {
	return &Locker{
		client:   client,
		prefix:   prefix,
		interval: 100 * time.Millisecond,
	}
}

func token() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Lock acquires a distributed lock for the given key using Redis SET NX PX.
// It polls until the lock is free or ctx is done.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	lockKey := l.prefix + "lock:" + key

	val, err := token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLockAcquire, err)
	}

	unlock := func(ctx context.Context) error {
		return unlockScript.Run(ctx, l.client, []string{lockKey}, val).Err()
	}

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, lockKey, val, ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("redis error acquiring lock: %w", err)
		}
		if ok {
			return unlock, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

var _ ports.DistributedLocker = (*Locker)(nil)
