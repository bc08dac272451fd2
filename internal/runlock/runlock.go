// Package runlock guards against overlapping pipeline runs with a Redis
// SETNX lease. The pipeline assumes single-run-at-a-time; the lease makes
// that assumption hold even when the scheduler and a manual invocation race.
package runlock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrHeld is returned when another run currently holds the lock.
var ErrHeld = errors.New("another run is in progress")

// releaseScript deletes the key only if this holder still owns it, so an
// expired-and-reacquired lock is never released by the previous holder.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Lock is a single-holder lease on a Redis key.
type Lock struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

// New returns a Lock on key with the given lease TTL. The TTL bounds how
// long a crashed run can block the next one.
func New(rdb *redis.Client, key string, ttl time.Duration) *Lock {
	return &Lock{rdb: rdb, key: key, ttl: ttl}
}

// Acquire takes the lease, returning a release func on success and ErrHeld
// when another run owns it.
func (l *Lock) Acquire(ctx context.Context) (func(context.Context) error, error) {
	token := uuid.NewString()

	ok, err := l.rdb.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return nil, ErrHeld
	}

	release := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.rdb, []string{l.key}, token).Err(); err != nil && err != redis.Nil {
			return fmt.Errorf("release run lock: %w", err)
		}
		return nil
	}
	return release, nil
}
