package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// compare-and-delete so an expired holder never frees someone else's lease
const releaseIfOwnerScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

var ErrLockHeld = errors.New("lock held")

// Lease is an acquired lock. The zero Lease releases nothing.
type Lease struct {
	key   string
	token string
}

func (l Lease) Held() bool { return l.token != "" }

type Locker struct {
	client  redis.UniversalClient
	release *redis.Script
}

func NewLocker(client redis.UniversalClient) *Locker {
	if client == nil {
		return nil
	}
	return &Locker{
		client:  client,
		release: redis.NewScript(releaseIfOwnerScript),
	}
}

// Acquire takes key for ttl. It returns ErrLockHeld when another holder
// owns the key.
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (Lease, error) {
	switch {
	case l == nil || l.client == nil:
		return Lease{}, errors.New("lock client not configured")
	case key == "":
		return Lease{}, errors.New("lock key is empty")
	case ttl <= 0:
		return Lease{}, errors.New("lock ttl must be positive")
	}

	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return Lease{}, err
	}
	if !ok {
		return Lease{}, ErrLockHeld
	}
	return Lease{key: key, token: token}, nil
}

func (l *Locker) Release(ctx context.Context, lease Lease) error {
	if l == nil || l.client == nil || !lease.Held() {
		return nil
	}
	return l.release.Run(ctx, l.client, []string{lease.key}, lease.token).Err()
}
