package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// Deletes the key only while it still carries our token.
const unlockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

// offerMutex is a single-holder redis lock with a bounded lease.
type offerMutex struct {
	client *redis.Client
	unlock *redis.Script
	lease  time.Duration
}

func newOfferMutex(client *redis.Client, lease time.Duration) *offerMutex {
	return &offerMutex{
		client: client,
		unlock: redis.NewScript(unlockScript),
		lease:  lease,
	}
}

// acquire returns the holder token, or ErrOfferLocked while someone else holds key.
func (m *offerMutex) acquire(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", errors.New("mutex key is empty")
	}
	token := uuid.NewString()
	ok, err := m.client.SetNX(ctx, key, token, m.lease).Result()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrOfferLocked
	}
	return token, nil
}

func (m *offerMutex) release(ctx context.Context, key, token string) error {
	if token == "" {
		return nil
	}
	return m.unlock.Run(ctx, m.client, []string{key}, token).Err()
}
