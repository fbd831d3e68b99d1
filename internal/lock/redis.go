package lock

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

const (
	keyPrefix    = "lock:room:"
	retryBackoff = 20 * time.Millisecond
)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a Locker shared by every server instance pointing at the same
// redis. A lock expires after ttl even if its holder never releases it.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	tokens io.Reader
	logger zerolog.Logger
}

// NewRedis creates a redis Locker. tokens supplies the random bytes that tag
// each acquisition so a holder never releases someone else's lock.
func NewRedis(client *redis.Client, ttl time.Duration, tokens io.Reader, logger zerolog.Logger) *Redis {
	return &Redis{client: client, ttl: ttl, tokens: tokens, logger: logger}
}

func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	buf := make([]byte, 16)
	if _, err := io.ReadFull(r.tokens, buf); err != nil {
		return nil, fmt.Errorf("lock token: %w", err)
	}
	token := hex.EncodeToString(buf)
	redisKey := keyPrefix + key

	for {
		ok, err := r.client.SetNX(ctx, redisKey, token, r.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, errors.Join(ErrTimeout, ctx.Err())
			}
			return nil, fmt.Errorf("acquire room lock: %w", err)
		}
		if ok {
			break
		}

		select {
		case <-time.After(retryBackoff):
		case <-ctx.Done():
			return nil, errors.Join(ErrTimeout, ctx.Err())
		}
	}

	return func() {
		// The caller's context may already be done; release on a fresh one.
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, r.client, []string{redisKey}, token).Err(); err != nil {
			// Other holders now wait for the ttl to expire.
			r.logger.Warn().Err(err).Str("key", redisKey).Dur("ttl", r.ttl).Msg("room lock release failed")
		}
	}, nil
}
