package businessflow

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseLockScript deletes the key only while it still holds the caller's token.
var releaseLockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// redisLock is a SETNX lock owned by a random token.
type redisLock struct {
	rc    *redis.Client
	key   string
	token string
}

// acquireRedisLock returns nil without error when another caller holds the key.
func acquireRedisLock(ctx context.Context, rc *redis.Client, key string, ttl time.Duration) (*redisLock, error) {
	token := uuid.NewString()
	ok, err := rc.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &redisLock{rc: rc, key: key, token: token}, nil
}

// Release drops the lock if it is still ours and reports whether it was.
func (l *redisLock) Release(ctx context.Context) bool {
	n, err := releaseLockScript.Run(ctx, l.rc, []string{l.key}, l.token).Int()
	if err != nil {
		log.Printf("failed to release lock %s: %v", l.key, err)
		return false
	}
	return n == 1
}
