package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "cic:lock:"

// Sólo borra si el token sigue siendo nuestro (el TTL pudo expirar y otro tomarla).
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis es un Guard compartido entre instancias (SET NX PX + token).
type Redis struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedis(client redis.UniversalClient, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = 15 * time.Second
	}
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) TryAcquire(ctx context.Context, key string) (Release, error) {
	k := keyPrefix + key
	token := uuid.NewString()

	ok, err := r.client.SetNX(ctx, k, token, r.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("lock: redis setnx: %w", err)
	}
	if !ok {
		return nil, ErrHeld
	}

	return func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, r.client, []string{k}, token).Err(); err != nil && err != redis.Nil {
			return fmt.Errorf("lock: redis release: %w", err)
		}
		return nil
	}, nil
}

// NewRedisClient abre el cliente y hace ping.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	c := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return c, nil
}
