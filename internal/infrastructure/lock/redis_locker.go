package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/tienda-api/internal/application/inventory"
	"github.com/jhoicas/tienda-api/pkg/logger"
)

var _ inventory.ProductLocker = (*RedisLocker)(nil)

// Solo borra la clave si sigue siendo nuestra (el TTL pudo expirar y otro proceso tomarla).
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// RedisLocker bloquea productos entre varias instancias con SET NX PX.
type RedisLocker struct {
	client     *redis.Client
	keyPrefix  string
	ttl        time.Duration
	retryDelay time.Duration
	log        *logger.Logger
}

// NewRedisLocker construye el locker. ttl acota cuánto puede retener un proceso caído las claves.
func NewRedisLocker(client *redis.Client, ttl time.Duration, log *logger.Logger) *RedisLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisLocker{
		client:     client,
		keyPrefix:  "tienda:lock:product:",
		ttl:        ttl,
		retryDelay: 25 * time.Millisecond,
		log:        log,
	}
}

// NewRedisClient crea el cliente y verifica la conexión.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return client, nil
}

// Lock adquiere las claves en orden, reintentando hasta que el contexto expire.
func (l *RedisLocker) Lock(ctx context.Context, productIDs ...string) (func(), error) {
	keys := normalize(productIDs)
	token := uuid.New().String()
	acquired := make([]string, 0, len(keys))
	for _, key := range keys {
		if err := l.acquire(ctx, l.keyPrefix+key, token); err != nil {
			l.releaseAll(acquired, token)
			return nil, err
		}
		acquired = append(acquired, l.keyPrefix+key)
	}
	var once sync.Once
	return func() { once.Do(func() { l.releaseAll(acquired, token) }) }, nil
}

func (l *RedisLocker) acquire(ctx context.Context, key, token string) error {
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return fmt.Errorf("redis lock %s: %w", key, err)
		}
		if ok {
			return nil
		}
		t := time.NewTimer(l.retryDelay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

func (l *RedisLocker) releaseAll(keys []string, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := len(keys) - 1; i >= 0; i-- {
		err := releaseScript.Run(ctx, l.client, []string{keys[i]}, token).Err()
		if err != nil && !errors.Is(err, redis.Nil) {
			l.log.Warn().Err(err).Str("key", keys[i]).Msg("no se pudo liberar el lock de producto")
		}
	}
}
