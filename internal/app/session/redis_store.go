package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Neeharika2/code-assessor/internal/common/security"
	"github.com/Neeharika2/code-assessor/internal/domain/model"
	"github.com/redis/go-redis/v9"
)

// RedisStore shares one session between machines or containers. The key
// expires together with the token.
type RedisStore struct {
	rdb *redis.Client
	key string
	now func() time.Time
}

func NewRedisStore(rdb *redis.Client, key string) *RedisStore {
	return &RedisStore{rdb: rdb, key: key, now: time.Now}
}

func (r *RedisStore) Load(ctx context.Context) (*model.Session, error) {
	data, err := r.rdb.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", r.key, err)
	}
	var sess model.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session at %s: %w", r.key, err)
	}
	return &sess, nil
}

func (r *RedisStore) Save(ctx context.Context, sess *model.Session) error {
	ttl := r.ttl(sess.Token)
	if ttl < 0 {
		return r.Clear(ctx)
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	if err := r.rdb.Set(ctx, r.key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context) error {
	if err := r.rdb.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", r.key, err)
	}
	return nil
}

// ttl is zero (no expiry) for tokens without an exp claim and negative for
// tokens that are already expired.
func (r *RedisStore) ttl(token string) time.Duration {
	exp, ok := security.TokenExpiry(token)
	if !ok {
		return 0
	}
	left := exp.Sub(r.now())
	if left <= 0 {
		return -1
	}
	return left
}
