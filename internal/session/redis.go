package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps sessions in redis so multiple instances can share the
// same logins. Expiry rides on the key TTL.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: "session:"}
}

func (s *RedisStore) Save(ctx context.Context, token string, p Payload, ttl time.Duration) error {
	raw, err := json.Marshal(p)

	if err != nil {
		return err
	}

	return s.rdb.Set(ctx, s.prefix+token, raw, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, token string) (Payload, error) {
	raw, err := s.rdb.Get(ctx, s.prefix+token).Bytes()

	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Payload{}, ErrNoSession
		}

		return Payload{}, err
	}

	var p Payload

	if err := json.Unmarshal(raw, &p); err != nil {
		return Payload{}, err
	}

	return p, nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, s.prefix+token).Err()
}
