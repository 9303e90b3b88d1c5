package flash

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func redisKey(key string) string {
	return "flash:" + key
}

func (s *RedisStore) Put(ctx context.Context, key string, f Flash) error {
	data, err := json.Marshal(f)
	if err != nil {
		return errors.Wrap(err, "encode flash")
	}
	if err := s.rdb.Set(ctx, redisKey(key), data, s.ttl).Err(); err != nil {
		return errors.Wrap(err, "store flash")
	}
	return nil
}

func (s *RedisStore) Pop(ctx context.Context, key string) (*Flash, error) {
	data, err := s.rdb.GetDel(ctx, redisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "pop flash")
	}
	var f Flash
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "decode flash")
	}
	return &f, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
