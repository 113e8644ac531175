package session

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Key      string `yaml:"key"`
}

type redisStore struct {
	rdb *redis.Client
	key string
}

// NewRedisStore keeps the token under a single redis key, letting several
// dashboard processes share one sign-in.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, err
	}

	return NewRedisStoreWithClient(rdb, cfg.Key), nil
}

func NewRedisStoreWithClient(rdb *redis.Client, key string) Store {
	if key == "" {
		key = "florax:session:" + DefaultKey
	}
	return &redisStore{rdb: rdb, key: key}
}

func (r *redisStore) Load(ctx context.Context) (string, error) {
	token, err := r.rdb.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) || (err == nil && token == "") {
		return "", ErrNoToken
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

func (r *redisStore) Save(ctx context.Context, token string) error {
	return r.rdb.Set(ctx, r.key, token, 0).Err()
}

func (r *redisStore) Delete(ctx context.Context) error {
	return r.rdb.Del(ctx, r.key).Err()
}
