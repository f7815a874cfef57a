package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-be/internal/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type RedisConfig struct {
	URL          string `split_words:"true"`
	ReadTimeout  int    `split_words:"true" default:"3"`
	WriteTimeout int    `split_words:"true" default:"3"`
	DialTimeout  int    `split_words:"true" default:"5"`
}

// Enabled reports whether a Redis URL was configured.
func (r *RedisConfig) Enabled() bool {
	return r.URL != ""
}

// Options parses the URL and applies the timeouts, in seconds.
func (r *RedisConfig) Options() (*redis.Options, error) {
	opts, err := redis.ParseURL(r.URL)
	if err != nil {
		return nil, err
	}

	opts.ReadTimeout = time.Duration(r.ReadTimeout) * time.Second
	opts.WriteTimeout = time.Duration(r.WriteTimeout) * time.Second
	opts.DialTimeout = time.Duration(r.DialTimeout) * time.Second

	return opts, nil
}

func (r *RedisConfig) New(ctx context.Context) (*redis.Client, error) {
	opts, err := r.Options()
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return client, nil
}

func (r *RedisConfig) MustNew(ctx context.Context) *redis.Client {
	client, err := r.New(ctx)
	if err != nil {
		panic(err)
	}

	return client
}

// RedisSlot keeps the slot value under one Redis string key.
type RedisSlot struct {
	rdb redis.Cmdable
	key string
}

func NewRedisSlot(rdb redis.Cmdable, key string) (*RedisSlot, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	return &RedisSlot{rdb: rdb, key: key}, nil
}

func (s *RedisSlot) Load(ctx context.Context) ([]byte, error) {
	data, err := s.rdb.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		logger.FromCtx(ctx).Error("failed to load slot from redis", zap.String("key", s.key), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return data, nil
}

func (s *RedisSlot) Save(ctx context.Context, data []byte) error {
	if err := s.rdb.Set(ctx, s.key, data, 0).Err(); err != nil {
		logger.FromCtx(ctx).Error("failed to save slot to redis", zap.String("key", s.key), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

var _ Slot = (*RedisSlot)(nil)
