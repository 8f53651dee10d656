// Package redisrepo stores token slots in Redis so that several server
// processes acting for the same client id share one TokenSet.
package redisrepo

import (
	"context"
	"errors"
	"time"

	"github.com/jrsteele09/go-ordercloud/token"
	pkgerrors "github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

var _ token.Repo = (*RedisRepo)(nil)

type RedisRepo struct {
	redis  redis.UniversalClient
	prefix string
	ttl    time.Duration
}

type Option func(*RedisRepo)

// WithPrefix namespaces every key, e.g. per tenant or deployment.
func WithPrefix(prefix string) Option {
	return func(r *RedisRepo) {
		r.prefix = prefix
	}
}

// WithTTL expires stored tokens after ttl. Zero keeps them until deleted.
func WithTTL(ttl time.Duration) Option {
	return func(r *RedisRepo) {
		r.ttl = ttl
	}
}

func New(client redis.UniversalClient, options ...Option) *RedisRepo {
	r := &RedisRepo{redis: client}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *RedisRepo) key(key string) string {
	return r.prefix + key
}

func (r *RedisRepo) Get(ctx context.Context, key string) (string, error) {
	value, err := r.redis.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", pkgerrors.Wrap(err, "RedisRepo.Get")
	}
	return value, nil
}

func (r *RedisRepo) Upsert(ctx context.Context, key, value string) error {
	if err := r.redis.Set(ctx, r.key(key), value, r.ttl).Err(); err != nil {
		return pkgerrors.Wrap(err, "RedisRepo.Upsert")
	}
	return nil
}

func (r *RedisRepo) Delete(ctx context.Context, key string) error {
	if err := r.redis.Del(ctx, r.key(key)).Err(); err != nil {
		return pkgerrors.Wrap(err, "RedisRepo.Delete")
	}
	return nil
}
