package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisRepo struct {
	client *redis.Client
}

func New(ctx context.Context, addr, pass string, db int) (*RedisRepo, error) {
	const op = "storage.redis.New"

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     pass,
		DB:           db,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &RedisRepo{
		client: client,
	}, nil
}

// * RegisterAttempt считает попытки ввода кода в пределах окна.
// Returns the attempt count after this hit. The window starts with the
// first attempt (NX expiry), so a stream of retries cannot keep
// extending it.
func (r *RedisRepo) RegisterAttempt(ctx context.Context, username string, window time.Duration) (int64, error) {
	const op = "storage.redis.RegisterAttempt"

	key := fmt.Sprintf("verify:attempts:%s", username)

	pipe := r.client.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)

	_, err := pipe.Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return incr.Val(), nil
}

// * ClearAttempts сбрасывает счетчик после успешной верификации.
func (r *RedisRepo) ClearAttempts(ctx context.Context, username string) error {
	const op = "storage.redis.ClearAttempts"

	key := fmt.Sprintf("verify:attempts:%s", username)

	err := r.client.Del(ctx, key).Err()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// * Close закрывает соединение с базой данных.
func (r *RedisRepo) Close() {
	r.client.Close()
}
