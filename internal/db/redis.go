// internal/db/redis.go
package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisDB struct {
	Client *redis.Client
}

func NewRedisDB(redisURL string) (*RedisDB, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Println("[Redis] ✅ Connected to Redis")
	return &RedisDB{Client: client}, nil
}

func (r *RedisDB) Close() {
	if r.Client != nil {
		r.Client.Close()
		log.Println("[Redis] Connection closed")
	}
}

// Refresh token storage. Keys carry the user id so a logout can revoke a
// single session without scanning.
func (r *RedisDB) SetRefreshToken(ctx context.Context, token, userID string, expiration time.Duration) error {
	return r.Client.Set(ctx, "refresh:"+token, userID, expiration).Err()
}

func (r *RedisDB) GetRefreshToken(ctx context.Context, token string) (string, error) {
	return r.Client.Get(ctx, "refresh:"+token).Result()
}

func (r *RedisDB) DeleteRefreshToken(ctx context.Context, token string) error {
	return r.Client.Del(ctx, "refresh:"+token).Err()
}
