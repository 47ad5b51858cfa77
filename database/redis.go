package database

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

// RedisClient is the fast-path session store. The Postgres user_sessions
// table remains authoritative; Redis entries carry the same TTL and are only
// a cheap first check.
type RedisClient struct {
	client *redis.Client
}

// GetRedisClient connects to Redis and verifies the connection.
func GetRedisClient(addr, password string, db int) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisClient{client: client}, nil
}

// SetSession stores the session token with its owning user ID.
func (r *RedisClient) SetSession(ctx context.Context, token string, userID uint, ttl time.Duration) error {
	return r.client.Set(ctx, sessionKeyPrefix+token, strconv.FormatUint(uint64(userID), 10), ttl).Err()
}

// GetSession resolves a session token to its user ID. A missing or expired
// token returns an error.
func (r *RedisClient) GetSession(ctx context.Context, token string) (uint, error) {
	val, err := r.client.Get(ctx, sessionKeyPrefix+token).Result()
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt session value: %w", err)
	}
	return uint(id), nil
}

// DeleteSession removes a session token.
func (r *RedisClient) DeleteSession(ctx context.Context, token string) error {
	return r.client.Del(ctx, sessionKeyPrefix+token).Err()
}
