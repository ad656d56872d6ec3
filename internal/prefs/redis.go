package prefs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/soyeahso/obiefood/internal/domain"
	"github.com/soyeahso/obiefood/internal/logging"
)

// prefKeyPrefix namespaces preference keys in Redis.
const prefKeyPrefix = "prefs:"

// RedisClient implements Client backed by Redis. Preferences have no TTL:
// a saved restriction holds until the user clears it.
type RedisClient struct {
	rdb *redis.Client
	log *logging.Logger
}

// NewRedisClient creates a Redis-backed preference client.
func NewRedisClient(addr, password string, db int, log *logging.Logger) *RedisClient {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	return &RedisClient{rdb: rdb, log: log.Sub("prefs.redis")}
}

// Get fetches the saved preference, or (nil, nil) when absent.
func (c *RedisClient) Get(ctx context.Context, userID string) (*domain.Preference, error) {
	val, err := c.rdb.Get(ctx, prefKeyPrefix+userID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("prefs get: %w", err)
	}

	var pref domain.Preference
	if err := json.Unmarshal([]byte(val), &pref); err != nil {
		return nil, fmt.Errorf("prefs payload: %w", err)
	}
	return &pref, nil
}

// Set saves or clears the preference. nil clears.
func (c *RedisClient) Set(ctx context.Context, userID string, pref *domain.Preference) error {
	key := prefKeyPrefix + userID
	if pref == nil {
		if err := c.rdb.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("prefs clear: %w", err)
		}
		c.log.Debug().Str("user", userID).Msg("preference cleared")
		return nil
	}

	val, err := json.Marshal(pref)
	if err != nil {
		return fmt.Errorf("prefs marshal: %w", err)
	}
	if err := c.rdb.Set(ctx, key, val, 0).Err(); err != nil {
		return fmt.Errorf("prefs set: %w", err)
	}
	c.log.Debug().Str("user", userID).Str("restriction", pref.Restriction).Msg("preference saved")
	return nil
}

// Close releases the Redis connection.
func (c *RedisClient) Close() error {
	return c.rdb.Close()
}
