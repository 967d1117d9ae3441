package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/redis/go-redis/v9"
	"strconv"
	"time"
	"todosome/internal/config"
	"todosome/internal/domain/models"
	"todosome/internal/storage"
)

const profileKeyPrefix = "profile:"

// Cache using redis provides fast access to important and reusing data
type Cache struct {
	rdb        *redis.Client
	profileTTL time.Duration
}

// NewCache creates new instance of redis client and checks connection
func NewCache(ctx context.Context, conf *config.RedisConfig) (*Cache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     conf.Host + ":" + strconv.Itoa(conf.Port),
		Password: conf.Password,
		DB:       conf.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis.NewCache: %w", err)
	}

	return &Cache{rdb: rdb, profileTTL: conf.ProfileTTL}, nil
}

// NewCacheFromClient wraps already configured redis client
func NewCacheFromClient(rdb *redis.Client, profileTTL time.Duration) *Cache {
	return &Cache{rdb: rdb, profileTTL: profileTTL}
}

// Close closes redis connection
func (c *Cache) Close() error {
	return c.rdb.Close()
}

func profileKey(userID string) string {
	return profileKeyPrefix + userID
}

// Profile gets user's public profile from cache
//
// Returns storage.InfoCacheKeyNotFound on cache miss
func (c *Cache) Profile(ctx context.Context, userID string) (models.Profile, error) {
	data, err := c.rdb.Get(ctx, profileKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.Profile{}, storage.InfoCacheKeyNotFound
		}
		return models.Profile{}, fmt.Errorf("failed to get profile: %w", err)
	}
	var profile models.Profile
	if err = json.Unmarshal(data, &profile); err != nil {
		return models.Profile{}, fmt.Errorf("failed to decode profile: %w", err)
	}
	return profile, nil
}

// SaveProfile saves user's public profile in cache for configured TTL
func (c *Cache) SaveProfile(ctx context.Context, profile models.Profile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	if err = c.rdb.Set(ctx, profileKey(profile.ID), data, c.profileTTL).Err(); err != nil {
		return errors.New("failed to save profile: " + err.Error())
	}
	return nil
}

// DeleteProfile evicts user's profile from cache
func (c *Cache) DeleteProfile(ctx context.Context, userID string) error {
	if err := c.rdb.Del(ctx, profileKey(userID)).Err(); err != nil {
		return errors.New("failed to delete profile: " + err.Error())
	}
	return nil
}
