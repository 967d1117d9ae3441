package cached_postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"todosome/internal/domain/models"
	"todosome/internal/storage"
	"todosome/internal/storage/redis"
)

// Storage is a primary storage behind the cache, postgres in production
type Storage interface {
	SaveUser(ctx context.Context, email string, passHash []byte, verificationToken string) (models.User, error)
	DeleteUser(ctx context.Context, userID string) error
	Profile(ctx context.Context, userID string) (models.Profile, error)
}

type CachedStorage struct {
	s   Storage
	c   *redis.Cache
	log *slog.Logger
}

// NewCachedStorage creates an instance of combined storage with cache
func NewCachedStorage(
	log *slog.Logger,
	s Storage,
	c *redis.Cache,
) *CachedStorage {
	return &CachedStorage{s: s, c: c, log: log}
}

// SaveUser goes straight to storage, new user has nothing to cache yet
func (cs *CachedStorage) SaveUser(ctx context.Context, email string, passHash []byte, verificationToken string) (models.User, error) {
	return cs.s.SaveUser(ctx, email, passHash, verificationToken)
}

// Profile returns profile if it stores in cache else use postgres storage to get it
//
// Cache failures are logged and never fail the call
func (cs *CachedStorage) Profile(ctx context.Context, userID string) (models.Profile, error) {
	const op = "cached_postgres.Profile"
	logger := cs.log.With(slog.String("op", op))

	// cache(redis)
	profile, err := cs.c.Profile(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, storage.InfoCacheKeyNotFound) {
		logger.Warn("error get profile from cache", slog.String("error", err.Error()))
	}
	// postgres
	profile, err = cs.s.Profile(ctx, userID)
	if err != nil {
		return models.Profile{}, fmt.Errorf("%s: %w", op, err)
	}
	if err = cs.c.SaveProfile(ctx, profile); err != nil {
		logger.Warn("error save profile in cache", slog.String("error", err.Error()))
	}
	return profile, nil
}

// DeleteUser deletes both storage cache and db
func (cs *CachedStorage) DeleteUser(ctx context.Context, userID string) error {
	if err := cs.c.DeleteProfile(ctx, userID); err != nil {
		cs.log.Warn("error delete profile from cache", slog.String("error", err.Error()))
	}
	return cs.s.DeleteUser(ctx, userID)
}
