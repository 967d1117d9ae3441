package cached_postgres

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/brianvoe/gofakeit/v6"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"todosome/internal/domain/models"
	"todosome/internal/storage"
	"todosome/internal/storage/memory"
	"todosome/internal/storage/redis"
)

// countingStorage counts profile reads reaching the primary storage
type countingStorage struct {
	*memory.Storage
	profileCalls int
}

func (s *countingStorage) Profile(ctx context.Context, userID string) (models.Profile, error) {
	s.profileCalls++
	return s.Storage.Profile(ctx, userID)
}

func setup(t *testing.T) (*CachedStorage, *countingStorage, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	primary := &countingStorage{Storage: memory.New()}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewCachedStorage(log, primary, redis.NewCacheFromClient(rdb, time.Minute)), primary, mr
}

func TestCachedStorage_ProfileIsCached(t *testing.T) {
	cs, primary, _ := setup(t)
	ctx := context.Background()

	user, err := cs.SaveUser(ctx, gofakeit.Email(), []byte("hash"), gofakeit.UUID())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		profile, err := cs.Profile(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.Profile(), profile)
	}
	assert.Equal(t, 1, primary.profileCalls)
}

func TestCachedStorage_DeleteEvicts(t *testing.T) {
	cs, _, _ := setup(t)
	ctx := context.Background()

	user, err := cs.SaveUser(ctx, gofakeit.Email(), []byte("hash"), gofakeit.UUID())
	require.NoError(t, err)
	_, err = cs.Profile(ctx, user.ID)
	require.NoError(t, err)

	require.NoError(t, cs.DeleteUser(ctx, user.ID))
	_, err = cs.Profile(ctx, user.ID)
	require.ErrorIs(t, err, storage.ErrUserNotFound)
}

func TestCachedStorage_CacheDown(t *testing.T) {
	cs, primary, mr := setup(t)
	ctx := context.Background()

	user, err := cs.SaveUser(ctx, gofakeit.Email(), []byte("hash"), gofakeit.UUID())
	require.NoError(t, err)

	mr.Close()
	profile, err := cs.Profile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Profile(), profile)
	assert.Equal(t, 1, primary.profileCalls)
}
