package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/tristudio/studio-scheduler-api/pkg/errors"
)

type fakeCacheRepo struct {
	entries map[string][]byte
	lastTTL time.Duration
	getErr  error

	invalidated []string
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{entries: map[string][]byte{}}
}

func (f *fakeCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	if f.getErr != nil {
		return f.getErr
	}
	raw, ok := f.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (f *fakeCacheRepo) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.entries[key] = raw
	f.lastTTL = ttl
	return nil
}

func (f *fakeCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	f.invalidated = append(f.invalidated, pattern)
	return nil
}

func TestCacheGetMissThenHit(t *testing.T) {
	repo := newFakeCacheRepo()
	svc := NewCacheService(repo, nil, time.Minute, zap.NewNop(), true)

	var out string
	hit, err := svc.Get(context.Background(), "perf:top", &out)
	require.NoError(t, err)
	assert.False(t, hit, "a miss is not an error")

	require.NoError(t, svc.Set(context.Background(), "perf:top", "cached", 0))
	assert.Equal(t, time.Minute, repo.lastTTL, "zero TTL falls back to the default")

	hit, err = svc.Get(context.Background(), "perf:top", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "cached", out)
}

func TestCacheGetSurfacesBackendFailure(t *testing.T) {
	repo := newFakeCacheRepo()
	repo.getErr = errors.New("connection reset")
	svc := NewCacheService(repo, nil, time.Minute, zap.NewNop(), true)

	var out string
	hit, err := svc.Get(context.Background(), "perf:top", &out)
	assert.False(t, hit)
	require.Error(t, err)
}

func TestCacheDisabledIsNoOp(t *testing.T) {
	repo := newFakeCacheRepo()
	svc := NewCacheService(repo, nil, time.Minute, zap.NewNop(), false)
	assert.False(t, svc.Enabled())

	require.NoError(t, svc.Set(context.Background(), "key", "value", time.Minute))
	assert.Empty(t, repo.entries)

	var out string
	hit, err := svc.Get(context.Background(), "key", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, svc.Invalidate(context.Background(), "perf:*"))
	assert.Empty(t, repo.invalidated)
}

func TestCacheInvalidateForwardsPattern(t *testing.T) {
	repo := newFakeCacheRepo()
	svc := NewCacheService(repo, nil, time.Minute, zap.NewNop(), true)

	require.NoError(t, svc.Invalidate(context.Background(), "perf:*"))
	assert.Equal(t, []string{"perf:*"}, repo.invalidated)
}
