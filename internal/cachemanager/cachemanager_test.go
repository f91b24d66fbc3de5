package cachemanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type sourceKey string

type highlighted struct {
	Lines int
}

func TestInMemory_GetSet(t *testing.T) {
	cache := NewInMemory[sourceKey, highlighted]("test", DefaultExpiration, DefaultCleanupInterval)
	ctx := context.Background()

	_, ok := cache.Get(ctx, "a")
	require.False(t, ok)

	cache.Set(ctx, "a", highlighted{Lines: 3}, DefaultExpiration)
	got, ok := cache.Get(ctx, "a")
	require.True(t, ok)
	require.Equal(t, highlighted{Lines: 3}, got)

	require.Equal(t, Stats{Hits: 1, Misses: 1, Entries: 1}, cache.Stats())
}

func TestInMemory_WrongTypeIsMiss(t *testing.T) {
	cache := NewInMemory[sourceKey, string]("test", DefaultExpiration, DefaultCleanupInterval)
	cache.cache.Set("a", 123, DefaultExpiration)

	got, ok := cache.Get(context.Background(), "a")
	require.False(t, ok)
	require.Empty(t, got)
}

func TestInMemory_Expires(t *testing.T) {
	cache := NewInMemory[sourceKey, string]("test", DefaultExpiration, DefaultCleanupInterval)
	cache.Set(context.Background(), "a", "x", time.Nanosecond)
	time.Sleep(time.Millisecond)

	_, ok := cache.Get(context.Background(), "a")
	require.False(t, ok)
}

func TestInMemory_GetWithRefresh(t *testing.T) {
	cache := NewInMemory[sourceKey, string]("test", DefaultExpiration, DefaultCleanupInterval)
	ctx := context.Background()

	_, ok := cache.GetWithRefresh(ctx, "a", time.Hour)
	require.False(t, ok)

	cache.Set(ctx, "a", "x", time.Hour)
	got, ok := cache.GetWithRefresh(ctx, "a", time.Hour)
	require.True(t, ok)
	require.Equal(t, "x", got)
}

type mockCacheManager struct {
	mock.Mock
}

func (m *mockCacheManager) GetWithRefresh(ctx context.Context, key sourceKey, ttl time.Duration) (highlighted, bool) {
	args := m.Called(ctx, key, ttl)
	return args.Get(0).(highlighted), args.Bool(1)
}

func (m *mockCacheManager) Set(ctx context.Context, key sourceKey, value highlighted, ttl time.Duration) {
	m.Called(ctx, key, value, ttl)
}

func lines(_ context.Context, src string) (highlighted, error) {
	if src == "" {
		return highlighted{}, errors.New("empty source")
	}
	return highlighted{Lines: len(src)}, nil
}

func TestReadThroughCache_SkipCache(t *testing.T) {
	m := &mockCacheManager{}
	r := NewReadThroughCache[sourceKey, highlighted, string](m, lines, true)

	got, hit, err := r.GetWithRefresh(context.Background(), "k", "abc", time.Minute)
	require.NoError(t, err)
	require.False(t, hit)
	require.Equal(t, highlighted{Lines: 3}, got)
	m.AssertNotCalled(t, "GetWithRefresh", mock.Anything, mock.Anything, mock.Anything)
}

func TestReadThroughCache_Hit(t *testing.T) {
	m := &mockCacheManager{}
	m.On("GetWithRefresh", mock.Anything, sourceKey("k"), time.Minute).Return(highlighted{Lines: 9}, true).Once()
	r := NewReadThroughCache[sourceKey, highlighted, string](m, lines, false)

	got, hit, err := r.GetWithRefresh(context.Background(), "k", "abc", time.Minute)
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, highlighted{Lines: 9}, got)
	m.AssertExpectations(t)
}

func TestReadThroughCache_MissStores(t *testing.T) {
	m := &mockCacheManager{}
	m.On("GetWithRefresh", mock.Anything, sourceKey("k"), time.Minute).Return(highlighted{}, false).Once()
	m.On("Set", mock.Anything, sourceKey("k"), highlighted{Lines: 3}, time.Minute).Once()
	r := NewReadThroughCache[sourceKey, highlighted, string](m, lines, false)

	got, hit, err := r.GetWithRefresh(context.Background(), "k", "abc", time.Minute)
	require.NoError(t, err)
	require.False(t, hit)
	require.Equal(t, highlighted{Lines: 3}, got)
	m.AssertExpectations(t)
}

func TestReadThroughCache_ErrorNotStored(t *testing.T) {
	m := &mockCacheManager{}
	m.On("GetWithRefresh", mock.Anything, sourceKey("k"), time.Minute).Return(highlighted{}, false).Once()
	r := NewReadThroughCache[sourceKey, highlighted, string](m, lines, false)

	_, _, err := r.GetWithRefresh(context.Background(), "k", "", time.Minute)
	require.EqualError(t, err, "empty source")
	m.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	m.AssertExpectations(t)
}

func TestReadThroughCache_WithInMemory(t *testing.T) {
	calls := 0
	fn := func(ctx context.Context, src string) (highlighted, error) {
		calls++
		return lines(ctx, src)
	}
	r := NewReadThroughCache[sourceKey, highlighted, string](
		NewInMemory[sourceKey, highlighted]("test", DefaultExpiration, DefaultCleanupInterval), fn, false)

	for i := 0; i < 3; i++ {
		_, _, err := r.GetWithRefresh(context.Background(), "k", "abcd", time.Minute)
		require.NoError(t, err)
	}
	require.Equal(t, 1, calls)
}
