package knowledge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmesh/taskmesh/core"
)

type countingRetriever struct {
	inner core.Retriever
	calls int
}

func (r *countingRetriever) Retrieve(ctx context.Context, query string, topK int) ([]string, error) {
	r.calls++
	return r.inner.Retrieve(ctx, query, topK)
}

type failingRetriever struct{}

func (failingRetriever) Retrieve(context.Context, string, int) ([]string, error) {
	return nil, errors.New("store unavailable")
}

func cachedFixture(t *testing.T, inner core.Retriever) (*CachedRetriever, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewCachedRetriever(inner, client, func(o *CachedRetrieverOptions) {
		o.TTL = time.Minute
	}), mr
}

func TestCachedRetriever_MissThenHit(t *testing.T) {
	counting := &countingRetriever{inner: NewMemoryRetriever("redis caching guide")}
	r, _ := cachedFixture(t, counting)

	first, err := r.Retrieve(context.Background(), "redis", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"redis caching guide"}, first)
	assert.Equal(t, 1, counting.calls)

	second, err := r.Retrieve(context.Background(), "redis", 3)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, counting.calls)
}

func TestCachedRetriever_TopKIsPartOfKey(t *testing.T) {
	counting := &countingRetriever{inner: NewMemoryRetriever("redis one", "redis two")}
	r, _ := cachedFixture(t, counting)

	_, err := r.Retrieve(context.Background(), "redis", 1)
	require.NoError(t, err)
	_, err = r.Retrieve(context.Background(), "redis", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, counting.calls)
}

func TestCachedRetriever_CorruptEntryRefilled(t *testing.T) {
	counting := &countingRetriever{inner: NewMemoryRetriever("redis caching guide")}
	r, mr := cachedFixture(t, counting)

	require.NoError(t, mr.Set(cacheKey("redis", 3), "not json"))

	items, err := r.Retrieve(context.Background(), "redis", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"redis caching guide"}, items)
	assert.Equal(t, 1, counting.calls)

	// The corrupt entry was replaced with a valid one.
	raw, err := mr.Get(cacheKey("redis", 3))
	require.NoError(t, err)
	assert.JSONEq(t, `["redis caching guide"]`, raw)
}

func TestCachedRetriever_InnerErrorPropagates(t *testing.T) {
	r, _ := cachedFixture(t, failingRetriever{})

	_, err := r.Retrieve(context.Background(), "redis", 3)
	assert.ErrorContains(t, err, "store unavailable")
}

func TestCachedRetriever_RedisDownFallsThrough(t *testing.T) {
	counting := &countingRetriever{inner: NewMemoryRetriever("redis caching guide")}
	r, mr := cachedFixture(t, counting)
	mr.Close()

	items, err := r.Retrieve(context.Background(), "redis", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"redis caching guide"}, items)
	assert.Equal(t, 1, counting.calls)
}

func TestCachedRetriever_EntriesExpire(t *testing.T) {
	counting := &countingRetriever{inner: NewMemoryRetriever("redis caching guide")}
	r, mr := cachedFixture(t, counting)

	_, err := r.Retrieve(context.Background(), "redis", 3)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = r.Retrieve(context.Background(), "redis", 3)
	require.NoError(t, err)
	assert.Equal(t, 2, counting.calls)
}
