package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedPost struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

func newTestCache(t *testing.T) (*miniredis.Miniredis, *Cache) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb, err := NewClient(mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, New(rdb, "post")
}

func TestPostKey(t *testing.T) {
	assert.Equal(t, "post:42", PostKey(42))
}

func TestParseOptions(t *testing.T) {
	opts, err := ParseOptions("redis://:secret@cache:6380/2")
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)

	opts, err = ParseOptions("redis-host:6379")
	require.NoError(t, err)
	assert.Equal(t, "redis-host:6379", opts.Addr)

	_, err = ParseOptions("redis://cache:6379/notanumber")
	assert.Error(t, err)
}

func TestAside_MissThenHit(t *testing.T) {
	mr, c := newTestCache(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *cachedPost) func() error {
		return func() error {
			calls++
			*dest = cachedPost{ID: 1, Title: "first"}
			return nil
		}
	}

	var first cachedPost
	require.NoError(t, c.Aside(ctx, PostKey(1), &first, PostTTL, fetch(&first)))
	assert.Equal(t, "first", first.Title)
	assert.Equal(t, 1, calls)
	assert.True(t, mr.Exists("post:1"))
	assert.Equal(t, PostTTL, mr.TTL("post:1"))

	var second cachedPost
	require.NoError(t, c.Aside(ctx, PostKey(1), &second, PostTTL, fetch(&second)))
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestAside_FetchErrorNotCached(t *testing.T) {
	mr, c := newTestCache(t)
	boom := errors.New("not found")

	var p cachedPost
	err := c.Aside(context.Background(), PostKey(2), &p, PostTTL, func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("post:2"))
}

func TestAside_RedisDownFallsBackToFetch(t *testing.T) {
	mr, c := newTestCache(t)
	mr.Close()

	var p cachedPost
	err := c.Aside(context.Background(), PostKey(3), &p, PostTTL, func() error {
		p = cachedPost{ID: 3, Title: "from db"}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "from db", p.Title)
}

func TestInvalidate(t *testing.T) {
	mr, c := newTestCache(t)
	ctx := context.Background()
	require.NoError(t, c.SetJSON(ctx, PostKey(5), cachedPost{ID: 5}, time.Minute))

	c.Invalidate(ctx, PostKey(5))
	assert.False(t, mr.Exists("post:5"))
}

func TestInvalidateMatching(t *testing.T) {
	mr, c := newTestCache(t)
	ctx := context.Background()
	require.NoError(t, c.SetJSON(ctx, PostKey(1), "a", PostTTL))
	require.NoError(t, c.SetJSON(ctx, PostKey(2), "b", PostTTL))
	require.NoError(t, c.SetJSON(ctx, "other", "c", PostTTL))

	c.InvalidateMatching(ctx, PostKeyPattern)
	assert.False(t, mr.Exists(PostKey(1)))
	assert.False(t, mr.Exists(PostKey(2)))
	assert.True(t, mr.Exists("other"))
}

func TestNilCacheIsNoop(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	found, err := c.GetJSON(ctx, "k", &cachedPost{})
	assert.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, c.SetJSON(ctx, "k", 1, time.Minute))
	c.Invalidate(ctx, "k")

	empty := New(nil, "post")
	called := false
	require.NoError(t, empty.Aside(ctx, "k", &cachedPost{}, time.Minute, func() error {
		called = true
		return nil
	}))
	assert.True(t, called)
}

func TestInitRedis(t *testing.T) {
	t.Cleanup(func() { SetClient(nil) })

	mr := miniredis.RunT(t)
	InitRedis(mr.Addr())
	require.NotNil(t, GetClient())
	assert.NoError(t, GetClient().Ping(context.Background()).Err())
	_ = GetClient().Close()

	InitRedis("redis://:bad@%zz")
	assert.Nil(t, GetClient())

	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	assert.NotNil(t, GetClient())
}
