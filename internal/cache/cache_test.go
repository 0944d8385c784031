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

func withMiniRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() {
		_ = client.Close()
		SetClient(nil)
	})
	return mr
}

func TestAside_MissThenHit(t *testing.T) {
	mr := withMiniRedis(t)
	ctx := context.Background()
	calls := 0
	load := func(dest *cachedPost) func() error {
		return func() error {
			calls++
			*dest = cachedPost{ID: 1, Title: "walk"}
			return nil
		}
	}

	var first cachedPost
	require.NoError(t, Aside(ctx, PostKey(1), &first, PostTTL, load(&first)))
	assert.Equal(t, "walk", first.Title)
	assert.True(t, mr.Exists("post:1"))

	var second cachedPost
	require.NoError(t, Aside(ctx, PostKey(1), &second, PostTTL, load(&second)))
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)

	InvalidatePost(ctx, 1)
	assert.False(t, mr.Exists("post:1"))
}

func TestAside_FetchErrorIsNotCached(t *testing.T) {
	mr := withMiniRedis(t)
	boom := errors.New("not found")

	var dest cachedPost
	err := Aside(context.Background(), PostKey(2), &dest, time.Minute, func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("post:2"))
}

func TestAside_WithoutRedis(t *testing.T) {
	SetClient(nil)
	var dest cachedPost
	err := Aside(context.Background(), PostKey(3), &dest, time.Minute, func() error {
		dest.ID = 3
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, uint(3), dest.ID)
	Invalidate(context.Background(), PostKey(3))
}

func TestAside_RedisDownFallsThrough(t *testing.T) {
	mr := withMiniRedis(t)
	mr.Close()

	var dest cachedPost
	err := Aside(context.Background(), PostKey(4), &dest, time.Minute, func() error {
		dest.ID = 4
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, uint(4), dest.ID)
}

func TestInitRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	InitRedis("redis://" + mr.Addr() + "/0")
	require.NotNil(t, GetClient())
	_ = GetClient().Close()

	InitRedis("")
	assert.Nil(t, GetClient())

	InitRedis("redis://%%bad")
	assert.Nil(t, GetClient())
}

func TestInvalidatePosts(t *testing.T) {
	mr := withMiniRedis(t)
	for _, key := range []string{PostKey(1), PostKey(2), PostKey(3)} {
		require.NoError(t, mr.Set(key, "{}"))
	}

	InvalidatePosts(context.Background(), []uint{1, 3})
	assert.False(t, mr.Exists(PostKey(1)))
	assert.True(t, mr.Exists(PostKey(2)))
	assert.False(t, mr.Exists(PostKey(3)))

	InvalidatePosts(context.Background(), nil)
}

func TestClientOptions(t *testing.T) {
	opts, err := ClientOptions("redis://:secret@cache.internal:6380/2")
	require.NoError(t, err)
	assert.Equal(t, "cache.internal:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 1, opts.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, opts.DialTimeout)

	opts, err = ClientOptions("localhost:6379")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, 300*time.Millisecond, opts.ReadTimeout)

	_, err = ClientOptions("redis://%%bad")
	assert.Error(t, err)
}

func TestInitRedis_UnreachableIsQuick(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	start := time.Now()
	InitRedis(addr)
	assert.Nil(t, GetClient())
	assert.Less(t, time.Since(start), 3*time.Second)
}
