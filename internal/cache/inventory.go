package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	PostKeyPrefix = "post:%d"
)

const (
	PostTTL = 30 * time.Second
)

// PostKey is the cache key for a post detail view.
func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

// Invalidate drops key. It is a no-op without Redis.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidatePost drops the cached detail view of a post.
func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
}

// InvalidatePosts drops the cached detail views of several posts in one
// round trip.
func InvalidatePosts(ctx context.Context, postIDs []uint) {
	if client == nil || len(postIDs) == 0 {
		return
	}
	keys := make([]string, len(postIDs))
	for i, id := range postIDs {
		keys[i] = PostKey(id)
	}
	client.Del(ctx, keys...)
}
