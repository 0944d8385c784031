package service

import (
	"context"
	"testing"

	"puppytalk/internal/models"
	"puppytalk/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, f.db)
	fan := testutil.CreateUser(t, f.db)
	p := testutil.CreatePost(t, f.db, author.ID)

	n, err := f.likes.Like(ctx, p.ID, fan.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = f.likes.Like(ctx, p.ID, fan.ID)
	assert.Equal(t, models.CodeAlreadyLiked, models.CodeOf(err))

	n, err = f.likes.Like(ctx, p.ID, author.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n, "the failed duplicate left the counter alone")

	liked, err := f.likes.IsLiked(ctx, p.ID, fan.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	n, err = f.likes.Unlike(ctx, p.ID, fan.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = f.likes.Unlike(ctx, p.ID, fan.ID)
	assert.Equal(t, models.CodeLikeNotFound, models.CodeOf(err))

	_, err = f.likes.Like(ctx, 8080, fan.ID)
	assert.Equal(t, models.CodePostNotFound, models.CodeOf(err))
}
