package repository

import (
	"context"
	"testing"
	"time"

	"puppytalk/internal/models"
	"puppytalk/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepository(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()
	u := testutil.CreateUser(t, db)
	now := time.Now().UTC()

	require.NoError(t, repo.Create(ctx, &models.Session{ID: "live", UserID: u.ID, ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, repo.Create(ctx, &models.Session{ID: "stale", UserID: u.ID, ExpiresAt: now.Add(-time.Second)}))

	s, err := repo.FindLive(ctx, "live", now)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, u.ID, s.UserID)

	s, err = repo.FindLive(ctx, "stale", now)
	require.NoError(t, err)
	assert.Nil(t, s, "expired rows behave like absent ones")

	s, err = repo.FindLive(ctx, "nope", now)
	require.NoError(t, err)
	assert.Nil(t, s)

	n, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, repo.Delete(ctx, "live"))
	require.NoError(t, repo.Delete(ctx, "live"), "delete is idempotent")

	s, err = repo.FindLive(ctx, "live", now)
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestSessionRepository_DeleteByUser(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()
	u := testutil.CreateUser(t, db)
	exp := time.Now().Add(time.Hour)

	for _, id := range []string{"s1", "s2", "s3"} {
		require.NoError(t, repo.Create(ctx, &models.Session{ID: id, UserID: u.ID, ExpiresAt: exp}))
	}

	n, err := repo.DeleteByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = repo.DeleteByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}
