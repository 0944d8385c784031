package service

import (
	"context"
	"testing"
	"time"

	"puppytalk/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionService_Lifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, f.db)

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	f.sessions.WithClock(func() time.Time { return now })

	s, err := f.sessions.Create(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, s.ID, 43, "32 random bytes, raw URL base64")
	assert.Equal(t, now.Add(time.Hour), s.ExpiresAt)

	uid, ok, err := f.sessions.Resolve(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, u.ID, uid)

	now = now.Add(time.Hour)
	_, ok, err = f.sessions.Resolve(ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, ok, "a session expiring exactly now is dead")

	n, err := f.sessions.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSessionService_RevokeIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, f.db)

	s, err := f.sessions.Create(ctx, u.ID)
	require.NoError(t, err)

	require.NoError(t, f.sessions.Revoke(ctx, s.ID))
	require.NoError(t, f.sessions.Revoke(ctx, s.ID))
	require.NoError(t, f.sessions.Revoke(ctx, ""))

	_, ok, err := f.sessions.Resolve(ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = f.sessions.Resolve(ctx, "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionService_RevokeAllForUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, f.db)
	other := testutil.CreateUser(t, f.db)

	for i := 0; i < 3; i++ {
		_, err := f.sessions.Create(ctx, u.ID)
		require.NoError(t, err)
	}
	keep, err := f.sessions.Create(ctx, other.ID)
	require.NoError(t, err)

	n, err := f.sessions.RevokeAllForUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	_, ok, err := f.sessions.Resolve(ctx, keep.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSessionService_StartSweeper(t *testing.T) {
	f := newFixture(t)
	u := testutil.CreateUser(t, f.db)

	now := time.Now().UTC()
	f.sessions.WithClock(func() time.Time { return now })
	s, err := f.sessions.Create(context.Background(), u.ID)
	require.NoError(t, err)
	now = now.Add(2 * time.Hour)

	// Zero interval sweeps once and stops on its own.
	done := f.sessions.StartSweeper(context.Background(), 0)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("sweeper did not stop")
	}

	var count int64
	require.NoError(t, f.db.Table("sessions").Where("id = ?", s.ID).Count(&count).Error)
	assert.Zero(t, count)

	ctx, cancel := context.WithCancel(context.Background())
	done = f.sessions.StartSweeper(ctx, 10*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("sweeper ignored cancellation")
	}
}
