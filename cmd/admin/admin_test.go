package main

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"testing"
	"time"

	"puppytalk/internal/config"
	"puppytalk/internal/models"
	"puppytalk/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func runAdmin(t *testing.T, db *gorm.DB, args ...string) (string, error) {
	t.Helper()
	cfg := &config.Config{BcryptCost: bcrypt.MinCost, SessionExpirySeconds: 3600}
	closed := false
	open := func(context.Context) (*deps, error) {
		d := newDeps(db, cfg)
		d.close = func() error { closed = true; return nil }
		return d, nil
	}
	var out bytes.Buffer
	cmd := newRootCmd(open)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	if err == nil {
		assert.True(t, closed, "deps are released after the command")
	}
	return out.String(), err
}

func TestSessionsSweep(t *testing.T) {
	db := testutil.NewDB(t)
	u := testutil.CreateUser(t, db)
	now := time.Now().UTC()
	require.NoError(t, db.Create(&[]models.Session{
		{ID: "old", UserID: u.ID, ExpiresAt: now.Add(-time.Minute)},
		{ID: "live", UserID: u.ID, ExpiresAt: now.Add(time.Hour)},
	}).Error)

	out, err := runAdmin(t, db, "sessions", "sweep")
	require.NoError(t, err)
	assert.Contains(t, out, "swept 1 expired sessions")

	var left []models.Session
	require.NoError(t, db.Find(&left).Error)
	require.Len(t, left, 1)
	assert.Equal(t, "live", left[0].ID)
}

func TestSessionsRevoke(t *testing.T) {
	db := testutil.NewDB(t)
	u := testutil.CreateUser(t, db)
	other := testutil.CreateUser(t, db)
	exp := time.Now().UTC().Add(time.Hour)
	require.NoError(t, db.Create(&[]models.Session{
		{ID: "a", UserID: u.ID, ExpiresAt: exp},
		{ID: "b", UserID: u.ID, ExpiresAt: exp},
		{ID: "c", UserID: other.ID, ExpiresAt: exp},
	}).Error)

	out, err := runAdmin(t, db, "sessions", "revoke", strconv.FormatUint(uint64(u.ID), 10))
	require.NoError(t, err)
	assert.Contains(t, out, fmt.Sprintf("revoked 2 sessions for user %d", u.ID))

	var n int64
	require.NoError(t, db.Model(&models.Session{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)

	for _, bad := range []string{"0", "abc", "99999999999"} {
		_, err := runAdmin(t, db, "sessions", "revoke", bad)
		assert.ErrorContains(t, err, "invalid user id", bad)
	}
}

func TestUsersList(t *testing.T) {
	db := testutil.NewDB(t)
	first := testutil.CreateUser(t, db)
	second := testutil.CreateUser(t, db)
	testutil.CreateUser(t, db)

	out, err := runAdmin(t, db, "users", "list", "--limit", "2")
	require.NoError(t, err)
	assert.Contains(t, out, first.Email)
	assert.Contains(t, out, second.Nickname)
	assert.Contains(t, out, "2 of 3 accounts")

	_, err = runAdmin(t, db, "users", "list", "--limit", "0")
	assert.Error(t, err)
}
