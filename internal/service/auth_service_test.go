package service

import (
	"context"
	"testing"

	"puppytalk/internal/models"
	"puppytalk/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_SignupAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	img := testutil.CreateImage(t, f.db, 0)

	u, err := f.auth.Signup(ctx, SignupInput{
		Email:          "Coco@Example.com",
		Password:       testutil.Password,
		Nickname:       "coco",
		ProfileImageID: uintPtr(img.ID),
	})
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.Equal(t, "coco@example.com", u.Email)
	assert.Equal(t, img.FileURL, u.ProfileImageURL)
	assert.NotEqual(t, testutil.Password, u.PasswordHash)

	got, session, err := f.auth.Login(ctx, "COCO@example.com", testutil.Password)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	uid, ok, err := f.sessions.Resolve(ctx, session.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, u.ID, uid)

	me, err := f.auth.Me(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, "coco", me.Nickname)

	require.NoError(t, f.auth.Logout(ctx, session.ID))
	_, ok, err = f.sessions.Resolve(ctx, session.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, f.auth.Logout(ctx, session.ID), "logout tolerates a missing session")
}

func TestAuthService_SignupConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	existing := testutil.CreateUser(t, f.db)

	tests := []struct {
		name string
		in   SignupInput
		want models.Code
	}{
		{
			name: "email checked first",
			in:   SignupInput{Email: existing.Email, Password: testutil.Password, Nickname: existing.Nickname},
			want: models.CodeEmailAlreadyExists,
		},
		{
			name: "nickname",
			in:   SignupInput{Email: testutil.UniqueEmail(), Password: testutil.Password, Nickname: existing.Nickname},
			want: models.CodeNicknameAlreadyExists,
		},
		{
			name: "missing profile image",
			in:   SignupInput{Email: testutil.UniqueEmail(), Password: testutil.Password, Nickname: testutil.UniqueNickname(), ProfileImageID: uintPtr(424242)},
			want: models.CodeInvalidImageID,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.auth.Signup(ctx, tt.in)
			assert.Equal(t, tt.want, models.CodeOf(err))
		})
	}
}

func TestAuthService_SignupReusesWithdrawnIdentity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	old := testutil.CreateUser(t, f.db)
	require.NoError(t, f.users.Withdraw(ctx, old.ID))

	u, err := f.auth.Signup(ctx, SignupInput{Email: old.Email, Password: testutil.Password, Nickname: old.Nickname})
	require.NoError(t, err)
	assert.NotEqual(t, old.ID, u.ID)
}

func TestAuthService_LoginFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, f.db)

	_, _, err := f.auth.Login(ctx, u.Email, "Wrong123!")
	assert.Equal(t, models.CodeInvalidCredentials, models.CodeOf(err))

	_, _, err = f.auth.Login(ctx, "nobody@example.com", testutil.Password)
	assert.Equal(t, models.CodeInvalidCredentials, models.CodeOf(err), "unknown email is indistinguishable")

	require.NoError(t, f.users.Withdraw(ctx, u.ID))
	_, _, err = f.auth.Login(ctx, u.Email, testutil.Password)
	assert.Equal(t, models.CodeInvalidCredentials, models.CodeOf(err))
}
