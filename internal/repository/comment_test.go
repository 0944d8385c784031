package repository

import (
	"context"
	"testing"

	"puppytalk/internal/models"
	"puppytalk/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commentCount(t *testing.T, repo PostRepository, postID uint) int64 {
	t.Helper()
	p, err := repo.GetByID(context.Background(), postID)
	require.NoError(t, err)
	return p.CommentCount
}

func TestCommentRepository_CreateBumpsCounter(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewCommentRepository(db)
	posts := NewPostRepository(db)
	ctx := context.Background()
	u := testutil.CreateUser(t, db)
	p := testutil.CreatePost(t, db, u.ID)

	c := &models.Comment{PostID: p.ID, UserID: u.ID, Content: "good dog"}
	require.NoError(t, repo.Create(ctx, c))
	assert.NotZero(t, c.ID)
	assert.Equal(t, int64(1), commentCount(t, posts, p.ID))

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Nickname, got.User.Nickname)

	orphan := &models.Comment{PostID: 9999, UserID: u.ID, Content: "hello?"}
	assert.True(t, models.IsCode(repo.Create(ctx, orphan), models.CodePostNotFound))
	var n int64
	require.NoError(t, db.Model(&models.Comment{}).Count(&n).Error)
	assert.Equal(t, int64(1), n, "failed create leaves no row behind")
}

func TestCommentRepository_ListByPost(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()
	u := testutil.CreateUser(t, db)
	gone := testutil.CreateUser(t, db)
	p := testutil.CreatePost(t, db, u.ID)
	other := testutil.CreatePost(t, db, u.ID)

	c1 := testutil.CreateComment(t, db, p.ID, u.ID)
	c2 := testutil.CreateComment(t, db, p.ID, u.ID)
	c3 := testutil.CreateComment(t, db, p.ID, u.ID)
	testutil.CreateComment(t, db, p.ID, gone.ID)
	testutil.CreateComment(t, db, other.ID, u.ID)
	require.NoError(t, NewUserRepository(db).Withdraw(ctx, gone.ID))

	list, total, err := repo.ListByPost(ctx, p.ID, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, list, 2)
	assert.Equal(t, c3.ID, list[0].ID)
	assert.Equal(t, c2.ID, list[1].ID)
	assert.Equal(t, u.Nickname, list[0].User.Nickname)

	list, _, err = repo.ListByPost(ctx, p.ID, 2, 2)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, c1.ID, list[0].ID)
}

func TestCommentRepository_UpdateAndDelete(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewCommentRepository(db)
	posts := NewPostRepository(db)
	ctx := context.Background()
	u := testutil.CreateUser(t, db)
	p := testutil.CreatePost(t, db, u.ID)
	c := testutil.CreateComment(t, db, p.ID, u.ID)

	updated, err := repo.UpdateContent(ctx, c.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)

	require.NoError(t, repo.Delete(ctx, c))
	assert.Zero(t, commentCount(t, posts, p.ID))

	_, err = repo.GetByID(ctx, c.ID)
	assert.True(t, models.IsCode(err, models.CodeCommentNotFound))
	assert.True(t, models.IsCode(repo.Delete(ctx, c), models.CodeCommentNotFound))

	_, err = repo.UpdateContent(ctx, c.ID, "too late")
	assert.True(t, models.IsCode(err, models.CodeCommentNotFound))
}

func TestCommentRepository_DeleteClampsCounter(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewCommentRepository(db)
	posts := NewPostRepository(db)
	ctx := context.Background()
	u := testutil.CreateUser(t, db)
	p := testutil.CreatePost(t, db, u.ID)

	c := &models.Comment{PostID: p.ID, UserID: u.ID, Content: "x"}
	require.NoError(t, db.Omit("User").Create(c).Error)

	require.NoError(t, repo.Delete(ctx, c))
	assert.Zero(t, commentCount(t, posts, p.ID))
}
