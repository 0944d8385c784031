package repository

import (
	"context"
	"testing"

	"puppytalk/internal/models"
	"puppytalk/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestPostRepository_CreateAndGet(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	u := testutil.CreateUser(t, db)
	img1 := testutil.CreateImage(t, db, u.ID)
	img2 := testutil.CreateImage(t, db, u.ID)

	post := &models.Post{UserID: u.ID, Title: "산책", Content: "park"}
	require.NoError(t, repo.Create(ctx, post, []models.Image{*img1, *img2}))
	require.NotZero(t, post.ID)
	require.Len(t, post.Images, 2)

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Nickname, got.User.Nickname)
	require.Len(t, got.Images, 2)
	assert.Equal(t, img1.ID, got.Images[0].ImageID)
	assert.Equal(t, img2.FileURL, got.Images[1].FileURL)

	_, err = repo.GetByID(ctx, 9999)
	assert.True(t, models.IsCode(err, models.CodePostNotFound))
}

func TestPostRepository_ListNewestFirstAndHidesWithdrawnAuthors(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db)
	bob := testutil.CreateUser(t, db)

	p1 := testutil.CreatePost(t, db, alice.ID)
	p2 := testutil.CreatePost(t, db, bob.ID)
	p3 := testutil.CreatePost(t, db, alice.ID)

	posts, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, []uint{p3.ID, p2.ID, p1.ID}, []uint{posts[0].ID, posts[1].ID, posts[2].ID})
	assert.Equal(t, alice.Nickname, posts[0].User.Nickname)
	assert.NotNil(t, posts[0].Images)

	page, err := repo.List(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, p2.ID, page[0].ID)

	require.NoError(t, NewUserRepository(db).Withdraw(ctx, bob.ID))
	posts, err = repo.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, posts, 2)

	_, err = repo.GetByID(ctx, p2.ID)
	assert.True(t, models.IsCode(err, models.CodePostNotFound))

	ok, err := repo.Exists(ctx, p2.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPostRepository_IncrementViews(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	u := testutil.CreateUser(t, db)
	p := testutil.CreatePost(t, db, u.ID)

	require.NoError(t, repo.IncrementViews(ctx, p.ID))
	require.NoError(t, repo.IncrementViews(ctx, p.ID))
	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.ViewCount)

	assert.True(t, models.IsCode(repo.IncrementViews(ctx, 9999), models.CodePostNotFound))

	require.NoError(t, NewUserRepository(db).Withdraw(ctx, u.ID))
	assert.True(t, models.IsCode(repo.IncrementViews(ctx, p.ID), models.CodePostNotFound),
		"posts of a withdrawn author take no views")
}

func TestPostRepository_UpdateReplacesImages(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	u := testutil.CreateUser(t, db)
	keep := testutil.CreateImage(t, db, u.ID)
	drop := testutil.CreateImage(t, db, u.ID)
	shared := testutil.CreateImage(t, db, u.ID)
	added := testutil.CreateImage(t, db, u.ID)

	p := testutil.CreatePost(t, db, u.ID, keep, drop, shared)
	testutil.CreatePost(t, db, u.ID, shared)
	keptFileID := p.Images[0].ID

	err := repo.Update(ctx, p.ID, PostChanges{
		Title:         strPtr("new title"),
		ReplaceImages: true,
		Images:        []models.Image{*keep, *added},
	})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "new title", got.Title)
	assert.Equal(t, p.Content, got.Content)
	require.Len(t, got.Images, 2)
	assert.Equal(t, keptFileID, got.Images[0].ID, "retained attachment keeps its fileId")
	assert.Equal(t, added.ID, got.Images[1].ImageID)

	var img models.Image
	assert.Error(t, db.First(&img, drop.ID).Error, "unreferenced image is soft-deleted")
	assert.NoError(t, db.First(&img, shared.ID).Error, "image still attached elsewhere stays")

	// Content-only update leaves attachments alone.
	require.NoError(t, repo.Update(ctx, p.ID, PostChanges{Content: strPtr("edited")}))
	got, err = repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Content)
	assert.Len(t, got.Images, 2)

	// An empty set clears every attachment.
	require.NoError(t, repo.Update(ctx, p.ID, PostChanges{ReplaceImages: true}))
	got, err = repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Images)

	assert.True(t, models.IsCode(repo.Update(ctx, 9999, PostChanges{Title: strPtr("x")}), models.CodePostNotFound))
}

func TestPostRepository_DeleteCascades(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	u := testutil.CreateUser(t, db)
	fan := testutil.CreateUser(t, db)
	img := testutil.CreateImage(t, db, u.ID)
	p := testutil.CreatePost(t, db, u.ID, img)
	c := testutil.CreateComment(t, db, p.ID, fan.ID)
	_, err := NewLikeRepository(db).Like(ctx, p.ID, fan.ID)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, p.ID))

	_, err = repo.GetByID(ctx, p.ID)
	assert.True(t, models.IsCode(err, models.CodePostNotFound))

	var n int64
	require.NoError(t, db.Model(&models.Like{}).Where("post_id = ?", p.ID).Count(&n).Error)
	assert.Zero(t, n, "likes are hard-deleted")
	require.NoError(t, db.Unscoped().Model(&models.Like{}).Where("post_id = ?", p.ID).Count(&n).Error)
	assert.Zero(t, n)

	var comment models.Comment
	assert.Error(t, db.First(&comment, c.ID).Error)
	require.NoError(t, db.Unscoped().First(&comment, c.ID).Error)
	assert.True(t, comment.DeletedAt.Valid)

	require.NoError(t, db.Model(&models.PostImage{}).Where("post_id = ?", p.ID).Count(&n).Error)
	assert.Zero(t, n)
	var image models.Image
	assert.Error(t, db.First(&image, img.ID).Error)

	assert.True(t, models.IsCode(repo.Delete(ctx, p.ID), models.CodePostNotFound))
}
