package repository

import (
	"context"

	"puppytalk/internal/cache"
	"puppytalk/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Counter columns on posts.
const (
	colViewCount    = "view_count"
	colLikeCount    = "like_count"
	colCommentCount = "comment_count"
)

// PostChanges describes a post update. Nil fields are left alone; when
// ReplaceImages is set Images becomes the full attachment set.
type PostChanges struct {
	Title         *string
	Content       *string
	ReplaceImages bool
	Images        []models.Image
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post, images []models.Image) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	Exists(ctx context.Context, id uint) (bool, error)
	// List returns up to limit posts, newest first.
	List(ctx context.Context, limit, offset int) ([]models.Post, error)
	IncrementViews(ctx context.Context, id uint) error
	Update(ctx context.Context, id uint, changes PostChanges) error
	Delete(ctx context.Context, id uint) error
}

// postRepository implements PostRepository
type postRepository struct {
	base
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{base: newBase(db, "posts")}
}

// withDetails restricts to posts of live authors and preloads the author and
// the attachments whose image is still live.
func withDetails(db *gorm.DB) *gorm.DB {
	return db.Joins(liveAuthor("posts")).
		Preload("User").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Where("EXISTS (SELECT 1 FROM images i WHERE i.id = post_images.image_id AND i.deleted_at IS NULL)").
				Order("post_images.id ASC")
		})
}

func (r *postRepository) Create(ctx context.Context, post *models.Post, images []models.Image) (err error) {
	ctx, done := r.begin(ctx, "create")
	defer done(&err)

	err = r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(post).Error; err != nil {
			return dbError(err)
		}
		attached, err := attachImages(tx, post.ID, images)
		if err != nil {
			return err
		}
		post.Images = attached
		return nil
	})
	if err != nil {
		return dbError(err)
	}
	r.log.LogCreate(ctx, map[string]any{"post_id": post.ID, "user_id": post.UserID, "images": len(images)})
	return nil
}

func attachImages(tx *gorm.DB, postID uint, images []models.Image) ([]models.PostImage, error) {
	if len(images) == 0 {
		return []models.PostImage{}, nil
	}
	rows := make([]models.PostImage, 0, len(images))
	for _, img := range images {
		rows = append(rows, models.PostImage{PostID: postID, ImageID: img.ID, FileURL: img.FileURL})
	}
	if err := tx.Create(&rows).Error; err != nil {
		return nil, dbError(err)
	}
	return rows, nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (_ *models.Post, err error) {
	ctx, done := r.begin(ctx, "get_by_id")
	defer done(&err)

	var post models.Post
	if err := withDetails(r.conn(ctx)).Where("posts.id = ?", id).First(&post).Error; err != nil {
		return nil, notFoundOr(err, models.CodePostNotFound)
	}
	return &post, nil
}

func (r *postRepository) Exists(ctx context.Context, id uint) (_ bool, err error) {
	ctx, done := r.begin(ctx, "exists")
	defer done(&err)

	var n int64
	err = r.conn(ctx).Model(&models.Post{}).
		Joins(liveAuthor("posts")).
		Where("posts.id = ?", id).
		Count(&n).Error
	if err != nil {
		return false, dbError(err)
	}
	return n > 0, nil
}

func (r *postRepository) List(ctx context.Context, limit, offset int) (_ []models.Post, err error) {
	ctx, done := r.begin(ctx, "list")
	defer done(&err)

	var posts []models.Post
	err = withDetails(r.conn(ctx)).
		Order("posts.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, dbError(err)
	}
	return posts, nil
}

func (r *postRepository) IncrementViews(ctx context.Context, id uint) (err error) {
	ctx, done := r.begin(ctx, "increment_views")
	defer done(&err)

	n, err := bumpCounter(r.conn(ctx), id, colViewCount, 1)
	if err != nil {
		return err
	}
	if n == 0 {
		return models.NewNotFoundError(models.CodePostNotFound)
	}
	cache.InvalidatePost(ctx, id)
	return nil
}

func (r *postRepository) Update(ctx context.Context, id uint, changes PostChanges) (err error) {
	ctx, done := r.begin(ctx, "update")
	defer done(&err)

	err = r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, id).Error; err != nil {
			return notFoundOr(err, models.CodePostNotFound)
		}

		updates := map[string]any{}
		if changes.Title != nil {
			updates["title"] = *changes.Title
		}
		if changes.Content != nil {
			updates["content"] = *changes.Content
		}
		if len(updates) > 0 {
			if err := tx.Model(&post).Updates(updates).Error; err != nil {
				return dbError(err)
			}
		}

		if changes.ReplaceImages {
			return replaceImages(tx, id, changes.Images)
		}
		return nil
	})
	if err != nil {
		return dbError(err)
	}

	cache.InvalidatePost(ctx, id)
	r.log.LogUpdate(ctx, map[string]any{"post_id": id, "replace_images": changes.ReplaceImages})
	return nil
}

// replaceImages makes images the live attachment set of the post. Attachments
// that stay keep their fileId; removed images are soft-deleted once nothing
// references them.
func replaceImages(tx *gorm.DB, postID uint, images []models.Image) error {
	var current []models.PostImage
	if err := tx.Where("post_id = ?", postID).Find(&current).Error; err != nil {
		return dbError(err)
	}

	wanted := make(map[uint]bool, len(images))
	for _, img := range images {
		wanted[img.ID] = true
	}
	have := make(map[uint]bool, len(current))
	var dropRows, dropImages []uint
	for _, pi := range current {
		have[pi.ImageID] = true
		if !wanted[pi.ImageID] {
			dropRows = append(dropRows, pi.ID)
			dropImages = append(dropImages, pi.ImageID)
		}
	}

	if len(dropRows) > 0 {
		if err := tx.Delete(&models.PostImage{}, dropRows).Error; err != nil {
			return dbError(err)
		}
	}

	var added []models.Image
	for _, img := range images {
		if !have[img.ID] {
			added = append(added, img)
			have[img.ID] = true
		}
	}
	if _, err := attachImages(tx, postID, added); err != nil {
		return err
	}

	return dbError(softDeleteOrphanImages(tx, dropImages))
}

// Delete soft-deletes the post with its comments and attachments, removes its
// likes and soft-deletes images left unreferenced.
func (r *postRepository) Delete(ctx context.Context, id uint) (err error) {
	ctx, done := r.begin(ctx, "delete")
	defer done(&err)

	err = r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, id).Error; err != nil {
			return notFoundOr(err, models.CodePostNotFound)
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return dbError(err)
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return dbError(err)
		}

		var imageIDs []uint
		if err := tx.Model(&models.PostImage{}).Where("post_id = ?", id).Pluck("image_id", &imageIDs).Error; err != nil {
			return dbError(err)
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostImage{}).Error; err != nil {
			return dbError(err)
		}
		if err := softDeleteOrphanImages(tx, imageIDs); err != nil {
			return dbError(err)
		}
		return dbError(tx.Delete(&post).Error)
	})
	if err != nil {
		return dbError(err)
	}

	cache.InvalidatePost(ctx, id)
	r.log.LogDelete(ctx, map[string]any{"post_id": id})
	return nil
}

// bumpCounter adjusts one counter of a live post in a single statement.
// Decrements clamp at zero. It returns the number of rows touched.
func bumpCounter(tx *gorm.DB, postID uint, column string, delta int) (int64, error) {
	expr := gorm.Expr(column + " + 1")
	if delta < 0 {
		expr = gorm.Expr("CASE WHEN " + column + " > 0 THEN " + column + " - 1 ELSE 0 END")
	}
	res := tx.Model(&models.Post{}).
		Where("id = ?", postID).
		Where(liveAuthorExists).
		UpdateColumn(column, expr)
	if res.Error != nil {
		return 0, dbError(res.Error)
	}
	return res.RowsAffected, nil
}

func readCounter(tx *gorm.DB, postID uint, column string) (int64, error) {
	var values []int64
	if err := tx.Model(&models.Post{}).Where("id = ?", postID).Pluck(column, &values).Error; err != nil {
		return 0, dbError(err)
	}
	if len(values) == 0 {
		return 0, models.NewNotFoundError(models.CodePostNotFound)
	}
	return values[0], nil
}
