package repository

import (
	"context"

	"puppytalk/internal/cache"
	"puppytalk/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	// Create inserts the comment and bumps the post's comment_count together.
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	// ListByPost returns one page of the post's comments, newest first, and
	// the total number of live comments.
	ListByPost(ctx context.Context, postID uint, limit, offset int) ([]models.Comment, int64, error)
	UpdateContent(ctx context.Context, id uint, content string) (*models.Comment, error)
	Delete(ctx context.Context, comment *models.Comment) error
}

type commentRepository struct {
	base
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{base: newBase(db, "comments")}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) (err error) {
	ctx, done := r.begin(ctx, "create")
	defer done(&err)

	err = r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := bumpCounter(tx, comment.PostID, colCommentCount, 1)
		if err != nil {
			return err
		}
		if n == 0 {
			return models.NewNotFoundError(models.CodePostNotFound)
		}
		return dbError(tx.Omit("User").Create(comment).Error)
	})
	if err != nil {
		return dbError(err)
	}

	cache.InvalidatePost(ctx, comment.PostID)
	r.log.LogCreate(ctx, map[string]any{"comment_id": comment.ID, "post_id": comment.PostID})
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (_ *models.Comment, err error) {
	ctx, done := r.begin(ctx, "get_by_id")
	defer done(&err)

	var comment models.Comment
	err = r.conn(ctx).
		Joins(liveAuthor("comments")).
		Preload("User").
		Where("comments.id = ?", id).
		First(&comment).Error
	if err != nil {
		return nil, notFoundOr(err, models.CodeCommentNotFound)
	}
	return &comment, nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID uint, limit, offset int) (_ []models.Comment, _ int64, err error) {
	ctx, done := r.begin(ctx, "list_by_post")
	defer done(&err)

	scoped := func() *gorm.DB {
		return r.conn(ctx).Model(&models.Comment{}).
			Joins(liveAuthor("comments")).
			Where("comments.post_id = ?", postID)
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, dbError(err)
	}

	var comments []models.Comment
	err = scoped().
		Preload("User").
		Order("comments.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	if err != nil {
		return nil, 0, dbError(err)
	}
	return comments, total, nil
}

func (r *commentRepository) UpdateContent(ctx context.Context, id uint, content string) (_ *models.Comment, err error) {
	ctx, done := r.begin(ctx, "update")
	defer done(&err)

	res := r.conn(ctx).Model(&models.Comment{}).Where("id = ?", id).Update("content", content)
	if res.Error != nil {
		return nil, dbError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError(models.CodeCommentNotFound)
	}
	r.log.LogUpdate(ctx, map[string]any{"comment_id": id})
	return r.GetByID(ctx, id)
}

// Delete soft-deletes the comment and decrements the post's comment_count,
// clamped at zero, in one transaction.
func (r *commentRepository) Delete(ctx context.Context, comment *models.Comment) (err error) {
	ctx, done := r.begin(ctx, "delete")
	defer done(&err)

	err = r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Comment{}, comment.ID)
		if res.Error != nil {
			return dbError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError(models.CodeCommentNotFound)
		}
		_, err := bumpCounter(tx, comment.PostID, colCommentCount, -1)
		return err
	})
	if err != nil {
		return dbError(err)
	}

	cache.InvalidatePost(ctx, comment.PostID)
	r.log.LogDelete(ctx, map[string]any{"comment_id": comment.ID, "post_id": comment.PostID})
	return nil
}
