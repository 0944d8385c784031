package repository

import (
	"context"

	"puppytalk/internal/cache"
	"puppytalk/internal/models"

	"gorm.io/gorm"
)

// LikeRepository toggles likes and keeps posts.like_count in step.
type LikeRepository interface {
	// Like records the like and returns the post's new like count. A second
	// like by the same user fails with ALREADY_LIKED and changes nothing.
	Like(ctx context.Context, postID, userID uint) (int64, error)
	// Unlike removes the like and returns the post's new like count.
	Unlike(ctx context.Context, postID, userID uint) (int64, error)
	IsLiked(ctx context.Context, postID, userID uint) (bool, error)
}

type likeRepository struct {
	base
}

// NewLikeRepository returns a GORM-backed LikeRepository.
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{base: newBase(db, "likes")}
}

func (r *likeRepository) Like(ctx context.Context, postID, userID uint) (_ int64, err error) {
	ctx, done := r.begin(ctx, "like")
	defer done(&err)

	var count int64
	err = r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		// The counter goes first so a missing post is a 404 rather than a
		// foreign key failure on the insert.
		n, err := bumpCounter(tx, postID, colLikeCount, 1)
		if err != nil {
			return err
		}
		if n == 0 {
			return models.NewNotFoundError(models.CodePostNotFound)
		}
		like := models.Like{PostID: postID, UserID: userID}
		if err := tx.Create(&like).Error; err != nil {
			if isUniqueConstraintError(err) {
				return models.WrapError(models.CodeAlreadyLiked, err)
			}
			return dbError(err)
		}
		count, err = readCounter(tx, postID, colLikeCount)
		return err
	})
	if err != nil {
		return 0, dbError(err)
	}

	cache.InvalidatePost(ctx, postID)
	r.log.LogCreate(ctx, map[string]any{"post_id": postID, "user_id": userID})
	return count, nil
}

func (r *likeRepository) Unlike(ctx context.Context, postID, userID uint) (_ int64, err error) {
	ctx, done := r.begin(ctx, "unlike")
	defer done(&err)

	var count int64
	err = r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.Like{})
		if res.Error != nil {
			return dbError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError(models.CodeLikeNotFound)
		}
		if _, err := bumpCounter(tx, postID, colLikeCount, -1); err != nil {
			return err
		}
		var err error
		count, err = readCounter(tx, postID, colLikeCount)
		return err
	})
	if err != nil {
		return 0, dbError(err)
	}

	cache.InvalidatePost(ctx, postID)
	r.log.LogDelete(ctx, map[string]any{"post_id": postID, "user_id": userID})
	return count, nil
}

func (r *likeRepository) IsLiked(ctx context.Context, postID, userID uint) (_ bool, err error) {
	ctx, done := r.begin(ctx, "is_liked")
	defer done(&err)

	var n int64
	if err := r.conn(ctx).Model(&models.Like{}).Where("post_id = ? AND user_id = ?", postID, userID).Count(&n).Error; err != nil {
		return false, dbError(err)
	}
	return n > 0, nil
}
