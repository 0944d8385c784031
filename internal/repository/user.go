// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"puppytalk/internal/cache"
	"puppytalk/internal/models"

	"gorm.io/gorm"
)

// ProfileChanges describes a profile update. Nil fields are left alone.
type ProfileChanges struct {
	Nickname *string
	Image    *models.Image
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	NicknameTaken(ctx context.Context, nickname string, exceptUserID uint) (bool, error)
	Create(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, userID uint, changes ProfileChanges) (*models.User, error)
	UpdatePassword(ctx context.Context, userID uint, hash string) error
	Withdraw(ctx context.Context, userID uint) error
	List(ctx context.Context, limit, offset int) ([]models.User, int64, error)
}

type userRepository struct {
	base
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{base: newBase(db, "users")}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (_ *models.User, err error) {
	ctx, done := r.begin(ctx, "get_by_id")
	defer done(&err)

	var user models.User
	if err := r.conn(ctx).First(&user, id).Error; err != nil {
		return nil, notFoundOr(err, models.CodeUserNotFound)
	}
	return &user, nil
}

// GetByEmail returns nil, nil when no live account uses email.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (_ *models.User, err error) {
	ctx, done := r.begin(ctx, "get_by_email")
	defer done(&err)

	var user models.User
	if err := r.conn(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, dbError(err)
	}
	return &user, nil
}

func (r *userRepository) EmailTaken(ctx context.Context, email string) (_ bool, err error) {
	ctx, done := r.begin(ctx, "email_taken")
	defer done(&err)

	var n int64
	if err := r.conn(ctx).Model(&models.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return false, dbError(err)
	}
	return n > 0, nil
}

// NicknameTaken ignores exceptUserID so a user can keep their own nickname.
func (r *userRepository) NicknameTaken(ctx context.Context, nickname string, exceptUserID uint) (_ bool, err error) {
	ctx, done := r.begin(ctx, "nickname_taken")
	defer done(&err)

	q := r.conn(ctx).Model(&models.User{}).Where("nickname = ?", nickname)
	if exceptUserID != 0 {
		q = q.Where("id <> ?", exceptUserID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, dbError(err)
	}
	return n > 0, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) (err error) {
	ctx, done := r.begin(ctx, "create")
	defer done(&err)

	if err := r.conn(ctx).Create(user).Error; err != nil {
		return userWriteError(err)
	}
	r.log.LogCreate(ctx, map[string]any{"user_id": user.ID})
	return nil
}

// userWriteError names the live unique index a write collided with.
func userWriteError(err error) error {
	if !isUniqueConstraintError(err) {
		return dbError(err)
	}
	if strings.Contains(violatedConstraint(err), "nickname") {
		return models.WrapError(models.CodeNicknameAlreadyExists, err)
	}
	return models.WrapError(models.CodeEmailAlreadyExists, err)
}

// UpdateProfile applies changes in one transaction. A replaced profile image
// is soft-deleted.
func (r *userRepository) UpdateProfile(ctx context.Context, userID uint, changes ProfileChanges) (_ *models.User, err error) {
	ctx, done := r.begin(ctx, "update_profile")
	defer done(&err)

	var user models.User
	err = r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, userID).Error; err != nil {
			return notFoundOr(err, models.CodeUserNotFound)
		}

		updates := map[string]any{}
		if changes.Nickname != nil {
			updates["nickname"] = *changes.Nickname
		}
		var replaced []uint
		if img := changes.Image; img != nil {
			// Copy the id out: Updates writes the new value through the pointer.
			if old := user.ProfileImageID; old != nil && *old != img.ID {
				replaced = append(replaced, *old)
			}
			updates["profile_image_id"] = img.ID
			updates["profile_image_url"] = img.FileURL
		}
		if len(updates) == 0 {
			return nil
		}

		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			return userWriteError(err)
		}
		if err := softDeleteOrphanImages(tx, replaced); err != nil {
			return dbError(err)
		}
		return tx.First(&user, userID).Error
	})
	if err != nil {
		return nil, dbError(err)
	}

	if changes.Nickname != nil || changes.Image != nil {
		r.invalidateAuthorPosts(ctx, userID)
	}
	r.log.LogUpdate(ctx, map[string]any{"user_id": userID})
	return &user, nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, userID uint, hash string) (err error) {
	ctx, done := r.begin(ctx, "update_password")
	defer done(&err)

	res := r.conn(ctx).Model(&models.User{}).Where("id = ?", userID).Update("password_hash", hash)
	if res.Error != nil {
		return dbError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError(models.CodeUserNotFound)
	}
	r.log.LogUpdate(ctx, map[string]any{"user_id": userID, "field": "password"})
	return nil
}

// Withdraw removes every session of the user and soft-deletes the account in
// one transaction.
func (r *userRepository) Withdraw(ctx context.Context, userID uint) (err error) {
	ctx, done := r.begin(ctx, "withdraw")
	defer done(&err)

	err = r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.Session{}).Error; err != nil {
			return dbError(err)
		}
		res := tx.Delete(&models.User{}, userID)
		if res.Error != nil {
			return dbError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError(models.CodeUserNotFound)
		}
		return nil
	})
	if err != nil {
		return dbError(err)
	}
	r.invalidateAuthorPosts(ctx, userID)
	r.log.LogDelete(ctx, map[string]any{"user_id": userID})
	return nil
}

// invalidateAuthorPosts drops the cached detail views of every post by
// userID, since they embed the author's nickname and image.
func (r *userRepository) invalidateAuthorPosts(ctx context.Context, userID uint) {
	if cache.GetClient() == nil {
		return
	}
	var ids []uint
	err := r.conn(ctx).Unscoped().Model(&models.Post{}).Where("user_id = ?", userID).Pluck("id", &ids).Error
	if err != nil {
		r.log.LogError(ctx, err, "invalidate_author_posts")
		return
	}
	cache.InvalidatePosts(ctx, ids)
}

func (r *userRepository) List(ctx context.Context, limit, offset int) (_ []models.User, _ int64, err error) {
	ctx, done := r.begin(ctx, "list")
	defer done(&err)

	var total int64
	if err := r.conn(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, dbError(err)
	}
	var users []models.User
	if err := r.conn(ctx).Order("id ASC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, 0, dbError(err)
	}
	return users, total, nil
}
