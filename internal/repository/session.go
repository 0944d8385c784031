package repository

import (
	"context"
	"errors"
	"time"

	"puppytalk/internal/models"

	"gorm.io/gorm"
)

// SessionRepository stores login sessions. Rows are hard-deleted.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	// FindLive returns nil, nil for unknown and expired tokens alike.
	FindLive(ctx context.Context, token string, now time.Time) (*models.Session, error)
	Delete(ctx context.Context, token string) error
	DeleteByUser(ctx context.Context, userID uint) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type sessionRepository struct {
	base
}

// NewSessionRepository returns a GORM-backed SessionRepository.
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{base: newBase(db, "sessions")}
}

func (r *sessionRepository) Create(ctx context.Context, session *models.Session) (err error) {
	ctx, done := r.begin(ctx, "create")
	defer done(&err)

	if err := r.conn(ctx).Create(session).Error; err != nil {
		return dbError(err)
	}
	r.log.LogCreate(ctx, map[string]any{"user_id": session.UserID, "expires_at": session.ExpiresAt})
	return nil
}

func (r *sessionRepository) FindLive(ctx context.Context, token string, now time.Time) (_ *models.Session, err error) {
	ctx, done := r.begin(ctx, "find_live")
	defer done(&err)

	var s models.Session
	err = r.conn(ctx).Where("id = ? AND expires_at > ?", token, now).Take(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, dbError(err)
	}
	return &s, nil
}

func (r *sessionRepository) Delete(ctx context.Context, token string) (err error) {
	ctx, done := r.begin(ctx, "delete")
	defer done(&err)

	res := r.conn(ctx).Where("id = ?", token).Delete(&models.Session{})
	if res.Error != nil {
		return dbError(res.Error)
	}
	if res.RowsAffected > 0 {
		r.log.LogDelete(ctx, map[string]any{"rows": res.RowsAffected})
	}
	return nil
}

func (r *sessionRepository) DeleteByUser(ctx context.Context, userID uint) (_ int64, err error) {
	ctx, done := r.begin(ctx, "delete_by_user")
	defer done(&err)

	res := r.conn(ctx).Where("user_id = ?", userID).Delete(&models.Session{})
	if res.Error != nil {
		return 0, dbError(res.Error)
	}
	r.log.LogDelete(ctx, map[string]any{"user_id": userID, "rows": res.RowsAffected})
	return res.RowsAffected, nil
}

func (r *sessionRepository) DeleteExpired(ctx context.Context, now time.Time) (_ int64, err error) {
	ctx, done := r.begin(ctx, "delete_expired")
	defer done(&err)

	res := r.conn(ctx).Where("expires_at <= ?", now).Delete(&models.Session{})
	if res.Error != nil {
		return 0, dbError(res.Error)
	}
	return res.RowsAffected, nil
}
