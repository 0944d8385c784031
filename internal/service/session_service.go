package service

import (
	"context"
	"log/slog"
	"time"

	"puppytalk/internal/middleware"
	"puppytalk/internal/models"
	"puppytalk/internal/repository"
	"puppytalk/internal/security"
)

// SessionService issues and resolves opaque session tokens.
type SessionService struct {
	repo     repository.SessionRepository
	ttl      time.Duration
	now      func() time.Time
	newToken func() (string, error)
}

func NewSessionService(repo repository.SessionRepository, ttl time.Duration) *SessionService {
	return &SessionService{
		repo:     repo,
		ttl:      ttl,
		now:      func() time.Time { return time.Now().UTC() },
		newToken: security.NewSessionToken,
	}
}

// WithClock replaces the service clock. Tests use it to step past expiry.
func (s *SessionService) WithClock(now func() time.Time) *SessionService {
	s.now = func() time.Time { return now().UTC() }
	return s
}

// TTL is the lifetime given to new sessions.
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

func (s *SessionService) Create(ctx context.Context, userID uint) (*models.Session, error) {
	token, err := s.newToken()
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	now := s.now()
	session := &models.Session{
		ID:        token,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Resolve returns the user behind token. Unknown and expired tokens both
// report ok=false.
func (s *SessionService) Resolve(ctx context.Context, token string) (uint, bool, error) {
	if token == "" {
		return 0, false, nil
	}
	session, err := s.repo.FindLive(ctx, token, s.now())
	if err != nil {
		return 0, false, err
	}
	if session == nil {
		return 0, false, nil
	}
	return session.UserID, true, nil
}

// Revoke deletes the session. Empty and unknown tokens are ignored.
func (s *SessionService) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.repo.Delete(ctx, token)
}

func (s *SessionService) RevokeAllForUser(ctx context.Context, userID uint) (int64, error) {
	return s.repo.DeleteByUser(ctx, userID)
}

// SweepExpired hard-deletes every session whose expiry has passed.
func (s *SessionService) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		middleware.SessionsSwept.Add(float64(n))
	}
	return n, nil
}

// StartSweeper sweeps once right away and then every interval until ctx is
// cancelled. A zero interval sweeps only once. The returned channel closes
// when the sweeper has stopped.
func (s *SessionService) StartSweeper(ctx context.Context, interval time.Duration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.sweep(ctx)
		if interval <= 0 {
			return
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep(ctx)
			}
		}
	}()
	return done
}

func (s *SessionService) sweep(ctx context.Context) {
	n, err := s.SweepExpired(ctx)
	if err != nil {
		if ctx.Err() == nil {
			slog.WarnContext(ctx, "session sweep failed", "error", err)
		}
		return
	}
	if n > 0 {
		slog.InfoContext(ctx, "expired sessions swept", "count", n)
	}
}
