package service

import (
	"context"

	"puppytalk/internal/middleware"
	"puppytalk/internal/models"
	"puppytalk/internal/repository"
	"puppytalk/internal/security"
	"puppytalk/internal/validation"
)

type AuthService struct {
	users    repository.UserRepository
	images   repository.ImageRepository
	sessions *SessionService
	hasher   *security.Hasher
}

type SignupInput struct {
	Email          string
	Password       string
	Nickname       string
	ProfileImageID *uint
}

func NewAuthService(
	users repository.UserRepository,
	images repository.ImageRepository,
	sessions *SessionService,
	hasher *security.Hasher,
) *AuthService {
	return &AuthService{users: users, images: images, sessions: sessions, hasher: hasher}
}

// Signup creates an account. Email is checked before nickname so a request
// colliding on both reports EMAIL_ALREADY_EXISTS.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	email := validation.NormalizeEmail(in.Email)

	taken, err := s.users.EmailTaken(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, models.NewConflictError(models.CodeEmailAlreadyExists)
	}
	taken, err = s.users.NicknameTaken(ctx, in.Nickname, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, models.NewConflictError(models.CodeNicknameAlreadyExists)
	}

	user := &models.User{Email: email, Nickname: in.Nickname}
	if in.ProfileImageID != nil {
		img, err := lookupImage(ctx, s.images, *in.ProfileImageID)
		if err != nil {
			return nil, err
		}
		user.ProfileImageID = &img.ID
		user.ProfileImageURL = img.FileURL
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	user.PasswordHash = hash

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	middleware.AuthEvents.WithLabelValues("signup").Inc()
	return user, nil
}

// Login checks the credentials and opens a session. Unknown emails and wrong
// passwords fail alike with INVALID_CREDENTIALS.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, *models.Session, error) {
	user, err := s.users.GetByEmail(ctx, validation.NormalizeEmail(email))
	if err != nil {
		return nil, nil, err
	}
	if user == nil || !s.hasher.Verify(password, user.PasswordHash) {
		middleware.AuthEvents.WithLabelValues("login_failure").Inc()
		return nil, nil, models.NewError(models.CodeInvalidCredentials)
	}

	session, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	middleware.AuthEvents.WithLabelValues("login_success").Inc()
	return user, session, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Revoke(ctx, token); err != nil {
		return err
	}
	middleware.AuthEvents.WithLabelValues("logout").Inc()
	return nil
}

func (s *AuthService) Me(ctx context.Context, userID uint) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

// lookupImage resolves an image referenced from a request body. A missing
// image is the caller's fault, so it maps to INVALID_IMAGE_ID.
func lookupImage(ctx context.Context, images repository.ImageRepository, id uint) (*models.Image, error) {
	img, err := images.GetByID(ctx, id)
	if models.IsCode(err, models.CodeImageNotFound) {
		return nil, models.NewValidationError(models.CodeInvalidImageID)
	}
	if err != nil {
		return nil, err
	}
	return img, nil
}
