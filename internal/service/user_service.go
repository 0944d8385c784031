package service

import (
	"context"

	"puppytalk/internal/models"
	"puppytalk/internal/repository"
	"puppytalk/internal/security"
	"puppytalk/internal/validation"
)

type UserService struct {
	users  repository.UserRepository
	images repository.ImageRepository
	hasher *security.Hasher
}

// Availability reports which of the queried identifiers are free. Fields are
// nil when the identifier was not asked about.
type Availability struct {
	EmailAvailable    *bool `json:"emailAvailable,omitempty"`
	NicknameAvailable *bool `json:"nicknameAvailable,omitempty"`
}

type UpdateProfileInput struct {
	UserID         uint
	Nickname       *string
	ProfileImageID *uint
}

type UpdatePasswordInput struct {
	UserID          uint
	CurrentPassword string
	NewPassword     string
}

func NewUserService(users repository.UserRepository, images repository.ImageRepository, hasher *security.Hasher) *UserService {
	return &UserService{users: users, images: images, hasher: hasher}
}

// CheckAvailability looks up the email and/or nickname. At least one is required.
func (s *UserService) CheckAvailability(ctx context.Context, email, nickname string) (*Availability, error) {
	if email == "" && nickname == "" {
		return nil, models.NewValidationError(models.CodeMissingRequiredField)
	}

	out := &Availability{}
	if email != "" {
		taken, err := s.users.EmailTaken(ctx, validation.NormalizeEmail(email))
		if err != nil {
			return nil, err
		}
		free := !taken
		out.EmailAvailable = &free
	}
	if nickname != "" {
		taken, err := s.users.NicknameTaken(ctx, nickname, 0)
		if err != nil {
			return nil, err
		}
		free := !taken
		out.NicknameAvailable = &free
	}
	return out, nil
}

func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

// UpdateProfile changes the nickname and/or profile image. Keeping the
// current nickname is not a conflict.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	if in.Nickname == nil && in.ProfileImageID == nil {
		return nil, models.NewValidationError(models.CodeMissingRequiredField)
	}

	var changes repository.ProfileChanges
	if in.Nickname != nil {
		taken, err := s.users.NicknameTaken(ctx, *in.Nickname, in.UserID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, models.NewConflictError(models.CodeNicknameAlreadyExists)
		}
		changes.Nickname = in.Nickname
	}
	if in.ProfileImageID != nil {
		img, err := lookupImage(ctx, s.images, *in.ProfileImageID)
		if err != nil {
			return nil, err
		}
		changes.Image = img
	}

	return s.users.UpdateProfile(ctx, in.UserID, changes)
}

// UpdatePassword replaces the password after re-checking the current one.
func (s *UserService) UpdatePassword(ctx context.Context, in UpdatePasswordInput) error {
	user, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(in.CurrentPassword, user.PasswordHash) {
		return models.NewError(models.CodeInvalidCredentials)
	}
	hash, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		return models.NewInternalError(err)
	}
	return s.users.UpdatePassword(ctx, in.UserID, hash)
}

// Withdraw deletes the user's sessions and soft-deletes the account together.
func (s *UserService) Withdraw(ctx context.Context, userID uint) error {
	return s.users.Withdraw(ctx, userID)
}

// ListUsers returns one page of live accounts and the total count.
func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, int64, error) {
	return s.users.List(ctx, limit, offset)
}
