package server

import (
	"strings"

	"puppytalk/internal/models"
	"puppytalk/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// validatable is implemented by every request body.
type validatable interface {
	Validate() error
}

// bindBody decodes the JSON body into dst and validates it.
func bindBody(c *fiber.Ctx, dst validatable) error {
	if err := c.BodyParser(dst); err != nil {
		return models.WrapError(models.CodeInvalidRequestBody, err)
	}
	return dst.Validate()
}

func missing() error {
	return models.NewValidationError(models.CodeMissingRequiredField)
}

func validImageID(id *uint) error {
	if id != nil && *id == 0 {
		return models.NewValidationError(models.CodeInvalidImageID)
	}
	return nil
}

// SignupRequest is the body of POST /auth/signup.
type SignupRequest struct {
	Email          *string `json:"email"`
	Password       *string `json:"password"`
	Nickname       *string `json:"nickname"`
	ProfileImageID *uint   `json:"profileImageId,omitempty"`
}

func (r *SignupRequest) Validate() error {
	if r.Email == nil || r.Password == nil || r.Nickname == nil {
		return missing()
	}
	email := strings.TrimSpace(*r.Email)
	if err := validation.ValidateEmail(email); err != nil {
		return err
	}
	r.Email = &email
	if err := validation.ValidatePassword(*r.Password); err != nil {
		return err
	}
	nickname, err := validation.ValidateNickname(*r.Nickname)
	if err != nil {
		return err
	}
	r.Nickname = &nickname
	return validImageID(r.ProfileImageID)
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	if r.Email == nil || r.Password == nil || *r.Password == "" {
		return missing()
	}
	email := strings.TrimSpace(*r.Email)
	if err := validation.ValidateEmail(email); err != nil {
		return err
	}
	r.Email = &email
	return nil
}

// UpdateProfileRequest is the body of PATCH /users/me. A blank nickname
// counts as absent.
type UpdateProfileRequest struct {
	Nickname       *string `json:"nickname,omitempty"`
	ProfileImageID *uint   `json:"profileImageId,omitempty"`
}

func (r *UpdateProfileRequest) Validate() error {
	if r.Nickname != nil && strings.TrimSpace(*r.Nickname) == "" {
		r.Nickname = nil
	}
	if r.Nickname == nil && r.ProfileImageID == nil {
		return missing()
	}
	if r.Nickname != nil {
		nickname, err := validation.ValidateNickname(*r.Nickname)
		if err != nil {
			return err
		}
		r.Nickname = &nickname
	}
	return validImageID(r.ProfileImageID)
}

// UpdatePasswordRequest is the body of PATCH /users/me/password.
type UpdatePasswordRequest struct {
	CurrentPassword *string `json:"currentPassword"`
	NewPassword     *string `json:"newPassword"`
}

func (r *UpdatePasswordRequest) Validate() error {
	if r.CurrentPassword == nil || *r.CurrentPassword == "" || r.NewPassword == nil {
		return missing()
	}
	return validation.ValidatePassword(*r.NewPassword)
}

// CreatePostRequest is the body of POST /posts.
type CreatePostRequest struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	ImageIDs []uint  `json:"imageIds,omitempty"`
}

func (r *CreatePostRequest) Validate() error {
	if r.Title == nil || r.Content == nil {
		return missing()
	}
	if err := validation.ValidateTitle(*r.Title); err != nil {
		return err
	}
	if err := validation.ValidatePostContent(*r.Content); err != nil {
		return err
	}
	return validation.ValidateImageIDs(r.ImageIDs)
}

// UpdatePostRequest is the body of PATCH /posts/:id. Every field is
// optional; a present imageIds list, even an empty one, replaces the
// attachments.
type UpdatePostRequest struct {
	Title    *string `json:"title,omitempty"`
	Content  *string `json:"content,omitempty"`
	ImageIDs *[]uint `json:"imageIds,omitempty"`
}

func (r *UpdatePostRequest) Validate() error {
	if r.Title != nil {
		if err := validation.ValidateTitle(*r.Title); err != nil {
			return err
		}
	}
	if r.Content != nil {
		if err := validation.ValidatePostContent(*r.Content); err != nil {
			return err
		}
	}
	if r.ImageIDs != nil {
		return validation.ValidateImageIDs(*r.ImageIDs)
	}
	return nil
}

// CommentRequest is the body of comment create and update.
type CommentRequest struct {
	Content *string `json:"content"`
}

func (r *CommentRequest) Validate() error {
	if r.Content == nil {
		return missing()
	}
	return validation.ValidateCommentContent(*r.Content)
}
