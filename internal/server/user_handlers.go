package server

import (
	"strings"

	"puppytalk/internal/models"
	"puppytalk/internal/service"
	"puppytalk/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// CheckAvailability handles GET /users/availability?email=&nickname=
// @Summary Check whether an email or nickname is free
// @Tags users
// @Produce json
// @Param email query string false "Email"
// @Param nickname query string false "Nickname"
// @Success 200 {object} models.Envelope{data=service.Availability}
// @Failure 400 {object} models.Envelope
// @Router /users/availability [get]
func (s *Server) CheckAvailability(c *fiber.Ctx) error {
	email := strings.TrimSpace(c.Query("email"))
	nickname := strings.TrimSpace(c.Query("nickname"))
	if nickname != "" {
		var err error
		if nickname, err = validation.ValidateNickname(nickname); err != nil {
			return err
		}
	}

	avail, err := s.userService.CheckAvailability(c.UserContext(), email, nickname)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, models.CodeOK, avail)
}

// GetMyProfile handles GET /users/me
// @Summary Get the signed-in user's profile
// @Tags users
// @Produce json
// @Success 200 {object} models.Envelope{data=models.UserProfile}
// @Failure 401 {object} models.Envelope
// @Router /users/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	user, err := s.userService.GetProfile(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, models.CodeUserRetrieved, user.ToProfile())
}

// UpdateMyProfile handles PATCH /users/me
// @Summary Update nickname and/or profile image
// @Tags users
// @Accept json
// @Produce json
// @Param request body UpdateProfileRequest true "Profile changes"
// @Success 200 {object} models.Envelope{data=models.UserProfile}
// @Failure 400 {object} models.Envelope
// @Failure 409 {object} models.Envelope
// @Router /users/me [patch]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req UpdateProfileRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID:         userID,
		Nickname:       req.Nickname,
		ProfileImageID: req.ProfileImageID,
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, models.CodeUserUpdated, user.ToProfile())
}

// UpdateMyPassword handles PATCH /users/me/password
// @Summary Change password
// @Tags users
// @Accept json
// @Produce json
// @Param request body UpdatePasswordRequest true "Passwords"
// @Success 200 {object} models.Envelope
// @Failure 400 {object} models.Envelope
// @Failure 401 {object} models.Envelope
// @Router /users/me/password [patch]
func (s *Server) UpdateMyPassword(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req UpdatePasswordRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	if err := s.userService.UpdatePassword(c.UserContext(), service.UpdatePasswordInput{
		UserID:          userID,
		CurrentPassword: *req.CurrentPassword,
		NewPassword:     *req.NewPassword,
	}); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, models.CodePasswordUpdated, nil)
}

// Withdraw handles DELETE /users/me
// @Summary Delete the signed-in account
// @Description Revokes every session of the user and clears the cookie.
// @Tags users
// @Success 204
// @Failure 401 {object} models.Envelope
// @Router /users/me [delete]
func (s *Server) Withdraw(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := s.userService.Withdraw(c.UserContext(), userID); err != nil {
		return err
	}
	s.clearSessionCookie(c)
	return noContent(c)
}
