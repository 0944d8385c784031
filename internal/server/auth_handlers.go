package server

import (
	"puppytalk/internal/middleware"
	"puppytalk/internal/models"
	"puppytalk/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Signup handles user registration
// @Summary Register a new user
// @Description Create an account. profileImageId must reference an uploaded image.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Signup request"
// @Success 201 {object} models.Envelope
// @Failure 400 {object} models.Envelope
// @Failure 409 {object} models.Envelope
// @Router /auth/signup [post]
func (s *Server) Signup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	user, err := s.authService.Signup(c.UserContext(), service.SignupInput{
		Email:          *req.Email,
		Password:       *req.Password,
		Nickname:       *req.Nickname,
		ProfileImageID: req.ProfileImageID,
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, models.CodeSignupSuccess, fiber.Map{"userId": user.ID})
}

// Login handles user authentication
// @Summary Login user
// @Description Authenticate with email and password. Sets the session_id cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login request"
// @Success 200 {object} models.Envelope{data=models.Identity}
// @Failure 401 {object} models.Envelope
// @Failure 429 {object} models.Envelope
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	user, session, err := s.authService.Login(c.UserContext(), *req.Email, *req.Password)
	if err != nil {
		return err
	}
	s.setSessionCookie(c, session.ID)
	return respond(c, fiber.StatusOK, models.CodeLoginSuccess, user.ToIdentity())
}

// Logout handles user logout
// @Summary Logout user
// @Description Revoke the current session and clear the cookie. Succeeds without a session.
// @Tags auth
// @Produce json
// @Success 200 {object} models.Envelope
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	if err := s.authService.Logout(c.UserContext(), c.Cookies(middleware.SessionCookieName)); err != nil {
		return err
	}
	s.clearSessionCookie(c)
	return respond(c, fiber.StatusOK, models.CodeLogoutSuccess, nil)
}

// Me returns the signed-in identity
// @Summary Current session identity
// @Tags auth
// @Produce json
// @Success 200 {object} models.Envelope{data=models.Identity}
// @Failure 401 {object} models.Envelope
// @Router /auth/me [get]
func (s *Server) Me(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	user, err := s.authService.Me(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, models.CodeAuthSuccess, user.ToIdentity())
}
