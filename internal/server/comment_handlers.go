package server

import (
	"puppytalk/internal/models"
	"puppytalk/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateComment handles POST /posts/:id/comments
// @Summary Comment on a post
// @Tags comments
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body CommentRequest true "Comment"
// @Success 201 {object} models.Envelope
// @Failure 400 {object} models.Envelope
// @Failure 404 {object} models.Envelope
// @Router /posts/{id}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	postID, err := parseID(c, "id", models.CodeInvalidPostIDFormat)
	if err != nil {
		return err
	}
	var req CommentRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	comment, err := s.commentService.Create(c.UserContext(), service.CreateCommentInput{
		UserID:  userID,
		PostID:  postID,
		Content: *req.Content,
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, models.CodeCommentUploaded, fiber.Map{"commentId": comment.ID})
}

// GetComments handles GET /posts/:id/comments?page=&size=
// @Summary List comments of a post
// @Tags comments
// @Produce json
// @Param id path int true "Post ID"
// @Param page query int false "Page (1-based)"
// @Param size query int false "Page size (max 100)"
// @Success 200 {object} models.Envelope{data=service.CommentPage}
// @Failure 404 {object} models.Envelope
// @Router /posts/{id}/comments [get]
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := parseID(c, "id", models.CodeInvalidPostIDFormat)
	if err != nil {
		return err
	}
	page, size, err := parsePage(c)
	if err != nil {
		return err
	}
	out, err := s.commentService.List(c.UserContext(), postID, page, size)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, models.CodeCommentsRetrieved, out)
}

// UpdateComment handles PATCH /posts/:id/comments/:commentId
// @Summary Edit a comment
// @Tags comments
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param commentId path int true "Comment ID"
// @Param request body CommentRequest true "Comment"
// @Success 200 {object} models.Envelope{data=models.CommentView}
// @Failure 400 {object} models.Envelope
// @Failure 403 {object} models.Envelope
// @Failure 404 {object} models.Envelope
// @Router /posts/{id}/comments/{commentId} [patch]
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	comment := c.Locals(localComment).(*models.Comment)

	var req CommentRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	updated, err := s.commentService.Update(c.UserContext(), comment.ID, *req.Content)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, models.CodeCommentUpdated, updated.ToView())
}

// DeleteComment handles DELETE /posts/:id/comments/:commentId
// @Summary Delete a comment
// @Tags comments
// @Param id path int true "Post ID"
// @Param commentId path int true "Comment ID"
// @Success 204
// @Failure 403 {object} models.Envelope
// @Failure 404 {object} models.Envelope
// @Router /posts/{id}/comments/{commentId} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	comment := c.Locals(localComment).(*models.Comment)
	if err := s.commentService.Delete(c.UserContext(), comment); err != nil {
		return err
	}
	return noContent(c)
}
