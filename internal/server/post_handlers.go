package server

import (
	"puppytalk/internal/middleware"
	"puppytalk/internal/models"
	"puppytalk/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /posts
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Param request body CreatePostRequest true "Post"
// @Success 201 {object} models.Envelope
// @Failure 400 {object} models.Envelope
// @Failure 401 {object} models.Envelope
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req CreatePostRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	post, err := s.postService.Create(c.UserContext(), service.CreatePostInput{
		UserID:   userID,
		Title:    *req.Title,
		Content:  *req.Content,
		ImageIDs: req.ImageIDs,
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, models.CodePostUploaded, fiber.Map{"postId": post.ID})
}

// GetPosts handles GET /posts?page=&size=
// @Summary List posts, newest first
// @Tags posts
// @Produce json
// @Param page query int false "Page (1-based)"
// @Param size query int false "Page size (max 100)"
// @Success 200 {object} models.Envelope{data=service.PostPage}
// @Failure 400 {object} models.Envelope
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page, size, err := parsePage(c)
	if err != nil {
		return err
	}
	out, err := s.postService.List(c.UserContext(), page, size)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, models.CodePostsRetrieved, out)
}

// GetPost handles GET /posts/:id
// @Summary Get a post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Envelope{data=models.PostDetail}
// @Failure 404 {object} models.Envelope
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id", models.CodeInvalidPostIDFormat)
	if err != nil {
		return err
	}
	ctx := c.UserContext()
	view, err := s.postService.Get(ctx, postID)
	if err != nil {
		return err
	}
	detail := models.PostDetail{PostView: *view}
	if userID, ok := middleware.UserID(c); ok {
		if detail.IsLiked, err = s.likeService.IsLiked(ctx, postID, userID); err != nil {
			return err
		}
	}
	return respond(c, fiber.StatusOK, models.CodePostRetrieved, detail)
}

// RecordPostView handles POST /posts/:id/view
// @Summary Count a view of a post
// @Tags posts
// @Param id path int true "Post ID"
// @Success 204
// @Failure 404 {object} models.Envelope
// @Router /posts/{id}/view [post]
func (s *Server) RecordPostView(c *fiber.Ctx) error {
	postID, err := parseID(c, "id", models.CodeInvalidPostIDFormat)
	if err != nil {
		return err
	}
	if err := s.postService.RecordView(c.UserContext(), postID); err != nil {
		return err
	}
	return noContent(c)
}

// UpdatePost handles PATCH /posts/:id
// @Summary Edit a post
// @Description Only the author may edit. A present imageIds list replaces the attachments.
// @Tags posts
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body UpdatePostRequest true "Changes"
// @Success 200 {object} models.Envelope{data=models.PostView}
// @Failure 403 {object} models.Envelope
// @Failure 404 {object} models.Envelope
// @Router /posts/{id} [patch]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	post := c.Locals(localPost).(*models.Post)

	var req UpdatePostRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	in := service.UpdatePostInput{
		PostID:  post.ID,
		Title:   req.Title,
		Content: req.Content,
	}
	if req.ImageIDs != nil {
		in.ReplaceImages = true
		in.ImageIDs = *req.ImageIDs
	}
	view, err := s.postService.Update(c.UserContext(), in)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, models.CodePostUpdated, view)
}

// DeletePost handles DELETE /posts/:id
// @Summary Delete a post
// @Tags posts
// @Param id path int true "Post ID"
// @Success 204
// @Failure 403 {object} models.Envelope
// @Failure 404 {object} models.Envelope
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	post := c.Locals(localPost).(*models.Post)
	if err := s.postService.Delete(c.UserContext(), post.ID); err != nil {
		return err
	}
	return noContent(c)
}

// LikePost handles POST /posts/:id/likes
// @Summary Like a post
// @Tags likes
// @Produce json
// @Param id path int true "Post ID"
// @Success 201 {object} models.Envelope
// @Failure 404 {object} models.Envelope
// @Failure 409 {object} models.Envelope
// @Router /posts/{id}/likes [post]
func (s *Server) LikePost(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	postID, err := parseID(c, "id", models.CodeInvalidPostIDFormat)
	if err != nil {
		return err
	}
	count, err := s.likeService.Like(c.UserContext(), postID, userID)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, models.CodePostLikeUploaded, fiber.Map{"likeCount": count})
}

// UnlikePost handles DELETE /posts/:id/likes
// @Summary Remove a like
// @Tags likes
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Envelope
// @Failure 404 {object} models.Envelope
// @Router /posts/{id}/likes [delete]
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	postID, err := parseID(c, "id", models.CodeInvalidPostIDFormat)
	if err != nil {
		return err
	}
	count, err := s.likeService.Unlike(c.UserContext(), postID, userID)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, models.CodeLikeDeleted, fiber.Map{"likeCount": count})
}
