package server

import (
	"context"

	"puppytalk/internal/models"
	"puppytalk/internal/service"

	"github.com/gofiber/fiber/v2"
)

const (
	localPost    = "post"
	localComment = "comment"
)

// RequirePostAuthor loads the post named by :id and rejects callers who did
// not write it. Must be placed after AuthRequired.
func (s *Server) RequirePostAuthor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := currentUser(c)
		if err != nil {
			return err
		}
		postID, err := parseID(c, "id", models.CodeInvalidPostIDFormat)
		if err != nil {
			return err
		}

		post, err := service.RequireOwner(c.UserContext(), postID, userID,
			s.postService.GetForAuthor,
			func(p *models.Post) uint { return p.UserID },
			models.CodePostNotFound,
		)
		if err != nil {
			return err
		}
		c.Locals(localPost, post)
		return c.Next()
	}
}

// RequireCommentAuthor checks, in order, that the post exists, that the
// comment exists and belongs to that post, and that the caller wrote it.
func (s *Server) RequireCommentAuthor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := currentUser(c)
		if err != nil {
			return err
		}
		postID, err := parseID(c, "id", models.CodeInvalidPostIDFormat)
		if err != nil {
			return err
		}
		commentID, err := parseID(c, "commentId", models.CodeInvalidCommentIDFormat)
		if err != nil {
			return err
		}

		ctx := c.UserContext()
		exists, err := s.postService.Exists(ctx, postID)
		if err != nil {
			return err
		}
		if !exists {
			return models.NewNotFoundError(models.CodePostNotFound)
		}

		load := func(ctx context.Context, id uint) (*models.Comment, error) {
			comment, err := s.commentService.Get(ctx, id)
			if err != nil {
				return nil, err
			}
			if comment.PostID != postID {
				return nil, models.NewValidationError(models.CodeCommentPostMismatch)
			}
			return comment, nil
		}
		comment, err := service.RequireOwner(ctx, commentID, userID, load,
			func(cm *models.Comment) uint { return cm.UserID },
			models.CodeCommentNotFound,
		)
		if err != nil {
			return err
		}
		c.Locals(localComment, comment)
		return c.Next()
	}
}
