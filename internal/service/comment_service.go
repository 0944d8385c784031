package service

import (
	"context"

	"puppytalk/internal/models"
	"puppytalk/internal/repository"
)

type CommentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
}

type CreateCommentInput struct {
	UserID  uint
	PostID  uint
	Content string
}

// CommentPage is one page of a post's comments with the totals the client
// needs for page navigation.
type CommentPage struct {
	List        []models.CommentView `json:"list"`
	TotalCount  int64                `json:"totalCount"`
	TotalPages  int                  `json:"totalPages"`
	CurrentPage int                  `json:"currentPage"`
}

func NewCommentService(comments repository.CommentRepository, posts repository.PostRepository) *CommentService {
	return &CommentService{comments: comments, posts: posts}
}

// Create adds a comment and bumps the post's comment_count in the same
// transaction. A missing post fails with POST_NOT_FOUND.
func (s *CommentService) Create(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	comment := &models.Comment{PostID: in.PostID, UserID: in.UserID, Content: in.Content}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) List(ctx context.Context, postID uint, page, size int) (*CommentPage, error) {
	exists, err := s.posts.Exists(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, models.NewNotFoundError(models.CodePostNotFound)
	}

	rows, total, err := s.comments.ListByPost(ctx, postID, size, (page-1)*size)
	if err != nil {
		return nil, err
	}
	out := &CommentPage{
		List:        make([]models.CommentView, 0, len(rows)),
		TotalCount:  total,
		TotalPages:  int((total + int64(size) - 1) / int64(size)),
		CurrentPage: page,
	}
	for i := range rows {
		out.List = append(out.List, rows[i].ToView())
	}
	return out, nil
}

func (s *CommentService) Get(ctx context.Context, id uint) (*models.Comment, error) {
	return s.comments.GetByID(ctx, id)
}

func (s *CommentService) Update(ctx context.Context, id uint, content string) (*models.Comment, error) {
	return s.comments.UpdateContent(ctx, id, content)
}

// Delete soft-deletes the comment and decrements comment_count, never below zero.
func (s *CommentService) Delete(ctx context.Context, comment *models.Comment) error {
	return s.comments.Delete(ctx, comment)
}
