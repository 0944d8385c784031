package service

import (
	"context"

	"puppytalk/internal/cache"
	"puppytalk/internal/models"
	"puppytalk/internal/repository"
)

type PostService struct {
	posts  repository.PostRepository
	images repository.ImageRepository
}

type CreatePostInput struct {
	UserID   uint
	Title    string
	Content  string
	ImageIDs []uint
}

// UpdatePostInput carries a partial update. When ReplaceImages is set,
// ImageIDs becomes the full attachment set (empty clears it).
type UpdatePostInput struct {
	PostID        uint
	Title         *string
	Content       *string
	ReplaceImages bool
	ImageIDs      []uint
}

// PostPage is one page of the board.
type PostPage struct {
	Posts   []models.PostView `json:"posts"`
	HasMore bool              `json:"hasMore"`
}

func NewPostService(posts repository.PostRepository, images repository.ImageRepository) *PostService {
	return &PostService{posts: posts, images: images}
}

func (s *PostService) Create(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	images, err := s.resolveImages(ctx, in.ImageIDs)
	if err != nil {
		return nil, err
	}
	post := &models.Post{UserID: in.UserID, Title: in.Title, Content: in.Content}
	if err := s.posts.Create(ctx, post, images); err != nil {
		return nil, err
	}
	return post, nil
}

// List returns page (1-based) of size posts, newest first. One extra row is
// read to tell whether another page follows.
func (s *PostService) List(ctx context.Context, page, size int) (*PostPage, error) {
	rows, err := s.posts.List(ctx, size+1, (page-1)*size)
	if err != nil {
		return nil, err
	}
	out := &PostPage{Posts: make([]models.PostView, 0, min(len(rows), size))}
	if len(rows) > size {
		out.HasMore = true
		rows = rows[:size]
	}
	for i := range rows {
		out.Posts = append(out.Posts, rows[i].ToView())
	}
	return out, nil
}

// Get returns the detail view of a post, served from the cache when warm.
func (s *PostService) Get(ctx context.Context, id uint) (*models.PostView, error) {
	var view models.PostView
	err := cache.Aside(ctx, cache.PostKey(id), &view, cache.PostTTL, func() error {
		post, err := s.posts.GetByID(ctx, id)
		if err != nil {
			return err
		}
		view = post.ToView()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// GetForAuthor loads the post model for ownership checks, bypassing the cache.
func (s *PostService) GetForAuthor(ctx context.Context, id uint) (*models.Post, error) {
	return s.posts.GetByID(ctx, id)
}

// Exists reports whether a live post with id exists.
func (s *PostService) Exists(ctx context.Context, id uint) (bool, error) {
	return s.posts.Exists(ctx, id)
}

func (s *PostService) RecordView(ctx context.Context, id uint) error {
	return s.posts.IncrementViews(ctx, id)
}

func (s *PostService) Update(ctx context.Context, in UpdatePostInput) (*models.PostView, error) {
	changes := repository.PostChanges{
		Title:         in.Title,
		Content:       in.Content,
		ReplaceImages: in.ReplaceImages,
	}
	if in.ReplaceImages {
		images, err := s.resolveImages(ctx, in.ImageIDs)
		if err != nil {
			return nil, err
		}
		changes.Images = images
	}
	if err := s.posts.Update(ctx, in.PostID, changes); err != nil {
		return nil, err
	}

	post, err := s.posts.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	view := post.ToView()
	return &view, nil
}

// Delete soft-deletes the post with its comments and attachments.
func (s *PostService) Delete(ctx context.Context, id uint) error {
	return s.posts.Delete(ctx, id)
}

// resolveImages loads the images behind ids in order. Repeated ids collapse
// to one attachment; any id without a live image fails with INVALID_IMAGE_ID.
func (s *PostService) resolveImages(ctx context.Context, ids []uint) ([]models.Image, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	seen := make(map[uint]struct{}, len(ids))
	unique := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) > models.MaxPostImages {
		return nil, models.NewValidationError(models.CodePostFileLimitExceeded)
	}

	images, err := s.images.FindByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}
	if len(images) != len(unique) {
		return nil, models.NewValidationError(models.CodeInvalidImageID)
	}
	return images, nil
}
