package service

import (
	"context"

	"puppytalk/internal/repository"
)

type LikeService struct {
	likes repository.LikeRepository
}

func NewLikeService(likes repository.LikeRepository) *LikeService {
	return &LikeService{likes: likes}
}

// Like returns the new like count. Liking twice fails with ALREADY_LIKED.
func (s *LikeService) Like(ctx context.Context, postID, userID uint) (int64, error) {
	return s.likes.Like(ctx, postID, userID)
}

// Unlike returns the new like count. Fails with LIKE_NOT_FOUND when the user
// had not liked the post.
func (s *LikeService) Unlike(ctx context.Context, postID, userID uint) (int64, error) {
	return s.likes.Unlike(ctx, postID, userID)
}

func (s *LikeService) IsLiked(ctx context.Context, postID, userID uint) (bool, error) {
	return s.likes.IsLiked(ctx, postID, userID)
}
