package service

import (
	"testing"
	"time"

	"puppytalk/internal/repository"
	"puppytalk/internal/storage"
	"puppytalk/internal/testutil"

	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	store    *storage.LocalStorage
	sessions *SessionService
	auth     *AuthService
	users    *UserService
	posts    *PostService
	comments *CommentService
	likes    *LikeService
	media    *MediaService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)

	userRepo := repository.NewUserRepository(db)
	imageRepo := repository.NewImageRepository(db)
	postRepo := repository.NewPostRepository(db)
	store := storage.NewLocalStorage(t.TempDir(), "http://127.0.0.1:8000")

	f := &fixture{db: db, store: store}
	f.sessions = NewSessionService(repository.NewSessionRepository(db), time.Hour)
	f.auth = NewAuthService(userRepo, imageRepo, f.sessions, testutil.Hasher())
	f.users = NewUserService(userRepo, imageRepo, testutil.Hasher())
	f.posts = NewPostService(postRepo, imageRepo)
	f.comments = NewCommentService(repository.NewCommentRepository(db), postRepo)
	f.likes = NewLikeService(repository.NewLikeRepository(db))
	f.media = NewMediaService(imageRepo, store, nil)
	return f
}

func uintPtr(v uint) *uint { return &v }
func strPtr(s string) *string { return &s }
