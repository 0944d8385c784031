// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"puppytalk/internal/models"
	"puppytalk/internal/repository"
	"puppytalk/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

const maxImagesPerPost = models.MaxPostImages

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// Factory builds domain entities and persists them through the repositories,
// so post counters move the same way they do for API traffic.
type Factory struct {
	db       *gorm.DB
	users    repository.UserRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
	likes    repository.LikeRepository

	passwordHash string
	seq          int
}

// NewFactory creates a Factory bound to db. passwordHash is stored on every
// user it creates. A non-zero randSeed makes the generated content repeatable.
func NewFactory(db *gorm.DB, passwordHash string, randSeed int64) *Factory {
	if randSeed == 0 {
		randSeed = time.Now().UnixNano()
	}
	gofakeit.Seed(randSeed)
	return &Factory{
		db:           db,
		users:        repository.NewUserRepository(db),
		posts:        repository.NewPostRepository(db),
		comments:     repository.NewCommentRepository(db),
		likes:        repository.NewLikeRepository(db),
		passwordHash: passwordHash,
	}
}

func (f *Factory) next() string {
	f.seq++
	return strconv.Itoa(f.seq)
}

// Nickname returns a pet-name based nickname that passes validation.
func (f *Factory) Nickname() string {
	base := nonAlnum.ReplaceAllString(gofakeit.PetName(), "")
	if base == "" {
		base = "pup"
	}
	suffix := f.next() + strconv.Itoa(gofakeit.Number(0, 9))
	if room := 10 - len(suffix); len(base) > room {
		base = base[:room]
	}
	return base + suffix
}

// Title returns a sentence short enough for a post title.
func (f *Factory) Title() string {
	return truncateRunes(strings.TrimSuffix(gofakeit.Sentence(4), "."), validation.TitleMaxLength)
}

// CreateUser persists a user with a generated email and nickname.
func (f *Factory) CreateUser(ctx context.Context, overrides ...func(*models.User)) (*models.User, error) {
	nickname := f.Nickname()
	user := &models.User{
		Email:        fmt.Sprintf("%s.%s@puppytalk.dev", strings.ToLower(nickname), f.next()),
		Nickname:     nickname,
		PasswordHash: f.passwordHash,
	}
	for _, override := range overrides {
		override(user)
	}
	if err := f.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// EnsureAccount returns the live user with the account's email, creating it
// when missing.
func (f *Factory) EnsureAccount(ctx context.Context, a Account) (*models.User, bool, error) {
	existing, err := f.users.GetByEmail(ctx, validation.NormalizeEmail(a.Email))
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}
	user, err := f.CreateUser(ctx, func(u *models.User) {
		u.Email = validation.NormalizeEmail(a.Email)
		u.Nickname = a.Nickname
	})
	if err != nil {
		return nil, false, fmt.Errorf("account %s: %w", a.Email, err)
	}
	return user, true, nil
}

// CreateImage persists an image row pointing at a placeholder photo.
func (f *Factory) CreateImage(ctx context.Context, uploader *models.User) (*models.Image, error) {
	id := gofakeit.UUID()
	img := &models.Image{
		FileKey:     fmt.Sprintf("%s/seed-%s.jpg", models.ImageFolderPost, id),
		FileURL:     fmt.Sprintf("https://picsum.photos/seed/%s/800/800", id),
		ContentType: "image/jpeg",
		Size:        int64(gofakeit.Number(40_000, 900_000)),
		UploaderID:  &uploader.ID,
	}
	if err := f.db.WithContext(ctx).Create(img).Error; err != nil {
		return nil, err
	}
	return img, nil
}

// CreatePost persists a post by author with imageCount fresh images.
func (f *Factory) CreatePost(ctx context.Context, author *models.User, imageCount int, overrides ...func(*models.Post)) (*models.Post, error) {
	images := make([]models.Image, 0, imageCount)
	for range imageCount {
		img, err := f.CreateImage(ctx, author)
		if err != nil {
			return nil, err
		}
		images = append(images, *img)
	}

	post := &models.Post{
		UserID:  author.ID,
		Title:   f.Title(),
		Content: gofakeit.Paragraph(1, 3, 8, "\n"),
	}
	for _, override := range overrides {
		override(post)
	}
	if err := f.posts.Create(ctx, post, images); err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment persists a comment by author on post.
func (f *Factory) CreateComment(ctx context.Context, author *models.User, post *models.Post) (*models.Comment, error) {
	comment := &models.Comment{
		PostID:  post.ID,
		UserID:  author.ID,
		Content: truncateRunes(gofakeit.Sentence(gofakeit.Number(3, 14)), validation.CommentMaxLength),
	}
	if err := f.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Like records user's like of post. A repeat like is not an error here.
func (f *Factory) Like(ctx context.Context, user *models.User, post *models.Post) (bool, error) {
	if _, err := f.likes.Like(ctx, post.ID, user.ID); err != nil {
		if models.IsCode(err, models.CodeAlreadyLiked) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func truncateRunes(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return strings.TrimSpace(string(r[:limit]))
}
