package seed

import (
	"context"
	"fmt"
	"log/slog"

	"puppytalk/internal/middleware"
	"puppytalk/internal/models"
	"puppytalk/internal/security"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// DefaultPassword is the plaintext password of every seeded account.
const DefaultPassword = "Puppy123!"

// Options configure a Seeder.
type Options struct {
	// BcryptCost for the shared password hash; 0 uses the library default.
	BcryptCost int
	// RandSeed makes generated content repeatable when non-zero.
	RandSeed int64
}

// Summary counts what one run created.
type Summary struct {
	Accounts int
	Users    int
	Posts    int
	Images   int
	Comments int
	Likes    int
}

// Seeder fills the database from a preset.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	catalog *Catalog
}

// NewSeeder hashes DefaultPassword once and loads the embedded presets.
func NewSeeder(db *gorm.DB, opts Options) (*Seeder, error) {
	catalog, err := LoadCatalog()
	if err != nil {
		return nil, err
	}
	hash, err := security.NewHasher(opts.BcryptCost).Hash(DefaultPassword)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}
	return &Seeder{
		db:      db,
		factory: NewFactory(db, hash, opts.RandSeed),
		catalog: catalog,
	}, nil
}

// Catalog exposes the loaded presets.
func (s *Seeder) Catalog() *Catalog {
	return s.catalog
}

// ApplyPreset runs the named preset.
func (s *Seeder) ApplyPreset(ctx context.Context, name string) (*Summary, error) {
	p, err := s.catalog.Preset(name)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx, p)
}

// Run creates the fixed accounts, then preset.Users generated users who each
// write PostsPerUser posts. Every post gets CommentsPerPost comments from
// random authors and each user likes it with probability LikeChance.
func (s *Seeder) Run(ctx context.Context, p Preset) (*Summary, error) {
	if err := p.check(); err != nil {
		return nil, fmt.Errorf("preset %q: %w", p.Name, err)
	}
	middleware.Logger.Info("Seeding database", slog.String("preset", p.Name), slog.Int("users", p.Users))

	sum := &Summary{}
	users := make([]*models.User, 0, len(s.catalog.Accounts)+p.Users)
	for _, a := range s.catalog.Accounts {
		u, created, err := s.factory.EnsureAccount(ctx, a)
		if err != nil {
			return sum, err
		}
		if created {
			sum.Accounts++
		}
		users = append(users, u)
	}
	for range p.Users {
		u, err := s.factory.CreateUser(ctx)
		if err != nil {
			return sum, fmt.Errorf("create user: %w", err)
		}
		users = append(users, u)
		sum.Users++
	}
	if len(users) == 0 {
		return sum, nil
	}

	for _, author := range users[len(users)-p.Users:] {
		for range p.PostsPerUser {
			post, err := s.factory.CreatePost(ctx, author, p.ImagesPerPost)
			if err != nil {
				return sum, fmt.Errorf("create post: %w", err)
			}
			sum.Posts++
			sum.Images += p.ImagesPerPost

			for range p.CommentsPerPost {
				commenter := users[gofakeit.Number(0, len(users)-1)]
				if _, err := s.factory.CreateComment(ctx, commenter, post); err != nil {
					return sum, fmt.Errorf("create comment: %w", err)
				}
				sum.Comments++
			}
			for _, fan := range users {
				if gofakeit.Float64Range(0, 1) >= p.LikeChance {
					continue
				}
				liked, err := s.factory.Like(ctx, fan, post)
				if err != nil {
					return sum, fmt.Errorf("like post: %w", err)
				}
				if liked {
					sum.Likes++
				}
			}
		}
	}

	middleware.Logger.Info("Seeding complete",
		slog.String("preset", p.Name),
		slog.Int("users", sum.Users),
		slog.Int("posts", sum.Posts),
		slog.Int("comments", sum.Comments),
		slog.Int("likes", sum.Likes),
	)
	return sum, nil
}

// ClearAll hard-deletes every row the application owns, children first.
func (s *Seeder) ClearAll(ctx context.Context) error {
	for _, model := range []any{
		&models.Like{},
		&models.Comment{},
		&models.PostImage{},
		&models.Post{},
		&models.Session{},
		&models.Image{},
		&models.User{},
	} {
		// A fresh statement per table; a chained one would carry the first
		// model's conditions into the next delete.
		tx := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped()
		if err := tx.Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	middleware.Logger.Info("Cleared seeded tables")
	return nil
}
