// Package bootstrap wires the process-wide runtime shared by the commands:
// database, Redis and schema.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"puppytalk/internal/cache"
	"puppytalk/internal/config"
	"puppytalk/internal/database"
	"puppytalk/internal/middleware"
	"puppytalk/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// ApplySchema runs database.ApplySchema after connecting.
	ApplySchema bool
	// SeedPreset, when set, seeds an empty database with the named preset.
	SeedPreset string
}

// InitRuntime connects to the database and Redis, applies the schema and
// optionally seeds demo data. A Redis outage is not fatal: the returned
// client is nil and callers degrade to local fallbacks.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	if opts.ApplySchema {
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			_ = database.Close(db)
			return nil, nil, fmt.Errorf("apply schema: %w", err)
		}
	}

	if opts.SeedPreset != "" {
		if err := seedIfEmpty(ctx, db, cfg, opts.SeedPreset); err != nil {
			_ = database.Close(db)
			return nil, nil, err
		}
	}

	cache.InitRedis(cfg.RedisURL)
	return db, cache.GetClient(), nil
}

func seedIfEmpty(ctx context.Context, db *gorm.DB, cfg *config.Config, preset string) error {
	if cfg.IsProduction() {
		return fmt.Errorf("refusing to seed %q in %q", preset, cfg.Env)
	}
	var posts int64
	if err := db.WithContext(ctx).Table("posts").Count(&posts).Error; err != nil {
		return fmt.Errorf("count posts: %w", err)
	}
	if posts > 0 {
		middleware.Logger.Info("Skipping seed, database already has posts", slog.Int64("posts", posts))
		return nil
	}

	s, err := seed.NewSeeder(db, seed.Options{BcryptCost: cfg.BcryptCost})
	if err != nil {
		return err
	}
	if _, err := s.ApplyPreset(ctx, preset); err != nil {
		return fmt.Errorf("seed preset %q: %w", preset, err)
	}
	return nil
}
