// Package bootstrap wires the runtime dependencies shared by the server and
// the operator commands.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"blogapi/internal/cache"
	"blogapi/internal/config"
	"blogapi/internal/database"
	"blogapi/internal/middleware"
	"blogapi/internal/models"
	"blogapi/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SkipSchema leaves the schema untouched, for commands that manage it.
	// Development seeding is skipped as well.
	SkipSchema bool
	// SkipRedis does not dial Redis at all.
	SkipRedis bool
	// SchemaTimeout bounds schema setup and seeding. Defaults to one minute.
	SchemaTimeout time.Duration
}

// InitRuntime connects to the database, applies the schema, dials Redis and
// seeds an empty development database when SEED_PRESET is set. The Redis
// client is nil when Redis is skipped or unreachable.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	timeout := opts.SchemaTimeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if !opts.SkipSchema {
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			_ = database.Close(db)
			return nil, nil, fmt.Errorf("schema setup failed: %w", err)
		}
		if err := seedIfEmpty(ctx, cfg, db); err != nil {
			_ = database.Close(db)
			return nil, nil, fmt.Errorf("development seed failed: %w", err)
		}
	}

	var rdb *redis.Client
	if !opts.SkipRedis {
		rdb = cache.InitRedis(cfg.RedisURL)
	}
	return db, rdb, nil
}

func seedIfEmpty(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg.SeedPreset == "" || cfg.IsProduction() {
		return nil
	}

	var users int64
	if err := db.WithContext(ctx).Model(&models.User{}).Count(&users).Error; err != nil {
		return err
	}
	if users > 0 {
		middleware.Logger.Debug("database already populated, skipping seed", slog.Int64("users", users))
		return nil
	}

	preset, err := seed.LoadPreset(cfg.SeedPreset)
	if err != nil {
		return err
	}
	seeder, err := seed.NewSeeder(db, preset, seed.Options{})
	if err != nil {
		return err
	}
	_, err = seeder.Seed(ctx)
	return err
}
