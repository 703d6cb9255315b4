package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"blogapi/internal/middleware"
	"blogapi/internal/models"

	"gorm.io/gorm"
)

// Summary counts what a seeding run produced.
type Summary struct {
	Users    int
	Posts    int
	Comments int
	Votes    int
	Duration time.Duration
}

func (s Summary) String() string {
	return fmt.Sprintf("%d users, %d posts, %d comments, %d votes in %s",
		s.Users, s.Posts, s.Comments, s.Votes, s.Duration.Round(time.Millisecond))
}

// Seeder fills the database according to a Preset.
type Seeder struct {
	db      *gorm.DB
	preset  Preset
	opts    Options
	factory *Factory
}

// NewSeeder validates the preset and binds a factory to db.
func NewSeeder(db *gorm.DB, preset Preset, opts Options) (*Seeder, error) {
	if err := preset.Validate(); err != nil {
		return nil, err
	}
	return &Seeder{db: db, preset: preset, opts: opts}, nil
}

// Seed creates accounts, users, posts, comments and votes. Unless running
// dry, everything is written in a single transaction.
func (s *Seeder) Seed(ctx context.Context) (Summary, error) {
	start := time.Now()
	middleware.Logger.Info("Starting database seeding",
		slog.String("preset", s.preset.Name),
		slog.Int("users", s.preset.Users),
		slog.Int("posts_per_user", s.preset.PostsPerUser),
		slog.Bool("dry_run", s.opts.DryRun),
	)

	var summary Summary
	run := func(tx *gorm.DB) error {
		s.factory = NewFactory(tx, s.opts)
		var err error
		summary, err = s.populate()
		return err
	}

	var err error
	if s.opts.DryRun {
		err = run(s.db.WithContext(ctx))
	} else {
		err = s.db.WithContext(ctx).Transaction(run)
	}
	if err != nil {
		return Summary{}, err
	}

	summary.Duration = time.Since(start)
	middleware.Logger.Info("Database seeding completed", slog.String("summary", summary.String()))
	return summary, nil
}

func (s *Seeder) populate() (Summary, error) {
	var sum Summary
	f := s.factory
	p := s.preset

	users := make([]*models.User, 0, len(p.Accounts)+p.Users)
	for _, acc := range p.Accounts {
		u, err := f.CreateUser(func(u *models.User) {
			u.Username = acc.Username
			u.Email = acc.Email
			if acc.Password != "" {
				u.PasswordHash = acc.Password
			}
			u.IsActive = !acc.Inactive
		})
		if err != nil {
			return sum, fmt.Errorf("create account %s: %w", acc.Username, err)
		}
		users = append(users, u)
	}
	for i := 0; i < p.Users; i++ {
		u, err := f.CreateUser()
		if err != nil {
			return sum, fmt.Errorf("create user: %w", err)
		}
		users = append(users, u)
	}
	sum.Users = len(users)
	middleware.Logger.Debug("Users created", slog.Int("count", sum.Users))

	active := make([]*models.User, 0, len(users))
	for _, u := range users {
		if u.IsActive {
			active = append(active, u)
		}
	}
	if len(active) == 0 {
		return sum, nil
	}

	for _, author := range active {
		for i := 0; i < p.PostsPerUser; i++ {
			post, err := f.CreatePost(author, p.MaxDays)
			if err != nil {
				return sum, fmt.Errorf("create post: %w", err)
			}
			sum.Posts++

			for c := f.between(p.Comments.Min, p.Comments.Max); c > 0; c-- {
				commenter := active[f.rng.Intn(len(active))]
				hidden := f.chance(p.InactiveCommentRatio)
				if _, err := f.CreateComment(commenter, post, func(cm *models.Comment) {
					cm.IsActive = !hidden
				}); err != nil {
					return sum, fmt.Errorf("create comment: %w", err)
				}
				sum.Comments++
			}

			// One vote per user per post.
			for _, voter := range active {
				if !f.chance(p.VoteProbability) {
					continue
				}
				if _, err := f.CreateVote(voter, post, f.chance(p.UpvoteRatio)); err != nil {
					return sum, fmt.Errorf("create vote: %w", err)
				}
				sum.Votes++
			}
		}
	}
	return sum, nil
}

// Clean removes all blog data, children first.
func Clean(ctx context.Context, db *gorm.DB) error {
	middleware.Logger.Info("Clearing existing data")
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range []any{&models.Vote{}, &models.Comment{}, &models.Post{}, &models.User{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(table).Error; err != nil {
				return fmt.Errorf("clear %T: %w", table, err)
			}
		}
		return nil
	})
}
