package service

import (
	"context"
	"log/slog"
	"strings"

	"blogapi/internal/middleware"
	"blogapi/internal/models"
	"blogapi/internal/observability"
	"blogapi/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

const invalidCredentials = "Invalid credentials"

// dummyHash is compared against when the username is unknown so a failed
// lookup costs about as much as a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("blogapi-timing-equalizer"), bcrypt.DefaultCost)

type UserService struct {
	store      repository.Store
	bcryptCost int
}

func NewUserService(store repository.Store) *UserService {
	return &UserService{store: store, bcryptCost: bcrypt.DefaultCost}
}

// WithBcryptCost overrides the hashing cost; tests use bcrypt.MinCost.
func (s *UserService) WithBcryptCost(cost int) *UserService {
	s.bcryptCost = cost
	return s
}

// Create registers an active user. A duplicate username or email is a
// ConflictError naming the clashing field.
func (s *UserService) Create(ctx context.Context, username, email, password string) (user *models.User, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "UserService", "Create")
	defer func() { observability.EndSpan(span, err) }()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, internal(ctx, "hash password", err)
	}

	user = &models.User{
		Username:     strings.TrimSpace(username),
		Email:        strings.TrimSpace(email),
		PasswordHash: string(hash),
		IsActive:     true,
	}
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		return tx.Users().Create(ctx, user)
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			observability.AuthEvents.WithLabelValues("register", "duplicate").Inc()
			return nil, duplicateUserError(err)
		}
		return nil, internal(ctx, "create user", err)
	}

	observability.AuthEvents.WithLabelValues("register", "success").Inc()
	middleware.Logger.InfoContext(ctx, "user created", slog.Uint64("user_id", uint64(user.ID)))
	return user, nil
}

func duplicateUserError(err error) error {
	msg := "User already exists"
	switch repository.UniqueViolationColumn(err) {
	case "username":
		msg = "Username already exists"
	case "email":
		msg = "Email already exists"
	}
	return models.NewConflictError(msg, err).WithField("registration")
}

// Authenticate returns the user for valid credentials. Unknown users,
// wrong passwords and inactive accounts all fail the same way.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (user *models.User, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "UserService", "Authenticate")
	defer func() { observability.EndSpan(span, err) }()

	user, err = s.store.Users().GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			observability.AuthEvents.WithLabelValues("login", "failure").Inc()
			return nil, models.NewUnauthorizedError(invalidCredentials)
		}
		return nil, internal(ctx, "authenticate", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil || !user.IsActive {
		observability.AuthEvents.WithLabelValues("login", "failure").Inc()
		return nil, models.NewUnauthorizedError(invalidCredentials)
	}

	observability.AuthEvents.WithLabelValues("login", "success").Inc()
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		return nil, internal(ctx, "get user", err)
	}
	return user, nil
}

// SetActive enables or disables login for the user.
func (s *UserService) SetActive(ctx context.Context, id uint, active bool) (*models.User, error) {
	var user *models.User
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.Users().SetActive(ctx, id, active); err != nil {
			return err
		}
		var err error
		user, err = tx.Users().GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, internal(ctx, "set user active", err)
	}
	middleware.Logger.InfoContext(ctx, "user activation changed",
		slog.Uint64("user_id", uint64(id)),
		slog.Bool("active", active),
	)
	return user, nil
}
