package service

import (
	"context"
	"testing"

	"blogapi/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_CreateAndAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.users.Create(ctx, " carol ", "carol@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "carol", user.Username)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "secret1", user.PasswordHash)

	got, err := f.users.Authenticate(ctx, "carol", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestUserService_DuplicateRegistration(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.users.Create(ctx, "dave", "dave@example.com", "secret1")
	require.NoError(t, err)

	tests := []struct {
		name     string
		username string
		email    string
		want     string
	}{
		{"same username", "dave", "other@example.com", "Username already exists"},
		{"same email", "dave2", "dave@example.com", "Email already exists"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.users.Create(ctx, tt.username, tt.email, "secret1")
			require.Error(t, err)
			appErr := models.AsAppError(err)
			assert.Equal(t, models.CodeConflict, appErr.Code)
			assert.Equal(t, tt.want, appErr.Message)
			assert.Equal(t, map[string]string{"registration": tt.want}, appErr.ErrorMap())
		})
	}
}

func TestUserService_AuthenticateFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	erin := f.user(t, "erin")

	_, err := f.users.Authenticate(ctx, "nobody", "password123")
	assert.Equal(t, "Invalid credentials", models.AsAppError(err).Message)

	_, err = f.users.Authenticate(ctx, "erin", "wrong-password")
	assert.True(t, models.HasCode(err, models.CodeUnauthorized))

	_, err = f.users.SetActive(ctx, erin.ID, false)
	require.NoError(t, err)
	_, err = f.users.Authenticate(ctx, "erin", "password123")
	assert.True(t, models.HasCode(err, models.CodeUnauthorized), "inactive users cannot log in")
}

func TestUserService_GetByIDAndSetActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.users.GetByID(ctx, 12345)
	assert.Equal(t, "User not found", models.AsAppError(err).Message)

	frank := f.user(t, "frank")
	updated, err := f.users.SetActive(ctx, frank.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	updated, err = f.users.SetActive(ctx, frank.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.IsActive)

	_, err = f.users.SetActive(ctx, 999, true)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}
