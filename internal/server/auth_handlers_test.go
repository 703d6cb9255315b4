package server

import (
	"net/http"
	"testing"

	"blogapi/internal/models"
	"blogapi/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authData struct {
	AccessToken string      `json:"access_token"`
	User        models.User `json:"user"`
}

func TestRegisterLoginMe(t *testing.T) {
	e := newTestEnv(t)

	status, env := e.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"username": "alice", "email": "alice@example.com", "password": "secret1",
	}, "")
	require.Equal(t, http.StatusCreated, status, env.Message)
	assert.Equal(t, "User registered successfully", env.Message)
	registered := decode[authData](t, env.Data)
	assert.NotEmpty(t, registered.AccessToken)
	assert.Equal(t, "alice", registered.User.Username)
	assert.True(t, registered.User.IsActive)
	assert.NotContains(t, string(env.Data), "password")

	status, env = e.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "alice", "password": "secret1",
	}, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Login successful", env.Message)
	login := decode[authData](t, env.Data)

	status, env = e.do(t, http.MethodGet, "/api/auth/me", nil, login.AccessToken)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "User information retrieved", env.Message)
	assert.Equal(t, "alice", decode[models.User](t, env.Data).Username)
}

func TestRegister_Duplicates(t *testing.T) {
	e := newTestEnv(t)
	testutil.CreateUser(t, e.db, "alice")

	tests := []struct {
		name     string
		username string
		email    string
		want     string
	}{
		{"same username", "alice", "other@example.com", "Username already exists"},
		{"same email", "bob", "alice@example.com", "Email already exists"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := e.do(t, http.MethodPost, "/api/auth/register", map[string]string{
				"username": tt.username, "email": tt.email, "password": "secret1",
			}, "")
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, "Registration failed", env.Message)
			assert.Equal(t, map[string]string{"registration": tt.want}, env.Errors)
		})
	}
}

func TestRegister_BadInput(t *testing.T) {
	e := newTestEnv(t)

	tests := []struct {
		name        string
		body        any
		wantMessage string
		wantField   string
	}{
		{"empty body", "", "No data provided", "request"},
		{"empty object", "{}", "No data provided", "request"},
		{"not an object", "[1,2]", "No data provided", "request"},
		{"wrong type", `{"username": 5, "email": "a@b.co", "password": "secret1"}`, "Validation failed", "username"},
		{"short password", map[string]string{"username": "alice", "email": "alice@example.com", "password": "123"}, "Validation failed", "password"},
		{"bad username", map[string]string{"username": "a-b", "email": "alice@example.com", "password": "secret1"}, "Validation failed", "username"},
		{"missing email", map[string]string{"username": "alice", "password": "secret1"}, "Validation failed", "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := e.do(t, http.MethodPost, "/api/auth/register", tt.body, "")
			assert.Equal(t, http.StatusBadRequest, status)
			assert.False(t, env.Success)
			assert.Equal(t, tt.wantMessage, env.Message)
			assert.Contains(t, env.Errors, tt.wantField)
		})
	}
}

func TestLogin_Failures(t *testing.T) {
	e := newTestEnv(t)
	testutil.CreateUser(t, e.db, "alice")

	for _, creds := range []map[string]string{
		{"username": "alice", "password": "wrong-password"},
		{"username": "nobody", "password": "password123"},
	} {
		status, env := e.do(t, http.MethodPost, "/api/auth/login", creds, "")
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "Login failed", env.Message)
		assert.Equal(t, map[string]string{"authentication": "Invalid credentials"}, env.Errors)
	}

	status, env := e.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "alice"}, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, env.Errors, "password")
}

func TestLogoutRevokesToken(t *testing.T) {
	e := newTestEnv(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	token := e.token(t, alice)

	status, env := e.do(t, http.MethodPost, "/api/auth/logout", nil, token)
	require.Equal(t, http.StatusOK, status, env.Message)

	status, env = e.do(t, http.MethodGet, "/api/auth/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Token has been revoked", env.Errors["auth"])

	// A fresh token still works.
	status, _ = e.do(t, http.MethodGet, "/api/auth/me", nil, e.token(t, alice))
	assert.Equal(t, http.StatusOK, status)
}

func TestMe_RejectsInactiveUser(t *testing.T) {
	e := newTestEnv(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	token := e.token(t, alice)

	_, err := e.srv.users.SetActive(t.Context(), alice.ID, false)
	require.NoError(t, err)

	status, env := e.do(t, http.MethodGet, "/api/auth/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "User not found or inactive", env.Message)
}

func TestGetUserProfile(t *testing.T) {
	e := newTestEnv(t)
	alice := testutil.CreateUser(t, e.db, "alice")

	status, env := e.do(t, http.MethodGet, "/api/users/"+itoa(alice.ID), nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "User profile retrieved", env.Message)
	assert.Equal(t, "alice@example.com", decode[models.User](t, env.Data).Email)

	status, env = e.do(t, http.MethodGet, "/api/users/9999", nil, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "User not found", env.Message)
	assert.Equal(t, "User not found", env.Errors["user"])
}
