package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"neetprep/backend/config"
	"neetprep/backend/models"
	"neetprep/backend/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// racingUsers hides existing users from the lookups, as a concurrent
// registration would, and can fail login bookkeeping.
type racingUsers struct {
	*repository.MemoryUserRepository
	hideLookups bool
	loginErr    error
}

func (r *racingUsers) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if r.hideLookups {
		return nil, repository.ErrNotFound
	}
	return r.MemoryUserRepository.FindByUsername(ctx, username)
}

func (r *racingUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if r.hideLookups {
		return nil, repository.ErrNotFound
	}
	return r.MemoryUserRepository.FindByEmail(ctx, email)
}

func (r *racingUsers) RecordLogin(ctx context.Context, userID uint, at time.Time) error {
	if r.loginErr != nil {
		return r.loginErr
	}
	return r.MemoryUserRepository.RecordLogin(ctx, userID, at)
}

func newAuthApp(users repository.UserRepository, logger *log.Logger) *fiber.App {
	cfg := &config.Config{JWTSecret: "test-secret", JWTTTL: time.Hour}
	ac := NewAuthController(users, cfg, logger)
	app := fiber.New()
	app.Post("/register", ac.Register)
	app.Post("/login", ac.Login)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body map[string]string) int {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	return resp.StatusCode
}

func TestRegisterDuplicateOnCreateIsConflict(t *testing.T) {
	users := &racingUsers{MemoryUserRepository: repository.NewMemoryUserRepository()}
	app := newAuthApp(users, log.New(&bytes.Buffer{}, "", 0))

	status := postJSON(t, app, "/register", map[string]string{
		"username": "alice", "email": "alice@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusCreated, status)

	users.hideLookups = true
	status = postJSON(t, app, "/register", map[string]string{
		"username": "Alice", "email": "other@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusConflict, status)
}

func TestLoginLogsHistoryFailure(t *testing.T) {
	users := &racingUsers{MemoryUserRepository: repository.NewMemoryUserRepository()}
	var out bytes.Buffer
	app := newAuthApp(users, log.New(&out, "", 0))

	require.Equal(t, http.StatusCreated, postJSON(t, app, "/register", map[string]string{
		"username": "ravi", "email": "ravi@example.com", "password": "password123",
	}))

	users.loginErr = errors.New("history table unavailable")
	status := postJSON(t, app, "/login", map[string]string{"username": "ravi", "password": "password123"})

	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, out.String(), "history table unavailable")
}
