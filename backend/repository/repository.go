// Package repository defines the record-store contracts the rest of the
// backend depends on, with an in-memory implementation for local and offline
// development and a gorm implementation backed by postgres.
package repository

import (
	"context"
	"errors"
	"time"

	"neetprep/backend/models"
)

var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when a username or email is already registered.
// Both compare case-insensitively.
var ErrDuplicate = errors.New("already taken")

// QuestionFilter selects questions for a test. Chapter and Difficulty are
// optional; DifficultyMixed (or empty) applies no difficulty filter.
type QuestionFilter struct {
	Subject    models.Subject
	Chapter    string
	Difficulty models.Difficulty
	Count      int
}

type QuestionRepository interface {
	All(ctx context.Context) ([]models.Question, error)
	Get(ctx context.Context, id uint) (*models.Question, error)
	// Fetch returns at most filter.Count randomly sampled matching questions.
	// Callers must not rely on the order or on two calls returning the same set.
	Fetch(ctx context.Context, filter QuestionFilter) ([]models.Question, error)
	Create(ctx context.Context, q *models.Question) error
	Update(ctx context.Context, id uint, patch models.QuestionPatch) (*models.Question, error)
	Delete(ctx context.Context, id uint) error
}

type AttemptStore interface {
	// Save persists a finished attempt and returns the stored copy with its
	// identity and completion timestamp assigned.
	Save(ctx context.Context, attempt models.TestAttempt) (*models.TestAttempt, error)
	Get(ctx context.Context, id uint) (*models.TestAttempt, error)
	All(ctx context.Context) ([]models.TestAttempt, error)
	// ListByUser returns the user's attempts, most recent first.
	ListByUser(ctx context.Context, userID string) ([]models.TestAttempt, error)
	Delete(ctx context.Context, id uint) error
}

type ProgressStore interface {
	// Get returns ErrNotFound if the user has no progress yet.
	Get(ctx context.Context, userID string) (*models.UserProgress, error)
	Upsert(ctx context.Context, progress *models.UserProgress) error
	Delete(ctx context.Context, userID string) error
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	Get(ctx context.Context, id uint) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	RecordLogin(ctx context.Context, userID uint, at time.Time) error
}

// Stores groups one implementation of every contract.
type Stores struct {
	Questions QuestionRepository
	Attempts  AttemptStore
	Progress  ProgressStore
	Users     UserRepository
}

func (f QuestionFilter) matchesDifficulty(d models.Difficulty) bool {
	return f.Difficulty == "" || f.Difficulty == models.DifficultyMixed || f.Difficulty == d
}
