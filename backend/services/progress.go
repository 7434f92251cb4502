// Package services derives user-facing aggregates from stored attempts:
// the rolling per-user progress record and dashboard statistics.
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"neetprep/backend/models"
	"neetprep/backend/repository"
	"neetprep/backend/session"
)

type ProgressService struct {
	attempts repository.AttemptStore
	progress repository.ProgressStore
	logger   *log.Logger
}

func NewProgressService(attempts repository.AttemptStore, progress repository.ProgressStore, logger *log.Logger) *ProgressService {
	if logger == nil {
		logger = log.Default()
	}
	return &ProgressService{attempts: attempts, progress: progress, logger: logger}
}

// Get returns the user's progress, or an empty record if they have none yet.
func (s *ProgressService) Get(ctx context.Context, userID string) (*models.UserProgress, error) {
	p, err := s.progress.Get(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return &models.UserProgress{UserID: userID, Subjects: []models.SubjectProgress{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	return p, nil
}

// RecordAttempt folds a freshly saved attempt into the owner's progress.
func (s *ProgressService) RecordAttempt(ctx context.Context, attempt models.TestAttempt) (*models.UserProgress, error) {
	current, err := s.progress.Get(ctx, attempt.UserID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("load progress: %w", err)
	}

	next := Fold(current, attempt)
	if err := s.progress.Upsert(ctx, next); err != nil {
		return nil, fmt.Errorf("save progress: %w", err)
	}
	return next, nil
}

// Rebuild recomputes the user's progress from every stored attempt. It is
// used after attempts are deleted.
func (s *ProgressService) Rebuild(ctx context.Context, userID string) (*models.UserProgress, error) {
	attempts, err := s.attempts.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	if len(attempts) == 0 {
		if err := s.progress.Delete(ctx, userID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("delete progress: %w", err)
		}
		return &models.UserProgress{UserID: userID, Subjects: []models.SubjectProgress{}}, nil
	}

	sort.SliceStable(attempts, func(i, j int) bool {
		return attempts[i].CompletedAt.Before(attempts[j].CompletedAt)
	})

	existing, err := s.progress.Get(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	var p *models.UserProgress
	for _, a := range attempts {
		p = Fold(p, a)
	}
	if existing != nil {
		p.ID = existing.ID
	}
	if err := s.progress.Upsert(ctx, p); err != nil {
		return nil, fmt.Errorf("save progress: %w", err)
	}
	return p, nil
}

// Hooks keeps progress current as sessions complete. A failed update is
// logged; the session stays Completed.
func (s *ProgressService) Hooks() session.Hooks {
	return session.Hooks{
		Completed: func(ctx context.Context, attempt models.TestAttempt) {
			if _, err := s.RecordAttempt(context.WithoutCancel(ctx), attempt); err != nil {
				s.logger.Printf("progress update for user %s failed: %v", attempt.UserID, err)
			}
		},
	}
}

// Fold returns a copy of p with attempt applied. p may be nil.
func Fold(p *models.UserProgress, attempt models.TestAttempt) *models.UserProgress {
	out := p.Clone()
	if out == nil {
		out = &models.UserProgress{UserID: attempt.UserID}
	}

	sp := out.Subject(attempt.Subject)
	sum := sp.Average*float64(sp.Tests) + attempt.Percentage()
	sp.Tests++
	sp.Average = models.ClampPercent(sum / float64(sp.Tests))

	out.TotalTests++

	completed := attempt.CompletedAt.UTC()
	if completed.IsZero() {
		completed = time.Now().UTC()
	}
	switch days := daysBetween(out.LastTestDate, completed); {
	case out.LastTestDate.IsZero() || out.Streak == 0:
		out.Streak = 1
		out.LastTestDate = completed
	case days < 0:
		// an older attempt does not move the streak
	case days == 0:
		out.LastTestDate = completed
	case days == 1:
		out.Streak++
		out.LastTestDate = completed
	default:
		out.Streak = 1
		out.LastTestDate = completed
	}
	return out
}

// daysBetween counts UTC calendar days from a to b.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}
