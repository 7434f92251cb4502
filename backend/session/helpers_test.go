package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync/atomic"
	"testing"

	"neetprep/backend/models"
	"neetprep/backend/repository"
)

// fixedQuestions returns a pre-selected question sequence so engine tests do
// not depend on repository sampling.
type fixedQuestions struct {
	questions []models.Question
	err       error
	filters   []repository.QuestionFilter
}

func (f *fixedQuestions) All(ctx context.Context) ([]models.Question, error) {
	return append([]models.Question(nil), f.questions...), f.err
}

func (f *fixedQuestions) Get(ctx context.Context, id uint) (*models.Question, error) {
	for _, q := range f.questions {
		if q.ID == id {
			q := q
			return &q, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fixedQuestions) Fetch(ctx context.Context, filter repository.QuestionFilter) ([]models.Question, error) {
	f.filters = append(f.filters, filter)
	if f.err != nil {
		return nil, f.err
	}
	out := append([]models.Question(nil), f.questions...)
	if len(out) > filter.Count {
		out = out[:filter.Count]
	}
	return out, nil
}

func (f *fixedQuestions) Create(ctx context.Context, q *models.Question) error {
	return errors.New("read only")
}

func (f *fixedQuestions) Update(ctx context.Context, id uint, patch models.QuestionPatch) (*models.Question, error) {
	return nil, errors.New("read only")
}

func (f *fixedQuestions) Delete(ctx context.Context, id uint) error {
	return errors.New("read only")
}

// flakyAttempts fails the next n saves before delegating to the memory store.
type flakyAttempts struct {
	repository.AttemptStore
	failures atomic.Int32
	saves    atomic.Int32
}

func newFlakyAttempts(failures int32) *flakyAttempts {
	f := &flakyAttempts{AttemptStore: repository.NewMemoryAttemptStore()}
	f.failures.Store(failures)
	return f
}

func (f *flakyAttempts) Save(ctx context.Context, attempt models.TestAttempt) (*models.TestAttempt, error) {
	f.saves.Add(1)
	if f.failures.Load() > 0 {
		f.failures.Add(-1)
		return nil, errors.New("connection refused")
	}
	return f.AttemptStore.Save(ctx, attempt)
}

func physicsQuestions(n int) []models.Question {
	qs := make([]models.Question, n)
	for i := range qs {
		qs[i] = models.Question{
			ID:   uint(i + 1),
			Text: fmt.Sprintf("Physics question %d", i+1),
			Options: models.Options{
				A: "first", B: "second", C: "third", D: "fourth",
			},
			CorrectAnswer: models.OptionA,
			Subject:       models.SubjectPhysics,
			Chapter:       "Kinematics",
			Difficulty:    models.DifficultyMedium,
		}
	}
	return qs
}

func physicsConfig(count int) Configuration {
	return Configuration{
		Subject:       models.SubjectPhysics,
		QuestionCount: count,
		Difficulty:    models.DifficultyMixed,
	}
}

func newTestEngine(t *testing.T, questions repository.QuestionRepository, attempts repository.AttemptStore, opts ...Option) *Engine {
	t.Helper()
	base := []Option{
		WithQuestionBounds(1, 50),
		WithLogger(log.New(io.Discard, "", 0)),
	}
	return NewEngine(questions, attempts, append(base, opts...)...)
}
