// Package session implements the test-attempt lifecycle: question delivery,
// answer capture, timed submission and persistence of the scored result.
package session

import (
	"context"
	"log"
	"time"

	"neetprep/backend/models"
	"neetprep/backend/repository"

	"github.com/google/uuid"
)

// Hooks observe session lifecycle events. Any field may be nil. Hooks run
// after the transition and outside the session lock; they cannot change the
// outcome.
type Hooks struct {
	Started   func(ctx context.Context, view View)
	Completed func(ctx context.Context, attempt models.TestAttempt)
	Failed    func(ctx context.Context, view View, err *Error)
}

type Engine struct {
	questions repository.QuestionRepository
	attempts  repository.AttemptStore
	hooks     []Hooks
	logger    *log.Logger

	now          func() time.Time
	newID        func() string
	duration     int
	tick         time.Duration
	minQuestions int
	maxQuestions int
}

type Option func(*Engine)

func WithLogger(l *log.Logger) Option { return func(e *Engine) { e.logger = l } }

func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// WithDuration sets the time allotment in ticks and the tick interval.
func WithDuration(ticks int, interval time.Duration) Option {
	return func(e *Engine) {
		e.duration = ticks
		e.tick = interval
	}
}

func WithQuestionBounds(minQuestions, maxQuestions int) Option {
	return func(e *Engine) {
		e.minQuestions = minQuestions
		e.maxQuestions = maxQuestions
	}
}

func WithHooks(h Hooks) Option { return func(e *Engine) { e.hooks = append(e.hooks, h) } }

func NewEngine(questions repository.QuestionRepository, attempts repository.AttemptStore, opts ...Option) *Engine {
	e := &Engine{
		questions:    questions,
		attempts:     attempts,
		logger:       log.Default(),
		now:          time.Now,
		newID:        uuid.NewString,
		duration:     DefaultDuration,
		tick:         time.Second,
		minQuestions: DefaultMinQuestions,
		maxQuestions: DefaultMaxQuestions,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Duration is the per-session allotment in ticks.
func (e *Engine) Duration() int { return e.duration }

// Start validates cfg and loads its question set. A ConfigurationError is
// returned with a nil session. Otherwise the session is returned in either
// InProgress or Failed, the latter together with its RepositoryError.
func (e *Engine) Start(ctx context.Context, userID string, cfg Configuration) (*Session, error) {
	if userID == "" {
		return nil, newError(KindConfiguration, "missing user", nil)
	}
	if err := cfg.normalize(e.minQuestions, e.maxQuestions); err != nil {
		return nil, err
	}
	if cfg.StartTime.IsZero() {
		cfg.StartTime = e.now()
	}

	s := newSession(e, e.newID(), userID, cfg)
	if err := s.load(ctx); err != nil {
		return s, err
	}
	return s, nil
}

func (e *Engine) started(ctx context.Context, s *Session) {
	view := s.View()
	e.logger.Printf("session %s: started for user %s (%s, %d questions)", s.ID, s.UserID, view.Subject, view.Total)
	for _, h := range e.hooks {
		if h.Started != nil {
			h.Started(ctx, view)
		}
	}
}

func (e *Engine) completed(ctx context.Context, s *Session, attempt models.TestAttempt) {
	e.logger.Printf("session %s: completed (%s), attempt %d score %.2f/%d",
		s.ID, attempt.CompletionType, attempt.ID, attempt.Score, attempt.TotalQuestions)
	for _, h := range e.hooks {
		if h.Completed != nil {
			h.Completed(ctx, attempt)
		}
	}
}

func (e *Engine) failed(ctx context.Context, s *Session, err *Error) {
	e.logger.Printf("session %s: failed: %v", s.ID, err)
	view := s.View()
	for _, h := range e.hooks {
		if h.Failed != nil {
			h.Failed(ctx, view, err)
		}
	}
}
