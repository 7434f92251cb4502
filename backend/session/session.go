package session

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"sync"
	"time"

	"neetprep/backend/models"
	"neetprep/backend/repository"
)

type State string

const (
	StateConfiguring State = "configuring"
	StateLoading     State = "loading"
	StateInProgress  State = "in_progress"
	StateSubmitting  State = "submitting"
	StateCompleted   State = "completed"
	StateFailed      State = "failed"
)

const (
	MsgSubmitted = "Test submitted successfully!"
	MsgTimeUp    = "Time is up! Submitting your test..."
)

// Session is one test attempt from question delivery to scored result.
// All methods are safe for concurrent use; operations are applied one at a
// time in arrival order.
type Session struct {
	ID     string
	UserID string

	engine *Engine

	mu         sync.Mutex
	state      State
	cfg        *Configuration
	subject    models.Subject
	difficulty models.Difficulty
	startTime  time.Time
	questions  []models.Question
	answers    map[uint]models.OptionLabel
	cursor     int
	timer      *Timer
	running    bool
	completion models.CompletionType
	attempt    *models.TestAttempt
	failure    *Error

	finished   chan struct{}
	finishOnce sync.Once
}

func newSession(e *Engine, id, userID string, cfg Configuration) *Session {
	return &Session{
		ID:         id,
		UserID:     userID,
		engine:     e,
		state:      StateConfiguring,
		cfg:        &cfg,
		subject:    cfg.Subject,
		difficulty: cfg.Difficulty,
		startTime:  cfg.StartTime,
		answers:    make(map[uint]models.OptionLabel),
		finished:   make(chan struct{}),
	}
}

func (s *Session) load(ctx context.Context) error {
	s.mu.Lock()
	s.state = StateLoading
	filter := repository.QuestionFilter{
		Subject:    s.cfg.Subject,
		Chapter:    s.cfg.Chapter,
		Difficulty: s.cfg.Difficulty,
		Count:      s.cfg.QuestionCount,
	}
	s.mu.Unlock()

	questions, err := s.engine.questions.Fetch(ctx, filter)
	if err != nil {
		return s.fail(ctx, newError(KindRepository, err.Error(), err))
	}
	if len(questions) == 0 {
		return s.fail(ctx, newError(KindRepository, MsgNoQuestions, nil))
	}
	if len(questions) > filter.Count {
		questions = questions[:filter.Count]
	}

	s.mu.Lock()
	s.questions = append([]models.Question(nil), questions...)
	for _, q := range s.questions {
		s.answers[q.ID] = ""
	}
	s.cursor = 0
	s.state = StateInProgress
	s.running = true
	s.timer = StartTimer(s.engine.duration, s.engine.tick, s.expire)
	s.mu.Unlock()

	s.engine.started(ctx, s)
	return nil
}

func (s *Session) fail(ctx context.Context, err *Error) error {
	s.mu.Lock()
	s.state = StateFailed
	s.failure = err
	s.stopTimerLocked()
	s.mu.Unlock()

	s.engine.failed(ctx, s, err)
	s.finish()
	return err
}

// SelectAnswer records option for questionID, replacing any earlier choice.
func (s *Session) SelectAnswer(questionID uint, option models.OptionLabel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateInProgress {
		return s.closedLocked()
	}
	if _, ok := s.answers[questionID]; !ok {
		return ErrUnknownQuestion
	}
	option = models.OptionLabel(strings.ToUpper(strings.TrimSpace(string(option))))
	if !option.Valid() {
		return ErrInvalidOption
	}
	s.answers[questionID] = option
	return nil
}

// Advance moves the cursor to the next question. It is a no-op on the last one.
func (s *Session) Advance() (int, error) {
	return s.move(1)
}

// Retreat moves the cursor to the previous question. It is a no-op on the first one.
func (s *Session) Retreat() (int, error) {
	return s.move(-1)
}

func (s *Session) move(delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateInProgress {
		return s.cursor, s.closedLocked()
	}
	next := s.cursor + delta
	if next >= 0 && next < len(s.questions) {
		s.cursor = next
	}
	return s.cursor, nil
}

// RequestSubmit scores and persists the session regardless of how many
// questions are answered. After a StoreError it may be called again to
// retry with the answers already recorded.
func (s *Session) RequestSubmit(ctx context.Context) (*models.TestAttempt, error) {
	return s.submit(ctx, models.CompletionManual)
}

// TimerExpired is the automatic submission fired when the allotment runs out.
func (s *Session) TimerExpired(ctx context.Context) (*models.TestAttempt, error) {
	return s.submit(ctx, models.CompletionTimeout)
}

func (s *Session) expire() {
	// The outcome is logged and reported through hooks.
	_, _ = s.TimerExpired(context.Background())
}

func (s *Session) submit(ctx context.Context, completion models.CompletionType) (*models.TestAttempt, error) {
	s.mu.Lock()
	retry := s.state == StateFailed && s.failure != nil && s.failure.Kind == KindStore &&
		completion == models.CompletionManual
	if s.state != StateInProgress && !retry {
		err := s.closedLocked()
		s.mu.Unlock()
		return nil, err
	}

	s.state = StateSubmitting
	s.stopTimerLocked()
	if !retry {
		s.completion = completion
	}

	score := Evaluate(s.questions, s.answers)
	attempt := models.TestAttempt{
		UserID:         s.UserID,
		Subject:        s.subject,
		Difficulty:     s.difficulty,
		TotalQuestions: len(s.questions),
		CorrectAnswers: score.Correct,
		WrongAnswers:   score.Wrong,
		Unattempted:    score.Unattempted,
		Score:          score.Final,
		TimeTaken:      ElapsedSeconds(s.startTime, s.engine.now()),
		CompletionType: s.completion,
	}
	s.mu.Unlock()

	saved, err := s.engine.attempts.Save(ctx, attempt)

	s.mu.Lock()
	if err != nil {
		failure := newError(KindStore, MsgSubmissionFailed, err)
		s.state = StateFailed
		s.failure = failure
		s.mu.Unlock()

		s.engine.failed(ctx, s, failure)
		s.finish()
		return nil, failure
	}

	s.state = StateCompleted
	s.failure = nil
	s.cfg = nil
	s.attempt = saved
	result := *saved
	s.mu.Unlock()

	s.engine.completed(ctx, s, result)
	s.finish()
	return &result, nil
}

// Abandon stops the timer of a session that is still in progress and moves
// it to Failed. A submission already in flight is left to finish.
func (s *Session) Abandon() {
	s.mu.Lock()
	s.stopTimerLocked()
	if s.state != StateInProgress {
		s.mu.Unlock()
		return
	}
	failure := newError(KindSessionClosed, MsgAbandoned, nil)
	s.state = StateFailed
	s.failure = failure
	s.cfg = nil
	s.mu.Unlock()

	s.engine.failed(context.Background(), s, failure)
	s.finish()
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.running = false
}

func (s *Session) closedLocked() *Error {
	if s.failure != nil && s.failure.Message == MsgAbandoned {
		return newError(KindSessionClosed, MsgAbandoned, nil)
	}
	return newError(KindSessionClosed, fmt.Sprintf("session is %s", s.state), nil)
}

func (s *Session) finish() {
	s.finishOnce.Do(func() { close(s.finished) })
}

// Finished is closed the first time the session reaches Completed or Failed.
func (s *Session) Finished() <-chan struct{} {
	return s.finished
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Failure is the error that put the session in Failed, if any.
func (s *Session) Failure() *Error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failure
}

// Attempt is the persisted result once the session is Completed.
func (s *Session) Attempt() *models.TestAttempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attempt == nil {
		return nil
	}
	a := *s.attempt
	return &a
}

func (s *Session) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Answers returns a copy of the recorded answers; "" means no selection.
func (s *Session) Answers() map[uint]models.OptionLabel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.answers)
}

// Remaining is the number of seconds left on the timer.
func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remainingLocked()
}

func (s *Session) remainingLocked() int {
	if s.timer == nil {
		return s.engine.duration
	}
	return s.timer.Remaining()
}

// Configuration returns the test configuration; ok is false once it has
// been discarded after completion.
func (s *Session) Configuration() (Configuration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg == nil {
		return Configuration{}, false
	}
	return *s.cfg, true
}
