package repository

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"neetprep/backend/models"
)

// NewMemoryStores builds the in-memory backend. Questions are seeded from
// the embedded question bank.
func NewMemoryStores() (*Stores, error) {
	questions, err := SeedQuestions()
	if err != nil {
		return nil, err
	}
	return &Stores{
		Questions: NewMemoryQuestionRepository(questions),
		Attempts:  NewMemoryAttemptStore(),
		Progress:  NewMemoryProgressStore(),
		Users:     NewMemoryUserRepository(),
	}, nil
}

type MemoryQuestionRepository struct {
	mu        sync.RWMutex
	questions []models.Question
	rng       *rand.Rand
	now       func() time.Time
}

func NewMemoryQuestionRepository(seed []models.Question) *MemoryQuestionRepository {
	return &MemoryQuestionRepository{
		questions: slices.Clone(seed),
		rng:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now:       time.Now,
	}
}

func (r *MemoryQuestionRepository) All(ctx context.Context) ([]models.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.questions), nil
}

func (r *MemoryQuestionRepository) Get(ctx context.Context, id uint) (*models.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("question %d: %w", id, ErrNotFound)
	}
	q := r.questions[i]
	return &q, nil
}

func (r *MemoryQuestionRepository) Fetch(ctx context.Context, filter QuestionFilter) ([]models.Question, error) {
	if filter.Count <= 0 {
		return []models.Question{}, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	matching := make([]models.Question, 0)
	for _, q := range r.questions {
		if !strings.EqualFold(string(q.Subject), string(filter.Subject)) {
			continue
		}
		if filter.Chapter != "" && !strings.EqualFold(q.Chapter, filter.Chapter) {
			continue
		}
		if !filter.matchesDifficulty(q.Difficulty) {
			continue
		}
		matching = append(matching, q)
	}

	r.rng.Shuffle(len(matching), func(i, j int) {
		matching[i], matching[j] = matching[j], matching[i]
	})
	if len(matching) > filter.Count {
		matching = matching[:filter.Count]
	}
	return matching, nil
}

func (r *MemoryQuestionRepository) Create(ctx context.Context, q *models.Question) error {
	q.Normalize()
	if err := q.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var maxID uint
	for _, existing := range r.questions {
		maxID = max(maxID, existing.ID)
	}
	now := r.now()
	q.ID = maxID + 1
	q.CreatedAt, q.UpdatedAt = now, now
	r.questions = append(r.questions, *q)
	return nil
}

func (r *MemoryQuestionRepository) Update(ctx context.Context, id uint, patch models.QuestionPatch) (*models.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("question %d: %w", id, ErrNotFound)
	}
	updated := r.questions[i]
	patch.Apply(&updated)
	updated.Normalize()
	if err := updated.Validate(); err != nil {
		return nil, err
	}
	updated.UpdatedAt = r.now()
	r.questions[i] = updated
	return &updated, nil
}

func (r *MemoryQuestionRepository) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return fmt.Errorf("question %d: %w", id, ErrNotFound)
	}
	r.questions = slices.Delete(r.questions, i, i+1)
	return nil
}

func (r *MemoryQuestionRepository) indexOf(id uint) int {
	return slices.IndexFunc(r.questions, func(q models.Question) bool { return q.ID == id })
}

type MemoryAttemptStore struct {
	mu       sync.RWMutex
	attempts []models.TestAttempt
	nextID   uint
	now      func() time.Time
}

func NewMemoryAttemptStore() *MemoryAttemptStore {
	return &MemoryAttemptStore{nextID: 1, now: time.Now}
}

func (s *MemoryAttemptStore) Save(ctx context.Context, attempt models.TestAttempt) (*models.TestAttempt, error) {
	if attempt.UserID == "" {
		return nil, fmt.Errorf("attempt without user id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	attempt.ID = s.nextID
	attempt.CompletedAt = s.now().UTC()
	s.nextID++
	s.attempts = append(s.attempts, attempt)
	return &attempt, nil
}

func (s *MemoryAttemptStore) Get(ctx context.Context, id uint) (*models.TestAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.attempts {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, fmt.Errorf("attempt %d: %w", id, ErrNotFound)
}

func (s *MemoryAttemptStore) All(ctx context.Context) ([]models.TestAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.attempts), nil
}

func (s *MemoryAttemptStore) ListByUser(ctx context.Context, userID string) ([]models.TestAttempt, error) {
	s.mu.RLock()
	out := make([]models.TestAttempt, 0)
	for _, a := range s.attempts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CompletedAt.Equal(out[j].CompletedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CompletedAt.After(out[j].CompletedAt)
	})
	return out, nil
}

func (s *MemoryAttemptStore) Delete(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.attempts, func(a models.TestAttempt) bool { return a.ID == id })
	if i < 0 {
		return fmt.Errorf("attempt %d: %w", id, ErrNotFound)
	}
	s.attempts = slices.Delete(s.attempts, i, i+1)
	return nil
}

type MemoryProgressStore struct {
	mu     sync.RWMutex
	byUser map[string]*models.UserProgress
	nextID uint
	now    func() time.Time
}

func NewMemoryProgressStore() *MemoryProgressStore {
	return &MemoryProgressStore{byUser: make(map[string]*models.UserProgress), nextID: 1, now: time.Now}
}

func (s *MemoryProgressStore) Get(ctx context.Context, userID string) (*models.UserProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byUser[userID]
	if !ok {
		return nil, fmt.Errorf("progress for user %s: %w", userID, ErrNotFound)
	}
	return p.Clone(), nil
}

func (s *MemoryProgressStore) Upsert(ctx context.Context, progress *models.UserProgress) error {
	if progress.UserID == "" {
		return fmt.Errorf("progress without user id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.byUser[progress.UserID]; ok {
		progress.ID = existing.ID
	} else if progress.ID == 0 {
		progress.ID = s.nextID
		s.nextID++
	}
	for i := range progress.Subjects {
		progress.Subjects[i].ProgressID = progress.ID
	}
	progress.UpdatedAt = s.now()
	s.byUser[progress.UserID] = progress.Clone()
	return nil
}

func (s *MemoryProgressStore) Delete(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byUser[userID]; !ok {
		return fmt.Errorf("progress for user %s: %w", userID, ErrNotFound)
	}
	delete(s.byUser, userID)
	return nil
}

type MemoryUserRepository struct {
	mu     sync.RWMutex
	users  []models.User
	logins []models.LoginHistory
	now    func() time.Time
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{now: time.Now}
}

func (r *MemoryUserRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Username, user.Username) {
			return fmt.Errorf("username %q: %w", user.Username, ErrDuplicate)
		}
		if strings.EqualFold(u.Email, user.Email) {
			return fmt.Errorf("email %q: %w", user.Email, ErrDuplicate)
		}
	}
	user.ID = uint(len(r.users) + 1)
	user.CreatedAt = r.now()
	user.UpdatedAt = user.CreatedAt
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	r.users = append(r.users, *user)
	return nil
}

func (r *MemoryUserRepository) Get(ctx context.Context, id uint) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.ID == id })
}

func (r *MemoryUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.find(func(u models.User) bool { return strings.EqualFold(u.Username, username) })
}

func (r *MemoryUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *MemoryUserRepository) Update(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := slices.IndexFunc(r.users, func(u models.User) bool { return u.ID == user.ID })
	if i < 0 {
		return fmt.Errorf("user %d: %w", user.ID, ErrNotFound)
	}
	for _, u := range r.users {
		if u.ID == user.ID {
			continue
		}
		if strings.EqualFold(u.Username, user.Username) {
			return fmt.Errorf("username %q: %w", user.Username, ErrDuplicate)
		}
		if strings.EqualFold(u.Email, user.Email) {
			return fmt.Errorf("email %q: %w", user.Email, ErrDuplicate)
		}
	}
	user.UpdatedAt = r.now()
	r.users[i] = *user
	return nil
}

func (r *MemoryUserRepository) RecordLogin(ctx context.Context, userID uint, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logins = append(r.logins, models.LoginHistory{UserID: userID, LoginTime: at})
	return nil
}

func (r *MemoryUserRepository) find(match func(models.User) bool) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}
