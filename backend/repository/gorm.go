package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"neetprep/backend/models"

	"gorm.io/gorm"
)

// NewGormStores builds the postgres backend on an open connection.
func NewGormStores(db *gorm.DB) *Stores {
	return &Stores{
		Questions: NewGormQuestionRepository(db),
		Attempts:  NewGormAttemptStore(db),
		Progress:  NewGormProgressStore(db),
		Users:     NewGormUserRepository(db),
	}
}

// Models lists every table the gorm backend migrates.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.LoginHistory{},
		&models.Question{},
		&models.TestAttempt{},
		&models.UserProgress{},
		&models.SubjectProgress{},
	}
}

// SeedIfEmpty loads the embedded question bank into an empty questions table.
func SeedIfEmpty(ctx context.Context, db *gorm.DB) (int, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&models.Question{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	if count > 0 {
		return 0, nil
	}
	questions, err := SeedQuestions()
	if err != nil {
		return 0, err
	}
	for i := range questions {
		questions[i].ID = 0
	}
	if err := db.WithContext(ctx).CreateInBatches(questions, 100).Error; err != nil {
		return 0, fmt.Errorf("seed questions: %w", err)
	}
	return len(questions), nil
}

func notFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

type GormQuestionRepository struct {
	DB *gorm.DB
}

func NewGormQuestionRepository(db *gorm.DB) *GormQuestionRepository {
	return &GormQuestionRepository{DB: db}
}

func (r *GormQuestionRepository) All(ctx context.Context) ([]models.Question, error) {
	var questions []models.Question
	if err := r.DB.WithContext(ctx).Order("id").Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return questions, nil
}

func (r *GormQuestionRepository) Get(ctx context.Context, id uint) (*models.Question, error) {
	var q models.Question
	if err := r.DB.WithContext(ctx).First(&q, id).Error; err != nil {
		return nil, notFound(err, "question %d", id)
	}
	return &q, nil
}

func (r *GormQuestionRepository) Fetch(ctx context.Context, filter QuestionFilter) ([]models.Question, error) {
	questions := make([]models.Question, 0)
	if filter.Count <= 0 {
		return questions, nil
	}

	query := r.DB.WithContext(ctx).Model(&models.Question{}).
		Where("LOWER(subject) = ?", strings.ToLower(string(filter.Subject)))
	if filter.Chapter != "" {
		query = query.Where("LOWER(chapter) = ?", strings.ToLower(filter.Chapter))
	}
	if filter.Difficulty != "" && filter.Difficulty != models.DifficultyMixed {
		query = query.Where("difficulty = ?", filter.Difficulty)
	}

	if err := query.Order("RANDOM()").Limit(filter.Count).Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("fetch questions: %w", err)
	}
	return questions, nil
}

func (r *GormQuestionRepository) Create(ctx context.Context, q *models.Question) error {
	q.Normalize()
	if err := q.Validate(); err != nil {
		return err
	}
	if err := r.DB.WithContext(ctx).Create(q).Error; err != nil {
		return fmt.Errorf("create question: %w", err)
	}
	return nil
}

func (r *GormQuestionRepository) Update(ctx context.Context, id uint, patch models.QuestionPatch) (*models.Question, error) {
	var q models.Question
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&q, id).Error; err != nil {
			return notFound(err, "question %d", id)
		}
		patch.Apply(&q)
		q.Normalize()
		if err := q.Validate(); err != nil {
			return err
		}
		return tx.Save(&q).Error
	})
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *GormQuestionRepository) Delete(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Question{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete question %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("question %d: %w", id, ErrNotFound)
	}
	return nil
}

type GormAttemptStore struct {
	DB  *gorm.DB
	now func() time.Time
}

func NewGormAttemptStore(db *gorm.DB) *GormAttemptStore {
	return &GormAttemptStore{DB: db, now: time.Now}
}

func (s *GormAttemptStore) Save(ctx context.Context, attempt models.TestAttempt) (*models.TestAttempt, error) {
	attempt.ID = 0
	attempt.CompletedAt = s.now().UTC()
	if err := s.DB.WithContext(ctx).Create(&attempt).Error; err != nil {
		return nil, fmt.Errorf("save attempt: %w", err)
	}
	return &attempt, nil
}

func (s *GormAttemptStore) Get(ctx context.Context, id uint) (*models.TestAttempt, error) {
	var a models.TestAttempt
	if err := s.DB.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, notFound(err, "attempt %d", id)
	}
	return &a, nil
}

func (s *GormAttemptStore) All(ctx context.Context) ([]models.TestAttempt, error) {
	var attempts []models.TestAttempt
	if err := s.DB.WithContext(ctx).Order("id").Find(&attempts).Error; err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return attempts, nil
}

func (s *GormAttemptStore) ListByUser(ctx context.Context, userID string) ([]models.TestAttempt, error) {
	attempts := make([]models.TestAttempt, 0)
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("completed_at DESC, id DESC").
		Find(&attempts).Error
	if err != nil {
		return nil, fmt.Errorf("list attempts for user %s: %w", userID, err)
	}
	return attempts, nil
}

func (s *GormAttemptStore) Delete(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&models.TestAttempt{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete attempt %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("attempt %d: %w", id, ErrNotFound)
	}
	return nil
}

type GormProgressStore struct {
	DB *gorm.DB
}

func NewGormProgressStore(db *gorm.DB) *GormProgressStore {
	return &GormProgressStore{DB: db}
}

func (s *GormProgressStore) Get(ctx context.Context, userID string) (*models.UserProgress, error) {
	var p models.UserProgress
	err := s.DB.WithContext(ctx).Preload("Subjects").Where("user_id = ?", userID).First(&p).Error
	if err != nil {
		return nil, notFound(err, "progress for user %s", userID)
	}
	return &p, nil
}

func (s *GormProgressStore) Upsert(ctx context.Context, progress *models.UserProgress) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if progress.ID == 0 {
			var existing models.UserProgress
			err := tx.Select("id").Where("user_id = ?", progress.UserID).First(&existing).Error
			switch {
			case err == nil:
				progress.ID = existing.ID
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return fmt.Errorf("look up progress: %w", err)
			}
		}
		if err := reconcileSubjects(tx, progress); err != nil {
			return err
		}
		if err := tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(progress).Error; err != nil {
			return fmt.Errorf("save progress: %w", err)
		}
		return nil
	})
}

// reconcileSubjects matches subject rows to the stored ones by subject, so
// records that lost their row ids (cache, rebuild) update in place, and
// drops rows for subjects no longer present.
func reconcileSubjects(tx *gorm.DB, progress *models.UserProgress) error {
	if progress.ID == 0 {
		return nil
	}
	var stored []models.SubjectProgress
	if err := tx.Where("progress_id = ?", progress.ID).Find(&stored).Error; err != nil {
		return fmt.Errorf("load subject progress: %w", err)
	}
	ids := make(map[models.Subject]uint, len(stored))
	for _, sp := range stored {
		ids[sp.Subject] = sp.ID
	}
	keep := make([]uint, 0, len(progress.Subjects))
	for i := range progress.Subjects {
		sp := &progress.Subjects[i]
		sp.ProgressID = progress.ID
		if id, ok := ids[sp.Subject]; ok {
			sp.ID = id
			keep = append(keep, id)
		}
	}
	stale := tx.Where("progress_id = ?", progress.ID)
	if len(keep) > 0 {
		stale = stale.Where("id NOT IN ?", keep)
	}
	if err := stale.Delete(&models.SubjectProgress{}).Error; err != nil {
		return fmt.Errorf("prune subject progress: %w", err)
	}
	return nil
}

func (s *GormProgressStore) Delete(ctx context.Context, userID string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.UserProgress
		if err := tx.Where("user_id = ?", userID).First(&p).Error; err != nil {
			return notFound(err, "progress for user %s", userID)
		}
		if err := tx.Where("progress_id = ?", p.ID).Delete(&models.SubjectProgress{}).Error; err != nil {
			return fmt.Errorf("delete subject progress: %w", err)
		}
		return tx.Delete(&p).Error
	})
}

type GormUserRepository struct {
	DB *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{DB: db}
}

func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken models.User
		err := tx.Where("LOWER(username) = LOWER(?) OR LOWER(email) = LOWER(?)", user.Username, user.Email).
			First(&taken).Error
		switch {
		case err == nil:
			if strings.EqualFold(taken.Username, user.Username) {
				return fmt.Errorf("username %q: %w", user.Username, ErrDuplicate)
			}
			return fmt.Errorf("email %q: %w", user.Email, ErrDuplicate)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("look up user: %w", err)
		}
		if err := tx.Create(user).Error; err != nil {
			return userWriteError(err, "create user")
		}
		return nil
	})
}

// userWriteError maps a unique-index violation to ErrDuplicate. It relies on
// the connection being opened with TranslateError.
func userWriteError(err error, op string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%s: %w", op, ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (r *GormUserRepository) Get(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, notFound(err, "user %d", id)
	}
	return &u, nil
}

func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("LOWER(username) = LOWER(?)", username).First(&u).Error; err != nil {
		return nil, notFound(err, "user %q", username)
	}
	return &u, nil
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&u).Error; err != nil {
		return nil, notFound(err, "user with email %q", email)
	}
	return &u, nil
}

func (r *GormUserRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.DB.WithContext(ctx).Save(user).Error; err != nil {
		return userWriteError(err, fmt.Sprintf("update user %d", user.ID))
	}
	return nil
}

func (r *GormUserRepository) RecordLogin(ctx context.Context, userID uint, at time.Time) error {
	return r.DB.WithContext(ctx).Create(&models.LoginHistory{UserID: userID, LoginTime: at}).Error
}
