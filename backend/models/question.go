package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Subject string

const (
	SubjectBiology   Subject = "Biology"
	SubjectPhysics   Subject = "Physics"
	SubjectChemistry Subject = "Chemistry"
)

// Subjects lists every subject a question or test can belong to.
var Subjects = []Subject{SubjectBiology, SubjectPhysics, SubjectChemistry}

// ParseSubject matches s case-insensitively against the known subjects.
func ParseSubject(s string) (Subject, bool) {
	for _, subject := range Subjects {
		if strings.EqualFold(string(subject), strings.TrimSpace(s)) {
			return subject, true
		}
	}
	return "", false
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
	// DifficultyMixed is only valid on a test configuration and means no difficulty filter.
	DifficultyMixed Difficulty = "Mixed"
)

// ParseDifficulty accepts the three question levels plus Mixed. An empty
// string is treated as Mixed.
func ParseDifficulty(s string) (Difficulty, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DifficultyMixed, true
	}
	for _, d := range []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyMixed} {
		if strings.EqualFold(string(d), s) {
			return d, true
		}
	}
	return "", false
}

type OptionLabel string

const (
	OptionA OptionLabel = "A"
	OptionB OptionLabel = "B"
	OptionC OptionLabel = "C"
	OptionD OptionLabel = "D"
)

// OptionLabels is the fixed, ordered label set of a question.
var OptionLabels = []OptionLabel{OptionA, OptionB, OptionC, OptionD}

func (l OptionLabel) Valid() bool {
	switch l {
	case OptionA, OptionB, OptionC, OptionD:
		return true
	}
	return false
}

type Options struct {
	A string `json:"A"`
	B string `json:"B"`
	C string `json:"C"`
	D string `json:"D"`
}

func (o Options) Get(label OptionLabel) string {
	switch label {
	case OptionA:
		return o.A
	case OptionB:
		return o.B
	case OptionC:
		return o.C
	case OptionD:
		return o.D
	}
	return ""
}

type Question struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	Text          string      `gorm:"not null" json:"question"`
	Options       Options     `gorm:"embedded;embeddedPrefix:option_" json:"options"`
	CorrectAnswer OptionLabel `gorm:"size:1;not null" json:"correctAnswer"`
	Subject       Subject     `gorm:"index;not null" json:"subject"`
	Chapter       string      `gorm:"index" json:"chapter"`
	Difficulty    Difficulty  `gorm:"index" json:"difficulty"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

var ErrInvalidQuestion = errors.New("invalid question")

// Normalize canonicalizes subject, difficulty and answer label spelling.
func (q *Question) Normalize() {
	if subject, ok := ParseSubject(string(q.Subject)); ok {
		q.Subject = subject
	}
	if d, ok := ParseDifficulty(string(q.Difficulty)); ok && q.Difficulty != "" {
		q.Difficulty = d
	}
	q.CorrectAnswer = OptionLabel(strings.ToUpper(strings.TrimSpace(string(q.CorrectAnswer))))
	q.Chapter = strings.TrimSpace(q.Chapter)
}

// Validate checks the invariants every stored question must satisfy.
func (q *Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("%w: question text is required", ErrInvalidQuestion)
	}
	for _, label := range OptionLabels {
		if strings.TrimSpace(q.Options.Get(label)) == "" {
			return fmt.Errorf("%w: option %s is required", ErrInvalidQuestion, label)
		}
	}
	if !q.CorrectAnswer.Valid() {
		return fmt.Errorf("%w: correct answer must be one of A, B, C, D", ErrInvalidQuestion)
	}
	if subject, ok := ParseSubject(string(q.Subject)); !ok || subject != q.Subject {
		return fmt.Errorf("%w: unknown subject %q", ErrInvalidQuestion, q.Subject)
	}
	switch q.Difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
	default:
		return fmt.Errorf("%w: difficulty must be Easy, Medium or Hard", ErrInvalidQuestion)
	}
	return nil
}

// QuestionPatch carries a partial update; nil fields are left untouched.
type QuestionPatch struct {
	Text          *string      `json:"question"`
	Options       *Options     `json:"options"`
	CorrectAnswer *OptionLabel `json:"correctAnswer"`
	Subject       *Subject     `json:"subject"`
	Chapter       *string      `json:"chapter"`
	Difficulty    *Difficulty  `json:"difficulty"`
}

// Apply merges the patch into q. The caller validates the result.
func (p QuestionPatch) Apply(q *Question) {
	if p.Text != nil {
		q.Text = *p.Text
	}
	if p.Options != nil {
		q.Options = *p.Options
	}
	if p.CorrectAnswer != nil {
		q.CorrectAnswer = *p.CorrectAnswer
	}
	if p.Subject != nil {
		q.Subject = *p.Subject
	}
	if p.Chapter != nil {
		q.Chapter = *p.Chapter
	}
	if p.Difficulty != nil {
		q.Difficulty = *p.Difficulty
	}
}
