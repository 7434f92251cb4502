package models

import "time"

type CompletionType string

const (
	CompletionManual  CompletionType = "manual"
	CompletionTimeout CompletionType = "timeout"
)

// TestAttempt is one scored run of a test session. It is written once and
// never modified afterwards.
type TestAttempt struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	UserID         string         `gorm:"index;not null" json:"userId"`
	Subject        Subject        `gorm:"index;not null" json:"subject"`
	Difficulty     Difficulty     `json:"difficulty"`
	TotalQuestions int            `json:"totalQuestions"`
	CorrectAnswers int            `json:"correctAnswers"`
	WrongAnswers   int            `json:"wrongAnswers"`
	Unattempted    int            `json:"unattempted"`
	Score          float64        `gorm:"check:score >= 0" json:"score"`
	TimeTaken      int            `json:"timeTaken"`
	CompletionType CompletionType `json:"completionType"`
	CompletedAt    time.Time      `gorm:"index" json:"completedAt"`
}

// Percentage is the score as a share of the question count, in [0,100].
func (a TestAttempt) Percentage() float64 {
	if a.TotalQuestions <= 0 {
		return 0
	}
	return ClampPercent(a.Score / float64(a.TotalQuestions) * 100)
}

func ClampPercent(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}
