package session

import (
	"math"
	"time"

	"neetprep/backend/models"
)

// WrongAnswerPenalty is deducted from the score for every wrong answer.
const WrongAnswerPenalty = 0.25

type Score struct {
	Correct     int
	Wrong       int
	Unattempted int
	Raw         float64
	Final       float64
}

// Evaluate classifies each question's recorded answer and applies negative
// marking. A missing or empty answer counts as unattempted. Final is Raw
// clamped at zero.
func Evaluate(questions []models.Question, answers map[uint]models.OptionLabel) Score {
	var s Score
	for _, q := range questions {
		answer, ok := answers[q.ID]
		switch {
		case !ok || answer == "":
			s.Unattempted++
		case answer == q.CorrectAnswer:
			s.Correct++
		default:
			s.Wrong++
		}
	}
	s.Raw = float64(s.Correct) - WrongAnswerPenalty*float64(s.Wrong)
	s.Final = math.Max(0, s.Raw)
	return s
}

// ElapsedSeconds floors the span between start and end to whole seconds,
// never returning a negative value.
func ElapsedSeconds(start, end time.Time) int {
	d := end.Sub(start)
	if d <= 0 {
		return 0
	}
	return int(d / time.Second)
}
