package services

import (
	"math"
	"sort"
	"strings"
	"time"

	"neetprep/backend/models"
)

// DefaultRecent is the number of attempts shown on the dashboard.
const DefaultRecent = 3

// Stats summarizes a set of attempts. Percentages are rounded to one decimal.
type Stats struct {
	TotalTests int     `json:"totalTests"`
	AvgScore   float64 `json:"avgScore"`
	BestScore  float64 `json:"bestScore"`
}

// FilterBySubject keeps attempts of the given subject. "" and "All" keep everything.
func FilterBySubject(attempts []models.TestAttempt, subject string) []models.TestAttempt {
	subject = strings.TrimSpace(subject)
	if subject == "" || strings.EqualFold(subject, "all") {
		return attempts
	}
	out := make([]models.TestAttempt, 0, len(attempts))
	for _, a := range attempts {
		if strings.EqualFold(string(a.Subject), subject) {
			out = append(out, a)
		}
	}
	return out
}

// Summarize weights the average by question count: the total score over
// the total number of questions.
func Summarize(attempts []models.TestAttempt) Stats {
	if len(attempts) == 0 {
		return Stats{}
	}
	var score float64
	var questions int
	best := 0.0
	for _, a := range attempts {
		score += a.Score
		questions += a.TotalQuestions
		best = math.Max(best, a.Percentage())
	}
	stats := Stats{TotalTests: len(attempts), BestScore: round1(best)}
	if questions > 0 {
		stats.AvgScore = round1(models.ClampPercent(score / float64(questions) * 100))
	}
	return stats
}

// Recent returns the first n attempts of a most-recent-first list.
func Recent(attempts []models.TestAttempt, n int) []models.TestAttempt {
	if n < 0 {
		n = 0
	}
	if len(attempts) > n {
		attempts = attempts[:n]
	}
	return append([]models.TestAttempt{}, attempts...)
}

type PerformancePoint struct {
	AttemptID  uint      `json:"attemptId"`
	Date       time.Time `json:"date"`
	Percentage float64   `json:"percentage"`
}

// PerformanceSeries groups attempts per subject in chronological order.
func PerformanceSeries(attempts []models.TestAttempt) map[models.Subject][]PerformancePoint {
	sorted := append([]models.TestAttempt(nil), attempts...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].CompletedAt.Equal(sorted[j].CompletedAt) {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].CompletedAt.Before(sorted[j].CompletedAt)
	})

	series := make(map[models.Subject][]PerformancePoint, len(models.Subjects))
	for _, s := range models.Subjects {
		series[s] = []PerformancePoint{}
	}
	for _, a := range sorted {
		series[a.Subject] = append(series[a.Subject], PerformancePoint{
			AttemptID:  a.ID,
			Date:       a.CompletedAt,
			Percentage: round1(a.Percentage()),
		})
	}
	return series
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
