package services

import "neetprep/backend/models"

type Achievement struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Earned      bool   `json:"earned"`
}

// Overview is the profile summary built from a user's progress.
type Overview struct {
	TotalTests         int                        `json:"totalTests"`
	Streak             int                        `json:"streak"`
	StreakMessage      string                     `json:"streakMessage"`
	OverallPerformance float64                    `json:"overallPerformance"`
	SubjectAverages    map[models.Subject]float64 `json:"subjectAverages"`
	BestSubject        models.Subject             `json:"bestSubject,omitempty"`
	Achievements       []Achievement              `json:"achievements"`
}

func BuildOverview(p *models.UserProgress) Overview {
	if p == nil {
		p = &models.UserProgress{}
	}
	averages := p.Averages()

	var sum float64
	for _, avg := range averages {
		sum += avg
	}
	best, _ := BestSubject(p)

	return Overview{
		TotalTests:         p.TotalTests,
		Streak:             p.Streak,
		StreakMessage:      StreakMessage(p.Streak),
		OverallPerformance: round1(sum / float64(len(models.Subjects))),
		SubjectAverages:    averages,
		BestSubject:        best,
		Achievements:       Achievements(p),
	}
}

// BestSubject is the subject with the highest average. Ties go to the
// earlier subject in models.Subjects; a user with no tests has none.
func BestSubject(p *models.UserProgress) (models.Subject, float64) {
	var best models.Subject
	bestAvg := -1.0
	for _, s := range models.Subjects {
		if avg := p.Average(s); avg > bestAvg {
			best, bestAvg = s, avg
		}
	}
	if p.TotalTests == 0 {
		return "", 0
	}
	return best, bestAvg
}

func StreakMessage(streak int) string {
	switch {
	case streak <= 0:
		return "Start your streak today!"
	case streak < 7:
		return "Keep it up!"
	case streak < 30:
		return "Great consistency!"
	default:
		return "Amazing dedication!"
	}
}

func Achievements(p *models.UserProgress) []Achievement {
	master := false
	for _, s := range models.Subjects {
		if p.Average(s) > 80 {
			master = true
		}
	}
	return []Achievement{
		{Title: "First Test", Description: "Completed your first test", Earned: p.TotalTests > 0},
		{Title: "Week Warrior", Description: "Maintained a 7-day streak", Earned: p.Streak >= 7},
		{Title: "Subject Master", Description: "Scored above 80% in any subject", Earned: master},
		{Title: "Test Explorer", Description: "Completed 10 tests", Earned: p.TotalTests >= 10},
	}
}
