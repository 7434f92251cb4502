package services

import (
	"testing"
	"time"

	"neetprep/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAttempts() []models.TestAttempt {
	// most recent first, as the attempt store lists them
	return []models.TestAttempt{
		{ID: 4, Subject: models.SubjectPhysics, Score: 9, TotalQuestions: 10, CompletedAt: day0.Add(72 * time.Hour)},
		{ID: 3, Subject: models.SubjectBiology, Score: 2.75, TotalQuestions: 5, CompletedAt: day0.Add(48 * time.Hour)},
		{ID: 2, Subject: models.SubjectPhysics, Score: 4, TotalQuestions: 10, CompletedAt: day0.Add(24 * time.Hour)},
		{ID: 1, Subject: models.SubjectChemistry, Score: 0, TotalQuestions: 15, CompletedAt: day0},
	}
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, Stats{}, Summarize(nil))

	stats := Summarize(sampleAttempts())
	assert.Equal(t, 4, stats.TotalTests)
	// 15.75 / 40
	assert.Equal(t, 39.4, stats.AvgScore)
	assert.Equal(t, 90.0, stats.BestScore)
}

func TestFilterBySubject(t *testing.T) {
	all := sampleAttempts()
	assert.Len(t, FilterBySubject(all, ""), 4)
	assert.Len(t, FilterBySubject(all, "All"), 4)

	physics := FilterBySubject(all, "physics")
	require.Len(t, physics, 2)
	assert.Equal(t, uint(4), physics[0].ID)

	stats := Summarize(physics)
	assert.Equal(t, 65.0, stats.AvgScore)
}

func TestRecent(t *testing.T) {
	all := sampleAttempts()
	recent := Recent(all, DefaultRecent)
	require.Len(t, recent, 3)
	assert.Equal(t, uint(4), recent[0].ID)

	assert.Len(t, Recent(all[:1], DefaultRecent), 1)
	assert.Empty(t, Recent(nil, DefaultRecent))
}

func TestPerformanceSeriesIsChronological(t *testing.T) {
	series := PerformanceSeries(sampleAttempts())

	physics := series[models.SubjectPhysics]
	require.Len(t, physics, 2)
	assert.Equal(t, uint(2), physics[0].AttemptID)
	assert.Equal(t, 40.0, physics[0].Percentage)
	assert.Equal(t, 90.0, physics[1].Percentage)

	assert.Len(t, series[models.SubjectBiology], 1)
	assert.Equal(t, 55.0, series[models.SubjectBiology][0].Percentage)
	assert.Len(t, series[models.SubjectChemistry], 1)
}

func TestBuildOverview(t *testing.T) {
	empty := BuildOverview(nil)
	assert.Equal(t, "Start your streak today!", empty.StreakMessage)
	assert.Empty(t, empty.BestSubject)
	assert.Zero(t, empty.OverallPerformance)
	for _, a := range empty.Achievements {
		assert.False(t, a.Earned, a.Title)
	}

	p := &models.UserProgress{TotalTests: 12, Streak: 8}
	p.Subject(models.SubjectBiology).Average = 85
	p.Subject(models.SubjectPhysics).Average = 60
	p.Subject(models.SubjectChemistry).Average = 40

	o := BuildOverview(p)
	assert.Equal(t, 61.7, o.OverallPerformance)
	assert.Equal(t, models.SubjectBiology, o.BestSubject)
	assert.Equal(t, "Great consistency!", o.StreakMessage)
	require.Len(t, o.Achievements, 4)
	for _, a := range o.Achievements {
		assert.True(t, a.Earned, a.Title)
	}
}

func TestStreakMessage(t *testing.T) {
	assert.Equal(t, "Start your streak today!", StreakMessage(0))
	assert.Equal(t, "Keep it up!", StreakMessage(6))
	assert.Equal(t, "Great consistency!", StreakMessage(7))
	assert.Equal(t, "Great consistency!", StreakMessage(29))
	assert.Equal(t, "Amazing dedication!", StreakMessage(30))
}
