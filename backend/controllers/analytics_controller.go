package controllers

import (
	"time"

	"neetprep/backend/config"
	"neetprep/backend/models"
	"neetprep/backend/repository"
	"neetprep/backend/services"
	"neetprep/backend/session"
	"neetprep/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type AnalyticsController struct {
	Questions repository.QuestionRepository
	Attempts  repository.AttemptStore
	Registry  *session.Registry
	Cfg       *config.Config
}

func NewAnalyticsController(questions repository.QuestionRepository, attempts repository.AttemptStore, registry *session.Registry, cfg *config.Config) *AnalyticsController {
	return &AnalyticsController{Questions: questions, Attempts: attempts, Registry: registry, Cfg: cfg}
}

type subjectAnalytics struct {
	Questions int                           `json:"questions"`
	Stats     services.Stats                `json:"stats"`
	Completed map[models.CompletionType]int `json:"completed"`
}

// GetPlatformAnalytics godoc
// @Summary Platform-wide results (admin)
// @Description Attempt statistics per subject over a date range, with question bank sizes
// @Tags analytics
// @Produce json
// @Param start_date query string false "YYYY-MM-DD, default one month ago"
// @Param end_date query string false "YYYY-MM-DD, default today"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/analytics [get]
func (ac *AnalyticsController) GetPlatformAnalytics(c *fiber.Ctx) error {
	now := time.Now().UTC()
	start, end := now.AddDate(0, -1, 0), now
	var err error
	if s := c.Query("start_date"); s != "" {
		if start, err = time.Parse("2006-01-02", s); err != nil {
			return utils.BadRequest(c, "Invalid start_date format. Use YYYY-MM-DD")
		}
	}
	if s := c.Query("end_date"); s != "" {
		if end, err = time.Parse("2006-01-02", s); err != nil {
			return utils.BadRequest(c, "Invalid end_date format. Use YYYY-MM-DD")
		}
		end = end.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}

	ctx := c.UserContext()
	questions, err := ac.Questions.All(ctx)
	if err != nil {
		return utils.InternalServerError(c, "Failed to fetch questions")
	}
	attempts, err := ac.Attempts.All(ctx)
	if err != nil {
		return utils.InternalServerError(c, "Failed to fetch attempts")
	}

	inRange := make([]models.TestAttempt, 0, len(attempts))
	users := map[string]struct{}{}
	for _, a := range attempts {
		if a.CompletedAt.Before(start) || a.CompletedAt.After(end) {
			continue
		}
		inRange = append(inRange, a)
		users[a.UserID] = struct{}{}
	}

	subjects := make(map[models.Subject]subjectAnalytics, len(models.Subjects))
	for _, subject := range models.Subjects {
		of := services.FilterBySubject(inRange, string(subject))
		completed := map[models.CompletionType]int{models.CompletionManual: 0, models.CompletionTimeout: 0}
		for _, a := range of {
			completed[a.CompletionType]++
		}
		bank := 0
		for _, q := range questions {
			if q.Subject == subject {
				bank++
			}
		}
		subjects[subject] = subjectAnalytics{
			Questions: bank,
			Stats:     services.Summarize(of),
			Completed: completed,
		}
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"overall":         services.Summarize(inRange),
		"active_users":    len(users),
		"active_sessions": ac.Registry.Active(),
		"subjects":        subjects,
		"period": fiber.Map{
			"start_date": start.Format("2006-01-02"),
			"end_date":   end.Format("2006-01-02"),
		},
		"timestamp": now.Format(time.RFC3339),
	})
}
