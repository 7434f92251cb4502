package controllers

import (
	"log"
	"strconv"

	"neetprep/backend/config"
	"neetprep/backend/repository"
	"neetprep/backend/services"
	"neetprep/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type AttemptController struct {
	Attempts repository.AttemptStore
	Progress *services.ProgressService
	Cfg      *config.Config
	Logger   *log.Logger
}

func NewAttemptController(attempts repository.AttemptStore, progress *services.ProgressService, cfg *config.Config, logger *log.Logger) *AttemptController {
	return &AttemptController{Attempts: attempts, Progress: progress, Cfg: cfg, Logger: logger}
}

// GetUserAttempts godoc
// @Summary List the caller's attempts
// @Description Most recent first, optionally restricted to one subject
// @Tags attempts
// @Produce json
// @Param subject query string false "Subject or All" default(All)
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(10)
// @Success 200 {object} utils.PaginatedResponse
// @Security ApiKeyAuth
// @Router /attempts [get]
func (ac *AttemptController) GetUserAttempts(c *fiber.Ctx) error {
	_, subject, err := currentUser(c, ac.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	attempts, err := ac.Attempts.ListByUser(c.UserContext(), subject)
	if err != nil {
		return utils.InternalServerError(c, "Failed to fetch attempts")
	}
	attempts = services.FilterBySubject(attempts, c.Query("subject"))

	page, pageSize := pagination(c)
	return utils.Paginate(c, paginate(attempts, page, pageSize), int64(len(attempts)), page, pageSize)
}

// GetAttempt godoc
// @Summary Get one of the caller's attempts
// @Tags attempts
// @Produce json
// @Param id path int true "Attempt ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /attempts/{id} [get]
func (ac *AttemptController) GetAttempt(c *fiber.Ctx) error {
	_, subject, err := currentUser(c, ac.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid attempt ID")
	}

	attempt, err := ac.Attempts.Get(c.UserContext(), id)
	if err != nil {
		return storeError(c, err, "Attempt not found")
	}
	if attempt.UserID != subject {
		return utils.NotFound(c, "Attempt not found")
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"attempt":    attempt,
		"percentage": attempt.Percentage(),
	})
}

// GetStats godoc
// @Summary Results summary
// @Description Total tests, average and best score percentage, plus the most recent attempts
// @Tags attempts
// @Produce json
// @Param subject query string false "Subject or All" default(All)
// @Param recent query int false "Number of recent attempts" default(3)
// @Success 200 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /attempts/stats [get]
func (ac *AttemptController) GetStats(c *fiber.Ctx) error {
	_, subject, err := currentUser(c, ac.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	attempts, err := ac.Attempts.ListByUser(c.UserContext(), subject)
	if err != nil {
		return utils.InternalServerError(c, "Failed to fetch attempts")
	}
	attempts = services.FilterBySubject(attempts, c.Query("subject"))

	recent, err := strconv.Atoi(c.Query("recent", strconv.Itoa(services.DefaultRecent)))
	if err != nil || recent < 0 {
		recent = services.DefaultRecent
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"stats":  services.Summarize(attempts),
		"recent": services.Recent(attempts, recent),
	})
}

// GetPerformance godoc
// @Summary Score history per subject
// @Tags attempts
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /attempts/performance [get]
func (ac *AttemptController) GetPerformance(c *fiber.Ctx) error {
	_, subject, err := currentUser(c, ac.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	attempts, err := ac.Attempts.ListByUser(c.UserContext(), subject)
	if err != nil {
		return utils.InternalServerError(c, "Failed to fetch attempts")
	}
	return utils.Success(c, fiber.StatusOK, services.PerformanceSeries(attempts))
}

// DeleteAttempt godoc
// @Summary Delete an attempt
// @Description Removes the attempt and recomputes its owner's progress
// @Tags attempts
// @Param id path int true "Attempt ID"
// @Success 204
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/attempts/{id} [delete]
func (ac *AttemptController) DeleteAttempt(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid attempt ID")
	}

	ctx := c.UserContext()
	attempt, err := ac.Attempts.Get(ctx, id)
	if err != nil {
		return storeError(c, err, "Attempt not found")
	}
	if err := ac.Attempts.Delete(ctx, id); err != nil {
		return storeError(c, err, "Attempt not found")
	}
	if _, err := ac.Progress.Rebuild(ctx, attempt.UserID); err != nil {
		ac.Logger.Printf("rebuild progress for user %s: %v", attempt.UserID, err)
	}
	return utils.NoContent(c)
}
