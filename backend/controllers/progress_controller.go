package controllers

import (
	"neetprep/backend/config"
	"neetprep/backend/services"
	"neetprep/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type ProgressController struct {
	Progress *services.ProgressService
	Cfg      *config.Config
}

func NewProgressController(progress *services.ProgressService, cfg *config.Config) *ProgressController {
	return &ProgressController{Progress: progress, Cfg: cfg}
}

// GetProgress godoc
// @Summary Get user progress
// @Description Returns total tests, day streak and per-subject averages
// @Tags progress
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress [get]
func (pc *ProgressController) GetProgress(c *fiber.Ctx) error {
	_, subject, err := currentUser(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	progress, err := pc.Progress.Get(c.UserContext(), subject)
	if err != nil {
		return utils.InternalServerError(c, "Could not load progress")
	}
	return utils.Success(c, fiber.StatusOK, progress)
}

// GetProgressOverview godoc
// @Summary Get progress overview
// @Description Overall performance, best subject, streak message and achievements
// @Tags progress
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress/overview [get]
func (pc *ProgressController) GetProgressOverview(c *fiber.Ctx) error {
	_, subject, err := currentUser(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	progress, err := pc.Progress.Get(c.UserContext(), subject)
	if err != nil {
		return utils.InternalServerError(c, "Could not load progress")
	}
	return utils.Success(c, fiber.StatusOK, services.BuildOverview(progress))
}
