package controllers

import (
	"errors"
	"strconv"

	"neetprep/backend/config"
	"neetprep/backend/repository"
	"neetprep/backend/session"
	"neetprep/backend/utils"

	"github.com/gofiber/fiber/v2"
)

var errInvalidID = errors.New("invalid id")

// currentUser returns the authenticated user id in both forms.
func currentUser(c *fiber.Ctx, cfg *config.Config) (uint, string, error) {
	userID, err := utils.ExtractUserIDFromToken(c, cfg)
	if err != nil {
		return 0, "", err
	}
	return userID, utils.SubjectID(userID), nil
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errInvalidID
	}
	return uint(id), nil
}

func pagination(c *fiber.Ctx) (page, pageSize int) {
	page, _ = strconv.Atoi(c.Query("page", "1"))
	pageSize, _ = strconv.Atoi(c.Query("page_size", "10"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	return page, pageSize
}

func paginate[T any](items []T, page, pageSize int) []T {
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := min(start+pageSize, len(items))
	return items[start:end]
}

// sessionStatus maps engine errors to HTTP statuses.
func sessionStatus(err error) int {
	switch {
	case errors.Is(err, session.ErrNoQuestions):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, session.ErrRepository):
		return fiber.StatusBadGateway
	case errors.Is(err, session.ErrConfiguration),
		errors.Is(err, session.ErrUnknownQuestion),
		errors.Is(err, session.ErrInvalidOption):
		return fiber.StatusBadRequest
	case errors.Is(err, session.ErrSessionClosed):
		return fiber.StatusConflict
	case errors.Is(err, session.ErrStore):
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

func sessionError(c *fiber.Ctx, err error, s *session.Session) error {
	status := sessionStatus(err)
	details := fiber.Map{}
	message := err.Error()

	var engineErr *session.Error
	if errors.As(err, &engineErr) {
		message = engineErr.Message
		details["kind"] = engineErr.Kind
	}
	if s != nil {
		details["session"] = s.View()
	}
	return utils.Error(c, status, fiber.NewError(status, message), details)
}

func storeError(c *fiber.Ctx, err error, notFoundMessage string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return utils.NotFound(c, notFoundMessage)
	}
	return utils.InternalServerError(c, "Could not query database")
}
