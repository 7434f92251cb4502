package controllers

import (
	"neetprep/backend/config"
	"neetprep/backend/models"
	"neetprep/backend/session"
	"neetprep/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type SessionController struct {
	Engine   *session.Engine
	Registry *session.Registry
	Cfg      *config.Config
}

func NewSessionController(engine *session.Engine, registry *session.Registry, cfg *config.Config) *SessionController {
	return &SessionController{Engine: engine, Registry: registry, Cfg: cfg}
}

type StartSessionRequest struct {
	Subject       string `json:"subject" example:"Physics"`
	QuestionCount int    `json:"questionCount" example:"20"`
	Difficulty    string `json:"difficulty" example:"Mixed"`
	Chapter       string `json:"chapter"`
}

type SelectAnswerRequest struct {
	QuestionID uint   `json:"questionId"`
	Option     string `json:"option" enums:"A,B,C,D"`
}

// owned looks up the :id session and checks it belongs to the caller.
func (sc *SessionController) owned(c *fiber.Ctx) (*session.Session, error) {
	_, subject, err := currentUser(c, sc.Cfg)
	if err != nil {
		return nil, utils.Unauthorized(c, "Unauthorized")
	}
	s, ok := sc.Registry.Get(c.Params("id"))
	if !ok || s.UserID != subject {
		return nil, utils.NotFound(c, "Session not found")
	}
	return s, nil
}

// StartSession godoc
// @Summary Start a test
// @Description Fetches the question set and starts the countdown. Any earlier session of the user is abandoned.
// @Tags sessions
// @Accept json
// @Produce json
// @Param config body StartSessionRequest true "Test configuration"
// @Success 201 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /sessions [post]
func (sc *SessionController) StartSession(c *fiber.Ctx) error {
	_, subject, err := currentUser(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input StartSessionRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	s, err := sc.Engine.Start(c.UserContext(), subject, session.Configuration{
		Subject:       models.Subject(input.Subject),
		QuestionCount: input.QuestionCount,
		Difficulty:    models.Difficulty(input.Difficulty),
		Chapter:       input.Chapter,
	})
	if err != nil {
		return sessionError(c, err, s)
	}

	sc.Registry.Put(s)
	return utils.Success(c, fiber.StatusCreated, s.View())
}

// GetCurrentSession godoc
// @Summary The caller's latest session
// @Tags sessions
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /sessions/current [get]
func (sc *SessionController) GetCurrentSession(c *fiber.Ctx) error {
	_, subject, err := currentUser(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}
	s, ok := sc.Registry.Current(subject)
	if !ok {
		return utils.NotFound(c, "No active session")
	}
	return utils.Success(c, fiber.StatusOK, s.View())
}

// GetSession godoc
// @Summary Get a session
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /sessions/{id} [get]
func (sc *SessionController) GetSession(c *fiber.Ctx) error {
	s, err := sc.owned(c)
	if s == nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, s.View())
}

// SelectAnswer godoc
// @Summary Record an answer
// @Description Overwrites any earlier selection for the question
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param answer body SelectAnswerRequest true "Answer"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /sessions/{id}/answers [put]
func (sc *SessionController) SelectAnswer(c *fiber.Ctx) error {
	s, err := sc.owned(c)
	if s == nil {
		return err
	}

	var input SelectAnswerRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if err := s.SelectAnswer(input.QuestionID, models.OptionLabel(input.Option)); err != nil {
		return sessionError(c, err, s)
	}
	return utils.Success(c, fiber.StatusOK, s.View())
}

// NextQuestion godoc
// @Summary Move to the next question
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 409 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /sessions/{id}/next [post]
func (sc *SessionController) NextQuestion(c *fiber.Ctx) error {
	s, err := sc.owned(c)
	if s == nil {
		return err
	}
	if _, err := s.Advance(); err != nil {
		return sessionError(c, err, s)
	}
	return utils.Success(c, fiber.StatusOK, s.View())
}

// PreviousQuestion godoc
// @Summary Move to the previous question
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 409 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /sessions/{id}/previous [post]
func (sc *SessionController) PreviousQuestion(c *fiber.Ctx) error {
	s, err := sc.owned(c)
	if s == nil {
		return err
	}
	if _, err := s.Retreat(); err != nil {
		return sessionError(c, err, s)
	}
	return utils.Success(c, fiber.StatusOK, s.View())
}

// SubmitSession godoc
// @Summary Submit the test
// @Description Scores and stores the attempt. After a 503 the same call retries with the recorded answers.
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 503 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /sessions/{id}/submit [post]
func (sc *SessionController) SubmitSession(c *fiber.Ctx) error {
	s, err := sc.owned(c)
	if s == nil {
		return err
	}
	if _, err := s.RequestSubmit(c.UserContext()); err != nil {
		return sessionError(c, err, s)
	}
	view := s.View()
	return utils.SuccessMessage(c, fiber.StatusOK, view.Message, view)
}

// AbandonSession godoc
// @Summary Abandon a session
// @Description Stops the countdown and forgets the session. Nothing is stored.
// @Tags sessions
// @Param id path string true "Session ID"
// @Success 204
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /sessions/{id} [delete]
func (sc *SessionController) AbandonSession(c *fiber.Ctx) error {
	s, err := sc.owned(c)
	if s == nil {
		return err
	}
	sc.Registry.Remove(s.ID)
	return utils.NoContent(c)
}
