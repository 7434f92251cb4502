package controllers

import (
	"errors"
	"sort"
	"strings"

	"neetprep/backend/config"
	"neetprep/backend/models"
	"neetprep/backend/repository"
	"neetprep/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type QuestionController struct {
	Questions repository.QuestionRepository
	Cfg       *config.Config
}

func NewQuestionController(questions repository.QuestionRepository, cfg *config.Config) *QuestionController {
	return &QuestionController{Questions: questions, Cfg: cfg}
}

func questionProblem(c *fiber.Ctx, err error) error {
	if errors.Is(err, models.ErrInvalidQuestion) {
		return utils.ValidationError(c, map[string]string{
			"question": strings.TrimPrefix(err.Error(), models.ErrInvalidQuestion.Error()+": "),
		})
	}
	return storeError(c, err, "Question not found")
}

// matches applies the optional subject/chapter/difficulty query filters.
func matches(q models.Question, subject, chapter, difficulty string) bool {
	if subject != "" && !strings.EqualFold(string(q.Subject), subject) {
		return false
	}
	if chapter != "" && !strings.EqualFold(q.Chapter, chapter) {
		return false
	}
	if difficulty != "" && !strings.EqualFold(difficulty, string(models.DifficultyMixed)) &&
		!strings.EqualFold(string(q.Difficulty), difficulty) {
		return false
	}
	return true
}

// ListQuestions godoc
// @Summary List questions
// @Tags questions
// @Produce json
// @Param subject query string false "Subject"
// @Param chapter query string false "Chapter"
// @Param difficulty query string false "Difficulty"
// @Success 200 {object} utils.PaginatedResponse
// @Security ApiKeyAuth
// @Router /admin/questions [get]
func (qc *QuestionController) ListQuestions(c *fiber.Ctx) error {
	all, err := qc.Questions.All(c.UserContext())
	if err != nil {
		return utils.InternalServerError(c, "Failed to fetch questions")
	}

	subject, chapter, difficulty := c.Query("subject"), c.Query("chapter"), c.Query("difficulty")
	filtered := make([]models.Question, 0, len(all))
	for _, q := range all {
		if matches(q, subject, chapter, difficulty) {
			filtered = append(filtered, q)
		}
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].ID < filtered[j].ID })

	page, pageSize := pagination(c)
	return utils.Paginate(c, paginate(filtered, page, pageSize), int64(len(filtered)), page, pageSize)
}

// GetQuestion godoc
// @Summary Get a question
// @Tags questions
// @Produce json
// @Param id path int true "Question ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/questions/{id} [get]
func (qc *QuestionController) GetQuestion(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid question ID")
	}
	q, err := qc.Questions.Get(c.UserContext(), id)
	if err != nil {
		return storeError(c, err, "Question not found")
	}
	return utils.Success(c, fiber.StatusOK, q)
}

// CreateQuestion godoc
// @Summary Add a question to the bank
// @Tags questions
// @Accept json
// @Produce json
// @Param question body models.Question true "Question"
// @Success 201 {object} utils.SuccessResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/questions [post]
func (qc *QuestionController) CreateQuestion(c *fiber.Ctx) error {
	var q models.Question
	if err := c.BodyParser(&q); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	q.ID = 0
	if err := qc.Questions.Create(c.UserContext(), &q); err != nil {
		return questionProblem(c, err)
	}
	return utils.Created(c, q)
}

// UpdateQuestion godoc
// @Summary Update a question
// @Tags questions
// @Accept json
// @Produce json
// @Param id path int true "Question ID"
// @Param patch body models.QuestionPatch true "Fields to change"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/questions/{id} [put]
func (qc *QuestionController) UpdateQuestion(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid question ID")
	}
	var patch models.QuestionPatch
	if err := c.BodyParser(&patch); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	q, err := qc.Questions.Update(c.UserContext(), id, patch)
	if err != nil {
		return questionProblem(c, err)
	}
	return utils.SuccessMessage(c, fiber.StatusOK, "Question updated", q)
}

// DeleteQuestion godoc
// @Summary Delete a question
// @Tags questions
// @Param id path int true "Question ID"
// @Success 204
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/questions/{id} [delete]
func (qc *QuestionController) DeleteQuestion(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid question ID")
	}
	if err := qc.Questions.Delete(c.UserContext(), id); err != nil {
		return storeError(c, err, "Question not found")
	}
	return utils.NoContent(c)
}

// GetChapters godoc
// @Summary Chapters available per subject
// @Description Lists the chapters a test can be restricted to, with their question counts
// @Tags questions
// @Produce json
// @Param subject query string false "Subject"
// @Success 200 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /questions/chapters [get]
func (qc *QuestionController) GetChapters(c *fiber.Ctx) error {
	all, err := qc.Questions.All(c.UserContext())
	if err != nil {
		return utils.InternalServerError(c, "Failed to fetch questions")
	}

	type chapter struct {
		Subject   models.Subject `json:"subject"`
		Chapter   string         `json:"chapter"`
		Questions int            `json:"questions"`
	}
	subject := c.Query("subject")
	counts := map[[2]string]int{}
	for _, q := range all {
		if q.Chapter == "" || !matches(q, subject, "", "") {
			continue
		}
		counts[[2]string{string(q.Subject), q.Chapter}]++
	}

	chapters := make([]chapter, 0, len(counts))
	for key, n := range counts {
		chapters = append(chapters, chapter{Subject: models.Subject(key[0]), Chapter: key[1], Questions: n})
	}
	sort.Slice(chapters, func(i, j int) bool {
		if chapters[i].Subject != chapters[j].Subject {
			return chapters[i].Subject < chapters[j].Subject
		}
		return chapters[i].Chapter < chapters[j].Chapter
	})
	return utils.Success(c, fiber.StatusOK, chapters)
}
