package controllers

import (
	"errors"
	"log"
	"strings"
	"time"

	"neetprep/backend/config"
	"neetprep/backend/models"
	"neetprep/backend/repository"
	"neetprep/backend/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

type AuthController struct {
	Users  repository.UserRepository
	Cfg    *config.Config
	Logger *log.Logger
}

func NewAuthController(users repository.UserRepository, cfg *config.Config, logger *log.Logger) *AuthController {
	if logger == nil {
		logger = log.Default()
	}
	return &AuthController{Users: users, Cfg: cfg, Logger: logger}
}

type RegisterRequest struct {
	Username   string `json:"username" example:"john_doe"`
	Email      string `json:"email" example:"user@example.com"`
	Password   string `json:"password" example:"password123" minLength:"6"`
	Group      string `json:"group"`
	University string `json:"university"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func authResponse(token string, user *models.User) fiber.Map {
	return fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
			"role":     user.Role,
		},
	}
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "User registration data"
// @Success 201 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /auth/register [post]
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var input RegisterRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)

	problems := map[string]string{}
	if input.Username == "" {
		problems["username"] = "is required"
	}
	if !strings.Contains(input.Email, "@") {
		problems["email"] = "must be a valid email address"
	}
	if len(input.Password) < minPasswordLength {
		problems["password"] = "must be at least 6 characters"
	}
	if len(problems) > 0 {
		return utils.ValidationError(c, problems)
	}

	ctx := c.UserContext()
	if _, err := ac.Users.FindByUsername(ctx, input.Username); err == nil {
		return utils.Conflict(c, "Username already taken")
	}
	if _, err := ac.Users.FindByEmail(ctx, input.Email); err == nil {
		return utils.Conflict(c, "Email already taken")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.InternalServerError(c, "Could not hash password")
	}

	user := models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		Role:         models.RoleUser,
		Group:        input.Group,
		University:   input.University,
	}
	if ac.Cfg.AdminUsername != "" && user.Username == ac.Cfg.AdminUsername {
		user.Role = models.RoleAdmin
	}

	if err := ac.Users.Create(ctx, &user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return utils.Conflict(c, "Username or email already taken")
		}
		return utils.InternalServerError(c, "Could not create user")
	}

	token, err := utils.GenerateJWTToken(user.ID, ac.Cfg)
	if err != nil {
		return utils.InternalServerError(c, "Could not generate token")
	}

	return utils.Success(c, fiber.StatusCreated, authResponse(token, &user))
}

// Login godoc
// @Summary User login
// @Description Authenticate user and return JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Router /auth/login [post]
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var input LoginRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	ctx := c.UserContext()
	user, err := ac.Users.FindByUsername(ctx, strings.TrimSpace(input.Username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return utils.Unauthorized(c, "Invalid credentials")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return utils.Unauthorized(c, "Invalid credentials")
	}

	token, err := utils.GenerateJWTToken(user.ID, ac.Cfg)
	if err != nil {
		return utils.InternalServerError(c, "Could not generate token")
	}

	// login history is best effort
	if err := ac.Users.RecordLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		ac.Logger.Printf("record login for user %d: %v", user.ID, err)
	}

	return utils.Success(c, fiber.StatusOK, authResponse(token, user))
}
