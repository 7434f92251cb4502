package controllers

import (
	"errors"

	"neetprep/backend/config"
	"neetprep/backend/repository"
	"neetprep/backend/services"
	"neetprep/backend/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type UserController struct {
	Users    repository.UserRepository
	Progress *services.ProgressService
	Cfg      *config.Config
}

func NewUserController(users repository.UserRepository, progress *services.ProgressService, cfg *config.Config) *UserController {
	return &UserController{Users: users, Progress: progress, Cfg: cfg}
}

type UpdateUserRequest struct {
	Username    string `json:"username" example:"john_doe" minLength:"3" maxLength:"20"`
	Email       string `json:"email" example:"user@example.com" format:"email"`
	OldPassword string `json:"old_password" example:"oldPassword123" minLength:"6"`
	NewPassword string `json:"new_password" example:"newPassword123" minLength:"6"`
	Group       string `json:"group"`
	University  string `json:"university"`
}

// GetProfile godoc
// @Summary Get user profile
// @Description Returns authenticated user's profile data with their progress overview
// @Tags users
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/profile [get]
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	userID, subject, err := currentUser(c, uc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	user, err := uc.Users.Get(c.UserContext(), userID)
	if err != nil {
		return utils.NotFound(c, "User not found")
	}

	progress, err := uc.Progress.Get(c.UserContext(), subject)
	if err != nil {
		return utils.InternalServerError(c, "Could not load progress")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"id":         user.ID,
		"username":   user.Username,
		"email":      user.Email,
		"role":       user.Role,
		"group":      user.Group,
		"university": user.University,
		"created_at": user.CreatedAt,
		"overview":   services.BuildOverview(progress),
	})
}

// UpdateProfile godoc
// @Summary Update user profile
// @Tags users
// @Accept json
// @Produce json
// @Param input body UpdateUserRequest true "Profile update data"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/profile [put]
func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	userID, _, err := currentUser(c, uc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input UpdateUserRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	ctx := c.UserContext()
	user, err := uc.Users.Get(ctx, userID)
	if err != nil {
		return utils.NotFound(c, "User not found")
	}

	if input.Username != "" && input.Username != user.Username {
		if existing, err := uc.Users.FindByUsername(ctx, input.Username); err == nil && existing.ID != user.ID {
			return utils.BadRequest(c, "Username already taken")
		}
		user.Username = input.Username
	}

	if input.Email != "" && input.Email != user.Email {
		if existing, err := uc.Users.FindByEmail(ctx, input.Email); err == nil && existing.ID != user.ID {
			return utils.BadRequest(c, "Email already taken")
		}
		user.Email = input.Email
	}

	if input.NewPassword != "" {
		if input.OldPassword == "" {
			return utils.BadRequest(c, "Old password is required to set new password")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.OldPassword)); err != nil {
			return utils.Unauthorized(c, "Invalid old password")
		}
		if len(input.NewPassword) < minPasswordLength {
			return utils.BadRequest(c, "New password is too short")
		}
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return utils.InternalServerError(c, "Could not hash password")
		}
		user.PasswordHash = string(hashedPassword)
	}

	if input.Group != "" {
		user.Group = input.Group
	}
	if input.University != "" {
		user.University = input.University
	}

	if err := uc.Users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return utils.Conflict(c, "Username or email already taken")
		}
		return utils.InternalServerError(c, "Could not update user")
	}

	return utils.SuccessMessage(c, fiber.StatusOK, "Profile updated successfully", fiber.Map{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
}
