package middleware

import (
	"neetprep/backend/config"
	"neetprep/backend/models"
	"neetprep/backend/repository"
	"neetprep/backend/utils"

	"github.com/gofiber/fiber/v2"
)

func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := utils.ExtractUserIDFromToken(c, cfg)
		if err != nil {
			return utils.Unauthorized(c, "Unauthorized")
		}
		c.Locals(utils.UserIDKey, userID)
		return c.Next()
	}
}

// AdminMiddleware lets the request through only for users whose role is admin.
func AdminMiddleware(cfg *config.Config, users repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := utils.ExtractUserIDFromToken(c, cfg)
		if err != nil {
			return utils.Unauthorized(c, "Unauthorized")
		}

		user, err := users.Get(c.UserContext(), userID)
		if err != nil {
			return utils.Unauthorized(c, "Unauthorized")
		}
		if user.Role != models.RoleAdmin {
			return utils.Forbidden(c, "Forbidden - Admin access required")
		}

		c.Locals(utils.UserIDKey, userID)
		return c.Next()
	}
}
