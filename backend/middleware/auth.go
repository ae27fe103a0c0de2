package middleware

import (
	"errors"

	"duotrack/backend/config"
	"duotrack/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// AdminMiddleware пускает дальше только запросы с валидным админским токеном
func AdminMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := utils.ExtractAdminFromToken(c, cfg); err != nil {
			status := fiber.StatusUnauthorized
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				status = fiberErr.Code
			}
			return c.Status(status).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Next()
	}
}
