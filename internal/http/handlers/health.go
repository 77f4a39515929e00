package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// HandleHealth is the liveness endpoint consumed by the web front end.
func HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339Nano),
	})
}
