package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// Register mounts the API endpoints on api (usually /api/v1).
func Register(api fiber.Router, analyzeHandler *AnalyzeHandler, resultHandler *ResultHandler) {
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api.Post("/analyze", analyzeHandler.HandleAnalyze)
	api.Get("/analyses", resultHandler.HandleListAnalyses)
	api.Get("/analyses/:id", resultHandler.HandleGetAnalysis)
}
