package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/repositories"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type ResultHandler struct {
	analysisRepo repositories.AnalysisRepository
}

// NewResultHandler serves stored analyses; a nil repository means history
// is disabled and every lookup is a 404.
func NewResultHandler(analysisRepo repositories.AnalysisRepository) *ResultHandler {
	return &ResultHandler{
		analysisRepo: analysisRepo,
	}
}

// HandleGetAnalysis handles GET /analyses/:id
func (h *ResultHandler) HandleGetAnalysis(c *fiber.Ctx) error {
	if h.analysisRepo == nil {
		return historyDisabled(c)
	}

	analysisID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid analysis ID format",
		})
	}

	analysis, err := h.analysisRepo.FindByID(analysisID)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	summary := summarize(analysis)
	summary.Ranking = make([]models.RankingRow, 0, len(analysis.Entries))
	for _, e := range analysis.Entries {
		summary.Ranking = append(summary.Ranking, models.RankingRow{
			Resume:   e.Filename,
			FitScore: e.FitScore,
			ATSScore: e.ATSScore,
		})
	}

	return c.JSON(summary)
}

// HandleListAnalyses handles GET /analyses?limit=N
func (h *ResultHandler) HandleListAnalyses(c *fiber.Ctx) error {
	if h.analysisRepo == nil {
		return historyDisabled(c)
	}

	limit := c.QueryInt("limit", defaultListLimit)
	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}

	analyses, err := h.analysisRepo.FindRecent(limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list analyses",
		})
	}

	summaries := make([]models.AnalysisSummary, 0, len(analyses))
	for i := range analyses {
		summaries = append(summaries, summarize(&analyses[i]))
	}

	return c.JSON(fiber.Map{
		"analyses": summaries,
	})
}

func summarize(a *models.Analysis) models.AnalysisSummary {
	skills := []string{}
	if a.JobSkills != "" {
		skills = strings.Split(a.JobSkills, ",")
	}
	return models.AnalysisSummary{
		ID:          a.ID.String(),
		ResumeCount: a.ResumeCount,
		JobSkills:   skills,
		CreatedAt:   a.CreatedAt.Format(time.RFC3339),
	}
}

func historyDisabled(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": "analysis history is disabled",
	})
}
