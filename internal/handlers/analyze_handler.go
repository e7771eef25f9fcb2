package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/logger"
	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/repositories"
	"alfredoptarigan/resume-screener/internal/scoring"
	"alfredoptarigan/resume-screener/internal/services"
)

type AnalyzeHandler struct {
	screening    services.ScreeningService
	storage      services.StorageService
	analysisRepo repositories.AnalysisRepository
	maxDocuments int
	log          *zap.Logger
}

// NewAnalyzeHandler wires the analyze endpoint. analysisRepo may be nil,
// in which case runs are not stored.
func NewAnalyzeHandler(
	screening services.ScreeningService,
	storage services.StorageService,
	analysisRepo repositories.AnalysisRepository,
	maxDocuments int,
	log *zap.Logger,
) *AnalyzeHandler {
	return &AnalyzeHandler{
		screening:    screening,
		storage:      storage,
		analysisRepo: analysisRepo,
		maxDocuments: maxDocuments,
		log:          log,
	}
}

// HandleAnalyze handles POST /analyze
func (h *AnalyzeHandler) HandleAnalyze(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to parse multipart form",
		})
	}

	var jobDescription string
	if values := form.Value["job_description"]; len(values) > 0 {
		jobDescription = values[0]
	}
	if strings.TrimSpace(jobDescription) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": services.ErrMissingJobDescription.Error(),
		})
	}

	files := form.File["resumes"]
	if len(files) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": services.ErrNoDocumentsProvided.Error(),
		})
	}

	if h.maxDocuments > 0 && len(files) > h.maxDocuments {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("too many resumes. Max: %d", h.maxDocuments),
		})
	}

	docs, err := h.storage.ReadFiles(files)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	h.log.Info("analyzing resumes",
		zap.Int("resumes", len(docs)),
		zap.String("job_description", logger.Preview(jobDescription, 80)),
	)

	analysis, err := h.screening.Analyze(c.UserContext(), jobDescription, docs, func(done, total int) {
		h.log.Debug("extraction progress", zap.Int("done", done), zap.Int("total", total))
	})
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	response := models.NewAnalyzeResponse(analysis)

	if h.analysisRepo != nil {
		record := newAnalysisRecord(jobDescription, analysis)
		if err := h.analysisRepo.Create(record); err != nil {
			// Results are still returned; only history is lost.
			h.log.Error("failed to store analysis", zap.Error(err))
		} else {
			response.ID = record.ID.String()
		}
	}

	return c.JSON(response)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrMissingJobDescription),
		errors.Is(err, services.ErrNoDocumentsProvided),
		errors.Is(err, services.ErrUnsupportedDocument),
		errors.Is(err, services.ErrDocumentTooLarge):
		return fiber.StatusBadRequest
	case errors.Is(err, repositories.ErrAnalysisNotFound):
		return fiber.StatusNotFound
	}
	return fiber.StatusInternalServerError
}

// newAnalysisRecord stores the ranking in fit order.
func newAnalysisRecord(jobDescription string, a *scoring.Analysis) *models.Analysis {
	record := &models.Analysis{
		ID:             uuid.New(),
		JobDescription: jobDescription,
		JobSkills:      strings.Join(a.JobSkills, ","),
		ResumeCount:    len(a.Results),
	}

	for i, row := range a.Ranking {
		r := a.Results[row.Index]
		record.Entries = append(record.Entries, models.RankingEntry{
			ID:            uuid.New(),
			AnalysisID:    record.ID,
			Position:      i + 1,
			Filename:      row.Filename,
			FitScore:      row.FitScore,
			ATSScore:      row.ATSScore,
			Similarity:    r.Similarity,
			SkillOverlap:  r.SkillOverlap,
			MatchedSkills: strings.Join(r.MatchedJobSkills, ","),
		})
	}

	return record
}
