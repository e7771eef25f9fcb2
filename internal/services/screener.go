package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/scoring"
)

var (
	ErrMissingJobDescription = errors.New("job description is required")
	ErrNoDocumentsProvided   = errors.New("at least one resume is required")
)

// ProgressFunc is called after each document's text is extracted.
type ProgressFunc func(done, total int)

// ScreeningService runs one analysis: validate, extract, score, rank.
type ScreeningService interface {
	Analyze(ctx context.Context, jobDescription string, docs []UploadedDocument, progress ProgressFunc) (*scoring.Analysis, error)
}

type screeningService struct {
	extractor TextExtractor
	scorer    *scoring.Scorer
	logger    *zap.Logger
}

func NewScreeningService(extractor TextExtractor, scorer *scoring.Scorer, logger *zap.Logger) ScreeningService {
	return &screeningService{
		extractor: extractor,
		scorer:    scorer,
		logger:    logger,
	}
}

// Analyze implements ScreeningService.
func (s *screeningService) Analyze(ctx context.Context, jobDescription string, docs []UploadedDocument, progress ProgressFunc) (*scoring.Analysis, error) {
	if strings.TrimSpace(jobDescription) == "" {
		return nil, ErrMissingJobDescription
	}
	if len(docs) == 0 {
		return nil, ErrNoDocumentsProvided
	}

	s.logger.Info("starting analysis", zap.Int("resumes", len(docs)))

	scored := make([]scoring.Document, 0, len(docs))
	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pages := s.extractor.ExtractPages(doc.Filename, doc.Data)
		text := JoinPages(pages)
		if strings.TrimSpace(text) == "" {
			s.logger.Warn("no text extracted", zap.String("filename", doc.Filename))
		}

		scored = append(scored, scoring.Document{Filename: doc.Filename, Text: text})

		s.logger.Debug("text extracted",
			zap.String("filename", doc.Filename),
			zap.Int("pages", len(pages)),
			zap.Int("chars", len(text)),
		)
		if progress != nil {
			progress(i+1, len(docs))
		}
	}

	analysis := s.scorer.Rank(jobDescription, scored)

	s.logger.Info("analysis completed",
		zap.Int("resumes", len(analysis.Results)),
		zap.Strings("job_skills", analysis.JobSkills),
	)
	return analysis, nil
}
