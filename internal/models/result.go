package models

import "alfredoptarigan/resume-screener/internal/scoring"

type RankingRow struct {
	Resume   string `json:"resume"`
	FitScore int    `json:"fit_score"`
	ATSScore int    `json:"ats_score"`
}

type ResumeResult struct {
	Filename      string   `json:"filename"`
	FitScore      int      `json:"fit_score"`
	ATSScore      int      `json:"ats_score"`
	Similarity    float64  `json:"similarity"`
	SkillOverlap  float64  `json:"skill_overlap"`
	Skills        []string `json:"skills"`
	MatchedSkills []string `json:"matched_skills"`
	Suggestions   []string `json:"suggestions"`
	Text          string   `json:"text"`
}

type AnalyzeResponse struct {
	ID        string         `json:"id,omitempty"`
	JobSkills []string       `json:"job_skills"`
	Ranking   []RankingRow   `json:"ranking"`
	Resumes   []ResumeResult `json:"resumes"`
}

type AnalysisSummary struct {
	ID          string       `json:"id"`
	ResumeCount int          `json:"resume_count"`
	JobSkills   []string     `json:"job_skills"`
	CreatedAt   string       `json:"created_at"`
	Ranking     []RankingRow `json:"ranking,omitempty"`
}

// NewAnalyzeResponse flattens a scoring run for JSON output.
func NewAnalyzeResponse(a *scoring.Analysis) AnalyzeResponse {
	response := AnalyzeResponse{
		JobSkills: nonNil(a.JobSkills),
		Ranking:   make([]RankingRow, 0, len(a.Ranking)),
		Resumes:   make([]ResumeResult, 0, len(a.Results)),
	}

	for _, row := range a.Ranking {
		response.Ranking = append(response.Ranking, RankingRow{
			Resume:   row.Filename,
			FitScore: row.FitScore,
			ATSScore: row.ATSScore,
		})
	}

	for _, r := range a.Results {
		response.Resumes = append(response.Resumes, ResumeResult{
			Filename:      r.Filename,
			FitScore:      r.FitScore,
			ATSScore:      r.ATSScore,
			Similarity:    r.Similarity,
			SkillOverlap:  r.SkillOverlap,
			Skills:        nonNil(r.Skills),
			MatchedSkills: nonNil(r.MatchedJobSkills),
			Suggestions:   r.Suggestions,
			Text:          r.NormalizedText,
		})
	}

	return response
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
