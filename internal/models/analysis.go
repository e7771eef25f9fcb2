package models

import (
	"time"

	"github.com/google/uuid"
)

// Analysis is the stored summary of one ranking run. Résumé contents are
// never persisted, only derived scores.
type Analysis struct {
	ID             uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	JobDescription string         `gorm:"type:text" json:"job_description"`
	JobSkills      string         `gorm:"type:text" json:"job_skills"`
	ResumeCount    int            `gorm:"not null" json:"resume_count"`
	CreatedAt      time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	Entries        []RankingEntry `gorm:"foreignKey:AnalysisID;constraint:OnDelete:CASCADE" json:"entries,omitempty"`
}

func (Analysis) TableName() string {
	return "analyses"
}

// RankingEntry is one row of a stored ranking; Position starts at 1.
type RankingEntry struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	AnalysisID    uuid.UUID `gorm:"type:uuid;not null;index" json:"analysis_id"`
	Position      int       `gorm:"not null" json:"position"`
	Filename      string    `gorm:"type:text" json:"filename"`
	FitScore      int       `gorm:"not null" json:"fit_score"`
	ATSScore      int       `gorm:"not null" json:"ats_score"`
	Similarity    float64   `json:"similarity"`
	SkillOverlap  float64   `json:"skill_overlap"`
	MatchedSkills string    `gorm:"type:text" json:"matched_skills"`
	CreatedAt     time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (RankingEntry) TableName() string {
	return "ranking_entries"
}
