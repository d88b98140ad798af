package database

import (
	"time"

	"github.com/openkeywords/keyword-comb/app/gap"
)

// Target represents a configured analysis target in the database
type Target struct {
	ID             string // Database UUID
	Name           string // Configuration target identifier derived from filename
	Domain         string
	Source         string // market identifier, e.g. "us"
	Enabled        bool
	LastAnalyzedAt *time.Time
	NextAnalysisAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Analysis represents one gap analysis run and its summary statistics
type Analysis struct {
	ID                string // Database UUID
	TargetName        string
	StartedAt         time.Time
	CompletedAt       *time.Time
	Total             int
	AvgScore          float64
	AvgVolume         int
	AvgDifficulty     float64
	WithAeoFeatures   int
	QuestionCount     int
	FailedCompetitors []string
	CreatedAt         time.Time
}

// Opportunity is one stored keyword record of an analysis
type Opportunity struct {
	ID         string // Database UUID
	AnalysisID string
	gap.KeywordRecord
	CreatedAt time.Time
}
