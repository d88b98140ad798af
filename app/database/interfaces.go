package database

import (
	"time"

	"github.com/openkeywords/keyword-comb/app/gap"
)

type TargetRepository interface {
	GetTarget(targetName string) (*Target, error)
	GetTargetCount() (int, error)

	UpsertTarget(targetName, domain, source string, enabled bool) (bool, error)
	UpdateTargetAnalyzed(targetName string, analyzedAt time.Time, nextAnalysisAt time.Time) error
}

type AnalysisRepository interface {
	CreateAnalysis(targetName string, startedAt time.Time) (string, error)
	CompleteAnalysis(analysisID string, stats gap.SummaryStats, failedCompetitors []string, completedAt time.Time) error

	GetLatestAnalysis(targetName string) (*Analysis, error)
	GetAnalysisCount() (int, error)
}

type OpportunityRepository interface {
	StoreOpportunities(analysisID string, records []gap.KeywordRecord) error

	GetOpportunities(analysisID string, limit int) ([]Opportunity, error)
	GetOpportunityCount(analysisID string) (int, error)
}
