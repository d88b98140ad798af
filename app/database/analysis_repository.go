package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/openkeywords/keyword-comb/app/gap"
)

// AnalysisRepo handles database operations for gap analysis runs
type AnalysisRepo struct {
	db *DB
}

var _ AnalysisRepository = (*AnalysisRepo)(nil)

func NewAnalysisRepository(db *DB) *AnalysisRepo {
	return &AnalysisRepo{db: db}
}

func (r *AnalysisRepo) CreateAnalysis(targetName string, startedAt time.Time) (string, error) {
	id := uuid.NewString()
	_, err := r.db.Exec(`
		INSERT INTO analyses (id, target_name, started_at)
		VALUES (?, ?, ?)
	`, id, targetName, startedAt.UTC())
	if err != nil {
		return "", fmt.Errorf("failed to create analysis: %w", err)
	}
	return id, nil
}

func (r *AnalysisRepo) CompleteAnalysis(analysisID string, stats gap.SummaryStats, failedCompetitors []string, completedAt time.Time) error {
	_, err := r.db.Exec(`
		UPDATE analyses
		SET completed_at = ?, total_opportunities = ?, avg_score = ?, avg_volume = ?,
		    avg_difficulty = ?, with_aeo_features = ?, question_keywords = ?, failed_competitors = ?
		WHERE id = ?
	`, completedAt.UTC(), stats.Total, stats.AvgScore, stats.AvgVolume,
		stats.AvgDifficulty, stats.WithAeoFeatures, stats.QuestionCount,
		strings.Join(failedCompetitors, "|"), analysisID)
	if err != nil {
		return fmt.Errorf("failed to complete analysis: %w", err)
	}
	return nil
}

// GetLatestAnalysis returns the most recently started completed run for a
// target, or nil when the target has never been analyzed.
func (r *AnalysisRepo) GetLatestAnalysis(targetName string) (*Analysis, error) {
	var analysis Analysis
	var failed string

	err := r.db.QueryRow(`
		SELECT id, target_name, started_at, completed_at, total_opportunities,
		       avg_score, avg_volume, avg_difficulty, with_aeo_features,
		       question_keywords, failed_competitors, created_at
		FROM analyses
		WHERE target_name = ? AND completed_at IS NOT NULL
		ORDER BY started_at DESC
		LIMIT 1
	`, targetName).Scan(
		&analysis.ID, &analysis.TargetName, &analysis.StartedAt, &analysis.CompletedAt,
		&analysis.Total, &analysis.AvgScore, &analysis.AvgVolume, &analysis.AvgDifficulty,
		&analysis.WithAeoFeatures, &analysis.QuestionCount, &failed, &analysis.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest analysis: %w", err)
	}

	if failed != "" {
		analysis.FailedCompetitors = strings.Split(failed, "|")
	}

	return &analysis, nil
}

func (r *AnalysisRepo) GetAnalysisCount() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM analyses WHERE completed_at IS NOT NULL`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count analyses: %w", err)
	}
	return count, nil
}
