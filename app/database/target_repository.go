package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TargetRepo handles database operations for analysis targets
type TargetRepo struct {
	db *DB
}

var _ TargetRepository = (*TargetRepo)(nil)

func NewTargetRepository(db *DB) *TargetRepo {
	return &TargetRepo{db: db}
}

// UpsertTarget inserts or updates a target from its configuration and
// reports whether an existing target's domain changed.
func (r *TargetRepo) UpsertTarget(targetName, domain, source string, enabled bool) (bool, error) {
	existing, err := r.GetTarget(targetName)
	if err != nil {
		return false, fmt.Errorf("failed to check existing target: %w", err)
	}

	if existing != nil {
		domainChanged := existing.Domain != domain

		_, err = r.db.Exec(`
			UPDATE targets
			SET domain = ?, source = ?, enabled = ?, updated_at = CURRENT_TIMESTAMP
			WHERE name = ?
		`, domain, source, enabled, targetName)
		if err != nil {
			return false, fmt.Errorf("failed to update target: %w", err)
		}
		return domainChanged, nil
	}

	_, err = r.db.Exec(`
		INSERT INTO targets (id, name, domain, source, enabled)
		VALUES (?, ?, ?, ?, ?)
	`, uuid.NewString(), targetName, domain, source, enabled)
	if err != nil {
		return false, fmt.Errorf("failed to insert target: %w", err)
	}

	return false, nil
}

func (r *TargetRepo) GetTarget(targetName string) (*Target, error) {
	var target Target
	err := r.db.QueryRow(`
		SELECT id, name, domain, source, enabled, last_analyzed_at, next_analysis_at, created_at, updated_at
		FROM targets
		WHERE name = ?
	`, targetName).Scan(
		&target.ID, &target.Name, &target.Domain, &target.Source, &target.Enabled,
		&target.LastAnalyzedAt, &target.NextAnalysisAt, &target.CreatedAt, &target.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get target: %w", err)
	}

	return &target, nil
}

func (r *TargetRepo) GetTargetCount() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM targets`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count targets: %w", err)
	}
	return count, nil
}

// UpdateTargetAnalyzed records a completed run and schedules the next one.
func (r *TargetRepo) UpdateTargetAnalyzed(targetName string, analyzedAt time.Time, nextAnalysisAt time.Time) error {
	_, err := r.db.Exec(`
		UPDATE targets
		SET last_analyzed_at = ?, next_analysis_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE name = ?
	`, analyzedAt.UTC(), nextAnalysisAt.UTC(), targetName)
	if err != nil {
		return fmt.Errorf("failed to update target analysis timestamps: %w", err)
	}
	return nil
}
