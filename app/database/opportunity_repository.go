package database

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/openkeywords/keyword-comb/app/gap"
)

// OpportunityRepo handles database operations for stored keyword records
type OpportunityRepo struct {
	db *DB
}

var _ OpportunityRepository = (*OpportunityRepo)(nil)

func NewOpportunityRepository(db *DB) *OpportunityRepo {
	return &OpportunityRepo{db: db}
}

// StoreOpportunities inserts a ranked pool under an analysis in one
// transaction. keyword_lower is folded in Go rather than SQL so the
// stored tie-break order matches the ranker for non-ASCII keywords.
func (r *OpportunityRepo) StoreOpportunities(analysisID string, records []gap.KeywordRecord) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO opportunities (
			id, analysis_id, keyword, keyword_lower, volume, difficulty, level_difficulty,
			cpc, competition, word_count, serp_features, source_competitor,
			url, position, intent, intent_multiplier, matched_intents,
			aeo_serp_features, has_aeo_features, aeo_feature_boost, aeo_score
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, record := range records {
		_, err := stmt.Exec(
			uuid.NewString(), analysisID, record.Keyword, strings.ToLower(record.Keyword), record.Volume,
			record.Difficulty, record.LevelDifficulty, record.CPC, record.Competition,
			record.WordCount, strings.Join(record.SerpFeatures, "|"),
			record.SourceCompetitor, record.URL, record.Position,
			record.Intent, record.IntentMultiplier, strings.Join(record.MatchedIntents, "|"),
			strings.Join(record.AeoSerpFeatures, "|"), record.HasAeoFeatures,
			record.AeoFeatureBoost, record.AeoScore,
		)
		if err != nil {
			return fmt.Errorf("failed to insert opportunity %q: %w", record.Keyword, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit opportunities: %w", err)
	}
	return nil
}

// GetOpportunities returns an analysis' records ranked by score descending,
// volume descending, keyword ascending. A non-positive limit returns all.
func (r *OpportunityRepo) GetOpportunities(analysisID string, limit int) ([]Opportunity, error) {
	query := `
		SELECT id, analysis_id, keyword, volume, difficulty, level_difficulty,
		       cpc, competition, word_count, serp_features, source_competitor,
		       url, position, intent, intent_multiplier, matched_intents,
		       aeo_serp_features, has_aeo_features, aeo_feature_boost, aeo_score, created_at
		FROM opportunities
		WHERE analysis_id = ?
		ORDER BY aeo_score DESC, volume DESC, keyword_lower ASC, keyword ASC
	`
	args := []interface{}{analysisID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query opportunities: %w", err)
	}
	defer rows.Close()

	opportunities := []Opportunity{}
	for rows.Next() {
		var o Opportunity
		var serpFeatures, matchedIntents, aeoFeatures string

		err := rows.Scan(
			&o.ID, &o.AnalysisID, &o.Keyword, &o.Volume, &o.Difficulty, &o.LevelDifficulty,
			&o.CPC, &o.Competition, &o.WordCount, &serpFeatures, &o.SourceCompetitor,
			&o.URL, &o.Position, &o.Intent, &o.IntentMultiplier, &matchedIntents,
			&aeoFeatures, &o.HasAeoFeatures, &o.AeoFeatureBoost, &o.AeoScore, &o.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan opportunity: %w", err)
		}

		o.SerpFeatures = splitList(serpFeatures)
		o.MatchedIntents = splitList(matchedIntents)
		o.AeoSerpFeatures = splitList(aeoFeatures)

		opportunities = append(opportunities, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate opportunities: %w", err)
	}

	return opportunities, nil
}

func (r *OpportunityRepo) GetOpportunityCount(analysisID string) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM opportunities WHERE analysis_id = ?`, analysisID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count opportunities: %w", err)
	}
	return count, nil
}

func splitList(joined string) []string {
	if joined == "" {
		return []string{}
	}
	return strings.Split(joined, "|")
}
