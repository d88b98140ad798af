package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/openkeywords/keyword-comb/app/gap"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewConnection(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return db
}

func TestTargetRepo_UpsertTarget(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTargetRepository(db)

	domainChanged, err := repo.UpsertTarget("example", "example.com", "us", true)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if domainChanged {
		t.Errorf("Fresh insert should not report a domain change")
	}

	target, err := repo.GetTarget("example")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if target == nil {
		t.Fatalf("Expected target to exist after upsert")
	}
	if target.Domain != "example.com" || target.Source != "us" || !target.Enabled {
		t.Errorf("Unexpected target: %+v", target)
	}
	if target.ID == "" {
		t.Errorf("Expected a generated ID")
	}
}

func TestTargetRepo_UpsertTarget_DomainChange(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTargetRepository(db)

	if _, err := repo.UpsertTarget("example", "old.example.com", "us", true); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	domainChanged, err := repo.UpsertTarget("example", "new.example.com", "us", true)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !domainChanged {
		t.Errorf("Expected domain change to be reported")
	}

	// Same domain again: no change reported.
	domainChanged, err = repo.UpsertTarget("example", "new.example.com", "uk", false)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if domainChanged {
		t.Errorf("Expected no domain change for same domain")
	}

	target, _ := repo.GetTarget("example")
	if target.Source != "uk" || target.Enabled {
		t.Errorf("Expected source and enabled updated, got %+v", target)
	}
}

func TestTargetRepo_GetTarget_Missing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTargetRepository(db)

	target, err := repo.GetTarget("missing")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if target != nil {
		t.Errorf("Expected nil for unknown target, got %+v", target)
	}
}

func TestTargetRepo_UpdateTargetAnalyzed(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTargetRepository(db)

	if _, err := repo.UpsertTarget("example", "example.com", "us", true); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	analyzedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	nextAt := analyzedAt.Add(24 * time.Hour)
	if err := repo.UpdateTargetAnalyzed("example", analyzedAt, nextAt); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	target, _ := repo.GetTarget("example")
	if target.LastAnalyzedAt == nil || !target.LastAnalyzedAt.Equal(analyzedAt) {
		t.Errorf("Expected last_analyzed_at %v, got %v", analyzedAt, target.LastAnalyzedAt)
	}
	if target.NextAnalysisAt == nil || !target.NextAnalysisAt.Equal(nextAt) {
		t.Errorf("Expected next_analysis_at %v, got %v", nextAt, target.NextAnalysisAt)
	}
}

func TestAnalysisRepo_Lifecycle(t *testing.T) {
	db := setupTestDB(t)
	targetRepo := NewTargetRepository(db)
	repo := NewAnalysisRepository(db)

	if _, err := targetRepo.UpsertTarget("example", "example.com", "us", true); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	startedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	analysisID, err := repo.CreateAnalysis("example", startedAt)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if analysisID == "" {
		t.Fatalf("Expected a generated analysis ID")
	}

	// In-flight run is invisible to GetLatestAnalysis.
	latest, err := repo.GetLatestAnalysis("example")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if latest != nil {
		t.Errorf("Expected no completed analysis yet, got %+v", latest)
	}

	stats := gap.SummaryStats{
		Total:           5,
		AvgScore:        84.2,
		AvgVolume:       900,
		AvgDifficulty:   18.4,
		WithAeoFeatures: 3,
		QuestionCount:   2,
	}
	completedAt := startedAt.Add(2 * time.Minute)
	if err := repo.CompleteAnalysis(analysisID, stats, []string{"down.com"}, completedAt); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	latest, err = repo.GetLatestAnalysis("example")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if latest == nil {
		t.Fatalf("Expected completed analysis")
	}
	if latest.ID != analysisID {
		t.Errorf("Expected analysis %s, got %s", analysisID, latest.ID)
	}
	if latest.Total != 5 || latest.AvgScore != 84.2 || latest.QuestionCount != 2 {
		t.Errorf("Unexpected stats: %+v", latest)
	}
	if len(latest.FailedCompetitors) != 1 || latest.FailedCompetitors[0] != "down.com" {
		t.Errorf("Unexpected failed competitors: %v", latest.FailedCompetitors)
	}

	count, err := repo.GetAnalysisCount()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 completed analysis, got %d", count)
	}
}

func TestAnalysisRepo_GetLatestAnalysis_PicksNewest(t *testing.T) {
	db := setupTestDB(t)
	targetRepo := NewTargetRepository(db)
	repo := NewAnalysisRepository(db)

	if _, err := targetRepo.UpsertTarget("example", "example.com", "us", true); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	older := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	newer := older.Add(24 * time.Hour)

	oldID, _ := repo.CreateAnalysis("example", older)
	newID, _ := repo.CreateAnalysis("example", newer)

	repo.CompleteAnalysis(oldID, gap.SummaryStats{Total: 1}, nil, older.Add(time.Minute))
	repo.CompleteAnalysis(newID, gap.SummaryStats{Total: 2}, nil, newer.Add(time.Minute))

	latest, err := repo.GetLatestAnalysis("example")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if latest.ID != newID {
		t.Errorf("Expected newest analysis %s, got %s", newID, latest.ID)
	}
}

func TestOpportunityRepo_StoreAndGet(t *testing.T) {
	db := setupTestDB(t)
	targetRepo := NewTargetRepository(db)
	analysisRepo := NewAnalysisRepository(db)
	repo := NewOpportunityRepository(db)

	if _, err := targetRepo.UpsertTarget("example", "example.com", "us", true); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	analysisID, err := analysisRepo.CreateAnalysis("example", time.Now().UTC())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	records := []gap.KeywordRecord{
		{
			Keyword: "how to reduce churn", Volume: 800, Difficulty: 20, LevelDifficulty: 25,
			CPC: 2.5, Competition: 0.15, WordCount: 4,
			SerpFeatures:     []string{"featured_snippet", "people_also_ask"},
			SourceCompetitor: "rival.com", URL: "https://rival.com/churn", Position: 4,
			Intent: "question", IntentMultiplier: 1.5, MatchedIntents: []string{"question"},
			AeoSerpFeatures: []string{"featured_snippet", "people_also_ask"},
			HasAeoFeatures:  true, AeoFeatureBoost: 1.3, AeoScore: 74.29,
		},
		{
			Keyword: "churn benchmarks saas", Volume: 800, Intent: "other",
			IntentMultiplier: 1.0, AeoFeatureBoost: 1.0, AeoScore: 74.29,
		},
		{
			Keyword: "low scorer keyword", Volume: 100, Intent: "other",
			IntentMultiplier: 1.0, AeoFeatureBoost: 1.0, AeoScore: 3.5,
		},
	}

	if err := repo.StoreOpportunities(analysisID, records); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	opportunities, err := repo.GetOpportunities(analysisID, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(opportunities) != 3 {
		t.Fatalf("Expected 3 opportunities, got %d", len(opportunities))
	}

	// Ranked read: equal scores and volumes fall back to keyword order.
	if opportunities[0].Keyword != "churn benchmarks saas" {
		t.Errorf("Expected 'churn benchmarks saas' first on keyword tie-break, got %q", opportunities[0].Keyword)
	}
	if opportunities[2].Keyword != "low scorer keyword" {
		t.Errorf("Expected lowest score last, got %q", opportunities[2].Keyword)
	}

	full := opportunities[1]
	if full.Keyword != "how to reduce churn" {
		t.Fatalf("Unexpected middle record: %q", full.Keyword)
	}
	if len(full.SerpFeatures) != 2 || len(full.AeoSerpFeatures) != 2 {
		t.Errorf("Expected list fields restored, got %v / %v", full.SerpFeatures, full.AeoSerpFeatures)
	}
	if len(full.MatchedIntents) != 1 || full.MatchedIntents[0] != "question" {
		t.Errorf("Expected matched intents restored, got %v", full.MatchedIntents)
	}
	if !full.HasAeoFeatures || full.AeoFeatureBoost != 1.3 || full.IntentMultiplier != 1.5 {
		t.Errorf("Scoring fields mismatch: %+v", full)
	}

	count, err := repo.GetOpportunityCount(analysisID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if count != 3 {
		t.Errorf("Expected count 3, got %d", count)
	}
}

func TestOpportunityRepo_GetOpportunities_Limit(t *testing.T) {
	db := setupTestDB(t)
	targetRepo := NewTargetRepository(db)
	analysisRepo := NewAnalysisRepository(db)
	repo := NewOpportunityRepository(db)

	targetRepo.UpsertTarget("example", "example.com", "us", true)
	analysisID, _ := analysisRepo.CreateAnalysis("example", time.Now().UTC())

	records := []gap.KeywordRecord{
		{Keyword: "first keyword", AeoScore: 90, IntentMultiplier: 1, AeoFeatureBoost: 1},
		{Keyword: "second keyword", AeoScore: 50, IntentMultiplier: 1, AeoFeatureBoost: 1},
		{Keyword: "third keyword", AeoScore: 10, IntentMultiplier: 1, AeoFeatureBoost: 1},
	}
	if err := repo.StoreOpportunities(analysisID, records); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	opportunities, err := repo.GetOpportunities(analysisID, 2)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(opportunities) != 2 {
		t.Fatalf("Expected 2 opportunities with limit, got %d", len(opportunities))
	}
	if opportunities[0].Keyword != "first keyword" {
		t.Errorf("Expected highest score first, got %q", opportunities[0].Keyword)
	}
}

func TestOpportunityRepo_EmptyAnalysis(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOpportunityRepository(db)

	opportunities, err := repo.GetOpportunities("no-such-analysis", 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(opportunities) != 0 {
		t.Errorf("Expected no opportunities, got %d", len(opportunities))
	}
}

func TestOpportunityRepo_GetOpportunities_NonASCIIOrdering(t *testing.T) {
	db := setupTestDB(t)
	targetRepo := NewTargetRepository(db)
	analysisRepo := NewAnalysisRepository(db)
	repo := NewOpportunityRepository(db)

	if _, err := targetRepo.UpsertTarget("example", "example.de", "de", true); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	analysisID, err := analysisRepo.CreateAnalysis("example", time.Now().UTC())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Both fold to "ärmel ..." in Go; SQLite's ASCII-only LOWER would
	// leave the leading "Ä" untouched and invert the tie-break.
	records := []gap.KeywordRecord{
		{
			Keyword: "ärmel abnehmen anleitung", Volume: 500, Intent: "other",
			IntentMultiplier: 1.0, AeoFeatureBoost: 1.0, AeoScore: 25.0,
		},
		{
			Keyword: "Ärmel kürzen anleitung", Volume: 500, Intent: "other",
			IntentMultiplier: 1.0, AeoFeatureBoost: 1.0, AeoScore: 25.0,
		},
	}

	if err := repo.StoreOpportunities(analysisID, records); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	opportunities, err := repo.GetOpportunities(analysisID, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(opportunities) != 2 {
		t.Fatalf("Expected 2 opportunities, got %d", len(opportunities))
	}
	if opportunities[0].Keyword != "ärmel abnehmen anleitung" {
		t.Errorf("Expected Unicode-folded tie-break first, got %q", opportunities[0].Keyword)
	}
	if opportunities[1].Keyword != "Ärmel kürzen anleitung" {
		t.Errorf("Expected %q second, got %q", "Ärmel kürzen anleitung", opportunities[1].Keyword)
	}
}
