package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openkeywords/keyword-comb/app/database"
	"github.com/openkeywords/keyword-comb/app/gap"
	"github.com/openkeywords/keyword-comb/app/providers"
	"github.com/openkeywords/keyword-comb/app/serp"
)

// MetricsAPI is the keyword-metrics/SERP collaborator used for optional
// enrichment. A not-configured implementation reports so and is skipped.
type MetricsAPI interface {
	IsConfigured() bool
	Search(ctx context.Context, query string, numResults int, lang, country string) *serp.Response
	GetKeywordData(ctx context.Context, keywords []string, lang, country string) (map[string]providers.KeywordMetrics, error)
	GetKeywordDifficulty(ctx context.Context, keywords []string, lang, country string) (map[string]int, error)
}

// AnalyzeGapTask runs the full opportunity pipeline for one target:
// collect gap keywords, optionally enrich metrics, filter to long-tail
// candidates, classify intent, score SERP features, compute opportunity
// scores, rank, and persist the result.
type AnalyzeGapTask struct {
	Task
	TargetConfig *gap.Config

	collector     *gap.Collector
	filterer      *gap.Filterer
	classifier    *gap.Classifier
	featureScorer *gap.FeatureScorer
	ranker        *gap.Ranker
	metrics       MetricsAPI

	targetRepo      database.TargetRepository
	analysisRepo    database.AnalysisRepository
	opportunityRepo database.OpportunityRepository
}

func NewAnalyzeGapTask(targetName string, targetConfig *gap.Config,
	comparisonAPI gap.ComparisonAPI, metrics MetricsAPI,
	targetRepo database.TargetRepository, analysisRepo database.AnalysisRepository,
	opportunityRepo database.OpportunityRepository) *AnalyzeGapTask {
	return &AnalyzeGapTask{
		Task:            NewTask(TaskTypeAnalyzeGap, targetName),
		TargetConfig:    targetConfig,
		collector:       gap.NewCollector(comparisonAPI),
		filterer:        gap.NewFilterer(),
		classifier:      gap.NewClassifier(),
		featureScorer:   gap.NewFeatureScorer(),
		ranker:          gap.NewRanker(),
		metrics:         metrics,
		targetRepo:      targetRepo,
		analysisRepo:    analysisRepo,
		opportunityRepo: opportunityRepo,
	}
}

func (t *AnalyzeGapTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.TargetConfig.Settings.Enabled {
		slog.Debug("Target disabled, skipping", "target", t.TargetName)
		return nil
	}

	startedAt := time.Now().UTC()
	analysisID, err := t.analysisRepo.CreateAnalysis(t.TargetName, startedAt)
	if err != nil {
		return fmt.Errorf("failed to create analysis: %w", err)
	}

	collectCtx, cancel := context.WithTimeout(ctx, time.Duration(t.TargetConfig.Settings.Timeout)*time.Second)
	pool, failedCompetitors := t.collector.Run(collectCtx, t.TargetConfig)
	cancel()

	if t.TargetConfig.Settings.EnrichMetrics {
		t.enrichMetrics(ctx, pool)
	}

	filtered := t.filterer.Run(pool, t.TargetConfig.Filters)

	scorer := gap.NewScorer(t.TargetConfig.Filters.DifficultySource)
	for i := range filtered {
		t.classifier.Run(&filtered[i])
		t.featureScorer.Run(&filtered[i])
		if err := scorer.Run(&filtered[i]); err != nil {
			return fmt.Errorf("failed to score record: %w", err)
		}
	}

	result := t.ranker.Run(filtered)

	if t.TargetConfig.Settings.SerpEnrichment {
		if t.enrichSerpFeatures(ctx, result.Records, scorer) {
			result = t.ranker.Run(result.Records)
		}
	}

	result.FailedCompetitors = failedCompetitors

	if err := t.opportunityRepo.StoreOpportunities(analysisID, result.Records); err != nil {
		return fmt.Errorf("failed to store opportunities: %w", err)
	}

	completedAt := time.Now().UTC()
	if err := t.analysisRepo.CompleteAnalysis(analysisID, result.Stats, failedCompetitors, completedAt); err != nil {
		return fmt.Errorf("failed to complete analysis: %w", err)
	}

	nextAnalysis := completedAt.Add(time.Duration(t.TargetConfig.Settings.RefreshInterval) * time.Second)
	if err := t.targetRepo.UpdateTargetAnalyzed(t.TargetName, completedAt, nextAnalysis); err != nil {
		return fmt.Errorf("failed to update target timestamps: %w", err)
	}

	slog.Info("Task completed",
		"type", "AnalyzeGap",
		"target", t.TargetName,
		"duration", t.GetDuration(),
		"collected", len(pool),
		"opportunities", result.Stats.Total,
		"question_keywords", result.Stats.QuestionCount,
		"failed_competitors", len(failedCompetitors))

	return nil
}

// enrichMetrics fills pessimistic-default fields from the keyword-metrics
// provider. A failed or unconfigured lookup leaves the pool untouched; the
// filter simply sees the defaults.
func (t *AnalyzeGapTask) enrichMetrics(ctx context.Context, pool []gap.KeywordRecord) {
	if t.metrics == nil || !t.metrics.IsConfigured() || len(pool) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(t.TargetConfig.Settings.Timeout)*time.Second)
	defer cancel()

	keywords := make([]string, 0, len(pool))
	seen := make(map[string]bool, len(pool))
	for _, record := range pool {
		lowered := strings.ToLower(record.Keyword)
		if !seen[lowered] {
			seen[lowered] = true
			keywords = append(keywords, lowered)
		}
	}

	metrics, err := t.metrics.GetKeywordData(ctx, keywords, t.TargetConfig.Language, t.TargetConfig.Source)
	if err != nil {
		slog.Warn("Keyword metrics enrichment failed, continuing without",
			"target", t.TargetName, "error", err)
		metrics = nil
	}

	var difficulties map[string]int
	if t.TargetConfig.Filters.DifficultySource == gap.DifficultySourceAPI {
		difficulties, err = t.metrics.GetKeywordDifficulty(ctx, keywords, t.TargetConfig.Language, t.TargetConfig.Source)
		if err != nil {
			slog.Warn("Keyword difficulty enrichment failed, continuing without",
				"target", t.TargetName, "error", err)
			difficulties = nil
		}
	}

	for i := range pool {
		record := &pool[i]
		lowered := strings.ToLower(record.Keyword)

		if m, ok := metrics[lowered]; ok {
			if record.Volume == 0 {
				record.Volume = m.Volume
			}
			if record.CPC == 0 {
				record.CPC = m.CPC
			}
			if record.Competition == 1.0 {
				record.Competition = m.Competition
			}
			record.LevelDifficulty = m.Difficulty
		}
		if difficulty, ok := difficulties[lowered]; ok && record.Difficulty == 100 {
			record.Difficulty = difficulty
		}
	}
}

// enrichSerpFeatures fetches a live SERP for the top-ranked records and
// merges the observed features in, then re-scores the touched records.
// Returns whether anything changed and a re-rank is needed.
func (t *AnalyzeGapTask) enrichSerpFeatures(ctx context.Context, records []gap.KeywordRecord, scorer *gap.Scorer) bool {
	if t.metrics == nil || !t.metrics.IsConfigured() || len(records) == 0 {
		return false
	}

	topN := t.TargetConfig.Settings.SerpTopN
	if topN > len(records) {
		topN = len(records)
	}

	changed := false
	for i := 0; i < topN; i++ {
		record := &records[i]

		searchCtx, cancel := context.WithTimeout(ctx, time.Duration(t.TargetConfig.Settings.Timeout)*time.Second)
		response := t.metrics.Search(searchCtx, record.Keyword, 10, t.TargetConfig.Language, t.TargetConfig.Source)
		cancel()
		if !response.Success {
			slog.Debug("SERP enrichment failed for keyword, skipping",
				"target", t.TargetName, "keyword", record.Keyword, "error", response.Error)
			continue
		}

		if !mergeFeatures(record, response.Features()) {
			continue
		}

		t.featureScorer.Run(record)
		if err := scorer.Run(record); err != nil {
			slog.Warn("Re-scoring after SERP enrichment failed",
				"target", t.TargetName, "keyword", record.Keyword, "error", err)
			continue
		}
		changed = true
	}

	return changed
}

// mergeFeatures unions newly observed SERP features into the record,
// preserving existing order. Returns whether anything was added.
func mergeFeatures(record *gap.KeywordRecord, features []string) bool {
	existing := make(map[string]bool, len(record.SerpFeatures))
	for _, f := range record.SerpFeatures {
		existing[f] = true
	}

	added := false
	for _, f := range features {
		if !existing[f] {
			record.SerpFeatures = append(record.SerpFeatures, f)
			added = true
		}
	}
	return added
}
