package gap

import (
	"math/rand"
	"reflect"
	"testing"
)

func TestRanker_Run_OrderByScore(t *testing.T) {
	ranker := NewRanker()

	records := []KeywordRecord{
		{Keyword: "low", AeoScore: 10.0, Volume: 100},
		{Keyword: "high", AeoScore: 90.0, Volume: 100},
		{Keyword: "mid", AeoScore: 50.0, Volume: 100},
	}

	result := ranker.Run(records)

	if result.Records[0].Keyword != "high" || result.Records[1].Keyword != "mid" || result.Records[2].Keyword != "low" {
		t.Errorf("Expected order high, mid, low; got %s, %s, %s",
			result.Records[0].Keyword, result.Records[1].Keyword, result.Records[2].Keyword)
	}
}

func TestRanker_Run_TieBreaks(t *testing.T) {
	ranker := NewRanker()

	records := []KeywordRecord{
		{Keyword: "beta keyword", AeoScore: 50.0, Volume: 200},
		{Keyword: "Alpha keyword", AeoScore: 50.0, Volume: 200},
		{Keyword: "alpha keyword", AeoScore: 50.0, Volume: 200},
		{Keyword: "gamma keyword", AeoScore: 50.0, Volume: 900},
	}

	result := ranker.Run(records)

	// Equal scores fall back to volume descending, then case-insensitive
	// keyword, then raw keyword ("Alpha" < "alpha" in byte order).
	expected := []string{"gamma keyword", "Alpha keyword", "alpha keyword", "beta keyword"}
	for i, keyword := range expected {
		if result.Records[i].Keyword != keyword {
			t.Errorf("Position %d: expected %q, got %q", i, keyword, result.Records[i].Keyword)
		}
	}
}

func TestRanker_Run_DeterministicAcrossPermutations(t *testing.T) {
	ranker := NewRanker()

	records := []KeywordRecord{
		{Keyword: "how to reduce churn", AeoScore: 57.14, Volume: 800, Intent: "question"},
		{Keyword: "pricing", AeoScore: 460.91, Volume: 3000, Intent: "commercial"},
		{Keyword: "churn guide", AeoScore: 57.14, Volume: 800, Intent: "informational"},
		{Keyword: "best churn tools", AeoScore: 120.0, Volume: 1500, Intent: "commercial"},
		{Keyword: "Churn Guide", AeoScore: 57.14, Volume: 800, Intent: "informational"},
	}

	baseline := ranker.Run(records)

	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 20; trial++ {
		shuffled := make([]KeywordRecord, len(records))
		copy(shuffled, records)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		result := ranker.Run(shuffled)
		if !reflect.DeepEqual(result.Records, baseline.Records) {
			t.Fatalf("Trial %d: permuted input produced a different order", trial)
		}
	}
}

func TestRanker_Run_EmptyPool(t *testing.T) {
	ranker := NewRanker()

	result := ranker.Run(nil)

	if len(result.Records) != 0 {
		t.Errorf("Expected empty records, got %d", len(result.Records))
	}
	if result.Stats.Total != 0 {
		t.Errorf("Expected zero total, got %d", result.Stats.Total)
	}
	if result.Stats.AvgScore != 0 || result.Stats.AvgVolume != 0 || result.Stats.AvgDifficulty != 0 {
		t.Errorf("Expected zeroed averages, got %v / %v / %v",
			result.Stats.AvgScore, result.Stats.AvgVolume, result.Stats.AvgDifficulty)
	}
	if result.Stats.IntentBreakdown == nil {
		t.Errorf("Expected non-nil intent breakdown map")
	}
}

func TestRanker_Run_SummaryStats(t *testing.T) {
	ranker := NewRanker()

	records := []KeywordRecord{
		{Keyword: "how to reduce churn", AeoScore: 60.0, Volume: 800, Difficulty: 20, Intent: "question", HasAeoFeatures: true},
		{Keyword: "pricing guide", AeoScore: 40.0, Volume: 400, Difficulty: 30, Intent: "informational"},
		{Keyword: "what is churn", AeoScore: 20.0, Volume: 300, Difficulty: 10, Intent: "question"},
	}

	result := ranker.Run(records)
	stats := result.Stats

	if stats.Total != 3 {
		t.Errorf("Expected total 3, got %d", stats.Total)
	}
	if stats.QuestionCount != 2 {
		t.Errorf("Expected 2 question keywords, got %d", stats.QuestionCount)
	}
	if stats.WithAeoFeatures != 1 {
		t.Errorf("Expected 1 record with AEO features, got %d", stats.WithAeoFeatures)
	}
	if stats.AvgScore != 40.0 {
		t.Errorf("Expected avg score 40, got %v", stats.AvgScore)
	}
	if stats.AvgVolume != 500 {
		t.Errorf("Expected avg volume 500, got %d", stats.AvgVolume)
	}
	if stats.AvgDifficulty != 20.0 {
		t.Errorf("Expected avg difficulty 20, got %v", stats.AvgDifficulty)
	}
	if stats.IntentBreakdown["question"] != 2 || stats.IntentBreakdown["informational"] != 1 {
		t.Errorf("Unexpected intent breakdown: %v", stats.IntentBreakdown)
	}
}

func TestRanker_Run_InputUntouched(t *testing.T) {
	ranker := NewRanker()

	records := []KeywordRecord{
		{Keyword: "b keyword", AeoScore: 10.0},
		{Keyword: "a keyword", AeoScore: 90.0},
	}

	ranker.Run(records)

	if records[0].Keyword != "b keyword" {
		t.Errorf("Expected input slice order preserved, got %q first", records[0].Keyword)
	}
}
