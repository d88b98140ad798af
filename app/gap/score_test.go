package gap

import (
	"testing"
)

func TestScorer_Run_QuestionNoFeatures(t *testing.T) {
	scorer := NewScorer(DifficultySourceAPI)

	record := KeywordRecord{
		Keyword:          "how to reduce churn for saas",
		Volume:           800,
		Difficulty:       20,
		IntentMultiplier: 1.5,
		AeoFeatureBoost:  1.0,
	}

	if err := scorer.Run(&record); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// 800 * 1.5 * 1.0 / 21 = 57.142... → 57.14
	if record.AeoScore != 57.14 {
		t.Errorf("Expected score 57.14, got %v", record.AeoScore)
	}
}

func TestScorer_Run_CommercialWithSnippet(t *testing.T) {
	scorer := NewScorer(DifficultySourceAPI)

	record := KeywordRecord{
		Keyword:          "pricing",
		Volume:           3000,
		Difficulty:       10,
		IntentMultiplier: 1.3,
		AeoFeatureBoost:  1.3,
	}

	if err := scorer.Run(&record); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// 3000 * 1.3 * 1.3 / 11 = 460.909... → 460.91
	if record.AeoScore != 460.91 {
		t.Errorf("Expected score 460.91, got %v", record.AeoScore)
	}
}

func TestScorer_Run_ZeroDifficulty(t *testing.T) {
	scorer := NewScorer(DifficultySourceAPI)

	record := KeywordRecord{
		Keyword:          "zero difficulty keyword",
		Volume:           100,
		Difficulty:       0,
		IntentMultiplier: 1.0,
		AeoFeatureBoost:  1.0,
	}

	if err := scorer.Run(&record); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Divisor is difficulty+1, so zero difficulty stays finite.
	if record.AeoScore != 100.0 {
		t.Errorf("Expected score 100, got %v", record.AeoScore)
	}
}

func TestScorer_Run_RequiresClassification(t *testing.T) {
	scorer := NewScorer(DifficultySourceAPI)

	record := KeywordRecord{
		Keyword:         "never classified keyword",
		Volume:          500,
		Difficulty:      10,
		AeoFeatureBoost: 1.0,
	}

	if err := scorer.Run(&record); err == nil {
		t.Errorf("Expected error for record missing intent multiplier")
	}
}

func TestScorer_Run_RequiresFeatureScoring(t *testing.T) {
	scorer := NewScorer(DifficultySourceAPI)

	record := KeywordRecord{
		Keyword:          "never feature scored keyword",
		Volume:           500,
		Difficulty:       10,
		IntentMultiplier: 1.5,
	}

	if err := scorer.Run(&record); err == nil {
		t.Errorf("Expected error for record missing feature boost")
	}
}

func TestScorer_Run_LevelDifficultySource(t *testing.T) {
	scorer := NewScorer(DifficultySourceLevel)

	record := KeywordRecord{
		Keyword:          "level scored keyword here",
		Volume:           520,
		Difficulty:       80,
		LevelDifficulty:  25,
		IntentMultiplier: 1.0,
		AeoFeatureBoost:  1.0,
	}

	if err := scorer.Run(&record); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// 520 / 26 = 20, using the level difficulty instead of the API score.
	if record.AeoScore != 20.0 {
		t.Errorf("Expected score 20 from level difficulty, got %v", record.AeoScore)
	}
}

func TestRound2(t *testing.T) {
	cases := []struct {
		in       float64
		expected float64
	}{
		{57.142857, 57.14},
		{460.909090, 460.91},
		{1.005, 1.0},
		{0, 0},
	}

	for _, c := range cases {
		if got := round2(c.in); got != c.expected {
			t.Errorf("round2(%v) = %v, expected %v", c.in, got, c.expected)
		}
	}
}
