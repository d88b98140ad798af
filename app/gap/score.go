package gap

import (
	"fmt"
	"math"
)

type Scorer struct {
	difficultySource string
}

func NewScorer(difficultySource string) *Scorer {
	return &Scorer{difficultySource: difficultySource}
}

// Run computes the opportunity score:
//
//	aeo_score = (volume * intent_multiplier * feature_boost) / (difficulty + 1)
//
// rounded to two decimals. The +1 keeps a zero-difficulty keyword finite.
// It fails if the record has not been through the classifier and the feature
// scorer; a caller that intentionally skips those stages must set the 1.0
// multipliers itself.
func (s *Scorer) Run(record *KeywordRecord) error {
	if record.IntentMultiplier == 0 {
		return fmt.Errorf("record %q has no intent multiplier: classify before scoring", record.Keyword)
	}
	if record.AeoFeatureBoost == 0 {
		return fmt.Errorf("record %q has no feature boost: score SERP features before scoring", record.Keyword)
	}

	difficulty := record.DifficultyFor(s.difficultySource)
	score := float64(record.Volume) * record.IntentMultiplier * record.AeoFeatureBoost / float64(difficulty+1)
	record.AeoScore = round2(score)

	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
