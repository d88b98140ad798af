package gap

// AeoSerpFeatures is the allow-list of SERP features an answer engine can
// surface directly. Loaded once, never mutated.
var AeoSerpFeatures = []string{
	"people_also_ask",
	"featured_snippet",
	"sge",
	"knowledge_panel",
	"faq",
}

type FeatureScorer struct {
	allowed map[string]bool
}

func NewFeatureScorer() *FeatureScorer {
	return NewFeatureScorerWithAllowList(AeoSerpFeatures)
}

func NewFeatureScorerWithAllowList(features []string) *FeatureScorer {
	allowed := make(map[string]bool, len(features))
	for _, f := range features {
		allowed[f] = true
	}
	return &FeatureScorer{allowed: allowed}
}

// Run intersects the record's SERP features with the allow-list, preserving
// the record's own feature order, and sets the feature boost: 1.3 when any
// AEO-relevant feature is present, 1.0 otherwise.
func (s *FeatureScorer) Run(record *KeywordRecord) {
	matched := []string{}
	for _, feature := range record.SerpFeatures {
		if s.allowed[feature] {
			matched = append(matched, feature)
		}
	}

	record.AeoSerpFeatures = matched
	record.HasAeoFeatures = len(matched) > 0

	if record.HasAeoFeatures {
		record.AeoFeatureBoost = 1.3
	} else {
		record.AeoFeatureBoost = 1.0
	}
}
