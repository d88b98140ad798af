package gap

// Gap analysis types

// KeywordRecord is one keyword candidate flowing through the pipeline.
// Volume, Difficulty and Competition default pessimistically (0, 100, 1.0)
// when the provider omits them, so unknown data fails permissive-less filters.
type KeywordRecord struct {
	Keyword         string   `json:"keyword"`
	Volume          int      `json:"volume"`
	Difficulty      int      `json:"difficulty"`       // 0-100, from the dedicated difficulty API
	LevelDifficulty int      `json:"level_difficulty"` // 0-100, estimated from a LOW/MEDIUM/HIGH competition level
	CPC             float64  `json:"cpc"`
	Competition     float64  `json:"competition"` // 0.0-1.0
	WordCount       int      `json:"word_count"`
	SerpFeatures    []string `json:"serp_features"`

	SourceCompetitor string `json:"competitor"` // competitor domain the record originated from, empty for self-sourced
	URL              string `json:"url"`
	Position         int    `json:"position"`

	Intent           string   `json:"intent"`
	IntentMultiplier float64  `json:"intent_multiplier"`
	MatchedIntents   []string `json:"matched_intents"`

	AeoSerpFeatures []string `json:"aeo_serp_features"`
	HasAeoFeatures  bool     `json:"has_aeo_features"`
	AeoFeatureBoost float64  `json:"aeo_feature_boost"`

	AeoScore float64 `json:"aeo_score"`
}

// DifficultyFor returns the difficulty value selected by the criteria's
// DifficultySource.
func (r *KeywordRecord) DifficultyFor(source string) int {
	if source == DifficultySourceLevel {
		return r.LevelDifficulty
	}
	return r.Difficulty
}

const (
	DifficultySourceAPI   = "api"
	DifficultySourceLevel = "level"
)

// FilterCriteria holds the five inclusive bounds applied by the Filterer.
// All bounds are required; defaults belong to the caller (config loader).
type FilterCriteria struct {
	MinVolume      int     `yaml:"min_volume"`
	MaxVolume      int     `yaml:"max_volume"`
	MaxDifficulty  int     `yaml:"max_difficulty"`
	MaxCompetition float64 `yaml:"max_competition"`
	MinWords       int     `yaml:"min_words"`

	// DifficultySource chooses which of the two independently maintained
	// difficulty estimates the ceiling applies to: "api" (default) or "level".
	DifficultySource string `yaml:"difficulty_source"`
}

// IntentPattern is one entry of the static intent table.
type IntentPattern struct {
	Intent      string
	Triggers    []string
	Multiplier  float64
	Description string
}

// SummaryStats aggregates a ranked pool.
type SummaryStats struct {
	Total           int            `json:"total_opportunities"`
	IntentBreakdown map[string]int `json:"intent_breakdown"`
	WithAeoFeatures int            `json:"with_aeo_serp_features"`
	QuestionCount   int            `json:"question_keywords"`
	AvgScore        float64        `json:"avg_aeo_score"`
	AvgVolume       int            `json:"avg_volume"`
	AvgDifficulty   float64        `json:"avg_difficulty"`
}

// Result is the output of one gap analysis run: the ranked pool, its
// summary, and the competitors whose fetches degraded to zero contribution.
type Result struct {
	Records           []KeywordRecord `json:"opportunities"`
	Stats             SummaryStats    `json:"summary"`
	FailedCompetitors []string        `json:"failed_competitors,omitempty"`
}

// Configuration types

type Config struct {
	Name        string         // Derived from filename (without .yml extension)
	Domain      string         `yaml:"domain"`
	Source      string         `yaml:"source"`   // market identifier, e.g. "us"
	Language    string         `yaml:"language"` // language code for metrics lookups, e.g. "en"
	Competitors []string       `yaml:"competitors"`
	Settings    ConfigSettings `yaml:"settings"`
	Filters     FilterCriteria `yaml:"filters"`
}

type ConfigSettings struct {
	Enabled         bool `yaml:"enabled"`
	RefreshInterval int  `yaml:"refresh_interval"` // seconds
	MaxCompetitors  int  `yaml:"max_competitors"`  // auto-discovery limit when no competitors are listed
	MaxKeywords     int  `yaml:"max_keywords"`     // per-competitor comparison limit
	EnrichMetrics   bool `yaml:"enrich_metrics"`   // fill volume/cpc/difficulty from the metrics provider
	SerpEnrichment  bool `yaml:"serp_enrichment"`  // fetch live SERP features for top records
	SerpTopN        int  `yaml:"serp_top_n"`       // how many top records to enrich
	Timeout         int  `yaml:"timeout"`          // seconds, per provider call
}
