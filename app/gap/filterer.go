package gap

import (
	"strings"
)

type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

// Run returns the records satisfying all five inclusive bounds. The input
// slice is not mutated; excluded records are simply absent from the output.
func (f *Filterer) Run(records []KeywordRecord, criteria FilterCriteria) []KeywordRecord {
	filtered := make([]KeywordRecord, 0, len(records))

	for _, record := range records {
		record.WordCount = WordCount(record.Keyword)
		if f.matches(&record, criteria) {
			filtered = append(filtered, record)
		}
	}

	return filtered
}

func (f *Filterer) matches(record *KeywordRecord, criteria FilterCriteria) bool {
	if record.Volume < criteria.MinVolume || record.Volume > criteria.MaxVolume {
		return false
	}
	if record.DifficultyFor(criteria.DifficultySource) > criteria.MaxDifficulty {
		return false
	}
	if record.Competition > criteria.MaxCompetition {
		return false
	}
	return record.WordCount >= criteria.MinWords
}

// WordCount counts whitespace-separated tokens in a keyword.
func WordCount(keyword string) int {
	return len(strings.Fields(keyword))
}
