package gap

import (
	"math"
	"sort"
	"strings"
)

type Ranker struct{}

func NewRanker() *Ranker {
	return &Ranker{}
}

// Run sorts the scored pool into a deterministic total order and computes
// summary statistics. Order: score descending, then volume descending, then
// keyword ascending (case-insensitive, raw text as the final tie-break).
// The input slice is left untouched.
func (r *Ranker) Run(records []KeywordRecord) Result {
	ranked := make([]KeywordRecord, len(records))
	copy(ranked, records)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := &ranked[i], &ranked[j]
		if a.AeoScore != b.AeoScore {
			return a.AeoScore > b.AeoScore
		}
		if a.Volume != b.Volume {
			return a.Volume > b.Volume
		}
		al, bl := strings.ToLower(a.Keyword), strings.ToLower(b.Keyword)
		if al != bl {
			return al < bl
		}
		return a.Keyword < b.Keyword
	})

	return Result{
		Records: ranked,
		Stats:   r.summarize(ranked),
	}
}

func (r *Ranker) summarize(records []KeywordRecord) SummaryStats {
	stats := SummaryStats{
		IntentBreakdown: make(map[string]int),
	}

	if len(records) == 0 {
		return stats
	}

	var scoreSum, difficultySum float64
	var volumeSum int

	for _, record := range records {
		stats.IntentBreakdown[record.Intent]++
		if record.HasAeoFeatures {
			stats.WithAeoFeatures++
		}
		if record.Intent == "question" {
			stats.QuestionCount++
		}
		scoreSum += record.AeoScore
		volumeSum += record.Volume
		difficultySum += float64(record.Difficulty)
	}

	n := float64(len(records))
	stats.Total = len(records)
	stats.AvgScore = round2(scoreSum / n)
	stats.AvgVolume = int(math.Round(float64(volumeSum) / n))
	stats.AvgDifficulty = round1(difficultySum / n)

	return stats
}
