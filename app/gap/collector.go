package gap

import (
	"context"
	"log/slog"
	"sync"
)

// Competitor is one entry from the competitor-discovery lookup.
type Competitor struct {
	Domain string
}

// ComparisonAPI is the competitor-discovery/comparison collaborator.
// Implementations map raw provider payloads into KeywordRecords at the
// boundary; no untyped data crosses into the pipeline.
type ComparisonAPI interface {
	GetCompetitors(ctx context.Context, domain, source string, limit int) ([]Competitor, error)
	GetKeywordComparison(ctx context.Context, domain, competitor, source string, limit int) ([]KeywordRecord, error)
}

type Collector struct {
	api ComparisonAPI
}

func NewCollector(api ComparisonAPI) *Collector {
	return &Collector{api: api}
}

// Run builds the candidate pool for a target. When the config lists no
// competitors, up to MaxCompetitors are discovered first; a failed discovery
// degrades to an empty list. Comparison fetches run concurrently, one per
// competitor, and results are flattened in competitor order so the pool is
// deterministic regardless of completion order. A failed fetch contributes
// nothing and lands in the returned failure list; it never aborts the run.
// The same keyword surfacing via multiple competitors stays duplicated, each
// copy tagged with its own SourceCompetitor.
func (c *Collector) Run(ctx context.Context, config *Config) ([]KeywordRecord, []string) {
	competitors := config.Competitors
	if len(competitors) == 0 {
		competitors = c.discoverCompetitors(ctx, config)
	}
	if len(competitors) == 0 {
		slog.Warn("No competitors to compare against", "target", config.Name, "domain", config.Domain)
		return nil, nil
	}

	perCompetitor := make([][]KeywordRecord, len(competitors))
	errs := make([]error, len(competitors))

	var wg sync.WaitGroup
	for i, competitor := range competitors {
		wg.Add(1)
		go func(i int, competitor string) {
			defer wg.Done()
			records, err := c.api.GetKeywordComparison(ctx, config.Domain, competitor, config.Source, config.Settings.MaxKeywords)
			if err != nil {
				errs[i] = err
				return
			}
			for j := range records {
				records[j].SourceCompetitor = competitor
			}
			perCompetitor[i] = records
		}(i, competitor)
	}
	wg.Wait()

	pool := []KeywordRecord{}
	failed := []string{}
	for i, competitor := range competitors {
		if errs[i] != nil {
			slog.Warn("Keyword comparison failed, skipping competitor",
				"target", config.Name, "competitor", competitor, "error", errs[i])
			failed = append(failed, competitor)
			continue
		}
		slog.Debug("Collected keyword gaps", "target", config.Name, "competitor", competitor, "count", len(perCompetitor[i]))
		pool = append(pool, perCompetitor[i]...)
	}

	return pool, failed
}

func (c *Collector) discoverCompetitors(ctx context.Context, config *Config) []string {
	limit := config.Settings.MaxCompetitors
	if limit <= 0 {
		limit = 3
	}

	entries, err := c.api.GetCompetitors(ctx, config.Domain, config.Source, limit)
	if err != nil {
		slog.Warn("Competitor discovery failed, continuing with empty list",
			"target", config.Name, "domain", config.Domain, "error", err)
		return nil
	}

	if len(entries) > limit {
		entries = entries[:limit]
	}

	domains := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Domain != "" {
			domains = append(domains, entry.Domain)
		}
	}

	slog.Info("Discovered competitors", "target", config.Name, "domains", domains)
	return domains
}
