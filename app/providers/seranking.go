package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/openkeywords/keyword-comb/app/gap"
)

const SERankingBaseURL = "https://api.seranking.com/v1"

// SERankingClient is the competitor-discovery/comparison collaborator.
// It implements gap.ComparisonAPI.
type SERankingClient struct {
	apiKey     string
	BaseURL    string
	httpClient *http.Client
	userAgent  string
}

var _ gap.ComparisonAPI = (*SERankingClient)(nil)

func NewSERankingClient(apiKey string, httpClient *http.Client, userAgent string) *SERankingClient {
	client := &SERankingClient{
		apiKey:     apiKey,
		BaseURL:    SERankingBaseURL,
		httpClient: httpClient,
		userAgent:  userAgent,
	}

	if client.IsConfigured() {
		slog.Info("SE Ranking client initialized")
	} else {
		slog.Warn("SE Ranking not configured. Set SERANKING_API_KEY to enable gap analysis.")
	}

	return client
}

func (c *SERankingClient) IsConfigured() bool {
	return c.apiKey != ""
}

// GetCompetitors returns the top organic competitors for a domain.
func (c *SERankingClient) GetCompetitors(ctx context.Context, domain, source string, limit int) ([]gap.Competitor, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}

	params := url.Values{
		"source": {source},
		"domain": {domain},
		"limit":  {strconv.Itoa(limit)},
	}

	var rows []competitorRow
	if err := c.get(ctx, "/domain/competitors", params, &rows); err != nil {
		return nil, fmt.Errorf("failed to fetch competitors: %w", err)
	}

	competitors := make([]gap.Competitor, 0, len(rows))
	for _, row := range rows {
		competitors = append(competitors, gap.Competitor{Domain: row.Domain})
	}
	return competitors, nil
}

// GetKeywordComparison returns the keywords a competitor ranks for that the
// target domain does not, mapped into canonical records at this boundary.
// Rows arrive ordered by ascending difficulty.
func (c *SERankingClient) GetKeywordComparison(ctx context.Context, domain, competitor, source string, limit int) ([]gap.KeywordRecord, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}

	params := url.Values{
		"source":      {source},
		"domain":      {domain},
		"compare":     {competitor},
		"type":        {"organic"},
		"diff":        {"1"},
		"limit":       {strconv.Itoa(limit)},
		"order_field": {"difficulty"},
		"order_type":  {"asc"},
	}

	var rows []comparisonRow
	if err := c.get(ctx, "/domain/keywords/comparison", params, &rows); err != nil {
		return nil, fmt.Errorf("failed to fetch keyword comparison: %w", err)
	}

	records := make([]gap.KeywordRecord, 0, len(rows))
	for _, row := range rows {
		if row.Keyword == "" {
			continue
		}
		records = append(records, row.toRecord())
	}
	return records, nil
}

func (c *SERankingClient) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &ProviderError{Status: resp.StatusCode, Message: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

type competitorRow struct {
	Domain string `json:"domain"`
}

// comparisonRow uses pointers for the numeric metrics so an omitted field is
// distinguishable from zero and gets its pessimistic default.
type comparisonRow struct {
	Keyword      string   `json:"keyword"`
	Volume       *int     `json:"volume"`
	Difficulty   *int     `json:"difficulty"`
	Competition  *float64 `json:"competition"`
	CPC          float64  `json:"cpc"`
	SerpFeatures []string `json:"serp_features"`
	URL          string   `json:"url"`
	Position     int      `json:"position"`
}

func (row *comparisonRow) toRecord() gap.KeywordRecord {
	record := gap.KeywordRecord{
		Keyword:         row.Keyword,
		Volume:          0,
		Difficulty:      100,
		LevelDifficulty: 50,
		Competition:     1.0,
		CPC:             row.CPC,
		WordCount:       gap.WordCount(row.Keyword),
		SerpFeatures:    row.SerpFeatures,
		URL:             row.URL,
		Position:        row.Position,
	}
	if row.Volume != nil {
		record.Volume = *row.Volume
	}
	if row.Difficulty != nil {
		record.Difficulty = *row.Difficulty
	}
	if row.Competition != nil {
		record.Competition = *row.Competition
	}
	return record
}
