package providers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/openkeywords/keyword-comb/app/serp"
)

const DataForSEOBaseURL = "https://api.dataforseo.com/v3"

const (
	serpPath       = "/serp/google/organic/live/advanced"
	volumePath     = "/keywords_data/google_ads/search_volume/live"
	difficultyPath = "/dataforseo_labs/google/keyword_difficulty/live"
)

// keywordBatchLimit is the provider's per-request keyword cap.
const keywordBatchLimit = 1000

// KeywordMetrics is the per-keyword outcome of a metrics lookup. Difficulty
// here is estimated from the LOW/MEDIUM/HIGH competition level; the
// dedicated difficulty API is a separate, independently maintained score.
type KeywordMetrics struct {
	Volume           int
	CPC              float64
	Competition      float64
	CompetitionLevel string
	Difficulty       int
}

// DataForSEOClient provides SERP snapshots, keyword volume/CPC/competition
// metrics, and keyword difficulty scores.
type DataForSEOClient struct {
	login      string
	password   string
	BaseURL    string
	httpClient *http.Client
	normalizer *serp.Normalizer
	userAgent  string
}

func NewDataForSEOClient(login, password string, httpClient *http.Client, userAgent string) *DataForSEOClient {
	client := &DataForSEOClient{
		login:      login,
		password:   password,
		BaseURL:    DataForSEOBaseURL,
		httpClient: httpClient,
		normalizer: serp.NewNormalizer(),
		userAgent:  userAgent,
	}

	if client.IsConfigured() {
		slog.Info("DataForSEO client initialized")
	} else {
		slog.Warn("DataForSEO not configured. Set DATAFORSEO_LOGIN and DATAFORSEO_PASSWORD to enable SERP enrichment.")
	}

	return client
}

func (c *DataForSEOClient) IsConfigured() bool {
	return c.login != "" && c.password != ""
}

func (c *DataForSEOClient) authHeader() string {
	credentials := c.login + ":" + c.password
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(credentials))
}

// Search performs one live SERP query. All failures, including missing
// credentials, auth rejections and transport errors, are captured into the
// returned response value; the pipeline boundary never sees a raised error.
func (c *DataForSEOClient) Search(ctx context.Context, query string, numResults int, lang, country string) *serp.Response {
	if !c.IsConfigured() {
		return failedResponse(query, "DataForSEO credentials not configured")
	}

	if numResults > 100 {
		numResults = 100
	}

	request := []map[string]interface{}{
		{
			"keyword":       query,
			"location_code": LocationCode(country),
			"language_code": LanguageCode(lang),
			"depth":         numResults,
		},
	}

	var payload serp.Payload
	status, err := c.post(ctx, serpPath, request, &payload)
	if err != nil {
		if status == http.StatusUnauthorized || status == http.StatusForbidden {
			return failedResponse(query, "DataForSEO authentication failed")
		}
		slog.Error("DataForSEO search error", "query", query, "error", err)
		return failedResponse(query, fmt.Sprintf("DataForSEO error: %v", err))
	}

	return c.normalizer.Run(&payload, query)
}

// GetKeywordData returns volume, CPC and competition metrics for up to 1000
// keywords, keyed by lower-cased keyword text.
func (c *DataForSEOClient) GetKeywordData(ctx context.Context, keywords []string, lang, country string) (map[string]KeywordMetrics, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}
	if len(keywords) == 0 {
		return map[string]KeywordMetrics{}, nil
	}
	if len(keywords) > keywordBatchLimit {
		keywords = keywords[:keywordBatchLimit]
	}

	request := []map[string]interface{}{
		{
			"keywords":      keywords,
			"location_code": LocationCode(country),
			"language_code": LanguageCode(lang),
		},
	}

	var payload metricsPayload
	if _, err := c.post(ctx, volumePath, request, &payload); err != nil {
		return nil, fmt.Errorf("keyword data request failed: %w", err)
	}

	metrics := make(map[string]KeywordMetrics)
	for _, task := range payload.Tasks {
		if task.StatusCode != 20000 {
			continue
		}
		for _, item := range task.Result {
			keyword := strings.ToLower(item.Keyword)
			if keyword == "" {
				continue
			}

			competition := 0.0
			if item.Competition != nil {
				competition = *item.Competition
			}

			metrics[keyword] = KeywordMetrics{
				Volume:           item.SearchVolume,
				CPC:              item.CPC,
				Competition:      competition,
				CompetitionLevel: item.CompetitionLevel,
				Difficulty:       difficultyFromLevel(item.CompetitionLevel),
			}
		}
	}

	slog.Info("Fetched keyword metrics", "found", len(metrics), "requested", len(keywords))
	return metrics, nil
}

// GetKeywordDifficulty returns 0-100 difficulty scores for up to 1000
// keywords, keyed by lower-cased keyword text. Absent scores default to 50.
func (c *DataForSEOClient) GetKeywordDifficulty(ctx context.Context, keywords []string, lang, country string) (map[string]int, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}
	if len(keywords) == 0 {
		return map[string]int{}, nil
	}
	if len(keywords) > keywordBatchLimit {
		keywords = keywords[:keywordBatchLimit]
	}

	request := make([]map[string]interface{}, 0, len(keywords))
	for _, keyword := range keywords {
		request = append(request, map[string]interface{}{
			"keyword":       keyword,
			"location_code": LocationCode(country),
			"language_code": LanguageCode(lang),
		})
	}

	var payload difficultyPayload
	if _, err := c.post(ctx, difficultyPath, request, &payload); err != nil {
		return nil, fmt.Errorf("keyword difficulty request failed: %w", err)
	}

	scores := make(map[string]int)
	for _, task := range payload.Tasks {
		if task.StatusCode != 20000 {
			continue
		}
		for _, item := range task.Result {
			keyword := strings.ToLower(item.Keyword)
			if keyword == "" {
				continue
			}
			difficulty := item.KeywordDifficulty
			if difficulty == 0 {
				difficulty = 50
			}
			scores[keyword] = difficulty
		}
	}

	slog.Info("Fetched keyword difficulty", "found", len(scores), "requested", len(keywords))
	return scores, nil
}

func (c *DataForSEOClient) post(ctx context.Context, path string, request interface{}, out interface{}) (int, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return 0, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", c.authHeader())
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, &ProviderError{Status: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
	}
	return resp.StatusCode, nil
}

func failedResponse(query, message string) *serp.Response {
	return &serp.Response{
		Query:           query,
		Error:           message,
		Results:         []serp.SerpResult{},
		PeopleAlsoAsk:   []serp.Question{},
		RelatedSearches: []string{},
		Timestamp:       time.Now().UTC(),
	}
}

// difficultyFromLevel estimates difficulty from a LOW/MEDIUM/HIGH
// competition level, the cheap stand-in for the dedicated difficulty API.
func difficultyFromLevel(level string) int {
	switch strings.ToUpper(level) {
	case "LOW":
		return 25
	case "MEDIUM":
		return 50
	case "HIGH":
		return 75
	default:
		return 50
	}
}

type metricsPayload struct {
	Tasks []struct {
		StatusCode int `json:"status_code"`
		Result     []struct {
			Keyword          string   `json:"keyword"`
			SearchVolume     int      `json:"search_volume"`
			CPC              float64  `json:"cpc"`
			Competition      *float64 `json:"competition"`
			CompetitionLevel string   `json:"competition_level"`
		} `json:"result"`
	} `json:"tasks"`
}

type difficultyPayload struct {
	Tasks []struct {
		StatusCode int `json:"status_code"`
		Result     []struct {
			Keyword           string `json:"keyword"`
			KeywordDifficulty int    `json:"keyword_difficulty"`
		} `json:"result"`
	} `json:"tasks"`
}
