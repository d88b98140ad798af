package serp

import (
	"encoding/json"
	"time"
)

// SerpResult is one organic search result. Position is the absolute 1-based
// rank; results are listed in non-decreasing position order.
type SerpResult struct {
	Position      int    `json:"position"`
	Title         string `json:"title"`
	Link          string `json:"link"`
	Snippet       string `json:"snippet"`
	DisplayedLink string `json:"displayed_link"`
}

type FeaturedSnippet struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

// Question is one People Also Ask entry.
type Question struct {
	Question string `json:"question"`
	Snippet  string `json:"snippet"`
	Link     string `json:"link"`
}

// Response is the normalized outcome of one SERP query. Success=false
// implies empty collections and a non-empty Error; Success=true implies
// Error is empty (an empty result set is a valid "no data" outcome).
type Response struct {
	Success         bool             `json:"success"`
	Query           string           `json:"query"`
	Results         []SerpResult     `json:"results"`
	Cost            float64          `json:"cost"`
	Error           string           `json:"error,omitempty"`
	FeaturedSnippet *FeaturedSnippet `json:"featured_snippet,omitempty"`
	PeopleAlsoAsk   []Question       `json:"people_also_ask"`
	RelatedSearches []string         `json:"related_searches"`
	TotalResults    int              `json:"total_results"`
	Timestamp       time.Time        `json:"timestamp"`
}

// Features lists the SERP feature identifiers present on the response, in
// the shape the gap scorer consumes.
func (r *Response) Features() []string {
	features := []string{}
	if r.FeaturedSnippet != nil {
		features = append(features, "featured_snippet")
	}
	if len(r.PeopleAlsoAsk) > 0 {
		features = append(features, "people_also_ask")
	}
	return features
}

// Provider payload DTOs. These mirror the raw structure just far enough to
// normalize it; nothing below leaves this package.

type Payload struct {
	Tasks []PayloadTask `json:"tasks"`
}

type PayloadTask struct {
	StatusCode    int                 `json:"status_code"`
	StatusMessage string              `json:"status_message"`
	Result        []PayloadTaskResult `json:"result"`
}

type PayloadTaskResult struct {
	Items []PayloadItem `json:"items"`
}

type PayloadItem struct {
	Type         string            `json:"type"`
	RankAbsolute int               `json:"rank_absolute"`
	Title        string            `json:"title"`
	URL          string            `json:"url"`
	Description  string            `json:"description"`
	Breadcrumb   string            `json:"breadcrumb"`
	Items        []json.RawMessage `json:"items"`
}

// nestedItem covers the two shapes provider sub-items take: PAA entries are
// objects, related searches are either bare strings or objects with a title.
type nestedItem struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}
