package serp

import (
	"encoding/json"
	"time"
)

// DefaultQueryCost is the per-query cost attached to successful responses,
// $0.50 per 1,000 queries. It is configuration, not derived from the payload.
const DefaultQueryCost = 0.0005

const statusOK = 20000

type Normalizer struct {
	queryCost float64
}

func NewNormalizer() *Normalizer {
	return &Normalizer{queryCost: DefaultQueryCost}
}

func NewNormalizerWithCost(cost float64) *Normalizer {
	return &Normalizer{queryCost: cost}
}

// Run converts a raw provider payload into a normalized Response. A missing
// task or non-success status becomes Success=false with the provider's
// message; a successful task without result rows is a valid empty response.
func (n *Normalizer) Run(payload *Payload, query string) *Response {
	response := &Response{
		Query:           query,
		Results:         []SerpResult{},
		PeopleAlsoAsk:   []Question{},
		RelatedSearches: []string{},
		Timestamp:       time.Now().UTC(),
	}

	if len(payload.Tasks) == 0 || payload.Tasks[0].StatusCode != statusOK {
		response.Error = "Unknown error"
		if len(payload.Tasks) > 0 && payload.Tasks[0].StatusMessage != "" {
			response.Error = payload.Tasks[0].StatusMessage
		}
		return response
	}

	response.Success = true

	task := payload.Tasks[0]
	if len(task.Result) == 0 {
		return response
	}

	for _, item := range task.Result[0].Items {
		switch item.Type {
		case "organic":
			response.Results = append(response.Results, SerpResult{
				Position:      item.RankAbsolute,
				Title:         item.Title,
				Link:          item.URL,
				Snippet:       item.Description,
				DisplayedLink: item.Breadcrumb,
			})

		case "featured_snippet":
			// First one wins, later occurrences are ignored
			if response.FeaturedSnippet == nil {
				response.FeaturedSnippet = &FeaturedSnippet{
					Title:   item.Title,
					Snippet: item.Description,
					Link:    item.URL,
				}
			}

		case "people_also_ask":
			for _, raw := range item.Items {
				var paa nestedItem
				if err := json.Unmarshal(raw, &paa); err != nil {
					continue
				}
				response.PeopleAlsoAsk = append(response.PeopleAlsoAsk, Question{
					Question: paa.Title,
					Snippet:  paa.Description,
					Link:     paa.URL,
				})
			}

		case "related_searches":
			for _, raw := range item.Items {
				if query, ok := decodeRelatedSearch(raw); ok {
					response.RelatedSearches = append(response.RelatedSearches, query)
				}
			}
		}
	}

	response.TotalResults = len(response.Results)
	response.Cost = n.queryCost

	return response
}

// decodeRelatedSearch accepts either a bare string or an object carrying a
// "title" field.
func decodeRelatedSearch(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}

	var obj nestedItem
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Title != "" {
		return obj.Title, true
	}

	return "", false
}
