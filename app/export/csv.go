package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/openkeywords/keyword-comb/app/gap"
)

// CSVHeader is the flat tabular field list, in output order. List-valued
// fields are joined with "|" inside a single cell.
var CSVHeader = []string{
	"keyword", "volume", "difficulty", "cpc", "competition",
	"aeo_score", "intent", "word_count", "has_aeo_features",
	"aeo_serp_features", "competitor", "url", "position",
}

// WriteCSV serializes a ranked pool to the tabular format.
func WriteCSV(w io.Writer, records []gap.KeywordRecord) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, record := range records {
		row := []string{
			record.Keyword,
			strconv.Itoa(record.Volume),
			strconv.Itoa(record.Difficulty),
			formatFloat(record.CPC),
			formatFloat(record.Competition),
			formatFloat(record.AeoScore),
			record.Intent,
			strconv.Itoa(record.WordCount),
			strconv.FormatBool(record.HasAeoFeatures),
			strings.Join(record.AeoSerpFeatures, "|"),
			record.SourceCompetitor,
			record.URL,
			strconv.Itoa(record.Position),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row for %q: %w", record.Keyword, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ReadCSV parses the tabular format back into records. Columns are matched
// by header name; unknown columns are ignored, not errors.
func ReadCSV(r io.Reader) ([]gap.KeywordRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(rows) == 0 {
		return []gap.KeywordRecord{}, nil
	}

	index := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		index[strings.TrimSpace(name)] = i
	}

	records := make([]gap.KeywordRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		cell := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(row) {
				return ""
			}
			return row[i]
		}

		record := gap.KeywordRecord{
			Keyword:          cell("keyword"),
			Volume:           parseInt(cell("volume")),
			Difficulty:       parseInt(cell("difficulty")),
			CPC:              parseFloat(cell("cpc")),
			Competition:      parseFloat(cell("competition")),
			AeoScore:         parseFloat(cell("aeo_score")),
			Intent:           cell("intent"),
			WordCount:        parseInt(cell("word_count")),
			HasAeoFeatures:   cell("has_aeo_features") == "true",
			SourceCompetitor: cell("competitor"),
			URL:              cell("url"),
			Position:         parseInt(cell("position")),
		}
		if features := cell("aeo_serp_features"); features != "" {
			record.AeoSerpFeatures = strings.Split(features, "|")
		}

		records = append(records, record)
	}

	return records, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseInt(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
