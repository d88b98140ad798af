package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/openkeywords/keyword-comb/app/gap"
)

func sampleRecords() []gap.KeywordRecord {
	return []gap.KeywordRecord{
		{
			Keyword:          "how to reduce churn",
			Volume:           800,
			Difficulty:       20,
			CPC:              2.5,
			Competition:      0.15,
			AeoScore:         57.14,
			Intent:           "question",
			WordCount:        4,
			HasAeoFeatures:   true,
			AeoSerpFeatures:  []string{"featured_snippet", "people_also_ask"},
			SourceCompetitor: "rival.com",
			URL:              "https://rival.com/churn",
			Position:         4,
		},
		{
			Keyword:   "pricing, with commas",
			Volume:    3000,
			Intent:    "commercial",
			WordCount: 3,
		},
	}
}

func TestWriteCSV_Header(t *testing.T) {
	var buf bytes.Buffer

	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	firstLine := strings.SplitN(buf.String(), "\n", 2)[0]
	expected := strings.Join(CSVHeader, ",")
	if firstLine != expected {
		t.Errorf("Expected header %q, got %q", expected, firstLine)
	}
}

func TestWriteCSV_ReadCSV_RoundTrip(t *testing.T) {
	var buf bytes.Buffer

	records := sampleRecords()
	if err := WriteCSV(&buf, records); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	parsed, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}

	if len(parsed) != len(records) {
		t.Fatalf("Expected %d records, got %d", len(records), len(parsed))
	}

	got := parsed[0]
	want := records[0]
	if got.Keyword != want.Keyword || got.Volume != want.Volume || got.Difficulty != want.Difficulty {
		t.Errorf("Core fields mismatch: got %+v", got)
	}
	if got.AeoScore != want.AeoScore || got.CPC != want.CPC || got.Competition != want.Competition {
		t.Errorf("Metric fields mismatch: got %+v", got)
	}
	if !got.HasAeoFeatures {
		t.Errorf("Expected has_aeo_features to survive the round trip")
	}
	if len(got.AeoSerpFeatures) != 2 || got.AeoSerpFeatures[0] != "featured_snippet" {
		t.Errorf("Expected pipe-joined features to split back, got %v", got.AeoSerpFeatures)
	}
	if got.SourceCompetitor != "rival.com" || got.Position != 4 {
		t.Errorf("Provenance fields mismatch: got %+v", got)
	}

	// A keyword containing commas must survive CSV quoting.
	if parsed[1].Keyword != "pricing, with commas" {
		t.Errorf("Expected quoted keyword preserved, got %q", parsed[1].Keyword)
	}
	if len(parsed[1].AeoSerpFeatures) != 0 {
		t.Errorf("Expected empty feature cell to parse as no features, got %v", parsed[1].AeoSerpFeatures)
	}
}

func TestReadCSV_UnknownColumnsIgnored(t *testing.T) {
	input := "keyword,volume,made_up_column\nsome keyword,500,whatever\n"

	records, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].Keyword != "some keyword" || records[0].Volume != 500 {
		t.Errorf("Unexpected record: %+v", records[0])
	}
}

func TestReadCSV_Empty(t *testing.T) {
	records, err := ReadCSV(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected no records, got %d", len(records))
	}
}
