package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/openkeywords/keyword-comb/app/gap"
)

// WriteJSON serializes a full analysis result with complete record fidelity.
func WriteJSON(w io.Writer, result *gap.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return nil
}

// ReadJSON parses a structured export back into a result.
func ReadJSON(r io.Reader) (*gap.Result, error) {
	var result gap.Result
	if err := json.NewDecoder(r).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}
	return &result, nil
}
