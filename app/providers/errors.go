package providers

import (
	"errors"
	"fmt"
)

// ErrNotConfigured marks a collaborator whose credentials were absent at
// construction. Dependent calls detect it and short-circuit; it is never
// fatal to a run.
var ErrNotConfigured = errors.New("provider credentials not configured")

// ProviderError is a well-formed response reporting a business-level
// failure, carrying the provider's own message.
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("provider error (status %d)", e.Status)
	}
	return fmt.Sprintf("provider error (status %d): %s", e.Status, e.Message)
}
