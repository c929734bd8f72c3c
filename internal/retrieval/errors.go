package retrieval

import "fmt"

// NotFoundError reports that no candidate survived scoring, even after the
// full-corpus fallback. It carries the attempted category so callers can
// phrase a "nothing found for X" message. It is a user-facing outcome, not a
// system failure.
type NotFoundError struct {
	Category string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.Category != "" {
		return fmt.Sprintf("no products found in category %q", e.Category)
	}
	return "no products found matching the request"
}

// UserMessage returns the user-facing phrasing of the miss.
func (e *NotFoundError) UserMessage() string {
	if e.Category != "" {
		return fmt.Sprintf("No products matching your request were found in %q.", e.Category)
	}
	return "No products matching your request were found in the catalog."
}
