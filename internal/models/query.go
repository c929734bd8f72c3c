package models

import (
	"fmt"
	"strings"
)

// Query represents the structured intent of one user turn. The field names
// match the knowledge-base tool schema, so tool-call arguments unmarshal
// directly into it.
type Query struct {
	Text     string   `json:"query_input"`
	Category string   `json:"query_category,omitempty"`
	Brand    string   `json:"brand,omitempty"`
	PriceMin *float64 `json:"price_min,omitempty"`
	PriceMax *float64 `json:"price_max,omitempty"`
	// PriceTolerance is the absolute currency amount a price may fall outside
	// [PriceMin, PriceMax] and still score partial credit. Zero means
	// "use the configured default".
	PriceTolerance  float64  `json:"price_tolerance,omitempty"`
	SizePreferences []string `json:"size_preferences,omitempty"`
	FeatureKeywords []string `json:"feature_keywords,omitempty"`
}

// Validate ensures the query has a non-empty text. Structured fields are all
// optional.
func (q *Query) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("query text cannot be empty")
	}
	return nil
}

// Normalize canonicalizes the structured fields: category, brand and feature
// keywords are lowercased, size preferences uppercased, and the tolerance
// defaulted. An inverted price range (min > max) keeps only the max bound;
// the min is treated as unset.
func (q *Query) Normalize(defaultTolerance float64) {
	q.Category = strings.ToLower(strings.TrimSpace(q.Category))
	q.Brand = strings.ToLower(strings.TrimSpace(q.Brand))
	for i, kw := range q.FeatureKeywords {
		q.FeatureKeywords[i] = strings.ToLower(strings.TrimSpace(kw))
	}
	for i, s := range q.SizePreferences {
		q.SizePreferences[i] = strings.ToUpper(strings.TrimSpace(s))
	}
	if q.PriceTolerance <= 0 {
		q.PriceTolerance = defaultTolerance
	}
	if q.PriceMin != nil && q.PriceMax != nil && *q.PriceMin > *q.PriceMax {
		q.PriceMin = nil
	}
}

// HasPriceRange reports whether at least one price bound is set.
func (q *Query) HasPriceRange() bool {
	return q.PriceMin != nil || q.PriceMax != nil
}

// Constrained reports whether the query declares any structured constraint.
// An unconstrained query accepts every priced record.
func (q *Query) Constrained() bool {
	return q.Category != "" || q.Brand != "" || q.HasPriceRange() ||
		len(q.SizePreferences) > 0 || len(q.FeatureKeywords) > 0
}
