// Package corpus provides the product knowledge base: vector similarity
// search over product embeddings, full-corpus scans, keyword recall, and
// catalog loading.
package corpus

import (
	"context"
	"strings"

	"github.com/hyperjump/tenin/internal/models"
	"github.com/hyperjump/tenin/pkg/utils"
)

// Filters narrow a candidate search before scoring. A nil *Filters or a zero
// field matches everything.
type Filters struct {
	Category string
	Brand    string
	// Price bounds in canonical units, already widened by the caller's
	// cutoff margin. Unpriced records always pass.
	PriceMin *float64
	PriceMax *float64
}

// Match reports whether p passes the filters. Category and brand use the
// same case-insensitive substring semantics as the scorer (the record's name
// also counts), so pre-filtering never excludes a record the scorer would
// credit.
func (f *Filters) Match(p *models.Product) bool {
	if f == nil {
		return true
	}
	name := utils.FoldForMatch(p.Name)
	if f.Category != "" {
		category := utils.FoldForMatch(p.Category)
		if !strings.Contains(category, f.Category) && !strings.Contains(name, f.Category) {
			return false
		}
	}
	if f.Brand != "" {
		brand := utils.FoldForMatch(p.Brand)
		if !strings.Contains(brand, f.Brand) && !strings.Contains(name, f.Brand) {
			return false
		}
	}
	if p.Priced() {
		price := *p.PriceNumeric
		if f.PriceMin != nil && price < *f.PriceMin {
			return false
		}
		if f.PriceMax != nil && price > *f.PriceMax {
			return false
		}
	}
	return true
}

// Store defines the product corpus operations the retrieval engine consumes.
type Store interface {
	// Search returns up to topK records passing the filters, ordered by
	// similarity to the query embedding (ties keep insertion order).
	Search(ctx context.Context, embedding []float32, topK int, filters *Filters) ([]*models.Product, error)
	// ScanAll returns the entire corpus in insertion order.
	ScanAll(ctx context.Context) ([]*models.Product, error)
	// Get returns one record by ID.
	Get(ctx context.Context, id string) (*models.Product, error)
	// Count returns the number of records.
	Count() int
}

// KeywordSearcher defines lexical recall over the corpus; results are
// product IDs.
type KeywordSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]string, error)
}
