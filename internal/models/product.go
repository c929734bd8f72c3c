// Package models defines core data structures for products, queries, and chat transcripts.
package models

import "strings"

// Variation is one size/stock entry of a product.
type Variation struct {
	Size       string `json:"size"`
	Stock      int    `json:"stock"`
	StockLabel string `json:"stock_label,omitempty"`
}

// CategoryUnknown is assigned to records whose category is not in the known set.
const CategoryUnknown = "unknown"

// KnownCategories is the closed category set of the catalog.
var KnownCategories = []string{
	"helmets",
	"riding apparel",
	"motorcycle tires",
	"protection gear",
	"top boxes",
	"accessories",
}

// NormalizeCategory maps a raw category string onto the known set,
// returning CategoryUnknown when it matches nothing.
func NormalizeCategory(raw string) string {
	c := strings.ToLower(strings.TrimSpace(raw))
	for _, known := range KnownCategories {
		if c == known {
			return known
		}
	}
	return CategoryUnknown
}

// Product is one knowledge-base entry. Records are created by the catalog
// loader and are read-only for the lifetime of the process.
type Product struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Brand    string `json:"brand,omitempty"`
	// PriceNumeric is the canonical price in the smallest currency unit.
	// Nil means the record has no usable numeric price and is excluded
	// from price-based scoring.
	PriceNumeric *float64    `json:"price_numeric,omitempty"`
	PriceDisplay string      `json:"price,omitempty"`
	FeaturesFlat string      `json:"features_flat,omitempty"`
	Variations   []Variation `json:"variations,omitempty"`
	Link         string      `json:"link,omitempty"`
	Image        string      `json:"image,omitempty"`
	Embedding    []float32   `json:"-"`
}

// Priced reports whether the record carries a non-negative numeric price.
func (p *Product) Priced() bool {
	return p.PriceNumeric != nil && *p.PriceNumeric >= 0
}

// Sizes returns the size labels of all variations, in declaration order.
func (p *Product) Sizes() []string {
	sizes := make([]string, 0, len(p.Variations))
	for _, v := range p.Variations {
		if v.Size != "" {
			sizes = append(sizes, v.Size)
		}
	}
	return sizes
}

// HasSize reports whether any variation carries the given size label (case-insensitive).
func (p *Product) HasSize(size string) bool {
	for _, v := range p.Variations {
		if strings.EqualFold(v.Size, size) {
			return true
		}
	}
	return false
}

// EmbeddingText returns the text the record is embedded under: name, category,
// brand and flattened features joined into one string.
func (p *Product) EmbeddingText() string {
	parts := make([]string, 0, 4)
	for _, s := range []string{p.Name, p.Category, p.Brand, p.FeaturesFlat} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
