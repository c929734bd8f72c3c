package corpus

import (
	"context"
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"

	"github.com/hyperjump/tenin/internal/models"
)

// productDoc is the shape indexed into Bleve for lexical recall.
type productDoc struct {
	Name     string `json:"name"`
	Brand    string `json:"brand"`
	Category string `json:"category"`
	Features string `json:"features"`
}

// KeywordIndex provides BM25 lexical recall over product names, brands,
// categories and features. It widens the retrieval engine's candidate
// window; it is never the sole candidate source.
type KeywordIndex struct {
	index bleve.Index
}

// NewKeywordIndex creates or opens a Bleve index at path. An empty path
// builds an in-memory index (used by tests and the local REPL).
func NewKeywordIndex(path string) (*KeywordIndex, error) {
	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so brand and
	// model names match exactly as typed.
	textFieldMapping.Analyzer = standard.Name
	for _, field := range []string{"name", "brand", "category", "features"} {
		docMapping.AddFieldMappingsAt(field, textFieldMapping)
	}
	im.DefaultMapping = docMapping

	if path == "" {
		index, err := bleve.NewMemOnly(im)
		if err != nil {
			return nil, fmt.Errorf("create in-memory keyword index: %w", err)
		}
		return &KeywordIndex{index: index}, nil
	}

	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("open keyword index: %w", openErr)
		}
		return &KeywordIndex{index: index}, nil
	}
	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("create keyword index: %w", err)
	}
	return &KeywordIndex{index: index}, nil
}

// Index adds or updates one product.
func (k *KeywordIndex) Index(ctx context.Context, p *models.Product) error {
	return k.index.Index(p.ID, productDoc{
		Name:     p.Name,
		Brand:    p.Brand,
		Category: p.Category,
		Features: p.FeaturesFlat,
	})
}

// IndexAll indexes products in one batch.
func (k *KeywordIndex) IndexAll(ctx context.Context, products []*models.Product) error {
	batch := k.index.NewBatch()
	for _, p := range products {
		if err := batch.Index(p.ID, productDoc{
			Name:     p.Name,
			Brand:    p.Brand,
			Category: p.Category,
			Features: p.FeaturesFlat,
		}); err != nil {
			return fmt.Errorf("batch index %q: %w", p.ID, err)
		}
	}
	return k.index.Batch(batch)
}

// Search runs a match query and returns up to limit product IDs.
func (k *KeywordIndex) Search(ctx context.Context, query string, limit int) ([]string, error) {
	q := bleve.NewMatchQuery(query)
	req := bleve.NewSearchRequest(q)
	req.Size = limit
	results, err := k.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}
	ids := make([]string, len(results.Hits))
	for i, hit := range results.Hits {
		ids[i] = hit.ID
	}
	return ids, nil
}

// Delete removes one product by ID.
func (k *KeywordIndex) Delete(ctx context.Context, id string) error {
	return k.index.Delete(id)
}

// DocCount returns the number of indexed products.
func (k *KeywordIndex) DocCount() (uint64, error) {
	return k.index.DocCount()
}

// Close releases the underlying index.
func (k *KeywordIndex) Close() error {
	return k.index.Close()
}
