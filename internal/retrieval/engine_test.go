package retrieval

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/hyperjump/tenin/internal/corpus"
	"github.com/hyperjump/tenin/internal/embedding"
	"github.com/hyperjump/tenin/internal/models"
)

func testCatalog() []*models.Product {
	return []*models.Product{
		{
			ID: "h1", Name: "AGV K6 Full Face Helmet", Category: "helmets", Brand: "AGV",
			PriceNumeric: priced(12_000_000),
			Variations:   []models.Variation{{Size: "M", Stock: 3}, {Size: "L", Stock: 2}},
		},
		{
			ID: "h2", Name: "LS2 FF353 Rapid Helmet", Category: "helmets", Brand: "LS2",
			PriceNumeric: priced(1_500_000),
			Variations:   []models.Variation{{Size: "M", Stock: 5}},
		},
		{
			ID: "h3", Name: "Shoei GT-Air 3 Helmet", Category: "helmets", Brand: "Shoei",
			PriceNumeric: priced(11_500_000),
			Variations:   []models.Variation{{Size: "XL", Stock: 1}},
		},
		{
			ID: "t1", Name: "Pirelli Diablo Rosso IV", Category: "motorcycle tires", Brand: "Pirelli",
			PriceNumeric: priced(2_200_000),
		},
	}
}

func newTestEngine(t *testing.T, products []*models.Product) (*Engine, *corpus.MemoryStore) {
	t.Helper()
	embedder := embedding.NewMockEmbedder(64)
	ctx := context.Background()
	for _, p := range products {
		emb, err := embedder.Embed(ctx, p.EmbeddingText())
		if err != nil {
			t.Fatalf("embed %s: %v", p.ID, err)
		}
		p.Embedding = emb
	}
	store := corpus.NewMemoryStore()
	store.Replace(products)
	return NewEngine(store, nil, embedder, nil, nil), store
}

func TestRetrieveByCategory(t *testing.T) {
	engine, _ := newTestEngine(t, testCatalog())
	result, err := engine.Retrieve(context.Background(), &models.Query{
		Text:     "full face helmet",
		Category: "helmets",
	})
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(result.Items) != 3 {
		t.Fatalf("got %d items, want 3 helmets", len(result.Items))
	}
	for _, item := range result.Items {
		if item.Tier != "exact" {
			t.Errorf("item %q tier = %s, want exact", item.Name, item.Tier)
		}
	}
}

func TestRetrievePriceRangeExcludesOutliers(t *testing.T) {
	engine, _ := newTestEngine(t, testCatalog())
	result, err := engine.Retrieve(context.Background(), &models.Query{
		Text:     "helmet",
		Category: "helmets",
		PriceMax: priced(2_000_000),
	})
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(result.Items) != 1 || result.Items[0].Name != "LS2 FF353 Rapid Helmet" {
		t.Fatalf("items = %+v, want only the LS2", result.Items)
	}
}

func TestRetrieveShorthandPrice(t *testing.T) {
	// "2" means 2,000,000 in the shorthand users type.
	engine, _ := newTestEngine(t, testCatalog())
	result, err := engine.Retrieve(context.Background(), &models.Query{
		Text:     "helmet",
		Category: "helmets",
		PriceMax: priced(2),
	})
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(result.Items) != 1 || result.Items[0].Name != "LS2 FF353 Rapid Helmet" {
		t.Fatalf("items = %+v, want only the LS2", result.Items)
	}
}

func TestRetrieveDeterministic(t *testing.T) {
	engine, _ := newTestEngine(t, testCatalog())
	q := func() *models.Query {
		return &models.Query{Text: "helmet", Category: "helmets"}
	}
	first, err := engine.Retrieve(context.Background(), q())
	if err != nil {
		t.Fatalf("first Retrieve() error = %v", err)
	}
	second, err := engine.Retrieve(context.Background(), q())
	if err != nil {
		t.Fatalf("second Retrieve() error = %v", err)
	}
	if !reflect.DeepEqual(first.Items, second.Items) {
		t.Errorf("same query produced different results:\n%+v\n%+v", first.Items, second.Items)
	}
}

func TestRetrieveNotFound(t *testing.T) {
	engine, _ := newTestEngine(t, testCatalog())
	_, err := engine.Retrieve(context.Background(), &models.Query{
		Text:     "snowboard",
		Category: "snowboards",
	})
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("error = %v, want *NotFoundError", err)
	}
	if nf.Category != "snowboards" {
		t.Errorf("Category = %q, want snowboards", nf.Category)
	}
	if nf.UserMessage() == "" {
		t.Error("UserMessage() is empty")
	}
}

func TestRetrieveEmptyQuery(t *testing.T) {
	engine, _ := newTestEngine(t, testCatalog())
	if _, err := engine.Retrieve(context.Background(), &models.Query{Text: "   "}); err == nil {
		t.Fatal("blank query should be rejected")
	}
}

// narrowStore returns an empty bounded window, forcing the engine onto the
// full-scan path.
type narrowStore struct {
	*corpus.MemoryStore
	scans int
}

func (s *narrowStore) Search(ctx context.Context, embedding []float32, topK int, filters *corpus.Filters) ([]*models.Product, error) {
	return nil, nil
}

func (s *narrowStore) ScanAll(ctx context.Context) ([]*models.Product, error) {
	s.scans++
	return s.MemoryStore.ScanAll(ctx)
}

func TestRetrieveFullScanFallback(t *testing.T) {
	products := testCatalog()
	_, mem := newTestEngine(t, products)
	store := &narrowStore{MemoryStore: mem}
	engine := NewEngine(store, nil, embedding.NewMockEmbedder(64), nil, nil)

	result, err := engine.Retrieve(context.Background(), &models.Query{
		Text:     "helmet",
		Category: "helmets",
	})
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if store.scans != 1 {
		t.Errorf("ScanAll called %d times, want 1", store.scans)
	}
	if len(result.Items) != 3 {
		t.Errorf("got %d items, want 3", len(result.Items))
	}
}

type fixedKeywords struct{ ids []string }

func (k *fixedKeywords) Search(ctx context.Context, query string, limit int) ([]string, error) {
	return k.ids, nil
}

func TestRetrieveKeywordHitsWidenWindow(t *testing.T) {
	products := testCatalog()
	_, mem := newTestEngine(t, products)
	store := &narrowStore{MemoryStore: mem}
	keywords := &fixedKeywords{ids: []string{"h2"}}
	engine := NewEngine(store, keywords, embedding.NewMockEmbedder(64), nil, nil)

	result, err := engine.Retrieve(context.Background(), &models.Query{
		Text:     "rapid helmet",
		Category: "helmets",
	})
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	// The keyword hit fills the empty window, so the full scan never runs.
	if store.scans != 0 {
		t.Errorf("ScanAll called %d times, want 0", store.scans)
	}
	if len(result.Items) != 1 || result.Items[0].Name != "LS2 FF353 Rapid Helmet" {
		t.Errorf("items = %+v", result.Items)
	}
}
