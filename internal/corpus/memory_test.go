package corpus

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hyperjump/tenin/internal/models"
)

func pricePtr(v float64) *float64 { return &v }

func storeFixture() []*models.Product {
	return []*models.Product{
		{ID: "a", Name: "AGV K6 Helmet", Category: "helmets", Brand: "AGV",
			PriceNumeric: pricePtr(12_000_000), Embedding: []float32{1, 0}},
		{ID: "b", Name: "LS2 Rapid Helmet", Category: "helmets", Brand: "LS2",
			PriceNumeric: pricePtr(1_500_000), Embedding: []float32{0.6, 0.8}},
		{ID: "c", Name: "Pirelli Diablo Rosso", Category: "motorcycle tires", Brand: "Pirelli",
			PriceNumeric: pricePtr(2_200_000), Embedding: []float32{0, 1}},
	}
}

func TestMemoryStoreSearchOrdering(t *testing.T) {
	store := NewMemoryStore()
	store.Replace(storeFixture())

	got, err := store.Search(context.Background(), []float32{1, 0}, 3, nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d records, want 3", len(got))
	}
	for i, want := range []string{"a", "b", "c"} {
		if got[i].ID != want {
			t.Errorf("result[%d] = %s, want %s", i, got[i].ID, want)
		}
	}
}

func TestMemoryStoreSearchTopK(t *testing.T) {
	store := NewMemoryStore()
	store.Replace(storeFixture())

	got, err := store.Search(context.Background(), []float32{1, 0}, 2, nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("results = %v", got)
	}

	if got, _ := store.Search(context.Background(), []float32{1, 0}, 0, nil); got != nil {
		t.Errorf("topK 0 returned %v", got)
	}
}

func TestMemoryStoreSearchTieBreakInsertionOrder(t *testing.T) {
	store := NewMemoryStore()
	store.Replace([]*models.Product{
		{ID: "first", Embedding: []float32{1, 0}},
		{ID: "second", Embedding: []float32{1, 0}},
	})
	got, err := store.Search(context.Background(), []float32{1, 0}, 2, nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if got[0].ID != "first" || got[1].ID != "second" {
		t.Errorf("tie order = %s, %s", got[0].ID, got[1].ID)
	}
}

func TestMemoryStoreSearchFilters(t *testing.T) {
	store := NewMemoryStore()
	store.Replace(storeFixture())
	ctx := context.Background()

	got, err := store.Search(ctx, []float32{1, 0}, 10, &Filters{Category: "helmets"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("category filter: got %d records, want 2", len(got))
	}

	got, err = store.Search(ctx, []float32{1, 0}, 10, &Filters{PriceMax: pricePtr(3_000_000)})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("price filter: got %d records, want 2", len(got))
	}
	for _, p := range got {
		if *p.PriceNumeric > 3_000_000 {
			t.Errorf("record %s over the price bound", p.ID)
		}
	}
}

func TestFiltersMatch(t *testing.T) {
	unpriced := &models.Product{ID: "u", Name: "Mystery Box", Category: "top boxes"}
	tests := []struct {
		name    string
		filters *Filters
		product *models.Product
		want    bool
	}{
		{"nil filters", nil, storeFixture()[0], true},
		{"category via name", &Filters{Category: "helmet"},
			&models.Product{Name: "Spare Helmet", Category: "unknown"}, true},
		{"brand mismatch", &Filters{Brand: "shoei"}, storeFixture()[0], false},
		{"unpriced passes price bounds", &Filters{PriceMax: pricePtr(1)}, unpriced, true},
		{"price below min", &Filters{PriceMin: pricePtr(2_000_000)}, storeFixture()[1], false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filters.Match(tt.product); got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMemoryStoreReplaceAndGet(t *testing.T) {
	store := NewMemoryStore()
	store.Replace(storeFixture())
	if store.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", store.Count())
	}

	p, err := store.Get(context.Background(), "b")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if p.Name != "LS2 Rapid Helmet" {
		t.Errorf("Get(b) = %s", p.Name)
	}
	if _, err := store.Get(context.Background(), "zzz"); err == nil {
		t.Error("Get(zzz) should fail")
	}

	store.Replace(storeFixture()[:1])
	if store.Count() != 1 {
		t.Errorf("Count() after Replace = %d, want 1", store.Count())
	}
	if _, err := store.Get(context.Background(), "b"); err == nil {
		t.Error("replaced-away record still resolvable")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "embeddings.bin")

	store := NewMemoryStore()
	store.Replace(storeFixture())
	if err := store.SaveSnapshot(path); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	// Fresh store with the same records but no embeddings, plus one record
	// the snapshot does not know.
	restored := []*models.Product{
		{ID: "a", Name: "AGV K6 Helmet"},
		{ID: "b", Name: "LS2 Rapid Helmet"},
		{ID: "new", Name: "Brand New Item"},
	}
	fresh := NewMemoryStore()
	fresh.Replace(restored)
	attached, err := fresh.LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot() error = %v", err)
	}
	if attached != 2 {
		t.Errorf("attached = %d, want 2", attached)
	}
	if got := restored[0].Embedding; len(got) != 2 || got[0] != 1 || got[1] != 0 {
		t.Errorf("record a embedding = %v", got)
	}
	if len(restored[2].Embedding) != 0 {
		t.Errorf("unknown record received an embedding: %v", restored[2].Embedding)
	}
}

func TestLoadSnapshotMissingFile(t *testing.T) {
	store := NewMemoryStore()
	attached, err := store.LoadSnapshot(filepath.Join(t.TempDir(), "nope.bin"))
	if err != nil {
		t.Fatalf("LoadSnapshot() error = %v", err)
	}
	if attached != 0 {
		t.Errorf("attached = %d, want 0", attached)
	}
}
