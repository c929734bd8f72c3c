package retrieval

import (
	"fmt"
	"strings"
	"testing"

	"github.com/hyperjump/tenin/internal/models"
)

func renderCand(id string, price float64) *Candidate {
	return &Candidate{
		Product: &models.Product{
			ID:           id,
			Name:         "Product " + id,
			PriceNumeric: priced(price),
			Variations:   []models.Variation{{Size: "M", Stock: 5}},
		},
		PriceStatus: PriceExact,
	}
}

func TestRenderBudget(t *testing.T) {
	rd := NewRenderer(nil)
	var exact, near []*Candidate
	for i := 0; i < 7; i++ {
		exact = append(exact, renderCand(fmt.Sprintf("e%d", i), 1_000_000))
	}
	for i := 0; i < 7; i++ {
		near = append(near, renderCand(fmt.Sprintf("n%d", i), 1_000_000))
	}
	result := rd.Render(exact, near, &models.Query{Text: "helmet"})
	if len(result.Items) != 10 {
		t.Fatalf("got %d items, want 10", len(result.Items))
	}
	for i := 0; i < 7; i++ {
		if result.Items[i].Tier != "exact" {
			t.Errorf("item %d tier = %s, want exact", i, result.Items[i].Tier)
		}
	}
	for i := 7; i < 10; i++ {
		if result.Items[i].Tier != "near" {
			t.Errorf("item %d tier = %s, want near", i, result.Items[i].Tier)
		}
	}
	for i, item := range result.Items {
		if item.Rank != i+1 {
			t.Errorf("item %d rank = %d", i, item.Rank)
		}
	}
}

func TestRenderExactNeverTruncated(t *testing.T) {
	rd := NewRenderer(nil)
	var exact []*Candidate
	for i := 0; i < 12; i++ {
		exact = append(exact, renderCand(fmt.Sprintf("e%d", i), 1_000_000))
	}
	near := []*Candidate{renderCand("n0", 1_000_000)}
	result := rd.Render(exact, near, &models.Query{Text: "helmet"})
	if len(result.Items) != 10 {
		t.Fatalf("got %d items, want 10", len(result.Items))
	}
	for _, item := range result.Items {
		if item.Tier != "exact" {
			t.Errorf("near item displaced an exact item: %+v", item)
		}
	}
}

func TestRenderAdvisoryNotes(t *testing.T) {
	rd := NewRenderer(nil)
	q := &models.Query{Text: "helmet"}

	sizeMiss := renderCand("s", 1_000_000)
	sizeMiss.SizeRequested = true
	sizeMiss.SizeMatch = false

	over := renderCand("o", 1_000_000)
	over.PriceStatus = PriceExpensive
	over.PriceDistance = 300_000

	under := renderCand("u", 1_000_000)
	under.PriceStatus = PriceCheaper
	under.PriceDistance = -300_000

	generic := renderCand("g", 1_000_000)

	result := rd.Render(nil, []*Candidate{sizeMiss, over, under, generic}, q)
	notes := make([]string, len(result.Items))
	for i, item := range result.Items {
		notes[i] = item.Note
	}
	if !strings.Contains(notes[0], "size not available") || !strings.Contains(notes[0], "M") {
		t.Errorf("size note = %q", notes[0])
	}
	if notes[1] != "300,000 above your requested price range" {
		t.Errorf("over note = %q", notes[1])
	}
	if notes[2] != "300,000 below your requested price range" {
		t.Errorf("under note = %q", notes[2])
	}
	if notes[3] != "similar item" {
		t.Errorf("generic note = %q", notes[3])
	}
}

func TestRenderStockNote(t *testing.T) {
	rd := NewRenderer(nil)
	q := &models.Query{Text: "helmet"}

	low := renderCand("low", 1_000_000)
	low.Product.Variations = []models.Variation{{Size: "M", Stock: 1}}

	labeled := renderCand("labeled", 1_000_000)
	labeled.Product.Variations = []models.Variation{{Size: "M", StockLabel: "Low"}}

	healthy := renderCand("healthy", 1_000_000)

	result := rd.Render([]*Candidate{low, labeled, healthy}, nil, q)
	if result.Items[0].StockNote != "Limited stock!" {
		t.Errorf("low stock note = %q", result.Items[0].StockNote)
	}
	if result.Items[1].StockNote != "Limited stock!" {
		t.Errorf("labeled stock note = %q", result.Items[1].StockNote)
	}
	if result.Items[2].StockNote != "" {
		t.Errorf("healthy stock note = %q", result.Items[2].StockNote)
	}
}

func TestRenderPriceFallbacks(t *testing.T) {
	rd := NewRenderer(nil)
	q := &models.Query{Text: "helmet"}

	displayed := renderCand("d", 1_000_000)
	displayed.Product.PriceDisplay = "Rp 1.000.000"

	numericOnly := renderCand("n", 2_500_000)

	unpriced := renderCand("u", 0)
	unpriced.Product.PriceNumeric = nil

	result := rd.Render([]*Candidate{displayed, numericOnly, unpriced}, nil, q)
	if result.Items[0].Price != "Rp 1.000.000" {
		t.Errorf("display price = %q", result.Items[0].Price)
	}
	if result.Items[1].Price != "2,500,000" {
		t.Errorf("numeric price = %q", result.Items[1].Price)
	}
	if result.Items[2].Price != "price unavailable" {
		t.Errorf("unpriced = %q", result.Items[2].Price)
	}
}

func TestResultFormat(t *testing.T) {
	result := &Result{
		Query: "helmet",
		Items: []RenderedItem{
			{Rank: 1, Tier: "exact", Name: "AGV K6", Price: "12,000,000", Sizes: []string{"M", "L"}},
			{Rank: 2, Tier: "near", Name: "LS2 FF353", Price: "1,500,000", Note: "similar item"},
		},
	}
	out := result.Format()
	for _, want := range []string{"1. **AGV K6**", "Sizes: M, L", "2. **LS2 FF353**", "Note: similar item", "\n---\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("formatted output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{900, "900"},
		{25_000, "25,000"},
		{1_500_000, "1,500,000"},
		{-300_000, "-300,000"},
	}
	for _, tt := range tests {
		if got := formatAmount(tt.in); got != tt.want {
			t.Errorf("formatAmount(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
