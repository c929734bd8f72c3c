package retrieval

import (
	"testing"

	"github.com/hyperjump/tenin/internal/models"
)

func priced(v float64) *float64 { return &v }

func sampleHelmet() *models.Product {
	return &models.Product{
		ID:           "p1",
		Name:         "AGV K6 Full Face Helmet",
		Category:     "helmets",
		Brand:        "AGV",
		PriceNumeric: priced(12_000_000),
		FeaturesFlat: "lightweight, wide view, ventilated",
		Variations: []models.Variation{
			{Size: "M", Stock: 3},
			{Size: "L", Stock: 1},
		},
	}
}

func TestScoreFullMatch(t *testing.T) {
	s := NewScorer(nil)
	q := &models.Query{
		Text:            "agv helmet",
		Category:        "helmets",
		Brand:           "agv",
		PriceMin:        priced(10_000_000),
		PriceMax:        priced(13_000_000),
		PriceTolerance:  500_000,
		SizePreferences: []string{"M"},
		FeatureKeywords: []string{"lightweight"},
	}
	cand, ok := s.Score(sampleHelmet(), q)
	if !ok {
		t.Fatal("candidate unexpectedly excluded")
	}
	if cand.Score != cand.MaxScore {
		t.Errorf("Score = %v, MaxScore = %v, want full credit", cand.Score, cand.MaxScore)
	}
	if !cand.SizeMatch || cand.PriceStatus != PriceExact || cand.PriceDistance != 0 {
		t.Errorf("flags = %+v", cand)
	}
}

func TestScorePriceWithinTolerance(t *testing.T) {
	s := NewScorer(nil)
	q := &models.Query{
		Text:           "helmet",
		Category:       "helmets",
		PriceMax:       priced(11_700_000),
		PriceTolerance: 500_000,
	}
	cand, ok := s.Score(sampleHelmet(), q)
	if !ok {
		t.Fatal("candidate unexpectedly excluded")
	}
	if cand.PriceStatus != PriceExpensive {
		t.Errorf("PriceStatus = %s, want expensive", cand.PriceStatus)
	}
	if cand.PriceDistance != 300_000 {
		t.Errorf("PriceDistance = %v, want 300000", cand.PriceDistance)
	}
	// Category full weight + half the price weight.
	want := 2.0 + 2.0*0.5
	if cand.Score != want {
		t.Errorf("Score = %v, want %v", cand.Score, want)
	}
}

func TestScorePriceHardCutoff(t *testing.T) {
	s := NewScorer(nil)
	q := &models.Query{
		Text:           "helmet",
		PriceMax:       priced(10_000_000),
		PriceTolerance: 500_000,
	}
	// 12,000,000 is 2,000,000 over the max; the cutoff is 2 × 500,000.
	if _, ok := s.Score(sampleHelmet(), q); ok {
		t.Error("candidate beyond the hard cutoff should be excluded")
	}
}

func TestScorePriceOuterBandKeepsCandidate(t *testing.T) {
	s := NewScorer(nil)
	q := &models.Query{
		Text:           "helmet",
		PriceMax:       priced(11_200_000),
		PriceTolerance: 500_000,
	}
	// Gap 800,000: past tolerance but inside 2 × tolerance.
	cand, ok := s.Score(sampleHelmet(), q)
	if !ok {
		t.Fatal("candidate in the outer band should be kept")
	}
	if cand.Score != 0 {
		t.Errorf("Score = %v, want 0 (no price credit in the outer band)", cand.Score)
	}
	if cand.PriceDistance != 800_000 {
		t.Errorf("PriceDistance = %v, want 800000", cand.PriceDistance)
	}
}

func TestScoreUnpricedRecordSkipsPriceTerm(t *testing.T) {
	s := NewScorer(nil)
	p := sampleHelmet()
	p.PriceNumeric = nil
	q := &models.Query{
		Text:           "helmet",
		Category:       "helmets",
		PriceMax:       priced(10_000_000),
		PriceTolerance: 500_000,
	}
	cand, ok := s.Score(p, q)
	if !ok {
		t.Fatal("unpriced record should not be excluded by a price constraint")
	}
	if cand.MaxScore != 2.0 {
		t.Errorf("MaxScore = %v, want 2.0 (category only)", cand.MaxScore)
	}
}

func TestScoreUnconstrainedQuery(t *testing.T) {
	s := NewScorer(nil)
	q := &models.Query{Text: "something nice"}

	cand, ok := s.Score(sampleHelmet(), q)
	if !ok {
		t.Fatal("priced record should be accepted by an unconstrained query")
	}
	if cand.MaxScore != 0 {
		t.Errorf("MaxScore = %v, want 0", cand.MaxScore)
	}

	unpriced := sampleHelmet()
	unpriced.PriceNumeric = nil
	if _, ok := s.Score(unpriced, q); ok {
		t.Error("unpriced record should be rejected by an unconstrained query")
	}
}

func TestScoreCategoryMatchesName(t *testing.T) {
	s := NewScorer(nil)
	p := sampleHelmet()
	p.Category = "protective gear"
	q := &models.Query{Text: "helmet", Category: "helmet"}

	cand, ok := s.Score(p, q)
	if !ok {
		t.Fatal("candidate unexpectedly excluded")
	}
	if cand.Score != cand.MaxScore {
		t.Error("category term should also match against the product name")
	}
}

func TestScoreSizeMismatch(t *testing.T) {
	s := NewScorer(nil)
	q := &models.Query{Text: "helmet", SizePreferences: []string{"XS"}}

	cand, ok := s.Score(sampleHelmet(), q)
	if !ok {
		t.Fatal("candidate unexpectedly excluded")
	}
	if !cand.SizeRequested || cand.SizeMatch {
		t.Errorf("size flags = requested %v, match %v", cand.SizeRequested, cand.SizeMatch)
	}
	if cand.Score != 0 {
		t.Errorf("Score = %v, want 0", cand.Score)
	}
}
