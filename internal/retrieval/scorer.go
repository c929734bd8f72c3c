package retrieval

import (
	"strings"

	"github.com/hyperjump/tenin/internal/models"
	"github.com/hyperjump/tenin/pkg/utils"
)

// Scorer computes the structural match score of one product against one query.
type Scorer struct {
	config *Config
}

// NewScorer creates a scorer with the given configuration.
func NewScorer(config *Config) *Scorer {
	if config == nil {
		config = DefaultConfig()
	}
	config.ApplyDefaults()
	return &Scorer{config: config}
}

// Score evaluates p against q. The second return value is false when the
// record is excluded before scoring: its price lies more than
// HardCutoffMultiple × tolerance outside the requested range, or the query is
// unconstrained and the record carries no usable price.
//
// For each constraint the query declares, MaxScore grows by the constraint's
// weight and Score grows by the same weight when the record satisfies it.
// The price constraint is three-valued: in range scores full weight, within
// tolerance scores partial credit and records the signed gap, beyond
// tolerance scores nothing.
func (s *Scorer) Score(p *models.Product, q *models.Query) (*Candidate, bool) {
	cand := &Candidate{Product: p, PriceStatus: PriceExact}

	if !q.Constrained() {
		// No constraints: every priced record is automatically accepted.
		return cand, p.Priced()
	}

	name := utils.FoldForMatch(p.Name)

	if q.Category != "" {
		cand.MaxScore += s.config.CategoryWeight
		category := utils.FoldForMatch(p.Category)
		if strings.Contains(category, q.Category) || strings.Contains(name, q.Category) {
			cand.Score += s.config.CategoryWeight
		}
	}

	if q.Brand != "" {
		cand.MaxScore += s.config.BrandWeight
		brand := utils.FoldForMatch(p.Brand)
		if strings.Contains(brand, q.Brand) || strings.Contains(name, q.Brand) {
			cand.Score += s.config.BrandWeight
		}
	}

	if len(q.FeatureKeywords) > 0 {
		cand.MaxScore += s.config.FeatureWeight
		features := utils.FoldForMatch(p.FeaturesFlat)
		for _, kw := range q.FeatureKeywords {
			if kw == "" {
				continue
			}
			if strings.Contains(features, kw) || strings.Contains(name, kw) {
				cand.Score += s.config.FeatureWeight
				break
			}
		}
	}

	if len(q.SizePreferences) > 0 {
		cand.SizeRequested = true
		cand.MaxScore += s.config.SizeWeight
		for _, size := range q.SizePreferences {
			if p.HasSize(size) {
				cand.SizeMatch = true
				cand.Score += s.config.SizeWeight
				break
			}
		}
	}

	if q.HasPriceRange() {
		if !p.Priced() {
			// Unpriced records cannot earn or lose price credit.
			return cand, true
		}
		cand.MaxScore += s.config.PriceWeight

		price := *p.PriceNumeric
		tolerance := q.PriceTolerance
		if tolerance <= 0 {
			tolerance = s.config.PriceTolerance
		}

		var gap float64
		switch {
		case q.PriceMin != nil && price < *q.PriceMin:
			gap = price - *q.PriceMin // negative: cheaper
			cand.PriceStatus = PriceCheaper
		case q.PriceMax != nil && price > *q.PriceMax:
			gap = price - *q.PriceMax // positive: more expensive
			cand.PriceStatus = PriceExpensive
		}

		switch {
		case gap == 0:
			cand.Score += s.config.PriceWeight
		case utils.Abs(gap) <= tolerance:
			cand.Score += s.config.PriceWeight * s.config.PartialPriceCredit
			cand.PriceDistance = gap
		case utils.Abs(gap) <= s.config.HardCutoffMultiple*tolerance:
			cand.PriceDistance = gap
		default:
			// Hard cutoff: too far outside the requested range.
			return nil, false
		}
	}

	return cand, true
}
