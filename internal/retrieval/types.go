package retrieval

import "github.com/hyperjump/tenin/internal/models"

// PriceStatus tags how a candidate's price relates to the requested range.
type PriceStatus string

const (
	// PriceExact means the price is inside the requested range (or no range
	// was requested).
	PriceExact PriceStatus = "exact"
	// PriceCheaper means the price is below the requested minimum.
	PriceCheaper PriceStatus = "cheaper"
	// PriceExpensive means the price is above the requested maximum.
	PriceExpensive PriceStatus = "expensive"
)

// Tier buckets a scored candidate.
type Tier int

const (
	// TierNone marks a candidate below the near threshold; it is dropped.
	TierNone Tier = iota
	// TierNear marks a partial match within bounded tolerance.
	TierNear
	// TierExact marks a candidate satisfying all declared constraints.
	TierExact
)

// String returns a string representation of the tier.
func (t Tier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierNear:
		return "near"
	default:
		return "none"
	}
}

// Candidate is a product scored against one query. Candidates live only for
// the duration of a single retrieval call.
type Candidate struct {
	Product *models.Product
	// Score is the structural constraint-satisfaction score.
	Score float64
	// MaxScore is the maximum attainable score for the query; the
	// denominator for ratio tests. Zero means the query declared no
	// constraints and the candidate is automatically accepted.
	MaxScore float64
	// PriceStatus tags the price relation to the requested range.
	PriceStatus PriceStatus
	// PriceDistance is the signed gap to the nearest violated bound,
	// 0 when the price is in range. Negative means cheaper than requested.
	PriceDistance float64
	// SizeRequested and SizeMatch record the size constraint outcome.
	SizeRequested bool
	SizeMatch     bool
	// FinalScore is the blended ranking key (structural score + weighted
	// semantic similarity + bonuses), set by the Blender.
	FinalScore float64
}

// Ratio returns Score/MaxScore, or 1 when no constraints were declared.
func (c *Candidate) Ratio() float64 {
	if c.MaxScore == 0 {
		return 1
	}
	return c.Score / c.MaxScore
}
