package retrieval

// Config holds all scoring, tiering and blending policy for the retrieval
// engine. Every threshold the algorithm consults lives here so variants can
// be tuned without touching the code.
type Config struct {
	// Constraint weights for the structural match score
	CategoryWeight float64 `yaml:"category_weight"` // default: 2.0
	BrandWeight    float64 `yaml:"brand_weight"`    // default: 2.0
	PriceWeight    float64 `yaml:"price_weight"`    // default: 2.0
	SizeWeight     float64 `yaml:"size_weight"`     // default: 1.5
	FeatureWeight  float64 `yaml:"feature_weight"`  // default: 1.0

	// Price policy
	PriceTolerance     float64 `yaml:"price_tolerance"`      // default: 500,000 canonical units
	PartialPriceCredit float64 `yaml:"partial_price_credit"` // default: 0.5 (fraction of PriceWeight for within-tolerance)
	HardCutoffMultiple float64 `yaml:"hard_cutoff_multiple"` // default: 2.0 (× tolerance outside range excludes record)

	// Tier thresholds (score/max_score ratios)
	ExactRatio float64 `yaml:"exact_ratio"` // default: 0.8
	NearRatio  float64 `yaml:"near_ratio"`  // default: 0.5

	// Semantic blending
	SimilarityWeight    float64 `yaml:"similarity_weight"`     // default: 2.0
	PriceProximityBonus float64 `yaml:"price_proximity_bonus"` // default: 0.5 (within tolerance)
	PriceOuterBonus     float64 `yaml:"price_outer_bonus"`     // default: 0.25 (within 2× tolerance)
	ExactSizeBonus      float64 `yaml:"exact_size_bonus"`      // default: 0.25

	// Result shaping
	MaxResults        int `yaml:"max_results"`         // default: 10
	TopKCandidates    int `yaml:"top_k_candidates"`    // default: 200
	LowStockThreshold int `yaml:"low_stock_threshold"` // default: 2 (stock below this warns)
}

// DefaultConfig returns the default retrieval configuration.
func DefaultConfig() *Config {
	return &Config{
		CategoryWeight: 2.0,
		BrandWeight:    2.0,
		PriceWeight:    2.0,
		SizeWeight:     1.5,
		FeatureWeight:  1.0,

		PriceTolerance:     500_000,
		PartialPriceCredit: 0.5,
		HardCutoffMultiple: 2.0,

		ExactRatio: 0.8,
		NearRatio:  0.5,

		SimilarityWeight:    2.0,
		PriceProximityBonus: 0.5,
		PriceOuterBonus:     0.25,
		ExactSizeBonus:      0.25,

		MaxResults:        10,
		TopKCandidates:    200,
		LowStockThreshold: 2,
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *Config) ApplyDefaults() {
	defaults := DefaultConfig()

	if c.CategoryWeight == 0 {
		c.CategoryWeight = defaults.CategoryWeight
	}
	if c.BrandWeight == 0 {
		c.BrandWeight = defaults.BrandWeight
	}
	if c.PriceWeight == 0 {
		c.PriceWeight = defaults.PriceWeight
	}
	if c.SizeWeight == 0 {
		c.SizeWeight = defaults.SizeWeight
	}
	if c.FeatureWeight == 0 {
		c.FeatureWeight = defaults.FeatureWeight
	}

	if c.PriceTolerance == 0 {
		c.PriceTolerance = defaults.PriceTolerance
	}
	if c.PartialPriceCredit == 0 {
		c.PartialPriceCredit = defaults.PartialPriceCredit
	}
	if c.HardCutoffMultiple == 0 {
		c.HardCutoffMultiple = defaults.HardCutoffMultiple
	}

	if c.ExactRatio == 0 {
		c.ExactRatio = defaults.ExactRatio
	}
	if c.NearRatio == 0 {
		c.NearRatio = defaults.NearRatio
	}

	if c.SimilarityWeight == 0 {
		c.SimilarityWeight = defaults.SimilarityWeight
	}
	if c.PriceProximityBonus == 0 {
		c.PriceProximityBonus = defaults.PriceProximityBonus
	}
	if c.PriceOuterBonus == 0 {
		c.PriceOuterBonus = defaults.PriceOuterBonus
	}
	if c.ExactSizeBonus == 0 {
		c.ExactSizeBonus = defaults.ExactSizeBonus
	}

	if c.MaxResults == 0 {
		c.MaxResults = defaults.MaxResults
	}
	if c.TopKCandidates == 0 {
		c.TopKCandidates = defaults.TopKCandidates
	}
	if c.LowStockThreshold == 0 {
		c.LowStockThreshold = defaults.LowStockThreshold
	}
}
