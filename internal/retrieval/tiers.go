package retrieval

// Classifier buckets scored candidates into tiers using the configured
// score-ratio thresholds.
type Classifier struct {
	config *Config
}

// NewClassifier creates a classifier with the given configuration.
func NewClassifier(config *Config) *Classifier {
	if config == nil {
		config = DefaultConfig()
	}
	config.ApplyDefaults()
	return &Classifier{config: config}
}

// Classify assigns a tier to one candidate. A candidate with no declared
// constraints (MaxScore == 0) is Exact. Otherwise Exact requires the ratio to
// reach ExactRatio with the size constraint (if any) exactly satisfied and
// the price in range; candidates at or above NearRatio land in Near; the
// rest are dropped.
func (c *Classifier) Classify(cand *Candidate) Tier {
	if cand.MaxScore == 0 {
		return TierExact
	}
	ratio := cand.Ratio()
	if ratio >= c.config.ExactRatio {
		if (!cand.SizeRequested || cand.SizeMatch) && cand.PriceStatus == PriceExact && cand.PriceDistance == 0 {
			return TierExact
		}
		return TierNear
	}
	if ratio >= c.config.NearRatio {
		return TierNear
	}
	return TierNone
}

// Partition splits candidates into Exact and Near lists, preserving input
// order within each list. Dropped candidates do not appear in either.
func (c *Classifier) Partition(cands []*Candidate) (exact, near []*Candidate) {
	for _, cand := range cands {
		switch c.Classify(cand) {
		case TierExact:
			exact = append(exact, cand)
		case TierNear:
			near = append(near, cand)
		}
	}
	return exact, near
}
