// Package retrieval implements the knowledge-base query and ranking engine:
// price normalization, multi-factor candidate scoring, tier classification,
// semantic blending and result rendering.
package retrieval

// Price shorthand heuristics. Catalog prices are stored in the smallest
// currency unit, but users quote them as "25" (millions) or "900" (thousands).
// Callers depend on the exact thresholds below; do not adjust them without a
// data migration.
const (
	// canonicalPriceFloor: values above this are taken as already canonical.
	canonicalPriceFloor = 10_000
	// millionShorthandMax: values up to this read as millions ("2.5" or "25"
	// both mean millions of the canonical unit).
	millionShorthandMax = 100

	millionMultiplier  = 1_000_000
	thousandMultiplier = 1_000
)

// NormalizePrice maps a user-supplied numeric price of ambiguous magnitude
// onto the canonical currency unit. Nil passes through. The heuristic is
// lossy at the boundaries (a genuine canonical price of 5,000 is read as
// 5,000,000); that ambiguity is accepted for compatibility.
func NormalizePrice(raw *float64) *float64 {
	if raw == nil {
		return nil
	}
	v := *raw
	switch {
	case v > canonicalPriceFloor:
		// already canonical
	case v <= millionShorthandMax:
		v *= millionMultiplier
	default:
		v *= thousandMultiplier
	}
	return &v
}
