package retrieval

import (
	"sort"

	"github.com/hyperjump/tenin/internal/vector"
	"github.com/hyperjump/tenin/pkg/utils"
)

// Blender combines the structural score with semantic similarity between the
// query and record embeddings into the final ranking key.
type Blender struct {
	config *Config
}

// NewBlender creates a blender with the given configuration.
func NewBlender(config *Config) *Blender {
	if config == nil {
		config = DefaultConfig()
	}
	config.ApplyDefaults()
	return &Blender{config: config}
}

// Blend computes FinalScore for every candidate and sorts the slice by it in
// descending order. The sort is stable: ties keep their original insertion
// order, which makes result ordering reproducible for identical inputs.
//
// FinalScore = Score + SimilarityWeight × cosine(query, record), plus a
// proximity bonus when the price gap is within tolerance, a smaller bonus
// within 2× tolerance, and a size bonus when a requested size was matched
// exactly. A degenerate embedding on either side contributes a similarity
// of zero and never fails the call.
func (b *Blender) Blend(queryEmbedding []float32, cands []*Candidate, tolerance float64) {
	if tolerance <= 0 {
		tolerance = b.config.PriceTolerance
	}
	for _, cand := range cands {
		sim := vector.CosineSimilarity(queryEmbedding, cand.Product.Embedding)
		final := cand.Score + b.config.SimilarityWeight*sim

		gap := utils.Abs(cand.PriceDistance)
		switch {
		case gap <= tolerance:
			final += b.config.PriceProximityBonus
		case gap <= b.config.HardCutoffMultiple*tolerance:
			final += b.config.PriceOuterBonus
		}

		if cand.SizeRequested && cand.SizeMatch {
			final += b.config.ExactSizeBonus
		}
		cand.FinalScore = final
	}

	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].FinalScore > cands[j].FinalScore
	})
}
