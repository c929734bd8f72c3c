package retrieval

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/tenin/internal/corpus"
	"github.com/hyperjump/tenin/internal/embedding"
	"github.com/hyperjump/tenin/internal/models"
)

// Engine is the public entry point of the retrieval pipeline: price
// normalization, bounded candidate fetch, scoring, tiering, semantic
// blending and rendering.
type Engine struct {
	store      corpus.Store
	keywords   corpus.KeywordSearcher
	embedder   embedding.Embedder
	scorer     *Scorer
	classifier *Classifier
	blender    *Blender
	renderer   *Renderer
	config     *Config
	logger     *zap.Logger
}

// NewEngine creates an engine with the given dependencies. keywords may be
// nil; when present, lexical hits widen the bounded candidate window.
func NewEngine(
	store corpus.Store,
	keywords corpus.KeywordSearcher,
	embedder embedding.Embedder,
	config *Config,
	logger *zap.Logger,
) *Engine {
	if config == nil {
		config = DefaultConfig()
	}
	config.ApplyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:      store,
		keywords:   keywords,
		embedder:   embedder,
		scorer:     NewScorer(config),
		classifier: NewClassifier(config),
		blender:    NewBlender(config),
		renderer:   NewRenderer(config),
		config:     config,
		logger:     logger,
	}
}

// Retrieve runs the full pipeline for one structured query. It returns a
// bounded, ordered, annotated result, or a *NotFoundError when nothing
// survives even the full-corpus fallback. Any other error is a retrieval
// failure (embedding or store).
func (e *Engine) Retrieve(ctx context.Context, q *models.Query) (*Result, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	q.PriceMin = NormalizePrice(q.PriceMin)
	q.PriceMax = NormalizePrice(q.PriceMax)
	q.Normalize(e.config.PriceTolerance)

	queryEmbedding, err := e.embedder.Embed(ctx, q.Text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	window, err := e.store.Search(ctx, queryEmbedding, e.config.TopKCandidates, e.filters(q))
	if err != nil {
		return nil, fmt.Errorf("candidate search: %w", err)
	}
	window = e.widenWithKeywordHits(ctx, q, window)

	exact, near := e.scoreAndPartition(window, q)

	// Fallback: the coarse similarity pre-filter may have excluded a valid
	// lexical match; re-run the same pass over the entire corpus.
	if len(exact) == 0 && len(near) == 0 {
		all, scanErr := e.store.ScanAll(ctx)
		if scanErr != nil {
			return nil, fmt.Errorf("full corpus scan: %w", scanErr)
		}
		e.logger.Debug("bounded window empty, scanning full corpus",
			zap.String("query", q.Text), zap.Int("corpus_size", len(all)))
		exact, near = e.scoreAndPartition(all, q)
	}

	if len(exact) == 0 && len(near) == 0 {
		return nil, &NotFoundError{Category: q.Category}
	}

	e.blender.Blend(queryEmbedding, exact, q.PriceTolerance)
	e.blender.Blend(queryEmbedding, near, q.PriceTolerance)

	result := e.renderer.Render(exact, near, q)
	e.logger.Debug("retrieval complete",
		zap.String("query", q.Text),
		zap.Int("exact", len(exact)),
		zap.Int("near", len(near)),
		zap.Int("rendered", len(result.Items)))
	return result, nil
}

// filters converts the query into corpus-level pre-filters. Price bounds are
// widened by the hard-cutoff margin so the scorer still sees the
// within-tolerance band.
func (e *Engine) filters(q *models.Query) *corpus.Filters {
	f := &corpus.Filters{
		Category: q.Category,
		Brand:    q.Brand,
	}
	margin := e.config.HardCutoffMultiple * q.PriceTolerance
	if q.PriceMin != nil {
		min := *q.PriceMin - margin
		f.PriceMin = &min
	}
	if q.PriceMax != nil {
		max := *q.PriceMax + margin
		f.PriceMax = &max
	}
	return f
}

// widenWithKeywordHits unions lexical index hits into the candidate window.
// Keyword failures are absorbed; the window is simply not widened.
func (e *Engine) widenWithKeywordHits(ctx context.Context, q *models.Query, window []*models.Product) []*models.Product {
	if e.keywords == nil {
		return window
	}
	ids, err := e.keywords.Search(ctx, q.Text, e.config.TopKCandidates)
	if err != nil {
		e.logger.Warn("keyword search failed", zap.Error(err))
		return window
	}
	seen := make(map[string]bool, len(window))
	for _, p := range window {
		seen[p.ID] = true
	}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		p, getErr := e.store.Get(ctx, id)
		if getErr != nil {
			continue
		}
		seen[id] = true
		window = append(window, p)
	}
	return window
}

func (e *Engine) scoreAndPartition(products []*models.Product, q *models.Query) (exact, near []*Candidate) {
	cands := make([]*Candidate, 0, len(products))
	for _, p := range products {
		cand, ok := e.scorer.Score(p, q)
		if !ok {
			continue
		}
		cands = append(cands, cand)
	}
	return e.classifier.Partition(cands)
}
