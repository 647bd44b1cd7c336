package retriever

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"realty-rag/internal/embedding"
	"realty-rag/internal/index"
	"realty-rag/internal/models"
)

// Retriever embeds a query symmetrically to ingestion and searches the
// shared store by inner product.
type Retriever struct {
	embedder      embedding.Embedder
	store         *index.Store
	topK          int
	minSimilarity float32
}

func New(embedder embedding.Embedder, store *index.Store, topK int, minSimilarity float64) *Retriever {
	return &Retriever{
		embedder:      embedder,
		store:         store,
		topK:          topK,
		minSimilarity: float32(minSimilarity),
	}
}

func (r *Retriever) MinSimilarity() float32 { return r.minSimilarity }

// Retrieve returns the chunks passing the acceptance threshold, best first.
// A nil result means either "index not ready" or "no relevant context";
// both are expected states, not errors.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]models.Hit, error) {
	if topK <= 0 {
		topK = r.topK
	}
	hits, err := r.search(ctx, query, topK)
	if hits == nil || err != nil {
		return nil, err
	}

	var passed []models.Hit
	for _, h := range hits {
		if h.Score >= r.minSimilarity {
			passed = append(passed, h)
		}
	}
	if len(passed) == 0 {
		log.Debug().Str("query", query).Float32("threshold", r.minSimilarity).Msg("No chunk passed the similarity threshold")
		return nil, nil
	}
	return passed, nil
}

// TopCandidates skips the threshold entirely and returns min(k, available)
// hits sorted by descending similarity. Non-authoritative: used only for
// suggestions and guidance, never for answer grounding.
func (r *Retriever) TopCandidates(ctx context.Context, query string, k int) ([]models.Hit, error) {
	return r.search(ctx, query, k)
}

func (r *Retriever) search(ctx context.Context, query string, k int) ([]models.Hit, error) {
	if !r.store.Ready() {
		return nil, nil
	}
	vec, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	hits, err := r.store.Search(vec, k)
	if err != nil {
		if errors.Is(err, index.ErrNotReady) {
			return nil, nil
		}
		return nil, err
	}
	return hits, nil
}
