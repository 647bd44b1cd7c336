package embedding

import (
	"context"
	"math"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
)

// normEpsilon keeps all-zero vectors from dividing by zero.
const normEpsilon = 1e-12

// Embedder converts texts into L2-normalized vectors. Normalization makes
// inner product equal cosine similarity, so indexing and querying must go
// through the same implementation.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// OllamaEmbedder calls a local Ollama embedding model. One handle is
// constructed at startup and shared by the ingestor and the retriever.
type OllamaEmbedder struct {
	impl *embeddings.EmbedderImpl
}

func NewOllamaEmbedder(baseURL, model string) (*OllamaEmbedder, error) {
	log.Debug().Str("base_url", baseURL).Str("embedding_model", model).Msg("Initializing embedder")

	llm, err := ollama.New(
		ollama.WithServerURL(baseURL),
		ollama.WithModel(model),
	)
	if err != nil {
		return nil, err
	}
	impl, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, err
	}
	return &OllamaEmbedder{impl: impl}, nil
}

func (e *OllamaEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vecs, err := e.impl.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, err
	}
	for i := range vecs {
		vecs[i] = Normalize(vecs[i])
	}
	return vecs, nil
}

func (e *OllamaEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vec, err := e.impl.EmbedQuery(ctx, text)
	if err != nil {
		return nil, err
	}
	return Normalize(vec), nil
}

// Normalize returns v / (||v|| + epsilon).
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum) + normEpsilon
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}
