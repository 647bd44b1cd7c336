package retriever_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realty-rag/internal/embedding"
	"realty-rag/internal/index"
	"realty-rag/internal/models"
	"realty-rag/internal/retriever"
)

// fakeEmbedder maps keywords onto axes so tests control similarity
// without a live model.
type fakeEmbedder struct{}

func keywordVec(text string) []float32 {
	q := strings.ToLower(text)
	v := make([]float32, 4)
	if strings.Contains(q, "piscina") {
		v[0] = 1
	}
	if strings.Contains(q, "jardin") || strings.Contains(q, "jardín") {
		v[1] = 1
	}
	if strings.Contains(q, "cochera") {
		v[2] = 1
	}
	if v[0] == 0 && v[1] == 0 && v[2] == 0 {
		v[3] = 1
	}
	return embedding.Normalize(v)
}

func (fakeEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	return keywordVec(text), nil
}

func (fakeEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, txt := range texts {
		out[i] = keywordVec(txt)
	}
	return out, nil
}

type errEmbedder struct{}

func (errEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	return nil, errors.New("ollama unreachable")
}

func (errEmbedder) EmbedTexts(context.Context, []string) ([][]float32, error) {
	return nil, errors.New("ollama unreachable")
}

func seededStore(t *testing.T, texts ...string) *index.Store {
	t.Helper()
	dir := t.TempDir()
	s, err := index.Open(filepath.Join(dir, "vectors.bin"), filepath.Join(dir, "docs.json"))
	require.NoError(t, err)

	var chunks []models.Chunk
	var vecs [][]float32
	for i, txt := range texts {
		chunks = append(chunks, models.Chunk{
			Text: txt,
			Meta: models.ChunkMeta{Source: "guia.pdf", SourceType: models.SourceTypePDF, PageStart: i, Title: "Sección"},
		})
		vecs = append(vecs, keywordVec(txt))
	}
	require.NoError(t, s.Append(chunks, vecs))
	return s
}

func TestRetrieveFiltersByThreshold(t *testing.T) {
	store := seededStore(t,
		"la propiedad tiene piscina climatizada",
		"amplio jardin con árboles frutales",
		"cochera techada para dos autos",
	)
	r := retriever.New(fakeEmbedder{}, store, 4, 0.32)

	hits, err := r.Retrieve(context.Background(), "¿tiene piscina?", 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Contains(t, hits[0].Text, "piscina")
	assert.GreaterOrEqual(t, hits[0].Score, r.MinSimilarity())
}

func TestRetrieveNoRelevantContext(t *testing.T) {
	store := seededStore(t, "la propiedad tiene piscina climatizada")
	r := retriever.New(fakeEmbedder{}, store, 4, 0.32)

	hits, err := r.Retrieve(context.Background(), "trámites de hipoteca bancaria", 0)
	require.NoError(t, err)
	assert.Nil(t, hits)
}

func TestRetrieveNotReadyIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	store, err := index.Open(filepath.Join(dir, "v.bin"), filepath.Join(dir, "d.json"))
	require.NoError(t, err)
	r := retriever.New(fakeEmbedder{}, store, 4, 0.32)

	hits, err := r.Retrieve(context.Background(), "¿tiene piscina?", 0)
	assert.NoError(t, err)
	assert.Nil(t, hits)
}

func TestRetrieveEmbedderFailure(t *testing.T) {
	store := seededStore(t, "la propiedad tiene piscina climatizada")
	r := retriever.New(errEmbedder{}, store, 4, 0.32)

	_, err := r.Retrieve(context.Background(), "¿tiene piscina?", 0)
	assert.Error(t, err)
}

func TestTopCandidatesIgnoresThreshold(t *testing.T) {
	store := seededStore(t,
		"la propiedad tiene piscina climatizada",
		"amplio jardin con árboles frutales",
		"cochera techada para dos autos",
	)
	r := retriever.New(fakeEmbedder{}, store, 4, 0.32)

	cands, err := r.TopCandidates(context.Background(), "¿tiene piscina?", 3)
	require.NoError(t, err)
	require.Len(t, cands, 3)
	// Best first, even though only the first passes the threshold.
	assert.Contains(t, cands[0].Text, "piscina")
	for i := 1; i < len(cands); i++ {
		assert.LessOrEqual(t, cands[i].Score, cands[i-1].Score)
	}
}
