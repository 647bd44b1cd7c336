package overview_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realty-rag/internal/index"
	"realty-rag/internal/models"
	"realty-rag/internal/overview"
	"realty-rag/internal/retriever"
)

type staticEmbedder struct{}

func (staticEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func (staticEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func seeded(t *testing.T, chunks []models.Chunk) *overview.Overview {
	t.Helper()
	dir := t.TempDir()
	store, err := index.Open(filepath.Join(dir, "vectors.bin"), filepath.Join(dir, "docs.json"))
	require.NoError(t, err)

	vecs := make([][]float32, len(chunks))
	for i := range vecs {
		vecs[i] = []float32{1, 0}
	}
	require.NoError(t, store.Append(chunks, vecs))
	return overview.New(store, retriever.New(staticEmbedder{}, store, 4, 0.32))
}

func chunk(source, title string, page int) models.Chunk {
	return models.Chunk{
		Text: "texto de relleno",
		Meta: models.ChunkMeta{Source: source, SourceType: models.SourceTypePDF, PageStart: page, Title: title},
	}
}

func TestCorpusOverview(t *testing.T) {
	ov := seeded(t, []models.Chunk{
		chunk("guia.pdf", "Amenidades", 1),
		chunk("guia.pdf", "Amenidades", 2),
		chunk("guia.pdf", "Requisitos", 3),
		chunk("precios.xlsx", "Listado 2026", 0),
	})

	got := ov.Corpus(2)
	assert.Equal(t, 4, got.TotalChunks)
	assert.Equal(t, []string{"guia.pdf", "precios.xlsx"}, got.Sources)
	require.Len(t, got.TopTopics, 2)
	// Most frequent pair first, first-seen order breaking the tie.
	assert.Equal(t, models.Topic{Source: "guia.pdf", Title: "Amenidades"}, got.TopTopics[0])
	assert.Equal(t, models.Topic{Source: "guia.pdf", Title: "Requisitos"}, got.TopTopics[1])
}

func TestPerSource(t *testing.T) {
	ov := seeded(t, []models.Chunk{
		chunk("guia.pdf", "Amenidades", 1),
		chunk("guia.pdf", "Amenidades", 2),
		chunk("guia.pdf", "Requisitos", 3),
		chunk("precios.xlsx", "Listado 2026", 0),
	})

	got := ov.PerSource("guia.pdf", 5)
	assert.Equal(t, "guia.pdf", got.Source)
	require.Len(t, got.Titles, 2)
	assert.Equal(t, models.TitleCount{Title: "Amenidades", Count: 2}, got.Titles[0])
	assert.Equal(t, []int{1, 2, 3}, got.PagesHint)
}

func TestPerSourceUnknown(t *testing.T) {
	ov := seeded(t, []models.Chunk{chunk("guia.pdf", "Amenidades", 1)})

	got := ov.PerSource("otro.pdf", 5)
	assert.Empty(t, got.Titles)
	assert.Empty(t, got.PagesHint)
}

func TestSuggestTopicsDeduplicates(t *testing.T) {
	ov := seeded(t, []models.Chunk{
		chunk("guia.pdf", "Amenidades", 1),
		chunk("guia.pdf", "Amenidades", 2),
		chunk("guia.pdf", "Requisitos", 3),
	})

	topics := ov.SuggestTopics(context.Background(), "cualquier consulta", 5)
	require.NotEmpty(t, topics)
	seen := make(map[models.Topic]bool)
	for _, tp := range topics {
		assert.False(t, seen[tp])
		seen[tp] = true
	}
}

func TestHealth(t *testing.T) {
	ov := seeded(t, []models.Chunk{chunk("guia.pdf", "Amenidades", 1)})

	h := ov.Health()
	assert.True(t, h.Ready)
	assert.Equal(t, 1, h.TotalChunks)
	assert.Equal(t, 1, h.SourcesIndexed)
}

func TestFormatTopicsInline(t *testing.T) {
	assert.Equal(t, "", overview.FormatTopicsInline(nil, 3))
	assert.Equal(t, "Amenidades", overview.FormatTopicsInline([]string{"Amenidades"}, 3))
	assert.Equal(t, "Amenidades y Requisitos", overview.FormatTopicsInline([]string{"Amenidades", "Requisitos"}, 3))
	assert.Equal(t, "A, B y C", overview.FormatTopicsInline([]string{"A", "B", "C", "D"}, 3))
}
