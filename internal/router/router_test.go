package router_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realty-rag/internal/composer"
	"realty-rag/internal/embedding"
	"realty-rag/internal/index"
	"realty-rag/internal/models"
	"realty-rag/internal/overview"
	"realty-rag/internal/retriever"
	"realty-rag/internal/router"
)

type fakeEmbedder struct{}

func keywordVec(text string) []float32 {
	v := make([]float32, 2)
	if strings.Contains(strings.ToLower(text), "piscina") {
		v[0] = 1
	} else {
		v[1] = 1
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

type fakeGenerator struct {
	reply string
	calls int
}

func (g *fakeGenerator) Generate(context.Context, string) (string, error) {
	g.calls++
	return g.reply, nil
}

func newRouter(t *testing.T, gen *fakeGenerator) *router.Router {
	t.Helper()
	dir := t.TempDir()
	store, err := index.Open(filepath.Join(dir, "vectors.bin"), filepath.Join(dir, "docs.json"))
	require.NoError(t, err)

	chunks := []models.Chunk{
		{
			Text: "la propiedad cuenta con piscina climatizada",
			Meta: models.ChunkMeta{Source: "guia.pdf", SourceType: models.SourceTypePDF, PageStart: 4, Title: "Amenidades"},
		},
		{
			Text: "requisitos para alquilar en la zona centro",
			Meta: models.ChunkMeta{Source: "guia.pdf", SourceType: models.SourceTypePDF, PageStart: 9, Title: "Requisitos De Alquiler"},
		},
	}
	vecs := [][]float32{keywordVec(chunks[0].Text), keywordVec(chunks[1].Text)}
	require.NoError(t, store.Append(chunks, vecs))

	retr := retriever.New(fakeEmbedder{}, store, 4, 0.32)
	ov := overview.New(store, retr)
	comp := composer.New(retr, gen, ov, time.Minute)
	return router.New(comp, ov, gen)
}

func TestRouteGreetingFreeform(t *testing.T) {
	gen := &fakeGenerator{reply: "¡Hola! Qué gusto saludarte, cuéntame qué propiedad buscas."}
	r := newRouter(t, gen)

	ans := r.Route(context.Background(), "¡Hola!", "")
	assert.Equal(t, gen.reply, ans.Text)
	assert.False(t, ans.UsedContext)
	assert.Equal(t, 1, gen.calls)
}

func TestRouteGreetingFallsBackOnBadOutput(t *testing.T) {
	gen := &fakeGenerator{reply: ""}
	r := newRouter(t, gen)

	ans := r.Route(context.Background(), "buenas tardes", "")
	assert.Contains(t, ans.Text, "Remaxi")
}

func TestRouteGreetingWithQuestionGoesToComposer(t *testing.T) {
	gen := &fakeGenerator{reply: "Sí, la propiedad cuenta con piscina climatizada."}
	r := newRouter(t, gen)

	ans := r.Route(context.Background(), "hola, ¿la propiedad tiene piscina?", "")
	assert.True(t, ans.UsedContext)
	assert.Equal(t, 1, gen.calls)
}

func TestRouteGreetingWithHelpGoesToHelp(t *testing.T) {
	gen := &fakeGenerator{reply: "nunca debería llamarse"}
	r := newRouter(t, gen)

	// A greeting carrying a capability question is not pure small talk;
	// the help rule takes it.
	ans := r.Route(context.Background(), "hola, ¿con qué me puedes ayudar?", "")
	assert.Contains(t, ans.Text, "propiedades")
	assert.Equal(t, 0, gen.calls)
}

func TestRouteHelp(t *testing.T) {
	gen := &fakeGenerator{reply: "nunca debería llamarse"}
	r := newRouter(t, gen)

	ans := r.Route(context.Background(), "¿con qué me puedes ayudar?", "")
	assert.Contains(t, ans.Text, "propiedades")
	assert.Equal(t, 0, gen.calls)
}

func TestRouteDocOverviewKnownSource(t *testing.T) {
	gen := &fakeGenerator{reply: "nunca debería llamarse"}
	r := newRouter(t, gen)

	ans := r.Route(context.Background(), "¿qué información hay en el documento de guia.pdf?", "")
	assert.Contains(t, ans.Text, "guia.pdf")
	assert.Contains(t, ans.Text, "Amenidades")
	assert.True(t, ans.UsedContext)
	assert.Equal(t, 0, gen.calls)
}

func TestRouteDocOverviewUnknownSource(t *testing.T) {
	gen := &fakeGenerator{reply: "nunca debería llamarse"}
	r := newRouter(t, gen)

	ans := r.Route(context.Background(), "¿qué información encontraré en el documento de otro.pdf?", "")
	assert.Contains(t, ans.Text, "No tengo información disponible")
	assert.Contains(t, ans.Text, "otro.pdf")
	assert.Equal(t, 0, gen.calls)
}

func TestRouteDefaultGoesToComposer(t *testing.T) {
	gen := &fakeGenerator{reply: "Sí, hay piscina climatizada en la propiedad."}
	r := newRouter(t, gen)

	ans := r.Route(context.Background(), "¿la propiedad tiene piscina?", "")
	assert.True(t, ans.UsedContext)
	assert.Equal(t, 1, gen.calls)
}
