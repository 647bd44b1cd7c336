package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realty-rag/internal/config"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:11434", cfg.LLM.BaseURL)
	assert.Equal(t, "nomic-embed-text", cfg.Embedding.Model)
	assert.Equal(t, 4, cfg.Retrieval.TopK)
	assert.InDelta(t, 0.32, cfg.Retrieval.MinSimilarity, 1e-9)
	assert.Equal(t, 1000, cfg.RAG.ChunkSize)
	assert.Equal(t, 180, cfg.RAG.ChunkOverlap)
	assert.Equal(t, 600, cfg.RAG.CacheTTLSec)
	assert.Empty(t, cfg.Validate())
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
llm:
  model: llama3
  temperature: 0.7
retrieval:
  top_k: 8
  min_similarity: 0.5
index:
  vectors_path: /tmp/idx/vectors.bin
  docs_path: /tmp/idx/docs.json
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "llama3", cfg.LLM.Model)
	assert.InDelta(t, 0.7, cfg.LLM.Temperature, 1e-9)
	assert.Equal(t, 8, cfg.Retrieval.TopK)
	assert.InDelta(t, 0.5, cfg.Retrieval.MinSimilarity, 1e-9)
	assert.Equal(t, "/tmp/idx/vectors.bin", cfg.Index.VectorsPath)
	// Unset fields still fall back to defaults.
	assert.Equal(t, "nomic-embed-text", cfg.Embedding.Model)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("OLLAMA_BASE_URL", "http://ollama.internal:11434")
	t.Setenv("OLLAMA_MODEL_NAME", "llama3")
	t.Setenv("TOP_K", "6")
	t.Setenv("MIN_SIM_THRESHOLD", "0.4")

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "http://ollama.internal:11434", cfg.LLM.BaseURL)
	assert.Equal(t, "http://ollama.internal:11434", cfg.Embedding.BaseURL)
	assert.Equal(t, "llama3", cfg.LLM.Model)
	assert.Equal(t, 6, cfg.Retrieval.TopK)
	assert.InDelta(t, 0.4, cfg.Retrieval.MinSimilarity, 1e-9)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	cfg.LLM.Temperature = 3.5
	cfg.Retrieval.TopK = 0
	cfg.RAG.ChunkOverlap = cfg.RAG.ChunkSize

	errs := cfg.Validate()
	require.Len(t, errs, 3)
	fields := make(map[string]bool)
	for _, e := range errs {
		fields[e.Field] = true
	}
	assert.True(t, fields["llm.temperature"])
	assert.True(t, fields["retrieval.top_k"])
	assert.True(t, fields["rag.chunk_overlap"])
}
