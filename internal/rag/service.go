package rag

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"realty-rag/internal/composer"
	"realty-rag/internal/config"
	"realty-rag/internal/embedding"
	"realty-rag/internal/index"
	"realty-rag/internal/ingest"
	"realty-rag/internal/llmservice"
	"realty-rag/internal/models"
	"realty-rag/internal/overview"
	"realty-rag/internal/retriever"
	"realty-rag/internal/router"
)

const debugExcerptChars = 400

// Service is the assembled core: one object wiring the store, embedder,
// retriever, composer and router, exposing everything a frontend needs.
type Service struct {
	cfg       *config.Config
	store     *index.Store
	embedder  embedding.Embedder
	retriever *retriever.Retriever
	overview  *overview.Overview
	composer  *composer.Composer
	router    *router.Router
	ingestor  *ingest.Ingestor
}

// NewService builds the full pipeline from configuration. The index files
// are opened (or prepared for first use) immediately; Ollama endpoints are
// only dialed lazily on the first call.
func NewService(cfg *config.Config) (*Service, error) {
	store, err := index.Open(cfg.Index.VectorsPath, cfg.Index.DocsPath)
	if err != nil {
		return nil, err
	}

	embedder, err := embedding.NewOllamaEmbedder(cfg.Embedding.BaseURL, cfg.Embedding.Model)
	if err != nil {
		return nil, err
	}

	generator, err := llmservice.NewOllamaClient(cfg.LLM.BaseURL, cfg.LLM.Model, llmservice.Options{
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		StopWords:   cfg.LLM.StopWords,
		Timeout:     time.Duration(cfg.LLM.TimeoutSec) * time.Second,
	})
	if err != nil {
		return nil, err
	}

	retr := retriever.New(embedder, store, cfg.Retrieval.TopK, cfg.Retrieval.MinSimilarity)
	ov := overview.New(store, retr)
	comp := composer.New(retr, generator, ov, time.Duration(cfg.RAG.CacheTTLSec)*time.Second)

	svc := &Service{
		cfg:       cfg,
		store:     store,
		embedder:  embedder,
		retriever: retr,
		overview:  ov,
		composer:  comp,
		router:    router.New(comp, ov, generator),
		ingestor:  ingest.New(embedder, store, cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap).WithProgress(),
	}

	log.Info().
		Int("chunks", store.Count()).
		Bool("ready", store.Ready()).
		Msg("RAG service initialized")
	return svc, nil
}

// Answer serves one user turn end to end: intent routing, retrieval,
// generation, validation and caching. It never returns an error; every
// failure ends in a natural-language reply.
func (s *Service) Answer(ctx context.Context, query, history string) models.Answer {
	return s.router.Route(ctx, query, history)
}

// SuggestTopics proposes up to max indexed topics related to the query.
func (s *Service) SuggestTopics(ctx context.Context, query string, max int) []models.Topic {
	return s.overview.SuggestTopics(ctx, query, max)
}

// Overview summarizes the indexed corpus from metadata only.
func (s *Service) Overview(maxTopics int) models.CorpusOverview {
	return s.overview.Corpus(maxTopics)
}

// SourceOverview summarizes one indexed source by title frequency.
func (s *Service) SourceOverview(source string, maxTitles int) models.SourceOverview {
	return s.overview.PerSource(source, maxTitles)
}

// Health reports index readiness for diagnostics endpoints.
func (s *Service) Health() models.Health {
	return s.overview.Health()
}

// Ingestor exposes the ingestion pipeline, sharing the service's embedder
// and store so retrieval stays symmetric with indexing.
func (s *Service) Ingestor() *ingest.Ingestor {
	return s.ingestor
}

// DebugSearch runs retrieval without the threshold filter and reports raw
// similarity scores, which results would pass the acceptance threshold,
// and a preview of the prompt the passing chunks would produce.
func (s *Service) DebugSearch(ctx context.Context, query string) (models.DebugSearch, error) {
	ds := models.DebugSearch{
		Query:         query,
		TopK:          s.cfg.Retrieval.TopK,
		MinSimilarity: s.retriever.MinSimilarity(),
	}

	hits, err := s.retriever.TopCandidates(ctx, query, s.cfg.Retrieval.TopK)
	if err != nil {
		return ds, err
	}

	var passing []models.Hit
	for _, h := range hits {
		passed := h.Score >= ds.MinSimilarity
		if passed {
			passing = append(passing, h)
		}
		ds.Results = append(ds.Results, models.DebugHit{
			Score:           h.Score,
			PassedThreshold: passed,
			Excerpt:         excerpt(h.Text, debugExcerptChars),
			Source:          h.Meta.Source,
			PageStart:       h.Meta.PageStart,
			Title:           h.Meta.Title,
		})
	}
	if len(passing) > 0 {
		ds.PromptPreview = composer.BuildPrompt(query, passing, "")
	}
	return ds, nil
}

func excerpt(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
