package composer

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"realty-rag/internal/llmservice"
	"realty-rag/internal/models"
	"realty-rag/internal/overview"
	"realty-rag/internal/retriever"
)

const (
	// answerCharCap bounds the final answer; overlong output is trimmed at
	// a sentence boundary near the cap.
	answerCharCap = 1200

	// minAnswerWords rejects implausibly short generations.
	minAnswerWords = 3
)

// Prompt fragments that must never appear in a final answer. Their
// presence means the model echoed its own instructions.
var leakMarkers = []string{
	"Reglas finales",
	"Contexto (fragmentos relevantes)",
	"SOLO el contexto proporcionado",
	models.HistoryHeader,
}

// Composer owns the retrieve-then-generate flow: cache lookup, retrieval,
// prompt construction, generation, output validation and fallback guidance.
type Composer struct {
	retriever *retriever.Retriever
	generator llmservice.Generator
	overview  *overview.Overview
	cache     *responseCache
}

func New(retr *retriever.Retriever, gen llmservice.Generator, ov *overview.Overview, cacheTTL time.Duration) *Composer {
	return &Composer{
		retriever: retr,
		generator: gen,
		overview:  ov,
		cache:     newResponseCache(cacheTTL),
	}
}

// Answer runs the composing state machine:
//
//	CACHE_HIT           → return as-is, flagged FromCache
//	NO_INDEX            → guidance reply
//	NO_RELEVANT_CONTEXT → friendly fallback with real topics
//	CONTEXT_FOUND       → build prompt → generate → validate → accept | fallback
//
// Transport failures are recovered here and never cached, so the next
// identical query retries instead of replaying the failure.
func (c *Composer) Answer(ctx context.Context, query, history string) models.Answer {
	key := cacheKey(query, history)
	if cached, ok := c.cache.get(key); ok {
		cached.FromCache = true
		return cached
	}

	ans, cacheable := c.compose(ctx, query, history)
	ans.QueryType = ClassifyQuery(query)
	ans.RequiresAgent, ans.SuggestedActions = AnalyzeInterest(query)

	if ans.UsedContext && WantsAppointment(query) && OffersVisit(ans.Text) {
		ans.Text += "\n\n" + models.AppointmentMarker
		ans.SuggestedActions = append(ans.SuggestedActions, models.AppointmentMarker)
	}

	if cacheable {
		c.cache.set(key, ans)
	}
	return ans
}

func (c *Composer) compose(ctx context.Context, query, history string) (models.Answer, bool) {
	hits, err := c.retriever.Retrieve(ctx, query, 0)
	if err != nil {
		log.Error().Err(err).Msg("Retrieval failed, falling back to guidance")
		return models.Answer{Text: c.guidanceReply(ctx, query)}, false
	}
	if len(hits) == 0 {
		return models.Answer{Text: c.guidanceReply(ctx, query)}, true
	}

	prompt := BuildPrompt(query, hits, history)
	raw, err := c.generator.Generate(ctx, prompt)
	if err != nil {
		log.Error().Err(err).Msg("Generation failed, falling back to guidance")
		return models.Answer{Text: c.guidanceReply(ctx, query)}, false
	}

	answer, ok := ValidateOutput(raw)
	if !ok {
		log.Warn().Str("raw", truncateRunes(raw, 120)).Msg("Generated output failed validation")
		return models.Answer{Text: c.guidanceReply(ctx, query)}, true
	}
	return models.Answer{Text: answer, UsedContext: true}, true
}

// ValidateOutput accepts raw model output only when it is non-empty, does
// not echo prompt fragments and is plausibly long. Accepted output is
// trimmed at a sentence boundary near the length cap.
func ValidateOutput(raw string) (string, bool) {
	out := strings.TrimSpace(raw)
	if out == "" {
		return "", false
	}
	for _, marker := range leakMarkers {
		if strings.Contains(out, marker) {
			return "", false
		}
	}
	if strings.HasPrefix(out, "Pregunta:") || strings.HasPrefix(out, "Respuesta:") {
		out = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(out, "Pregunta:"), "Respuesta:"))
	}
	if len(strings.Fields(out)) < minAnswerWords {
		return "", false
	}
	return TruncateAtSentence(out, answerCharCap), true
}

// TruncateAtSentence cuts s near the limit, stepping back to the last
// sentence boundary so the user never sees a half sentence.
func TruncateAtSentence(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	cut := string(runes[:limit])
	best := -1
	for _, end := range []string{". ", "! ", "? ", ".\n", "!\n", "?\n"} {
		if i := strings.LastIndex(cut, end); i > best {
			best = i
		}
	}
	if best > 0 {
		return strings.TrimSpace(cut[:best+1])
	}
	return strings.TrimSpace(cut)
}
