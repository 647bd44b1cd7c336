package overview

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"realty-rag/internal/index"
	"realty-rag/internal/models"
	"realty-rag/internal/retriever"
)

// Overview aggregates the metadata store into user-facing topic summaries.
// It never touches chunk text, only metadata.
type Overview struct {
	store     *index.Store
	retriever *retriever.Retriever
}

func New(store *index.Store, retr *retriever.Retriever) *Overview {
	return &Overview{store: store, retriever: retr}
}

// Corpus summarizes what is indexed: total chunks, sources in first-seen
// order and the most frequent (source, title) pairs up to maxTopics.
func (o *Overview) Corpus(maxTopics int) models.CorpusOverview {
	docs := o.store.Docs()
	ov := models.CorpusOverview{TotalChunks: len(docs)}

	seenSource := make(map[string]bool)
	type pairCount struct {
		topic models.Topic
		count int
		order int
	}
	pairIdx := make(map[models.Topic]int)
	var pairs []pairCount

	for _, d := range docs {
		if d.Meta.Source == "" {
			continue
		}
		if !seenSource[d.Meta.Source] {
			seenSource[d.Meta.Source] = true
			ov.Sources = append(ov.Sources, d.Meta.Source)
		}
		if d.Meta.Title == "" {
			continue
		}
		t := models.Topic{Source: d.Meta.Source, Title: d.Meta.Title}
		if i, ok := pairIdx[t]; ok {
			pairs[i].count++
		} else {
			pairIdx[t] = len(pairs)
			pairs = append(pairs, pairCount{topic: t, count: 1, order: len(pairs)})
		}
	}

	// Most frequent first; first-seen order breaks ties deterministically.
	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].count != pairs[j].count {
			return pairs[i].count > pairs[j].count
		}
		return pairs[i].order < pairs[j].order
	})
	for i := 0; i < len(pairs) && i < maxTopics; i++ {
		ov.TopTopics = append(ov.TopTopics, pairs[i].topic)
	}
	return ov
}

// PerSource summarizes a single source: title frequencies and a hint of
// the pages it spans.
func (o *Overview) PerSource(source string, maxTitles int) models.SourceOverview {
	docs := o.store.Docs()
	sv := models.SourceOverview{Source: source}

	type titleCount struct {
		title string
		count int
		order int
	}
	titleIdx := make(map[string]int)
	var titles []titleCount
	pageSet := make(map[int]bool)

	for _, d := range docs {
		if d.Meta.Source != source {
			continue
		}
		if t := strings.TrimSpace(d.Meta.Title); t != "" {
			if i, ok := titleIdx[t]; ok {
				titles[i].count++
			} else {
				titleIdx[t] = len(titles)
				titles = append(titles, titleCount{title: t, count: 1, order: len(titles)})
			}
		}
		pageSet[d.Meta.PageStart] = true
	}

	sort.SliceStable(titles, func(i, j int) bool {
		if titles[i].count != titles[j].count {
			return titles[i].count > titles[j].count
		}
		return titles[i].order < titles[j].order
	})
	for i := 0; i < len(titles) && i < maxTitles; i++ {
		sv.Titles = append(sv.Titles, models.TitleCount{Title: titles[i].title, Count: titles[i].count})
	}

	for p := range pageSet {
		sv.PagesHint = append(sv.PagesHint, p)
	}
	sort.Ints(sv.PagesHint)
	if len(sv.PagesHint) > 50 {
		sv.PagesHint = sv.PagesHint[:50]
	}
	return sv
}

// SuggestTopics proposes (source, title) pairs related to the query using
// threshold-free nearest neighbors, deduplicated keeping the best-ranked
// occurrence. Falls back to the global top topics when the query yields
// nothing.
func (o *Overview) SuggestTopics(ctx context.Context, query string, max int) []models.Topic {
	cands, err := o.retriever.TopCandidates(ctx, query, max*3)
	if err != nil {
		log.Debug().Err(err).Msg("Topic suggestion search failed, falling back to corpus overview")
	}

	seen := make(map[models.Topic]bool)
	var topics []models.Topic
	for _, c := range cands {
		if c.Meta.Source == "" || c.Meta.Title == "" {
			continue
		}
		t := models.Topic{Source: c.Meta.Source, Title: c.Meta.Title}
		if !seen[t] {
			seen[t] = true
			topics = append(topics, t)
		}
	}

	if len(topics) == 0 {
		topics = o.Corpus(max).TopTopics
	}
	if len(topics) > max {
		topics = topics[:max]
	}
	return topics
}

// SuggestTitles is SuggestTopics reduced to deduplicated titles, the shape
// the composer drops into a sentence.
func (o *Overview) SuggestTitles(ctx context.Context, query string, max int) []string {
	seen := make(map[string]bool)
	var titles []string
	for _, t := range o.SuggestTopics(ctx, query, max) {
		title := strings.TrimSpace(t.Title)
		if title != "" && !seen[title] {
			seen[title] = true
			titles = append(titles, title)
		}
	}
	if len(titles) > max {
		titles = titles[:max]
	}
	return titles
}

// Health reports index readiness for diagnostics.
func (o *Overview) Health() models.Health {
	ov := o.Corpus(1)
	return models.Health{
		TotalChunks:    ov.TotalChunks,
		SourcesIndexed: len(ov.Sources),
		Ready:          ov.TotalChunks > 0,
	}
}

// FormatTopicsInline renders titles as a natural Spanish list: "A, B y C".
func FormatTopicsInline(titles []string, max int) string {
	var kept []string
	for _, t := range titles {
		if t = strings.TrimSpace(t); t != "" {
			kept = append(kept, t)
		}
	}
	if len(kept) > max {
		kept = kept[:max]
	}
	switch len(kept) {
	case 0:
		return ""
	case 1:
		return kept[0]
	default:
		return strings.Join(kept[:len(kept)-1], ", ") + " y " + kept[len(kept)-1]
	}
}
