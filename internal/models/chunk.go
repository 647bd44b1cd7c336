package models

// ChunkMeta identifies where a chunk came from.
type ChunkMeta struct {
	Source     string            `json:"source"`
	SourceType string            `json:"source_type"`
	PageStart  int               `json:"page_start"`
	PageEnd    int               `json:"page_end"`
	Title      string            `json:"title"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// Chunk is the unit of retrieval: a bounded slice of source text plus metadata.
// Immutable once indexed; identified positionally by its index slot.
type Chunk struct {
	Text string    `json:"text"`
	Meta ChunkMeta `json:"meta"`
}

// Hit is a single retrieval result. Score is cosine similarity in [-1, 1]
// (inner product over L2-normalized vectors).
type Hit struct {
	Text  string
	Score float32
	Meta  ChunkMeta
}

// Answer is what the core hands back to callers.
type Answer struct {
	Text             string
	UsedContext      bool
	FromCache        bool
	QueryType        string
	RequiresAgent    bool
	SuggestedActions []string
}

// Topic is a (source, title) pair surfaced in overviews and suggestions.
type Topic struct {
	Source string `json:"source"`
	Title  string `json:"title"`
}

// TitleCount is a title with its chunk frequency inside one source.
type TitleCount struct {
	Title string `json:"title"`
	Count int    `json:"count"`
}

// CorpusOverview summarizes the indexed corpus from metadata only.
type CorpusOverview struct {
	TotalChunks int      `json:"total_chunks"`
	Sources     []string `json:"sources"`
	TopTopics   []Topic  `json:"top_topics"`
}

// SourceOverview summarizes a single indexed source.
type SourceOverview struct {
	Source    string       `json:"source"`
	Titles    []TitleCount `json:"titles"`
	PagesHint []int        `json:"pages_hint,omitempty"`
}

// DebugHit exposes raw similarity data for diagnostics.
type DebugHit struct {
	Score           float32 `json:"score"`
	PassedThreshold bool    `json:"passed_threshold"`
	Excerpt         string  `json:"excerpt"`
	Source          string  `json:"source"`
	PageStart       int     `json:"page_start"`
	Title           string  `json:"title"`
}

// DebugSearch is the diagnostic view over one query.
type DebugSearch struct {
	Query         string     `json:"query"`
	TopK          int        `json:"top_k"`
	MinSimilarity float32    `json:"min_sim_threshold"`
	Results       []DebugHit `json:"results"`
	PromptPreview string     `json:"prompt_preview,omitempty"`
}

// Health is a readiness snapshot of the index.
type Health struct {
	TotalChunks    int  `json:"total_chunks"`
	SourcesIndexed int  `json:"sources_indexed"`
	Ready          bool `json:"ready"`
}
