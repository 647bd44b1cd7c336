package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"

	"realty-rag/internal/embedding"
	"realty-rag/internal/index"
	"realty-rag/internal/models"
	"realty-rag/internal/parser"
	"realty-rag/internal/preprocess"
	"realty-rag/internal/properties"
)

// Batch size for embedding calls during ingestion.
const embedBatchSize = 16

// Ingestor feeds chunks through the shared embed-and-append pipeline.
// Re-ingesting the same material without resetting storage appends again;
// there is no implicit dedup across ingestion runs.
type Ingestor struct {
	embedder     embedding.Embedder
	store        *index.Store
	chunkSize    int
	chunkOverlap int
	showProgress bool
}

func New(embedder embedding.Embedder, store *index.Store, chunkSize, chunkOverlap int) *Ingestor {
	return &Ingestor{
		embedder:     embedder,
		store:        store,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// WithProgress enables a console progress bar during embedding.
func (g *Ingestor) WithProgress() *Ingestor {
	g.showProgress = true
	return g
}

// IndexChunks embeds all chunk texts and appends vectors plus metadata to
// the persistent store in one aligned batch.
func (g *Ingestor) IndexChunks(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		log.Info().Msg("No chunks to index")
		return nil
	}

	var bar *progressbar.ProgressBar
	if g.showProgress {
		bar = progressbar.Default(int64(len(chunks)), "embedding")
	}

	vectors := make([][]float32, 0, len(chunks))
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := min(start+embedBatchSize, len(chunks))
		texts := make([]string, 0, end-start)
		for _, ch := range chunks[start:end] {
			texts = append(texts, ch.Text)
		}
		vecs, err := g.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return fmt.Errorf("embedding chunks %d-%d: %w", start, end, err)
		}
		vectors = append(vectors, vecs...)
		if bar != nil {
			_ = bar.Add(end - start)
		}
	}

	if err := g.store.Append(chunks, vectors); err != nil {
		return err
	}
	log.Info().Int("chunks", len(chunks)).Int("total", g.store.Count()).Msg("Indexed chunks")
	return nil
}

// IndexFile parses one document, preprocesses it into chunks and indexes
// them. Returns the number of chunks indexed.
func (g *Ingestor) IndexFile(ctx context.Context, filePath string) (int, error) {
	pages, sourceType, err := parser.Pages(filePath)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", filePath, err)
	}

	source := filepath.Base(filePath)
	chunks := preprocess.CleanAndChunk(pages, source, sourceType, g.chunkSize, g.chunkOverlap)
	if len(chunks) == 0 {
		log.Warn().Str("file", source).Msg("No useful chunks found, skipping")
		return 0, nil
	}
	if err := g.IndexChunks(ctx, chunks); err != nil {
		return 0, err
	}
	return len(chunks), nil
}

// IndexDir indexes every supported document under dir, skipping files the
// parser does not recognize.
func (g *Ingestor) IndexDir(ctx context.Context, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	total := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		switch ext {
		case ".pdf", ".docx", ".md", ".markdown", ".xlsx", ".ods", ".txt":
		default:
			continue
		}
		n, err := g.IndexFile(ctx, filepath.Join(dir, entry.Name()))
		if err != nil {
			log.Error().Err(err).Str("file", entry.Name()).Msg("Skipping file after parse error")
			continue
		}
		total += n
	}
	return total, nil
}

// IndexProperties renders active database listings into text blobs and
// feeds them through the same embed-and-append pipeline.
func (g *Ingestor) IndexProperties(ctx context.Context, repo *properties.Repo) (int, error) {
	chunks, err := repo.FetchChunks(ctx)
	if err != nil {
		return 0, err
	}
	if len(chunks) == 0 {
		log.Warn().Msg("No active properties found in database")
		return 0, nil
	}
	if err := g.IndexChunks(ctx, chunks); err != nil {
		return 0, err
	}
	return len(chunks), nil
}
