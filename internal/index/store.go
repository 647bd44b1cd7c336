package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"

	"realty-rag/internal/models"
)

// Store pairs the flat vector index with its positionally aligned chunk
// metadata. The invariant is len(docs) == flat.Count() at all times after
// a successful write; Open refuses to serve a pair that violates it.
//
// Mutation is serialized behind an exclusive lock, so concurrent readers
// see either the pre-append or the fully-appended state, never a partial
// one. Persistence rewrites both artifacts atomically (temp file + rename).
type Store struct {
	mu          sync.RWMutex
	vectorsPath string
	docsPath    string
	flat        *Flat
	docs        []models.Chunk
}

// Open loads the persisted index/metadata pair. A completely absent pair is
// a valid "not ready" state: the store works, searches report ErrNotReady,
// and the first Append creates the files. A half-present or misaligned pair
// is corruption and fails loudly.
func Open(vectorsPath, docsPath string) (*Store, error) {
	s := &Store{vectorsPath: vectorsPath, docsPath: docsPath}

	_, vecErr := os.Stat(vectorsPath)
	_, docErr := os.Stat(docsPath)
	if os.IsNotExist(vecErr) && os.IsNotExist(docErr) {
		return s, nil
	}
	if os.IsNotExist(vecErr) != os.IsNotExist(docErr) {
		return nil, &CorruptionError{Vectors: boolToCount(vecErr == nil), Docs: boolToCount(docErr == nil)}
	}

	f, err := os.Open(vectorsPath)
	if err != nil {
		return nil, fmt.Errorf("opening index file: %w", err)
	}
	defer f.Close()

	flat, err := ReadFlat(f)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(docsPath)
	if err != nil {
		return nil, fmt.Errorf("reading metadata file: %w", err)
	}
	var docs []models.Chunk
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("parsing metadata file: %w", err)
	}

	if len(docs) != flat.Count() {
		return nil, &CorruptionError{Vectors: flat.Count(), Docs: len(docs)}
	}

	s.flat = flat
	s.docs = docs
	log.Debug().Int("chunks", len(docs)).Int("dim", flat.Dim()).Msg("Loaded vector index")
	return s, nil
}

func (s *Store) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flat != nil
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.flat == nil {
		return 0
	}
	return s.flat.Count()
}

func (s *Store) Dim() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.flat == nil {
		return 0
	}
	return s.flat.Dim()
}

// Append adds aligned (chunk, vector) pairs and persists both artifacts.
// On any failure the in-memory state is rolled back, so a reader never
// observes an index that disagrees with what is on disk.
func (s *Store) Append(chunks []models.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks and vectors length mismatch: %d vs %d", len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.flat == nil {
		flat, err := NewFlat(len(vectors[0]))
		if err != nil {
			return err
		}
		s.flat = flat
	}

	prevCount := s.flat.Count()
	if err := s.flat.Add(vectors); err != nil {
		return err
	}
	s.docs = append(s.docs, chunks...)

	if err := s.persist(); err != nil {
		s.flat.vectors = s.flat.vectors[:prevCount]
		s.docs = s.docs[:prevCount]
		if prevCount == 0 {
			s.flat = nil
			s.docs = nil
		}
		return err
	}
	return nil
}

// Search embeds nothing: it scores the given normalized query vector
// against every slot and resolves positions to chunks.
func (s *Store) Search(query []float32, k int) ([]models.Hit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.flat == nil {
		return nil, ErrNotReady
	}
	candidates, err := s.flat.Search(query, k)
	if err != nil {
		return nil, err
	}

	hits := make([]models.Hit, 0, len(candidates))
	for _, c := range candidates {
		doc := s.docs[c.Pos]
		hits = append(hits, models.Hit{Text: doc.Text, Score: c.Score, Meta: doc.Meta})
	}
	return hits, nil
}

// Docs returns a snapshot of the metadata store for aggregation. Chunks are
// immutable once indexed, so sharing the backing array is safe; the slice
// header copy protects against a concurrent append growing it mid-read.
func (s *Store) Docs() []models.Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs[:len(s.docs):len(s.docs)]
}

func (s *Store) persist() error {
	if err := os.MkdirAll(filepath.Dir(s.vectorsPath), 0o755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}
	if err := atomicWrite(s.vectorsPath, func(f *os.File) error {
		return s.flat.WriteTo(f)
	}); err != nil {
		return fmt.Errorf("writing index file: %w", err)
	}

	data, err := json.Marshal(s.docs)
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}
	if err := atomicWrite(s.docsPath, func(f *os.File) error {
		_, werr := f.Write(data)
		return werr
	}); err != nil {
		return fmt.Errorf("writing metadata file: %w", err)
	}
	return nil
}

// atomicWrite writes to a temp file in the target directory and renames it
// into place, so a crashed write never leaves a truncated artifact behind.
func atomicWrite(path string, write func(f *os.File) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func boolToCount(present bool) int {
	if present {
		return 1
	}
	return 0
}
