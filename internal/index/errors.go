package index

import (
	"errors"
	"fmt"
)

// ErrNotReady means no persisted index/metadata exists yet. Callers treat
// this as an empty corpus, not a failure.
var ErrNotReady = errors.New("vector index not initialized")

// MismatchError reports an index configuration that does not match what is
// on disk (dimension or index kind). It is fatal for ingestion: appending
// would silently corrupt similarity scores.
type MismatchError struct {
	What string
	Want string
	Got  string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("index %s mismatch: expected %s, got %s", e.What, e.Want, e.Got)
}

// CorruptionError reports a persisted index whose vector count and metadata
// count disagree, typically after a partial write.
type CorruptionError struct {
	Vectors int
	Docs    int
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("index corruption: %d vectors but %d metadata entries", e.Vectors, e.Docs)
}
