package composer

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"realty-rag/internal/models"
)

// Leading interrogatives and their filler words, stripped before hashing
// so "¿cuál es el precio?" and "precio?" share a cache slot. Stripping
// stops at the first content word, so fillers inside the query survive.
var leadingStopwords = map[string]bool{
	"qué": true, "que": true,
	"cuál": true, "cual": true, "cuáles": true, "cuales": true,
	"cómo": true, "como": true,
	"dónde": true, "donde": true,
	"cuándo": true, "cuando": true,
	"quién": true, "quien": true,
	"por": true, "porqué": true, "porque": true,
	"es": true, "son": true, "está": true, "esta": true,
	"el": true, "la": true, "los": true, "las": true,
	"un": true, "una": true, "de": true, "del": true,
}

// NormalizeQuery builds the canonical form used for cache keying: trimmed,
// lowercased, interrogative punctuation and leading question words removed.
func NormalizeQuery(query string) string {
	q := strings.ToLower(strings.TrimSpace(query))
	q = strings.Trim(q, "¿?¡!. ")
	words := strings.Fields(q)
	for len(words) > 0 && leadingStopwords[words[0]] {
		words = words[1:]
	}
	return strings.Join(words, " ")
}

func cacheKey(query, history string) string {
	h := sha256.New()
	h.Write([]byte(NormalizeQuery(query)))
	h.Write([]byte{0})
	h.Write([]byte(history))
	return hex.EncodeToString(h.Sum(nil))
}

// responseCache holds finished answers for identical normalized
// query+history pairs. Expired entries are evicted lazily on lookup;
// transport-error results are never stored, so transient failures get
// retried instead of being stuck cached.
type responseCache struct {
	entries *gocache.Cache
}

func newResponseCache(ttl time.Duration) *responseCache {
	return &responseCache{entries: gocache.New(ttl, 2*ttl)}
}

func (c *responseCache) get(key string) (models.Answer, bool) {
	v, ok := c.entries.Get(key)
	if !ok {
		return models.Answer{}, false
	}
	return v.(models.Answer), true
}

func (c *responseCache) set(key string, a models.Answer) {
	c.entries.Set(key, a, gocache.DefaultExpiration)
}
