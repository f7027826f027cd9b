package memory

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"
)

type cachedEmbedding struct {
	contentHash string
	vector      []float32
}

// EmbeddingCache keeps one vector per document, keyed by a hash of the
// content it was computed from, so edits invalidate stale vectors without
// an explicit purge.
type EmbeddingCache struct {
	c *cache.Cache
}

func NewEmbeddingCache() *EmbeddingCache {
	return &EmbeddingCache{
		c: cache.New(cache.NoExpiration, 10*time.Minute),
	}
}

func contentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached vector if it was computed from exactly this
// content.
func (e *EmbeddingCache) Get(documentID uuid.UUID, content string) ([]float32, bool) {
	value, ok := e.c.Get(documentID.String())
	if !ok {
		return nil, false
	}
	entry, ok := value.(cachedEmbedding)
	if !ok || entry.contentHash != contentHash(content) {
		return nil, false
	}
	return entry.vector, true
}

// Put stores the vector for the content it was derived from.
func (e *EmbeddingCache) Put(documentID uuid.UUID, content string, vector []float32) {
	e.c.Set(documentID.String(), cachedEmbedding{
		contentHash: contentHash(content),
		vector:      vector,
	}, cache.NoExpiration)
}

// Forget drops a document's vector, e.g. after deletion.
func (e *EmbeddingCache) Forget(documentID uuid.UUID) {
	e.c.Delete(documentID.String())
}
