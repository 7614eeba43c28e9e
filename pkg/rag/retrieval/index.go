// Package retrieval wraps the document store behind the store/query contract
// used by ingestion and by the context enricher.
package retrieval

import (
	"context"
	"sort"
	"strings"

	"marketing-assistant-be/internal/pkg/logger"
	"marketing-assistant-be/pkg/apperror"
	"marketing-assistant-be/pkg/rag/embedder"
	"marketing-assistant-be/pkg/store"

	"github.com/google/uuid"
)

// DocumentStore is the persistence collaborator (pgvector in production).
type DocumentStore interface {
	Insert(ctx context.Context, doc *store.Document) (string, error)
	QueryNearest(ctx context.Context, vector []float32, k int, filter map[string]interface{}) ([]store.Document, error)
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

type Index struct {
	embedder Embedder
	store    DocumentStore
	logger   logger.ILogger
}

func NewIndex(e Embedder, s DocumentStore, log logger.ILogger) *Index {
	if log == nil {
		log = logger.Nop()
	}
	return &Index{embedder: e, store: s, logger: log}
}

// Store assigns an id, embeds the content unless an embedding is supplied,
// and persists the document. Supplied embeddings of the wrong shape are rejected.
func (i *Index) Store(ctx context.Context, doc store.Document) (*store.Document, error) {
	if strings.TrimSpace(doc.Content) == "" {
		return nil, apperror.NewInputError("content", "is required")
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.Metadata == nil {
		doc.Metadata = map[string]interface{}{}
	}

	if len(doc.Embedding) == 0 {
		vec, err := i.embedder.Embed(ctx, doc.Content)
		if err != nil {
			return nil, err
		}
		doc.Embedding = vec
	} else if err := embedder.Validate(doc.Embedding, i.embedder.Dimensions()); err != nil {
		return nil, err
	}

	id, err := i.store.Insert(ctx, &doc)
	if err != nil {
		return nil, apperror.NewProviderError("store", err)
	}
	if id != "" {
		doc.ID = id
	}
	doc.SimilarityScore = nil

	i.logger.Info("RETRIEVAL", "Document stored", map[string]interface{}{
		"document_id": doc.ID,
		"length":      len(doc.Content),
	})
	return &doc, nil
}

// Query returns up to k documents ordered by descending similarity. Retrieval
// is best-effort: any embedding or store failure yields an empty list.
func (i *Index) Query(ctx context.Context, text string, k int, filter map[string]interface{}) []store.Document {
	if k <= 0 || strings.TrimSpace(text) == "" {
		return []store.Document{}
	}

	vec, err := i.embedder.Embed(ctx, text)
	if err != nil {
		i.logger.Warn("RETRIEVAL", "Query embedding failed, continuing without documents", map[string]interface{}{
			"error": err.Error(),
		})
		return []store.Document{}
	}

	docs, err := i.store.QueryNearest(ctx, vec, k, filter)
	if err != nil {
		i.logger.Warn("RETRIEVAL", "Document store query failed, continuing without documents", map[string]interface{}{
			"error": err.Error(),
		})
		return []store.Document{}
	}

	sort.SliceStable(docs, func(a, b int) bool {
		return score(docs[a]) > score(docs[b])
	})
	if len(docs) > k {
		docs = docs[:k]
	}
	if docs == nil {
		docs = []store.Document{}
	}
	return docs
}

func score(d store.Document) float64 {
	if d.SimilarityScore == nil {
		return -2 // below the cosine range
	}
	return *d.SimilarityScore
}
