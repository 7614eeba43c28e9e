package contract

import (
	"context"

	"marketing-assistant-be/internal/entity"
	"marketing-assistant-be/internal/repository/specification"
)

type DocumentRepository interface {
	CrudRepository[entity.Document]
	// SearchSimilar returns the nearest documents by cosine similarity, best first.
	SearchSimilar(ctx context.Context, embedding []float32, limit int, specs ...specification.Specification) ([]*entity.ScoredDocument, error)
}
