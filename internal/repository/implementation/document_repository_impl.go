package implementation

import (
	"context"

	"marketing-assistant-be/internal/entity"
	"marketing-assistant-be/internal/mapper"
	"marketing-assistant-be/internal/model"
	"marketing-assistant-be/internal/repository/contract"
	"marketing-assistant-be/internal/repository/specification"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type DocumentRepositoryImpl struct {
	gormRepository[model.Document, entity.Document]
	mapper *mapper.DocumentMapper
}

func NewDocumentRepository(db *gorm.DB) contract.DocumentRepository {
	m := mapper.NewDocumentMapper()
	return &DocumentRepositoryImpl{
		gormRepository: newGormRepository(db, m.ToModel, m.ToEntity),
		mapper:         m,
	}
}

func (r *DocumentRepositoryImpl) SearchSimilar(ctx context.Context, embedding []float32, limit int, specs ...specification.Specification) ([]*entity.ScoredDocument, error) {
	if limit <= 0 {
		limit = 5
	}

	// Cosine distance in pgvector is 1 - cosine_similarity
	type result struct {
		model.Document
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	query := r.db.WithContext(ctx).
		Table("documents").
		Select("documents.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Where("documents.deleted_at IS NULL")
	for _, spec := range specs {
		query = spec.Apply(query)
	}

	err := query.
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*entity.ScoredDocument, len(results))
	for i, res := range results {
		scored[i] = &entity.ScoredDocument{
			Document:   r.mapper.ToEntity(&res.Document),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
