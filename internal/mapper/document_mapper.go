package mapper

import (
	"encoding/json"
	"time"

	"marketing-assistant-be/internal/entity"
	"marketing-assistant-be/internal/model"
	"marketing-assistant-be/pkg/store"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}

	var deletedAt *time.Time
	if d.DeletedAt.Valid {
		t := d.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !d.UpdatedAt.IsZero() {
		t := d.UpdatedAt
		updatedAt = &t
	}

	metadata := map[string]interface{}{}
	if len(d.Metadata) > 0 {
		_ = json.Unmarshal(d.Metadata, &metadata)
	}

	return &entity.Document{
		Id:             d.Id,
		Content:        d.Content,
		Metadata:       metadata,
		EmbeddingValue: d.EmbeddingValue.Slice(),
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
		IsDeleted:      d.DeletedAt.Valid,
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if d.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *d.DeletedAt, Valid: true}
	} else if d.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if d.UpdatedAt != nil {
		updatedAt = *d.UpdatedAt
	}

	metadata := datatypes.JSON("{}")
	if len(d.Metadata) > 0 {
		if raw, err := json.Marshal(d.Metadata); err == nil {
			metadata = datatypes.JSON(raw)
		}
	}

	return &model.Document{
		Id:             d.Id,
		Content:        d.Content,
		Metadata:       metadata,
		EmbeddingValue: pgvector.NewVector(d.EmbeddingValue),
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
	}
}

// ToStore converts to the retrieval-layer document. similarity may be nil.
func (m *DocumentMapper) ToStore(d *entity.Document, similarity *float64) store.Document {
	return store.Document{
		ID:              d.Id.String(),
		Content:         d.Content,
		Metadata:        d.Metadata,
		Embedding:       d.EmbeddingValue,
		SimilarityScore: similarity,
	}
}

func (m *DocumentMapper) FromStore(d *store.Document) (*entity.Document, error) {
	e := &entity.Document{
		Content:        d.Content,
		Metadata:       d.Metadata,
		EmbeddingValue: d.Embedding,
	}
	if d.ID != "" {
		id, err := uuid.Parse(d.ID)
		if err != nil {
			return nil, err
		}
		e.Id = id
	}
	return e, nil
}
