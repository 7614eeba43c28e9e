package entity

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	Id             uuid.UUID
	Content        string
	Metadata       map[string]interface{}
	EmbeddingValue []float32
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}

// ScoredDocument is a similarity search hit. Similarity is 1 - cosine distance.
type ScoredDocument struct {
	Document   *Document
	Similarity float64
}
