package service

import (
	"context"
	"time"

	"marketing-assistant-be/internal/mapper"
	"marketing-assistant-be/internal/repository/specification"
	"marketing-assistant-be/internal/repository/unitofwork"
	"marketing-assistant-be/pkg/store"

	"github.com/google/uuid"
)

// documentStore is the pgvector-backed persistence behind the retrieval index.
type documentStore struct {
	uowFactory unitofwork.RepositoryFactory
	mapper     *mapper.DocumentMapper
}

func NewDocumentStore(uowFactory unitofwork.RepositoryFactory) *documentStore {
	return &documentStore{
		uowFactory: uowFactory,
		mapper:     mapper.NewDocumentMapper(),
	}
}

func (s *documentStore) Insert(ctx context.Context, doc *store.Document) (string, error) {
	e, err := s.mapper.FromStore(doc)
	if err != nil {
		return "", err
	}
	if e.Id == uuid.Nil {
		e.Id = uuid.New()
	}
	e.CreatedAt = time.Now()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.DocumentRepository().Create(ctx, e); err != nil {
		return "", err
	}
	return e.Id.String(), nil
}

func (s *documentStore) QueryNearest(ctx context.Context, vector []float32, k int, filter map[string]interface{}) ([]store.Document, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.DocumentRepository().SearchSimilar(ctx, vector, k, specification.MetadataContains{Filter: filter})
	if err != nil {
		return nil, err
	}

	docs := make([]store.Document, 0, len(scored))
	for _, sd := range scored {
		similarity := sd.Similarity
		docs = append(docs, s.mapper.ToStore(sd.Document, &similarity))
	}
	return docs, nil
}
