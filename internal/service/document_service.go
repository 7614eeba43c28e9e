package service

import (
	"context"
	"encoding/json"
	"strings"

	"marketing-assistant-be/internal/dto"
	"marketing-assistant-be/internal/pkg/logger"
	"marketing-assistant-be/pkg/apperror"
	"marketing-assistant-be/pkg/events"
	"marketing-assistant-be/pkg/store"

	"github.com/google/uuid"
)

const defaultSearchLimit = 5

// DocumentIndex is the retrieval index (embed + persist + nearest query).
type DocumentIndex interface {
	Store(ctx context.Context, doc store.Document) (*store.Document, error)
	Query(ctx context.Context, text string, k int, filter map[string]interface{}) []store.Document
}

type IDocumentService interface {
	Create(ctx context.Context, request *dto.CreateDocumentRequest) (*dto.CreateDocumentResponse, error)
	Ingest(ctx context.Context, payload dto.PublishIngestDocumentMessage) (*store.Document, error)
	Search(ctx context.Context, request *dto.SearchDocumentsRequest) ([]*dto.DocumentResponse, error)
}

type documentService struct {
	index            DocumentIndex
	publisherService IPublisherService
	eventPublisher   events.Publisher
	logger           logger.ILogger
}

func NewDocumentService(
	index DocumentIndex,
	publisherService IPublisherService,
	eventPublisher events.Publisher,
	log logger.ILogger,
) IDocumentService {
	if eventPublisher == nil {
		eventPublisher = events.NopPublisher{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &documentService{
		index:            index,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		logger:           log,
	}
}

// Create stores the document now, or queues it when Async is set. Queued
// documents get their id up front so the caller can refer to them.
func (s *documentService) Create(ctx context.Context, request *dto.CreateDocumentRequest) (*dto.CreateDocumentResponse, error) {
	if strings.TrimSpace(request.Content) == "" {
		return nil, apperror.NewInputError("content", "is required")
	}

	if request.Async {
		if len(request.Embedding) > 0 {
			return nil, apperror.NewInputError("embedding", "cannot be combined with async ingestion")
		}

		payload := dto.PublishIngestDocumentMessage{
			Id:       uuid.NewString(),
			Content:  request.Content,
			Metadata: request.Metadata,
		}
		payloadJson, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		if err := s.publisherService.Publish(ctx, payloadJson); err != nil {
			return nil, err
		}

		s.logger.Info("DOCUMENT", "Document queued for ingestion", map[string]interface{}{
			"document_id": payload.Id,
		})
		return &dto.CreateDocumentResponse{Id: payload.Id, Queued: true}, nil
	}

	doc, err := s.store(ctx, store.Document{
		Content:   request.Content,
		Metadata:  request.Metadata,
		Embedding: request.Embedding,
	})
	if err != nil {
		return nil, err
	}
	return &dto.CreateDocumentResponse{Id: doc.ID}, nil
}

func (s *documentService) Ingest(ctx context.Context, payload dto.PublishIngestDocumentMessage) (*store.Document, error) {
	return s.store(ctx, store.Document{
		ID:       payload.Id,
		Content:  payload.Content,
		Metadata: payload.Metadata,
	})
}

func (s *documentService) Search(ctx context.Context, request *dto.SearchDocumentsRequest) ([]*dto.DocumentResponse, error) {
	if strings.TrimSpace(request.Query) == "" {
		return nil, apperror.NewInputError("query", "is required")
	}

	limit := request.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	docs := s.index.Query(ctx, request.Query, limit, request.Filter)
	res := make([]*dto.DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		res = append(res, &dto.DocumentResponse{
			Id:              doc.ID,
			Content:         doc.Content,
			Metadata:        doc.Metadata,
			SimilarityScore: doc.SimilarityScore,
		})
	}
	return res, nil
}

func (s *documentService) store(ctx context.Context, doc store.Document) (*store.Document, error) {
	stored, err := s.index.Store(ctx, doc)
	if err != nil {
		return nil, err
	}

	// Auxiliary: a lost event never fails the ingestion
	evt := events.NewDocumentIngested(stored.ID, stored.Metadata)
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("DOCUMENT", "Failed to publish DOCUMENT_INGESTED event", map[string]interface{}{
			"document_id": stored.ID,
			"error":       err.Error(),
		})
	}
	return stored, nil
}
