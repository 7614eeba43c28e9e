package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"marketing-assistant-be/internal/dto"
	"marketing-assistant-be/pkg/apperror"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
)

const maxIngestRetryInterval = 30 * time.Second

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type ConsumerConfig struct {
	Topic string
	// PoisonTopic receives messages that still fail after MaxRetries.
	PoisonTopic     string
	MaxRetries      int
	InitialInterval time.Duration
}

type consumerService struct {
	subscriber      message.Subscriber
	publisher       message.Publisher
	cfg             ConsumerConfig
	documentService IDocumentService
	logger          watermill.LoggerAdapter
}

func NewConsumerService(
	subscriber message.Subscriber,
	publisher message.Publisher,
	cfg ConsumerConfig,
	documentService IDocumentService,
	logger watermill.LoggerAdapter,
) IConsumerService {
	if cfg.PoisonTopic == "" {
		cfg.PoisonTopic = cfg.Topic + "_POISON"
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = time.Second
	}
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &consumerService{
		subscriber:      subscriber,
		publisher:       publisher,
		cfg:             cfg,
		documentService: documentService,
		logger:          logger,
	}
}

// Consume starts the ingestion router and returns once it is running.
// Retriable failures back off exponentially; after MaxRetries the message
// is moved to the poison topic so the queue keeps flowing.
func (cs *consumerService) Consume(ctx context.Context) error {
	router, err := message.NewRouter(message.RouterConfig{}, cs.logger)
	if err != nil {
		return err
	}

	poisonQueue, err := middleware.PoisonQueue(cs.publisher, cs.cfg.PoisonTopic)
	if err != nil {
		return err
	}

	// Outermost first: retries run out before the poison queue takes the message.
	router.AddMiddleware(
		poisonQueue,
		middleware.Retry{
			MaxRetries:      cs.cfg.MaxRetries,
			InitialInterval: cs.cfg.InitialInterval,
			MaxInterval:     maxIngestRetryInterval,
			Multiplier:      2,
			Logger:          cs.logger,
		}.Middleware,
	)
	router.AddNoPublisherHandler("document_ingest", cs.cfg.Topic, cs.subscriber, cs.processMessage)

	errCh := make(chan error, 1)
	go func() {
		errCh <- router.Run(ctx)
	}()

	select {
	case <-router.Running():
		go func() {
			if err := <-errCh; err != nil {
				log.Printf("[ERROR] Ingestion router stopped: %v", err)
			}
		}()
		return nil
	case err := <-errCh:
		return err
	}
}

func (cs *consumerService) processMessage(msg *message.Message) error {
	var payload dto.PublishIngestDocumentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal ingestion message: %v", err)
		return nil // poison message, never retry
	}

	log.Printf("[INFO] Ingesting document %s (content length: %d)", payload.Id, len(payload.Content))

	doc, err := cs.documentService.Ingest(msg.Context(), payload)
	if err != nil {
		if apperror.IsInputError(err) || apperror.IsShapeError(err) {
			log.Printf("[ERROR] Dropping document %s: %v", payload.Id, err)
			return nil
		}
		log.Printf("[ERROR] Failed to ingest document %s: %v", payload.Id, err)
		return err
	}

	log.Printf("[SUCCESS] Document ingested: %s", doc.ID)
	return nil
}
