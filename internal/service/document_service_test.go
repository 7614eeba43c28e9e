package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"marketing-assistant-be/internal/dto"
	"marketing-assistant-be/pkg/apperror"
	"marketing-assistant-be/pkg/events"
	"marketing-assistant-be/pkg/store"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("sync stores and publishes event", func(t *testing.T) {
		index := &fakeIndex{}
		pub := &recordingPublisher{}
		svc := NewDocumentService(index, &recordingQueue{}, pub, nil)

		res, err := svc.Create(ctx, &dto.CreateDocumentRequest{
			Content:  "Boudoir sessions start at $450.",
			Metadata: map[string]interface{}{"category": "pricing"},
		})
		require.NoError(t, err)
		assert.False(t, res.Queued)
		assert.NotEmpty(t, res.Id)

		require.Len(t, index.storedDocs(), 1)
		assert.Equal(t, []string{events.TypeDocumentIngested}, pub.types())
		assert.Equal(t, res.Id, events.StringField(pub.events[0], "documentId"))
	})

	t.Run("async queues payload with id", func(t *testing.T) {
		index := &fakeIndex{}
		queue := &recordingQueue{}
		svc := NewDocumentService(index, queue, nil, nil)

		res, err := svc.Create(ctx, &dto.CreateDocumentRequest{Content: "queued", Async: true})
		require.NoError(t, err)
		assert.True(t, res.Queued)
		assert.Empty(t, index.storedDocs())

		require.Len(t, queue.payloads, 1)
		var payload dto.PublishIngestDocumentMessage
		require.NoError(t, json.Unmarshal(queue.payloads[0], &payload))
		assert.Equal(t, res.Id, payload.Id)
		assert.Equal(t, "queued", payload.Content)
	})

	t.Run("async rejects supplied embedding", func(t *testing.T) {
		svc := NewDocumentService(&fakeIndex{}, &recordingQueue{}, nil, nil)
		_, err := svc.Create(ctx, &dto.CreateDocumentRequest{Content: "x", Embedding: []float32{1}, Async: true})
		assert.True(t, apperror.IsInputError(err))
	})

	t.Run("blank content", func(t *testing.T) {
		svc := NewDocumentService(&fakeIndex{}, &recordingQueue{}, nil, nil)
		_, err := svc.Create(ctx, &dto.CreateDocumentRequest{Content: " \n "})
		assert.True(t, apperror.IsInputError(err))
	})

	t.Run("event failure does not fail ingestion", func(t *testing.T) {
		svc := NewDocumentService(&fakeIndex{}, &recordingQueue{}, &recordingPublisher{err: errors.New("nats down")}, nil)
		_, err := svc.Create(ctx, &dto.CreateDocumentRequest{Content: "x"})
		assert.NoError(t, err)
	})
}

func TestDocumentService_Search(t *testing.T) {
	score := 0.91
	index := &fakeIndex{results: []store.Document{
		{ID: "a", Content: "pricing", Metadata: map[string]interface{}{}, SimilarityScore: &score},
	}}
	svc := NewDocumentService(index, &recordingQueue{}, nil, nil)

	res, err := svc.Search(context.Background(), &dto.SearchDocumentsRequest{Query: "price"})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "a", res[0].Id)
	assert.InDelta(t, 0.91, *res[0].SimilarityScore, 1e-9)

	_, err = svc.Search(context.Background(), &dto.SearchDocumentsRequest{Query: ""})
	assert.True(t, apperror.IsInputError(err))
}

func TestConsumerService_IngestsQueuedDocuments(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	index := &fakeIndex{}
	docService := NewDocumentService(index, NewPublisherService("DOCUMENT_INGEST", pubSub), nil, nil)
	consumer := NewConsumerService(pubSub, pubSub, ConsumerConfig{Topic: "DOCUMENT_INGEST"}, docService, nil)
	require.NoError(t, consumer.Consume(ctx))

	// poison message is acked and skipped
	require.NoError(t, NewPublisherService("DOCUMENT_INGEST", pubSub).Publish(ctx, []byte("{not json")))

	res, err := docService.Create(ctx, &dto.CreateDocumentRequest{Content: "async body", Async: true})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return len(index.storedDocs()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	stored := index.storedDocs()[0]
	assert.Equal(t, res.Id, stored.ID)
	assert.Equal(t, "async body", stored.Content)
}

func TestConsumerService_RetriesWithBackoffThenParksPoisonMessage(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	poisoned, err := pubSub.Subscribe(ctx, "DOCUMENT_INGEST_POISON")
	require.NoError(t, err)

	index := &fakeIndex{failures: 100}
	docService := NewDocumentService(index, NewPublisherService("DOCUMENT_INGEST", pubSub), nil, nil)
	consumer := NewConsumerService(pubSub, pubSub, ConsumerConfig{
		Topic:           "DOCUMENT_INGEST",
		MaxRetries:      2,
		InitialInterval: 5 * time.Millisecond,
	}, docService, nil)
	require.NoError(t, consumer.Consume(ctx))

	_, err = docService.Create(ctx, &dto.CreateDocumentRequest{Content: "stuck body", Async: true})
	require.NoError(t, err)

	select {
	case msg := <-poisoned:
		msg.Ack()
		var payload dto.PublishIngestDocumentMessage
		require.NoError(t, json.Unmarshal(msg.Payload, &payload))
		assert.Equal(t, "stuck body", payload.Content)
	case <-time.After(2 * time.Second):
		t.Fatal("message never reached the poison topic")
	}

	// first attempt plus two retries
	assert.Equal(t, 3, index.storeCalls())
	assert.Empty(t, index.storedDocs())
}

func TestConsumerService_TransientFailureRecovers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	index := &fakeIndex{failures: 1}
	docService := NewDocumentService(index, NewPublisherService("DOCUMENT_INGEST", pubSub), nil, nil)
	consumer := NewConsumerService(pubSub, pubSub, ConsumerConfig{
		Topic:           "DOCUMENT_INGEST",
		MaxRetries:      3,
		InitialInterval: 5 * time.Millisecond,
	}, docService, nil)
	require.NoError(t, consumer.Consume(ctx))

	_, err := docService.Create(ctx, &dto.CreateDocumentRequest{Content: "flaky body", Async: true})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return len(index.storedDocs()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 2, index.storeCalls())
}
