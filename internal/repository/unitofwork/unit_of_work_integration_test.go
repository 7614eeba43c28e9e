package unitofwork_test

import (
	"context"
	"os"
	"testing"

	"marketing-assistant-be/internal/entity"
	"marketing-assistant-be/internal/repository/specification"
	"marketing-assistant-be/internal/repository/unitofwork"
	"marketing-assistant-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Requires a migrated Postgres with pgvector (cmd/migrate).
func newIntegrationFactory(t *testing.T) unitofwork.RepositoryFactory {
	t.Helper()
	_ = godotenv.Load("../../../.env")

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	require.NoError(t, err)
	require.NoError(t, database.Ping(context.Background(), db))
	return unitofwork.NewRepositoryFactory(db)
}

func TestConversationRoundTrip(t *testing.T) {
	factory := newIntegrationFactory(t)
	ctx := context.Background()
	uow := factory.NewUnitOfWork(ctx)

	session := &entity.ChatSession{
		Id:             uuid.New(),
		ExternalUserId: "integration:" + uuid.NewString(),
		Source:         "http",
	}
	require.NoError(t, uow.ChatSessionRepository().Create(ctx, session))
	t.Cleanup(func() {
		_ = uow.ChatMessageRepository().DeleteByChatSessionId(ctx, session.Id)
		_ = uow.ChatSessionRepository().Delete(ctx, session.Id)
	})

	for _, turn := range []struct{ role, content string }{
		{"user", "Write a tagline for a bakery"},
		{"assistant", "Fresh from our oven to your table."},
	} {
		require.NoError(t, uow.ChatMessageRepository().Create(ctx, &entity.ChatMessage{
			Id:            uuid.New(),
			ChatSessionId: session.Id,
			Role:          turn.role,
			Content:       turn.content,
		}))
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: session.Id},
		specification.OrderBy{Field: "created_at"},
	)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "user", messages[0].Role)
	assert.Equal(t, "assistant", messages[1].Role)

	found, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByExternalUserID{ExternalUserID: session.ExternalUserId})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, session.Id, found.Id)
}

func TestDocumentSimilaritySearch(t *testing.T) {
	factory := newIntegrationFactory(t)
	ctx := context.Background()
	uow := factory.NewUnitOfWork(ctx)

	tag := uuid.NewString()
	near := make([]float32, 1536)
	far := make([]float32, 1536)
	near[0], far[1] = 1, 1

	docs := []*entity.Document{
		{Id: uuid.New(), Content: "near", Metadata: map[string]interface{}{"test": tag}, EmbeddingValue: near},
		{Id: uuid.New(), Content: "far", Metadata: map[string]interface{}{"test": tag}, EmbeddingValue: far},
	}
	for _, d := range docs {
		require.NoError(t, uow.DocumentRepository().Create(ctx, d))
	}
	t.Cleanup(func() {
		for _, d := range docs {
			_ = uow.DocumentRepository().Delete(ctx, d.Id)
		}
	})

	scored, err := uow.DocumentRepository().SearchSimilar(ctx, near, 2,
		specification.MetadataContains{Filter: map[string]interface{}{"test": tag}})
	require.NoError(t, err)
	require.Len(t, scored, 2)
	assert.Equal(t, "near", scored[0].Document.Content)
	assert.InDelta(t, 1.0, scored[0].Similarity, 1e-6)
	assert.InDelta(t, 0.0, scored[1].Similarity, 1e-6)
}
