package mapper

import (
	"testing"

	"marketing-assistant-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentMapperMetadataAndVector(t *testing.T) {
	m := NewDocumentMapper()
	e := &entity.Document{
		Id:             uuid.New(),
		Content:        "Boudoir pricing guide",
		Metadata:       map[string]interface{}{"source": "web_scrape", "url": "https://example.com"},
		EmbeddingValue: []float32{0.1, 0.2, 0.3},
	}

	back := m.ToEntity(m.ToModel(e))

	assert.Equal(t, e.Id, back.Id)
	assert.Equal(t, e.Content, back.Content)
	assert.Equal(t, "web_scrape", back.Metadata["source"])
	assert.Equal(t, e.EmbeddingValue, back.EmbeddingValue)
	assert.False(t, back.IsDeleted)
}

func TestDocumentMapperEmptyMetadata(t *testing.T) {
	m := NewDocumentMapper()
	model := m.ToModel(&entity.Document{Content: "x"})

	assert.Equal(t, "{}", string(model.Metadata))
	assert.NotNil(t, m.ToEntity(model).Metadata)
}

func TestDocumentMapperFromStoreRejectsBadID(t *testing.T) {
	m := NewDocumentMapper()
	doc := m.ToStore(&entity.Document{Id: uuid.New(), Content: "x"}, nil)

	e, err := m.FromStore(&doc)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, e.Id.String())

	doc.ID = "not-a-uuid"
	_, err = m.FromStore(&doc)
	assert.Error(t, err)
}
