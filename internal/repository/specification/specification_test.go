package specification

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type document struct {
	Id       uuid.UUID
	Metadata string
}

func (document) TableName() string { return "documents" }

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=test dbname=test sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

func TestMetadataContains(t *testing.T) {
	db := dryRunDB(t)

	var docs []document
	stmt := MetadataContains{Filter: map[string]interface{}{"source": "web_scrape"}}.
		Apply(db.Model(&document{})).
		Find(&docs).Statement

	assert.Contains(t, stmt.SQL.String(), "documents.metadata @> $1::jsonb")
	require.Len(t, stmt.Vars, 1)
	assert.Equal(t, `{"source":"web_scrape"}`, stmt.Vars[0])
}

func TestMetadataContainsEmptyFilterIsNoop(t *testing.T) {
	db := dryRunDB(t)

	var docs []document
	stmt := MetadataContains{}.Apply(db.Model(&document{})).Find(&docs).Statement

	assert.NotContains(t, stmt.SQL.String(), "@>")
}

func TestOrderAndPagination(t *testing.T) {
	db := dryRunDB(t)

	var docs []document
	q := db.Model(&document{})
	for _, s := range []Specification{ByChatSessionID{ChatSessionID: uuid.New()}, OrderBy{Field: "created_at", Desc: true}, Pagination{Limit: 50}} {
		q = s.Apply(q)
	}
	sql := q.Find(&docs).Statement.SQL.String()

	assert.Contains(t, sql, "chat_session_id = $1")
	assert.Contains(t, sql, `ORDER BY "created_at" DESC`)
	assert.Contains(t, sql, "LIMIT")
}

func TestPaginationWithoutLimit(t *testing.T) {
	db := dryRunDB(t)

	var docs []document
	sql := Pagination{}.Apply(db.Model(&document{})).Find(&docs).Statement.SQL.String()

	assert.NotContains(t, sql, "LIMIT")
	assert.NotContains(t, sql, "OFFSET")
}
