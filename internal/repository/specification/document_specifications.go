package specification

import (
	"encoding/json"

	"gorm.io/gorm"
)

// MetadataContains keeps documents whose jsonb metadata contains every
// key/value pair of Filter.
type MetadataContains struct {
	Filter map[string]interface{}
}

func (s MetadataContains) Apply(db *gorm.DB) *gorm.DB {
	if len(s.Filter) == 0 {
		return db
	}
	raw, err := json.Marshal(s.Filter)
	if err != nil {
		_ = db.AddError(err)
		return db
	}
	return db.Where("documents.metadata @> ?::jsonb", string(raw))
}
