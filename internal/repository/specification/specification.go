// Package specification holds composable query clauses for the repositories.
package specification

import "gorm.io/gorm"

// Specification narrows a query. Implementations only add clauses and never execute.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}
