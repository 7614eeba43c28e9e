package unitofwork

import "context"

// RepositoryFactory opens a unit of work per request. Services never hold a
// *gorm.DB directly.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}
