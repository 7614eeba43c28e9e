package implementation

import (
	"context"
	"errors"

	"marketing-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gormRepository implements contract.CrudRepository for model M mapped to entity E.
type gormRepository[M any, E any] struct {
	db       *gorm.DB
	toModel  func(*E) *M
	toEntity func(*M) *E
}

func newGormRepository[M any, E any](db *gorm.DB, toModel func(*E) *M, toEntity func(*M) *E) gormRepository[M, E] {
	return gormRepository[M, E]{db: db, toModel: toModel, toEntity: toEntity}
}

func (r gormRepository[M, E]) scoped(ctx context.Context, specs ...specification.Specification) *gorm.DB {
	db := r.db.WithContext(ctx).Model(new(M))
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

// Create inserts e and copies back database defaults (id, timestamps).
func (r gormRepository[M, E]) Create(ctx context.Context, e *E) error {
	m := r.toModel(e)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*e = *r.toEntity(m)
	return nil
}

func (r gormRepository[M, E]) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(new(M)).Error
}

func (r gormRepository[M, E]) FindOne(ctx context.Context, specs ...specification.Specification) (*E, error) {
	var m M
	if err := r.scoped(ctx, specs...).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

func (r gormRepository[M, E]) FindAll(ctx context.Context, specs ...specification.Specification) ([]*E, error) {
	var models []*M
	if err := r.scoped(ctx, specs...).Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*E, len(models))
	for i, m := range models {
		entities[i] = r.toEntity(m)
	}
	return entities, nil
}

func (r gormRepository[M, E]) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	if err := r.scoped(ctx, specs...).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
