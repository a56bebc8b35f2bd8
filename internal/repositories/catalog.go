package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"unitalent/talent-center/internal/models"
)

// CatalogRepository is the CRUD surface shared by the admin-managed
// collections: organizations, news and student organizations.
type CatalogRepository[T any] interface {
	Create(ctx context.Context, item *T) error
	FindByID(ctx context.Context, id uuid.UUID) (*T, error)
	List(ctx context.Context, offset, limit int) ([]T, int64, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type catalogRepository[T any] struct {
	db    *gorm.DB
	order string
	kind  string
}

func NewOrganizationRepository(db *gorm.DB) CatalogRepository[models.Organization] {
	return &catalogRepository[models.Organization]{db: db, order: "name ASC", kind: "organization"}
}

func NewNewsRepository(db *gorm.DB) CatalogRepository[models.News] {
	return &catalogRepository[models.News]{db: db, order: "published_at DESC", kind: "news"}
}

func NewStudentOrganizationRepository(db *gorm.DB) CatalogRepository[models.StudentOrganization] {
	return &catalogRepository[models.StudentOrganization]{db: db, order: "name ASC", kind: "student organization"}
}

func (r *catalogRepository[T]) Create(ctx context.Context, item *T) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("failed to create %s: %w", r.kind, err)
	}
	return nil
}

func (r *catalogRepository[T]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	var item T
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("%s %s: %w", r.kind, id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find %s: %w", r.kind, err)
	}
	return &item, nil
}

func (r *catalogRepository[T]) List(ctx context.Context, offset, limit int) ([]T, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(new(T)).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count %s: %w", r.kind, err)
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var items []T
	if err := r.db.WithContext(ctx).Order(r.order).Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list %s: %w", r.kind, err)
	}
	return items, total, nil
}

func (r *catalogRepository[T]) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update %s: %w", r.kind, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%s %s: %w", r.kind, id, ErrNotFound)
	}
	return nil
}

func (r *catalogRepository[T]) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if result.Error != nil {
		return fmt.Errorf("failed to delete %s: %w", r.kind, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%s %s: %w", r.kind, id, ErrNotFound)
	}
	return nil
}
