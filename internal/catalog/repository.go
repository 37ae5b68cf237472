package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jtrevino/storefront-backend/pkg/db/models"
)

// Repository encapsulates catalog persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindProductByID loads the product without associations.
func (r *Repository) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindProductBySlug loads the product with its category.
func (r *Repository) FindProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Preload("Category").First(&product, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindProductsByIDs bulk-fetches products keyed by their string-form id,
// matching how the session cart stores entries.
func (r *Repository) FindProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[string]models.Product, error) {
	result := make(map[string]models.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var products []models.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	for _, p := range products {
		result[p.ID.String()] = p
	}
	return result, nil
}

// ListProducts runs the composed browse query.
func (r *Repository) ListProducts(ctx context.Context, query ListQuery) ([]models.Product, error) {
	var products []models.Product
	if err := query.apply(r.db.WithContext(ctx)).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// ListFeatured returns up to limit featured in-stock products.
func (r *Repository) ListFeatured(ctx context.Context, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("is_featured = ? AND stock > 0", true).
		Order("created_at DESC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// ListNewArrivals returns up to limit new in-stock products.
func (r *Repository) ListNewArrivals(ctx context.Context, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("is_new = ? AND stock > 0", true).
		Order("created_at DESC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// ListRelated returns other in-stock products from the same category.
func (r *Repository) ListRelated(ctx context.Context, categoryID, excludeID uuid.UUID, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("category_id = ? AND id <> ? AND stock > 0", categoryID, excludeID).
		Order("created_at DESC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// ListCategories returns categories ordered by name; limit <= 0 lists all.
func (r *Repository) ListCategories(ctx context.Context, limit int) ([]models.Category, error) {
	scope := r.db.WithContext(ctx).Order("name ASC")
	if limit > 0 {
		scope = scope.Limit(limit)
	}
	var categories []models.Category
	if err := scope.Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// FindCategoryBySlug loads a category by its URL identifier.
func (r *Repository) FindCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &category, nil
}
