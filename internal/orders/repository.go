package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jtrevino/storefront-backend/pkg/db/models"
)

// Repository encapsulates order persistence for the read side and the
// admin status transition.
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

// ListByUser returns the user's orders, newest first, items included.
// limit <= 0 lists all.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Order, error) {
	scope := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		scope = scope.Limit(limit)
	}
	var found []models.Order
	if err := scope.Find(&found).Error; err != nil {
		return nil, err
	}
	return found, nil
}

// FindForUser loads one order only when it belongs to the user; a foreign
// order id surfaces as gorm.ErrRecordNotFound, not a forbidden hint.
func (r *Repository) FindForUser(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ? AND user_id = ?", orderID, userID).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByID loads one order regardless of owner, for admin use.
func (r *Repository) FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", orderID).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListAll returns every order, newest first, for the admin view.
func (r *Repository) ListAll(ctx context.Context, limit, offset int) ([]models.Order, error) {
	scope := r.db.WithContext(ctx).
		Preload("Items").
		Order("created_at DESC")
	if limit > 0 {
		scope = scope.Limit(limit)
	}
	if offset > 0 {
		scope = scope.Offset(offset)
	}
	var found []models.Order
	if err := scope.Find(&found).Error; err != nil {
		return nil, err
	}
	return found, nil
}

// UpdateStatus writes the new status. Returns rows affected so the caller
// can distinguish a missing order.
func (r *Repository) UpdateStatus(ctx context.Context, orderID uuid.UUID, status models.OrderStatus) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("status", status)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
