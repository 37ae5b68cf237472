package wishlist

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jtrevino/storefront-backend/pkg/db/models"
	pkgerrors "github.com/jtrevino/storefront-backend/pkg/errors"
)

// Service exposes the wishlist toggle and listing.
type Service interface {
	Toggle(ctx context.Context, userID, productID uuid.UUID) (added bool, err error)
	List(ctx context.Context, userID uuid.UUID) ([]models.Product, error)
	Contains(ctx context.Context, userID, productID uuid.UUID) (bool, error)
}

type service struct {
	repo *Repository
}

// NewService builds the wishlist service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wishlist repository required")
	}
	return &service{repo: repo}, nil
}

// Toggle flips wishlist membership in one round trip per side: a conditional
// insert backed by the unique index, then a delete only when the insert found
// an existing row. Concurrent toggles settle on one of the two states, never
// a duplicate row. Returns true when the product ended up added.
func (s *service) Toggle(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	if userID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}

	exists, err := s.repo.ProductExists(ctx, productID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check product")
	}
	if !exists {
		return false, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	inserted, err := s.repo.InsertIfAbsent(ctx, userID, productID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add wishlist item")
	}
	if inserted {
		return true, nil
	}

	if _, err := s.repo.Delete(ctx, userID, productID); err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove wishlist item")
	}
	return false, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]models.Product, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	products, err := s.repo.ListProducts(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wishlist")
	}
	return products, nil
}

func (s *service) Contains(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	if userID == uuid.Nil {
		return false, nil
	}
	member, err := s.repo.Contains(ctx, userID, productID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check wishlist")
	}
	return member, nil
}
