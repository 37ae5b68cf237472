package reviews

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jtrevino/storefront-backend/pkg/db/models"
	pkgerrors "github.com/jtrevino/storefront-backend/pkg/errors"
)

const (
	minRating        = 1
	maxRating        = 5
	maxCommentLength = 2000
)

// Service exposes review submission and listing.
type Service interface {
	Submit(ctx context.Context, userID, productID uuid.UUID, rating int, comment string) (*models.Review, error)
	ListForProduct(ctx context.Context, productID uuid.UUID) ([]models.Review, error)
}

type service struct {
	repo *Repository
}

// NewService builds the reviews service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reviews repository required")
	}
	return &service{repo: repo}, nil
}

// Submit records or replaces the caller's rating for a product. One review
// per (user, product); a second submit overwrites rating and comment.
func (s *service) Submit(ctx context.Context, userID, productID uuid.UUID, rating int, comment string) (*models.Review, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	if rating < minRating || rating > maxRating {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5").
			WithDetails(map[string]any{"rating": rating})
	}
	comment = strings.TrimSpace(comment)
	if len(comment) > maxCommentLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "comment too long")
	}

	exists, err := s.repo.ProductExists(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check product")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	review := &models.Review{
		UserID:    userID,
		ProductID: productID,
		Rating:    rating,
		Comment:   comment,
	}
	if err := s.repo.Upsert(ctx, review); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save review")
	}

	// Re-read so an overwrite returns the surviving row, not the insert attempt.
	stored, err := s.repo.FindByUserAndProduct(ctx, userID, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload review")
	}
	return stored, nil
}

func (s *service) ListForProduct(ctx context.Context, productID uuid.UUID) ([]models.Review, error) {
	found, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reviews")
	}
	return found, nil
}
