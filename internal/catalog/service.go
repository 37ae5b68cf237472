package catalog

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/jtrevino/storefront-backend/pkg/db/models"
	pkgerrors "github.com/jtrevino/storefront-backend/pkg/errors"
)

const (
	homeFeaturedLimit   = 8
	homeNewArrivalLimit = 8
	homeCategoryLimit   = 6
	relatedLimit        = 4
)

// HomePage aggregates the storefront landing data.
type HomePage struct {
	Featured    []models.Product
	NewArrivals []models.Product
	Categories  []models.Category
}

// ProductDetail carries a product plus its related items.
type ProductDetail struct {
	Product *models.Product
	Related []models.Product
}

// CategoryPage carries a category plus its in-stock products.
type CategoryPage struct {
	Category *models.Category
	Products []models.Product
}

// Service exposes the read-side catalog operations.
type Service interface {
	Home(ctx context.Context) (HomePage, error)
	ListProducts(ctx context.Context, query ListQuery) ([]models.Product, error)
	ProductBySlug(ctx context.Context, slug string) (ProductDetail, error)
	CategoryBySlug(ctx context.Context, slug string) (CategoryPage, error)
	Categories(ctx context.Context) ([]models.Category, error)
}

type service struct {
	repo *Repository
}

// NewService builds the catalog service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Home(ctx context.Context) (HomePage, error) {
	featured, err := s.repo.ListFeatured(ctx, homeFeaturedLimit)
	if err != nil {
		return HomePage{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list featured products")
	}
	newArrivals, err := s.repo.ListNewArrivals(ctx, homeNewArrivalLimit)
	if err != nil {
		return HomePage{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list new arrivals")
	}
	categories, err := s.repo.ListCategories(ctx, homeCategoryLimit)
	if err != nil {
		return HomePage{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return HomePage{
		Featured:    featured,
		NewArrivals: newArrivals,
		Categories:  categories,
	}, nil
}

func (s *service) ListProducts(ctx context.Context, query ListQuery) ([]models.Product, error) {
	products, err := s.repo.ListProducts(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return products, nil
}

func (s *service) ProductBySlug(ctx context.Context, slug string) (ProductDetail, error) {
	product, err := s.repo.FindProductBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProductDetail{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return ProductDetail{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	related, err := s.repo.ListRelated(ctx, product.CategoryID, product.ID, relatedLimit)
	if err != nil {
		return ProductDetail{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load related products")
	}

	return ProductDetail{Product: product, Related: related}, nil
}

func (s *service) CategoryBySlug(ctx context.Context, slug string) (CategoryPage, error) {
	category, err := s.repo.FindCategoryBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CategoryPage{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "category not found")
		}
		return CategoryPage{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}

	products, err := s.repo.ListProducts(ctx, ListQuery{CategorySlug: category.Slug})
	if err != nil {
		return CategoryPage{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list category products")
	}

	return CategoryPage{Category: category, Products: products}, nil
}

func (s *service) Categories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repo.ListCategories(ctx, 0)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return categories, nil
}
