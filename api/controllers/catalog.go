package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jtrevino/storefront-backend/api/middleware"
	"github.com/jtrevino/storefront-backend/api/responses"
	"github.com/jtrevino/storefront-backend/api/validators"
	"github.com/jtrevino/storefront-backend/internal/catalog"
	"github.com/jtrevino/storefront-backend/internal/reviews"
	"github.com/jtrevino/storefront-backend/internal/wishlist"
	"github.com/jtrevino/storefront-backend/pkg/db/models"
	pkgerrors "github.com/jtrevino/storefront-backend/pkg/errors"
	"github.com/jtrevino/storefront-backend/pkg/logger"
)

const (
	defaultProductPageSize = 24
	maxProductPageSize     = 100
)

// Home returns the landing page sections.
func Home(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		page, err := svc.Home(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"featured":     page.Featured,
			"new_arrivals": page.NewArrivals,
			"categories":   page.Categories,
		})
	}
}

// ProductList returns the filtered, sorted product listing.
func ProductList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", defaultProductPageSize, 1, maxProductPageSize)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		offset, err := validators.ParseQueryInt(r, "offset", 0, 0, 1_000_000)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		minPrice, err := validators.ParseQueryDecimal(r, "min_price")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		maxPrice, err := validators.ParseQueryDecimal(r, "max_price")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		query := catalog.ListQuery{
			CategorySlug: strings.TrimSpace(r.URL.Query().Get("category")),
			Search:       strings.TrimSpace(r.URL.Query().Get("q")),
			MinPrice:     minPrice,
			MaxPrice:     maxPrice,
			Sort:         catalog.ParseSort(r.URL.Query().Get("sort")),
			Limit:        limit,
			Offset:       offset,
		}

		products, err := svc.ListProducts(ctx, query)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"products": products})
	}
}

// ProductDetail returns a product with its reviews, related items, and the
// caller's wishlist membership when signed in.
func ProductDetail(catalogSvc catalog.Service, reviewSvc reviews.Service, wishlistSvc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if catalogSvc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		slug := strings.TrimSpace(chi.URLParam(r, "slug"))
		if slug == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product slug is required"))
			return
		}

		detail, err := catalogSvc.ProductBySlug(ctx, slug)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var productReviews []models.Review
		if reviewSvc != nil {
			productReviews, err = reviewSvc.ListForProduct(ctx, detail.Product.ID)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
		}

		inWishlist := false
		if wishlistSvc != nil {
			if raw := middleware.UserIDFromContext(ctx); raw != "" {
				userID, parseErr := uuid.Parse(raw)
				if parseErr == nil {
					inWishlist, err = wishlistSvc.Contains(ctx, userID, detail.Product.ID)
					if err != nil {
						responses.WriteError(ctx, logg, w, err)
						return
					}
				}
			}
		}

		responses.WriteSuccess(w, map[string]any{
			"product":     detail.Product,
			"related":     detail.Related,
			"reviews":     productReviews,
			"in_wishlist": inWishlist,
		})
	}
}

// CategoryList returns all categories.
func CategoryList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		categories, err := svc.Categories(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"categories": categories})
	}
}

// CategoryDetail returns a category with its in-stock products.
func CategoryDetail(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		slug := strings.TrimSpace(chi.URLParam(r, "slug"))
		if slug == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "category slug is required"))
			return
		}

		page, err := svc.CategoryBySlug(ctx, slug)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"category": page.Category,
			"products": page.Products,
		})
	}
}
