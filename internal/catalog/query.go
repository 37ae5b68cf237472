package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/jtrevino/storefront-backend/pkg/db/models"
)

// Sort names the supported orderings for product listings.
type Sort string

const (
	SortNewest    Sort = "newest"
	SortPriceAsc  Sort = "price_asc"
	SortPriceDesc Sort = "price_desc"
	SortName      Sort = "name"
)

// ParseSort maps a query-string value onto a Sort, defaulting to newest.
func ParseSort(value string) Sort {
	switch Sort(strings.TrimSpace(value)) {
	case SortPriceAsc:
		return SortPriceAsc
	case SortPriceDesc:
		return SortPriceDesc
	case SortName:
		return SortName
	default:
		return SortNewest
	}
}

// ListQuery composes the browse filters into a single query. The zero value
// lists all in-stock products, newest first.
type ListQuery struct {
	CategorySlug string
	Search       string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	Sort         Sort
	Limit        int
	Offset       int
}

func (q ListQuery) apply(db *gorm.DB) *gorm.DB {
	scope := db.Model(&models.Product{}).Where("products.stock > 0")

	if q.CategorySlug != "" {
		scope = scope.
			Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ?", q.CategorySlug)
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		scope = scope.Where("LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ?", pattern, pattern)
	}
	if q.MinPrice != nil {
		scope = scope.Where("products.price >= ?", q.MinPrice)
	}
	if q.MaxPrice != nil {
		scope = scope.Where("products.price <= ?", q.MaxPrice)
	}

	switch q.Sort {
	case SortPriceAsc:
		scope = scope.Order("products.price ASC")
	case SortPriceDesc:
		scope = scope.Order("products.price DESC")
	case SortName:
		scope = scope.Order("products.name ASC")
	default:
		scope = scope.Order("products.created_at DESC")
	}

	if q.Limit > 0 {
		scope = scope.Limit(q.Limit)
	}
	if q.Offset > 0 {
		scope = scope.Offset(q.Offset)
	}
	return scope
}
