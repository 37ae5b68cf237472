package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/jtrevino/storefront-backend/pkg/db/models"
	pkgerrors "github.com/jtrevino/storefront-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:catalog_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Category{}, &models.Product{}))
	return db
}

func seedCategory(t *testing.T, db *gorm.DB, name, slug string) models.Category {
	t.Helper()
	category := models.Category{Name: name, Slug: slug}
	require.NoError(t, db.Create(&category).Error)
	return category
}

type productSpec struct {
	name       string
	price      string
	stock      int
	isFeatured bool
	isNew      bool
	createdAt  time.Time
}

func seedProductIn(t *testing.T, db *gorm.DB, category models.Category, spec productSpec) models.Product {
	t.Helper()
	product := models.Product{
		CategoryID:  category.ID,
		Name:        spec.name,
		Slug:        spec.name + "-" + uuid.NewString()[:8],
		Description: "about " + spec.name,
		Price:       decimal.RequireFromString(spec.price),
		Stock:       spec.stock,
		IsFeatured:  spec.isFeatured,
		IsNew:       spec.isNew,
	}
	require.NoError(t, db.Create(&product).Error)
	if !spec.createdAt.IsZero() {
		require.NoError(t, db.Model(&models.Product{}).
			Where("id = ?", product.ID).
			UpdateColumn("created_at", spec.createdAt).Error)
	}
	return product
}

func newTestService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	return svc
}

func TestListProductsExcludesOutOfStock(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	category := seedCategory(t, db, "Gear", "gear")

	seedProductIn(t, db, category, productSpec{name: "available", price: "10.00", stock: 3})
	seedProductIn(t, db, category, productSpec{name: "soldout", price: "10.00", stock: 0})

	found, err := svc.ListProducts(context.Background(), ListQuery{})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "available", found[0].Name)
}

func TestListProductsSearchMatchesNameOrDescription(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	category := seedCategory(t, db, "Gear", "gear")

	seedProductIn(t, db, category, productSpec{name: "Trail Lamp", price: "10.00", stock: 3})
	seedProductIn(t, db, category, productSpec{name: "Canteen", price: "8.00", stock: 3})

	byName, err := svc.ListProducts(context.Background(), ListQuery{Search: "LAMP"})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "Trail Lamp", byName[0].Name)

	// Description is "about Canteen"; search must cover both columns.
	byDescription, err := svc.ListProducts(context.Background(), ListQuery{Search: "about canteen"})
	require.NoError(t, err)
	require.Len(t, byDescription, 1)
	assert.Equal(t, "Canteen", byDescription[0].Name)
}

func TestListProductsPriceBoundsAndCategory(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	gear := seedCategory(t, db, "Gear", "gear")
	apparel := seedCategory(t, db, "Apparel", "apparel")

	seedProductIn(t, db, gear, productSpec{name: "cheap", price: "5.00", stock: 3})
	seedProductIn(t, db, gear, productSpec{name: "mid", price: "15.00", stock: 3})
	seedProductIn(t, db, apparel, productSpec{name: "shirt", price: "15.00", stock: 3})

	min := decimal.RequireFromString("10.00")
	max := decimal.RequireFromString("20.00")
	found, err := svc.ListProducts(context.Background(), ListQuery{
		CategorySlug: "gear",
		MinPrice:     &min,
		MaxPrice:     &max,
	})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "mid", found[0].Name)
}

func TestListProductsSortOrders(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	category := seedCategory(t, db, "Gear", "gear")

	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	seedProductIn(t, db, category, productSpec{name: "bravo", price: "20.00", stock: 3, createdAt: base})
	seedProductIn(t, db, category, productSpec{name: "alpha", price: "5.00", stock: 3, createdAt: base.Add(time.Hour)})

	newest, err := svc.ListProducts(context.Background(), ListQuery{Sort: SortNewest})
	require.NoError(t, err)
	assert.Equal(t, "alpha", newest[0].Name)

	cheapFirst, err := svc.ListProducts(context.Background(), ListQuery{Sort: SortPriceAsc})
	require.NoError(t, err)
	assert.Equal(t, "alpha", cheapFirst[0].Name)

	dearFirst, err := svc.ListProducts(context.Background(), ListQuery{Sort: SortPriceDesc})
	require.NoError(t, err)
	assert.Equal(t, "bravo", dearFirst[0].Name)

	byName, err := svc.ListProducts(context.Background(), ListQuery{Sort: SortName})
	require.NoError(t, err)
	assert.Equal(t, "alpha", byName[0].Name)
}

func TestParseSortDefaultsToNewest(t *testing.T) {
	assert.Equal(t, SortNewest, ParseSort(""))
	assert.Equal(t, SortNewest, ParseSort("sideways"))
	assert.Equal(t, SortPriceAsc, ParseSort("price_asc"))
	assert.Equal(t, SortName, ParseSort("name"))
}

func TestHomeSectionsRespectLimitsAndFlags(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	category := seedCategory(t, db, "Gear", "gear")

	for i := 0; i < 10; i++ {
		seedProductIn(t, db, category, productSpec{name: "featured", price: "10.00", stock: 3, isFeatured: true})
	}
	seedProductIn(t, db, category, productSpec{name: "fresh", price: "10.00", stock: 3, isNew: true})
	seedProductIn(t, db, category, productSpec{name: "plain", price: "10.00", stock: 3})

	home, err := svc.Home(context.Background())
	require.NoError(t, err)
	assert.Len(t, home.Featured, homeFeaturedLimit)
	assert.Len(t, home.NewArrivals, 1)
	assert.Len(t, home.Categories, 1)
}

func TestProductBySlugIncludesRelated(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	category := seedCategory(t, db, "Gear", "gear")

	subject := seedProductIn(t, db, category, productSpec{name: "subject", price: "10.00", stock: 3})
	for i := 0; i < 6; i++ {
		seedProductIn(t, db, category, productSpec{name: "sibling", price: "10.00", stock: 3})
	}

	detail, err := svc.ProductBySlug(context.Background(), subject.Slug)
	require.NoError(t, err)
	assert.Equal(t, subject.ID, detail.Product.ID)
	assert.Len(t, detail.Related, relatedLimit)
	for _, related := range detail.Related {
		assert.NotEqual(t, subject.ID, related.ID, "related must exclude the product itself")
	}
}

func TestProductBySlugNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)

	_, err := svc.ProductBySlug(context.Background(), "nope")
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}

func TestCategoryBySlugListsItsProducts(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	gear := seedCategory(t, db, "Gear", "gear")
	apparel := seedCategory(t, db, "Apparel", "apparel")

	seedProductIn(t, db, gear, productSpec{name: "lamp", price: "10.00", stock: 3})
	seedProductIn(t, db, apparel, productSpec{name: "shirt", price: "10.00", stock: 3})

	page, err := svc.CategoryBySlug(context.Background(), "gear")
	require.NoError(t, err)
	assert.Equal(t, gear.ID, page.Category.ID)
	require.Len(t, page.Products, 1)
	assert.Equal(t, "lamp", page.Products[0].Name)
}
