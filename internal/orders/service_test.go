package orders

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
	dsn := "file:orders_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Order{},
		&models.OrderItem{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()
	user := models.User{
		Email:        uuid.NewString() + "@example.com",
		Username:     "buyer_" + uuid.NewString()[:8],
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(&user).Error)
	return user.ID
}

func seedOrder(t *testing.T, db *gorm.DB, userID uuid.UUID, createdAt time.Time) models.Order {
	t.Helper()
	order := models.Order{
		UserID:          userID,
		Status:          models.OrderStatusPending,
		TotalPrice:      decimal.RequireFromString("25.00"),
		ShippingName:    "Ana",
		ShippingAddress: "1 Main St",
		ShippingCity:    "Austin",
		ShippingZip:     "78701",
	}
	require.NoError(t, db.Create(&order).Error)
	require.NoError(t, db.Model(&models.Order{}).
		Where("id = ?", order.ID).
		UpdateColumn("created_at", createdAt).Error)
	return order
}

func newTestService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	return svc
}

func TestListForUserNewestFirstAndScoped(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)

	userID := seedUser(t, db)
	otherID := seedUser(t, db)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	older := seedOrder(t, db, userID, base)
	newer := seedOrder(t, db, userID, base.Add(time.Hour))
	seedOrder(t, db, otherID, base.Add(2*time.Hour))

	found, err := svc.ListForUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, newer.ID, found[0].ID)
	assert.Equal(t, older.ID, found[1].ID)
}

func TestRecentForUserCapsAtFive(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)

	userID := seedUser(t, db)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		seedOrder(t, db, userID, base.Add(time.Duration(i)*time.Minute))
	}

	found, err := svc.RecentForUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, found, profileOrderLimit)
}

func TestDetailForUserHidesForeignOrders(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)

	ownerID := seedUser(t, db)
	strangerID := seedUser(t, db)
	order := seedOrder(t, db, ownerID, time.Now().UTC())

	got, err := svc.DetailForUser(context.Background(), order.ID, ownerID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = svc.DetailForUser(context.Background(), order.ID, strangerID)
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}

func TestUpdateStatusValidatesAndPersists(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)

	userID := seedUser(t, db)
	order := seedOrder(t, db, userID, time.Now().UTC())

	updated, err := svc.UpdateStatus(context.Background(), order.ID, models.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, updated.Status)

	_, err = svc.UpdateStatus(context.Background(), order.ID, models.OrderStatus("teleported"))
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeValidation, coded.Code())

	var stored models.Order
	require.NoError(t, db.First(&stored, "id = ?", order.ID).Error)
	assert.Equal(t, models.OrderStatusShipped, stored.Status, "rejected status must not persist")
}

func TestUpdateStatusMissingOrder(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)

	_, err := svc.UpdateStatus(context.Background(), uuid.New(), models.OrderStatusProcessing)
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}
