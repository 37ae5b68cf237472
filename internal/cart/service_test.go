package cart

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	redislib "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/jtrevino/storefront-backend/pkg/db/models"
	pkgerrors "github.com/jtrevino/storefront-backend/pkg/errors"
)

type memKV struct {
	data map[string]string
}

func newMemKV() *memKV {
	return &memKV{data: map[string]string{}}
}

func (m *memKV) Get(_ context.Context, key string) (string, error) {
	value, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return value, nil
}

func (m *memKV) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.data[key] = value.(string)
	return nil
}

func (m *memKV) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *memKV) CartKey(sessionID string) string {
	return "sf:cart:" + sessionID
}

type fakeProducts struct {
	byID map[string]models.Product
}

func newFakeProducts(products ...models.Product) *fakeProducts {
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID.String()] = p
	}
	return &fakeProducts{byID: byID}
}

func (f *fakeProducts) FindProductByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	if p, ok := f.byID[id.String()]; ok {
		return &p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeProducts) FindProductsByIDs(_ context.Context, ids []uuid.UUID) (map[string]models.Product, error) {
	found := map[string]models.Product{}
	for _, id := range ids {
		if p, ok := f.byID[id.String()]; ok {
			found[id.String()] = p
		}
	}
	return found, nil
}

func fakeProduct(name, price string, stock int) models.Product {
	return models.Product{
		ID:    uuid.New(),
		Name:  name,
		Slug:  name,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	}
}

func newTestService(t *testing.T, products ...models.Product) Service {
	t.Helper()
	store, err := NewStore(newMemKV(), time.Hour)
	require.NoError(t, err)
	svc, err := NewService(store, newFakeProducts(products...))
	require.NoError(t, err)
	return svc
}

func TestAddThenViewRoundTrip(t *testing.T) {
	widget := fakeProduct("widget", "10.00", 5)
	svc := newTestService(t, widget)
	sessionID := uuid.NewString()

	view, err := svc.Add(context.Background(), sessionID, widget.ID.String(), 3)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 3, view.Lines[0].Quantity)
	assert.True(t, view.Total.Equal(decimal.RequireFromString("30.00")), "total %s", view.Total)
	assert.Equal(t, 3, view.ItemCount)

	again, err := svc.View(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, view.Total, again.Total)
}

func TestAddUnknownProduct(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Add(context.Background(), uuid.NewString(), uuid.NewString(), 1)
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}

func TestAddInvalidProductID(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Add(context.Background(), uuid.NewString(), "not-a-uuid", 1)
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeValidation, coded.Code())
}

func TestUpdateToZeroRemovesLine(t *testing.T) {
	widget := fakeProduct("widget", "10.00", 5)
	svc := newTestService(t, widget)
	sessionID := uuid.NewString()

	_, err := svc.Add(context.Background(), sessionID, widget.ID.String(), 2)
	require.NoError(t, err)

	view, err := svc.Update(context.Background(), sessionID, widget.ID.String(), 0)
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
	assert.True(t, view.Total.IsZero())
}

func TestViewFlagsUnavailableEntries(t *testing.T) {
	widget := fakeProduct("widget", "10.00", 5)
	ghost := fakeProduct("ghost", "4.00", 1)

	store, err := NewStore(newMemKV(), time.Hour)
	require.NoError(t, err)

	finder := newFakeProducts(widget, ghost)
	svc, err := NewService(store, finder)
	require.NoError(t, err)

	sessionID := uuid.NewString()
	_, err = svc.Add(context.Background(), sessionID, widget.ID.String(), 1)
	require.NoError(t, err)
	_, err = svc.Add(context.Background(), sessionID, ghost.ID.String(), 2)
	require.NoError(t, err)

	// Simulate the product disappearing after it was carted.
	delete(finder.byID, ghost.ID.String())

	view, err := svc.View(context.Background(), sessionID)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, widget.ID.String(), view.Lines[0].ProductID)
	assert.True(t, view.Total.Equal(decimal.RequireFromString("10.00")),
		"unavailable lines must not contribute to the total, got %s", view.Total)
	assert.Equal(t, []string{ghost.ID.String()}, view.Unavailable)
}

func TestRemoveAbsentLine(t *testing.T) {
	svc := newTestService(t)
	sessionID := uuid.NewString()

	view, err := svc.Remove(context.Background(), sessionID, uuid.NewString())
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
}
