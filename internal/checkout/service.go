package checkout

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jtrevino/storefront-backend/internal/cart"
	"github.com/jtrevino/storefront-backend/pkg/db/models"
	pkgerrors "github.com/jtrevino/storefront-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cartStore interface {
	Load(ctx context.Context, sessionID string) (cart.Cart, error)
	Save(ctx context.Context, sessionID string, c cart.Cart) error
	Clear(ctx context.Context, sessionID string) error
}

// ShippingInfo is the delivery block captured from the checkout form.
type ShippingInfo struct {
	Name    string
	Address string
	City    string
	Zip     string
}

// Input carries the checkout submission. Card fields are shape-checked at the
// boundary and never charged or persisted.
type Input struct {
	Shipping ShippingInfo
}

// StockShortage reports one oversold line so the caller can adjust the cart.
type StockShortage struct {
	ProductID string `json:"product_id"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// Service executes checkout orchestration.
type Service interface {
	Execute(ctx context.Context, userID uuid.UUID, sessionID string, input Input) (*models.Order, error)
}

type service struct {
	tx    txRunner
	repo  *Repository
	carts cartStore
}

// NewService builds the checkout service.
func NewService(tx txRunner, repo *Repository, carts cartStore) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("checkout repository required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart store required")
	}
	return &service{tx: tx, repo: repo, carts: carts}, nil
}

// Execute turns the session cart into a persisted order. Stock decrement,
// order creation, and item creation land in one transaction; any oversold or
// unavailable line aborts the whole operation with no partial writes, and the
// cart survives a failed attempt untouched.
func (s *service) Execute(ctx context.Context, userID uuid.UUID, sessionID string, input Input) (*models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required for checkout")
	}
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	if err := validateShipping(input.Shipping); err != nil {
		return nil, err
	}

	record, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if record.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	ids, unavailable := parseCartIDs(record)

	var order *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		products, err := repo.ProductsByIDs(ctx, ids)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart products")
		}
		for _, id := range cart.MissingProducts(record, products) {
			unavailable = append(unavailable, id)
		}
		if len(unavailable) > 0 {
			sort.Strings(unavailable)
			return pkgerrors.New(pkgerrors.CodeValidation, "cart contains unavailable products").
				WithDetails(map[string]any{"unavailable_product_ids": unavailable})
		}

		var shortages []StockShortage
		for _, entryID := range sortedEntryIDs(record) {
			product := products[entryID]
			qty := record.Quantity(entryID)
			ok, err := repo.DecrementStock(ctx, product.ID, qty)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
			}
			if !ok {
				available, err := repo.CurrentStock(ctx, product.ID)
				if err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read stock")
				}
				shortages = append(shortages, StockShortage{
					ProductID: entryID,
					Requested: qty,
					Available: available,
				})
			}
		}
		if len(shortages) > 0 {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock for one or more items").
				WithDetails(map[string]any{"items": shortages})
		}

		created := &models.Order{
			UserID:          userID,
			Status:          models.OrderStatusPending,
			TotalPrice:      cart.Total(record, products),
			ShippingName:    input.Shipping.Name,
			ShippingAddress: input.Shipping.Address,
			ShippingCity:    input.Shipping.City,
			ShippingZip:     input.Shipping.Zip,
		}
		if err := repo.CreateOrder(ctx, created); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		items := make([]models.OrderItem, 0, len(record))
		for _, entryID := range sortedEntryIDs(record) {
			product := products[entryID]
			items = append(items, models.OrderItem{
				OrderID:   created.ID,
				ProductID: product.ID,
				Quantity:  record.Quantity(entryID),
				Price:     product.Price,
			})
		}
		if err := repo.CreateOrderItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order items")
		}
		created.Items = items

		// Clearing inside the closure keeps a failed clear from stranding a
		// committed order alongside a live cart.
		if err := s.carts.Clear(ctx, sessionID); err != nil {
			return err
		}

		order = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func validateShipping(info ShippingInfo) error {
	missing := []string{}
	if info.Name == "" {
		missing = append(missing, "name")
	}
	if info.Address == "" {
		missing = append(missing, "address")
	}
	if info.City == "" {
		missing = append(missing, "city")
	}
	if info.Zip == "" {
		missing = append(missing, "zip")
	}
	if len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "shipping fields missing").
			WithDetails(map[string]any{"fields": missing})
	}
	return nil
}

func parseCartIDs(record cart.Cart) ([]uuid.UUID, []string) {
	ids := make([]uuid.UUID, 0, len(record))
	var malformed []string
	for entryID := range record {
		parsed, err := uuid.Parse(entryID)
		if err != nil {
			malformed = append(malformed, entryID)
			continue
		}
		ids = append(ids, parsed)
	}
	return ids, malformed
}

func sortedEntryIDs(record cart.Cart) []string {
	ids := make([]string, 0, len(record))
	for id := range record {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
