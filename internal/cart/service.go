package cart

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/jtrevino/storefront-backend/pkg/db/models"
	pkgerrors "github.com/jtrevino/storefront-backend/pkg/errors"
)

type productFinder interface {
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[string]models.Product, error)
}

// Line is one cart row joined with its live product data.
type Line struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Stock     int             `json:"stock"`
}

// View is the rendered cart: resolvable lines, a total over those lines, and
// the ids of entries whose product no longer exists. Unavailable entries stay
// in the cart so the visitor sees them flagged rather than silently losing them.
type View struct {
	Lines       []Line          `json:"lines"`
	Total       decimal.Decimal `json:"total"`
	ItemCount   int             `json:"item_count"`
	Unavailable []string        `json:"unavailable,omitempty"`
}

// Service exposes the session cart operations.
type Service interface {
	View(ctx context.Context, sessionID string) (View, error)
	Add(ctx context.Context, sessionID, productID string, qty int) (View, error)
	Update(ctx context.Context, sessionID, productID string, qty int) (View, error)
	Remove(ctx context.Context, sessionID, productID string) (View, error)
}

type service struct {
	store    *Store
	products productFinder
}

// NewService builds the cart service.
func NewService(store *Store, products productFinder) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if products == nil {
		return nil, fmt.Errorf("product finder required")
	}
	return &service{store: store, products: products}, nil
}

func (s *service) View(ctx context.Context, sessionID string) (View, error) {
	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return View{}, err
	}
	return s.render(ctx, c)
}

// Add validates the product then increments its cart quantity.
func (s *service) Add(ctx context.Context, sessionID, productID string, qty int) (View, error) {
	parsed, err := uuid.Parse(productID)
	if err != nil {
		return View{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid product id")
	}
	if _, err := s.products.FindProductByID(ctx, parsed); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return View{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return View{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return View{}, err
	}
	c.Add(productID, qty)
	if err := s.store.Save(ctx, sessionID, c); err != nil {
		return View{}, err
	}
	return s.render(ctx, c)
}

// Update sets an entry's quantity directly; zero or less removes it.
func (s *service) Update(ctx context.Context, sessionID, productID string, qty int) (View, error) {
	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return View{}, err
	}
	c.Update(productID, qty)
	if err := s.store.Save(ctx, sessionID, c); err != nil {
		return View{}, err
	}
	return s.render(ctx, c)
}

// Remove drops the entry; removing an absent entry is not an error.
func (s *service) Remove(ctx context.Context, sessionID, productID string) (View, error) {
	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return View{}, err
	}
	c.Remove(productID)
	if err := s.store.Save(ctx, sessionID, c); err != nil {
		return View{}, err
	}
	return s.render(ctx, c)
}

func (s *service) render(ctx context.Context, c Cart) (View, error) {
	ids := make([]uuid.UUID, 0, len(c))
	for id := range c {
		if parsed, err := uuid.Parse(id); err == nil {
			ids = append(ids, parsed)
		}
	}

	products, err := s.products.FindProductsByIDs(ctx, ids)
	if err != nil {
		return View{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart products")
	}

	view := View{
		Lines:       make([]Line, 0, len(c)),
		Total:       Total(c, products),
		Unavailable: MissingProducts(c, products),
	}
	for id, qty := range c {
		product, ok := products[id]
		if !ok {
			continue
		}
		view.Lines = append(view.Lines, Line{
			ProductID: id,
			Name:      product.Name,
			Slug:      product.Slug,
			Price:     product.Price,
			Quantity:  qty,
			Subtotal:  product.Price.Mul(decimal.NewFromInt(int64(qty))),
			Stock:     product.Stock,
		})
		view.ItemCount += qty
	}
	sort.Slice(view.Lines, func(i, j int) bool {
		return view.Lines[i].Name < view.Lines[j].Name
	})
	sort.Strings(view.Unavailable)
	return view, nil
}
