package cart

import (
	"context"
	"sync"

	"github.com/cucharaita/storefront/internal/cache"
	"github.com/cucharaita/storefront/internal/catalog"
	"github.com/cucharaita/storefront/internal/coupon"
	"github.com/cucharaita/storefront/internal/domain"
	"github.com/cucharaita/storefront/internal/store/cartdb"
	"github.com/shopspring/decimal"
)

type mockRepository struct {
	m     sync.RWMutex
	carts map[string]*domain.Cart
	err   error
}

func newMockRepository() *mockRepository {
	return &mockRepository{carts: map[string]*domain.Cart{}}
}

func copyCart(c *domain.Cart) *domain.Cart {
	out := *c
	out.Lines = append([]domain.CartLine(nil), c.Lines...)
	return &out
}

func (m *mockRepository) GetCart(_ context.Context, sessionID string) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.carts[sessionID]
	if !ok {
		return nil, cartdb.ErrCartNotFound
	}
	return copyCart(c), nil
}

func (m *mockRepository) UpsertCart(_ context.Context, c *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.carts[c.SessionID] = copyCart(c)
	return nil
}

func (m *mockRepository) SetLineQuantity(_ context.Context, sessionID, lineID string, quantity int) error {
	m.m.Lock()
	defer m.m.Unlock()
	c, ok := m.carts[sessionID]
	if !ok {
		return cartdb.ErrLineNotFound
	}
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			c.Lines[i].Quantity = quantity
			return nil
		}
	}
	return cartdb.ErrLineNotFound
}

func (m *mockRepository) RemoveLine(_ context.Context, sessionID, lineID string) error {
	m.m.Lock()
	defer m.m.Unlock()
	c, ok := m.carts[sessionID]
	if !ok {
		return cartdb.ErrLineNotFound
	}
	if !Remove(c, lineID) {
		return cartdb.ErrLineNotFound
	}
	return nil
}

func (m *mockRepository) SetCoupon(_ context.Context, sessionID, code string) error {
	m.m.Lock()
	defer m.m.Unlock()
	c, ok := m.carts[sessionID]
	if !ok {
		return cartdb.ErrCartNotFound
	}
	c.CouponCode = code
	return nil
}

func (m *mockRepository) DeleteCart(_ context.Context, sessionID string) error {
	m.m.Lock()
	defer m.m.Unlock()
	if _, ok := m.carts[sessionID]; !ok {
		return cartdb.ErrCartNotFound
	}
	delete(m.carts, sessionID)
	return nil
}

func (m *mockRepository) stored(sessionID string) *domain.Cart {
	m.m.RLock()
	defer m.m.RUnlock()
	c, ok := m.carts[sessionID]
	if !ok {
		return nil
	}
	return copyCart(c)
}

type mockCache struct {
	m       sync.RWMutex
	carts   map[string]*domain.Cart
	deletes int
}

func newMockCache() *mockCache {
	return &mockCache{carts: map[string]*domain.Cart{}}
}

func (m *mockCache) Get(_ context.Context, sessionID string) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	c, ok := m.carts[sessionID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return c, nil
}

func (m *mockCache) Set(_ context.Context, sessionID string, c *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.carts[sessionID] = c
	return nil
}

func (m *mockCache) Delete(_ context.Context, sessionID string) error {
	m.m.Lock()
	defer m.m.Unlock()
	delete(m.carts, sessionID)
	m.deletes++
	return nil
}

type mockCatalog struct {
	products map[int64]domain.Product
	groups   map[int64][]domain.OptionGroup
}

func (m *mockCatalog) Product(_ context.Context, id int64) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok || !p.Active {
		return nil, catalog.ErrProductNotFound
	}
	return &p, nil
}

func (m *mockCatalog) Groups(_ context.Context, productID int64) ([]domain.OptionGroup, error) {
	return m.groups[productID], nil
}

type mockCoupons struct {
	m       sync.RWMutex
	coupons map[string]domain.Coupon
	err     error
}

func (m *mockCoupons) FindCouponByCode(_ context.Context, code string) (*domain.Coupon, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.coupons[code]
	if !ok {
		return nil, coupon.ErrCouponNotFound
	}
	return &c, nil
}

func testCatalog() *mockCatalog {
	return &mockCatalog{
		products: map[int64]domain.Product{
			1: {ID: 1, Name: "Tarta de queso", Price: decimal.NewFromInt(20), Active: true, Available: true},
			2: {ID: 2, Name: "Caja de galletas", Price: decimal.NewFromInt(10), Active: true, Available: true},
			3: {ID: 3, Name: "Cookie", Price: decimal.NewFromInt(3), Active: true, Available: false},
		},
		groups: map[int64][]domain.OptionGroup{
			1: {{
				ID: 1, Name: "Tamaño", Mode: domain.ModeSingle, Required: true,
				Options: []domain.Option{
					{ID: 1, Name: "6 raciones", GroupID: 1},
					{ID: 2, Name: "10 raciones", AddPrice: decimal.NewFromInt(5), GroupID: 1},
				},
			}},
			2: {{
				ID: 2, Name: "Sabores", Mode: domain.ModeMultiple, Limit: 2, Required: true,
				Options: []domain.Option{
					{ID: 5, Name: "Chocolate", GroupID: 2},
					{ID: 6, Name: "Red velvet", AddPrice: decimal.NewFromInt(1), GroupID: 2},
				},
			}},
		},
	}
}

func testCoupons() *mockCoupons {
	return &mockCoupons{coupons: map[string]domain.Coupon{
		"DULCE10": {Code: "DULCE10", Active: true, Type: domain.DiscountPercentage, Value: decimal.NewFromInt(10), MinAmount: decimal.NewFromInt(20)},
	}}
}
