package catalog

import (
	"context"
	"sync"

	"github.com/cucharaita/storefront/internal/cache"
	"github.com/cucharaita/storefront/internal/domain"
)

type mockStore struct {
	mu        sync.RWMutex
	products  map[int64]domain.Product
	options   map[int64][]domain.OptionRecord
	listCalls int
	err       error
	block     chan struct{}
}

func newMockStore() *mockStore {
	return &mockStore{
		products: map[int64]domain.Product{},
		options:  map[int64][]domain.OptionRecord{},
	}
}

func (m *mockStore) ListCategories(context.Context) ([]domain.Category, error) {
	return []domain.Category{{ID: 1, Name: "Tartas"}}, m.err
}

func (m *mockStore) ListProducts(_ context.Context, categoryID int64) ([]domain.Product, error) {
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.Product
	for id := int64(1); id <= int64(len(m.products)); id++ {
		p, ok := m.products[id]
		if !ok || !p.Active {
			continue
		}
		if categoryID == 0 || p.Category.ID == categoryID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockStore) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	return &p, nil
}

func (m *mockStore) ListOptionRecords(ctx context.Context, productID int64) ([]domain.OptionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.options[productID], nil
}

func (m *mockStore) calls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listCalls
}

type mockCache struct {
	mu      sync.RWMutex
	entries map[string][]domain.Product
	getErr  error
	sets    chan string
}

func newMockCache() *mockCache {
	return &mockCache{entries: map[string][]domain.Product{}, sets: make(chan string, 10)}
}

func (m *mockCache) GetProducts(_ context.Context, key string) ([]domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	p, ok := m.entries[key]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return p, nil
}

func (m *mockCache) SetProducts(_ context.Context, key string, products []domain.Product) error {
	m.mu.Lock()
	m.entries[key] = products
	m.mu.Unlock()
	m.sets <- key
	return nil
}

func (m *mockCache) DeleteProducts(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = map[string][]domain.Product{}
	return nil
}
