package cache

import (
	"context"
	"errors"

	"github.com/cucharaita/storefront/internal/domain"
)

type CartCache interface {
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)
	Set(ctx context.Context, sessionID string, cart *domain.Cart) error
	Delete(ctx context.Context, sessionID string) error
}

// ProductCache holds product listings keyed by the listing they answer.
type ProductCache interface {
	GetProducts(ctx context.Context, key string) ([]domain.Product, error)
	SetProducts(ctx context.Context, key string, products []domain.Product) error
	DeleteProducts(ctx context.Context) error
}

var ErrCacheMiss = errors.New("cache miss")
